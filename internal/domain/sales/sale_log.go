package sales

import (
	"time"

	"github.com/google/uuid"
)

// LogAction classifies audit entries on a sale
type LogAction string

const (
	LogActionNote         LogAction = "NOTE"
	LogActionStatusChange LogAction = "STATUS_CHANGE"
	LogActionCollection   LogAction = "COLLECTION"
)

// SaleLog is an append-only audit entry on a sale. Entries are never
// updated or deleted.
type SaleLog struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	Action    LogAction
	Message   string
	Metadata  map[string]any
	CreatedBy *uuid.UUID
	CreatedAt time.Time
}

// NewSaleLog builds an audit entry for a sale.
func NewSaleLog(saleID uuid.UUID, action LogAction, message string, createdBy *uuid.UUID) *SaleLog {
	return &SaleLog{
		ID:        uuid.New(),
		SaleID:    saleID,
		Action:    action,
		Message:   message,
		CreatedBy: createdBy,
		CreatedAt: time.Now(),
	}
}
