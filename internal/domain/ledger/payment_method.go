package ledger

import (
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentMethod is a collection channel configured per project
// (bank transfer, cash desk, gateway). Receipts reference one.
type PaymentMethod struct {
	shared.BaseEntity
	ProjectID uuid.UUID
	Name      string
	IsActive  bool
}
