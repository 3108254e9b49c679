package commission

import (
	"time"

	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Scale assigns a participant role a percentage of a sale's value.
// Unique per (sale, role).
type Scale struct {
	shared.BaseEntity
	SaleID     uuid.UUID
	UserID     uuid.UUID
	RoleName   string
	Percentage decimal.Decimal
}

// Participant materializes a (sale, user, role) the first time a payout
// is computed for it. Percentage and commission total are snapshots
// refreshed on every liquidation.
type Participant struct {
	shared.BaseEntity
	SaleID          uuid.UUID
	UserID          uuid.UUID
	RoleName        string
	Percentage      decimal.Decimal
	CommissionTotal decimal.Decimal
}

// Payment is one append-only payout ledger row. Rows are never updated
// or deleted; the sum per participant is the source of truth for what
// has already been paid.
type Payment struct {
	ID            uuid.UUID
	ParticipantID uuid.UUID
	Amount        decimal.Decimal
	Trigger       string
	CreatedBy     *uuid.UUID
	CreatedAt     time.Time
}

// NewPayment appends a payout row for a participant.
func NewPayment(participantID uuid.UUID, amount decimal.Decimal, trigger string, createdBy *uuid.UUID) *Payment {
	return &Payment{
		ID:            uuid.New(),
		ParticipantID: participantID,
		Amount:        amount.Round(2),
		Trigger:       trigger,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}
}
