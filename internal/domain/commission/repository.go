package commission

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScaleRepository reads commission scales.
type ScaleRepository interface {
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]Scale, error)
	// ListSaleIDsWithScales returns the sales that have at least one
	// scale, the candidate set for the liquidation queue.
	ListSaleIDsWithScales(ctx context.Context) ([]uuid.UUID, error)
}

// ParticipantRepository upserts payout participants.
type ParticipantRepository interface {
	FindBySaleUserRole(ctx context.Context, saleID, userID uuid.UUID, roleName string) (*Participant, error)
	Save(ctx context.Context, participant *Participant) error
}

// PaymentRepository appends and sums payout ledger rows.
type PaymentRepository interface {
	Append(ctx context.Context, payment *Payment) error
	// SumBySaleGrouped returns paid-so-far per (user, role) bucket of
	// a sale, summed from the append-only ledger.
	SumBySaleGrouped(ctx context.Context, saleID uuid.UUID) (map[ScaleKey]decimal.Decimal, error)
	CountBySale(ctx context.Context, saleID uuid.UUID) (int64, error)
}
