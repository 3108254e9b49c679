package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleItemRepository reads amortization schedules. Items come back
// ordered by (n, due date), the order the waterfall consumes them in.
type ScheduleItemRepository interface {
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]ScheduleItem, error)
}

// ApplicationRepository manages receipt settlement lines.
type ApplicationRepository interface {
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]Application, error)
	// ListBySaleExcludingReceipt returns the sale's applications that
	// belong to other receipts, the baseline for a reallocation.
	ListBySaleExcludingReceipt(ctx context.Context, saleID, receiptID uuid.UUID) ([]Application, error)
	DeleteByReceipt(ctx context.Context, receiptID uuid.UUID) error
	CreateBatch(ctx context.Context, applications []Application) error
}

// ReceiptRepository persists receipts.
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)
	Save(ctx context.Context, receipt *Receipt) error
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]Receipt, error)
	// SumBySale totals receipt amounts for a sale.
	SumBySale(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error)
	FindBySaleAndHash(ctx context.Context, saleID uuid.UUID, fileHash string) (*Receipt, error)
}

// PaymentMethodRepository reads per-project collection channels.
type PaymentMethodRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)
	ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]PaymentMethod, error)
	// FirstActiveByProject returns the fallback method used when a
	// caller does not pick one, nil when the project has none.
	FirstActiveByProject(ctx context.Context, projectID uuid.UUID) (*PaymentMethod, error)
}
