package sales

import (
	"context"

	"github.com/google/uuid"
)

// SaleRepository reads sales and their financing context.
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	// FindByIDForUpdate takes a row lock inside the ambient
	// transaction so per-sale mutations serialize.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByContractNumber(ctx context.Context, contractNumber string) (*Sale, error)
	FindPlanBySale(ctx context.Context, saleID uuid.UUID) (*PaymentPlan, error)
}

// ProjectRepository reads project payment parameters.
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
}

// SaleLogRepository appends audit entries. There is no update or
// delete; the log is append-only.
type SaleLogRepository interface {
	Append(ctx context.Context, entry *SaleLog) error
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]SaleLog, error)
}
