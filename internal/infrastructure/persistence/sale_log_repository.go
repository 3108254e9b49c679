package persistence

import (
	"context"

	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSaleLogRepository implements sales.SaleLogRepository using GORM
type GormSaleLogRepository struct {
	db *gorm.DB
}

// NewGormSaleLogRepository creates a new GormSaleLogRepository
func NewGormSaleLogRepository(db *gorm.DB) *GormSaleLogRepository {
	return &GormSaleLogRepository{db: db}
}

// Append writes an audit entry. Entries are never updated afterwards.
func (r *GormSaleLogRepository) Append(ctx context.Context, entry *sales.SaleLog) error {
	return dbFromContext(ctx, r.db).Create(models.SaleLogModelFromDomain(entry)).Error
}

// ListBySale returns a sale's audit entries, newest first
func (r *GormSaleLogRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]sales.SaleLog, error) {
	var logModels []models.SaleLogModel
	if err := dbFromContext(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("created_at DESC").
		Find(&logModels).Error; err != nil {
		return nil, err
	}

	entries := make([]sales.SaleLog, len(logModels))
	for i, model := range logModels {
		entries[i] = *model.ToDomain()
	}
	return entries, nil
}

var _ sales.SaleLogRepository = (*GormSaleLogRepository)(nil)
