package persistence

import (
	"context"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormScheduleItemRepository implements ledger.ScheduleItemRepository using GORM
type GormScheduleItemRepository struct {
	db *gorm.DB
}

// NewGormScheduleItemRepository creates a new GormScheduleItemRepository
func NewGormScheduleItemRepository(db *gorm.DB) *GormScheduleItemRepository {
	return &GormScheduleItemRepository{db: db}
}

// ListBySale returns a sale's schedule ordered by (n, due_date), the
// order the waterfall consumes it in.
func (r *GormScheduleItemRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]ledger.ScheduleItem, error) {
	var itemModels []models.ScheduleItemModel
	if err := dbFromContext(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("n ASC, due_date ASC").
		Find(&itemModels).Error; err != nil {
		return nil, err
	}

	items := make([]ledger.ScheduleItem, len(itemModels))
	for i, model := range itemModels {
		items[i] = model.ToDomain()
	}
	return items, nil
}

var _ ledger.ScheduleItemRepository = (*GormScheduleItemRepository)(nil)
