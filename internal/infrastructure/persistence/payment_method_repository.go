package persistence

import (
	"context"
	"errors"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentMethodRepository implements ledger.PaymentMethodRepository using GORM
type GormPaymentMethodRepository struct {
	db *gorm.DB
}

// NewGormPaymentMethodRepository creates a new GormPaymentMethodRepository
func NewGormPaymentMethodRepository(db *gorm.DB) *GormPaymentMethodRepository {
	return &GormPaymentMethodRepository{db: db}
}

// FindByID finds a payment method by its ID, nil when it does not exist
func (r *GormPaymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListActiveByProject lists a project's active collection channels
func (r *GormPaymentMethodRepository) ListActiveByProject(ctx context.Context, projectID uuid.UUID) ([]ledger.PaymentMethod, error) {
	var methodModels []models.PaymentMethodModel
	if err := dbFromContext(ctx, r.db).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("name ASC").
		Find(&methodModels).Error; err != nil {
		return nil, err
	}

	methods := make([]ledger.PaymentMethod, len(methodModels))
	for i, model := range methodModels {
		methods[i] = *model.ToDomain()
	}
	return methods, nil
}

// FirstActiveByProject returns the fallback method used when a caller
// does not pick one, nil when the project has none.
func (r *GormPaymentMethodRepository) FirstActiveByProject(ctx context.Context, projectID uuid.UUID) (*ledger.PaymentMethod, error) {
	var model models.PaymentMethodModel
	if err := dbFromContext(ctx, r.db).
		Where("project_id = ? AND is_active = ?", projectID, true).
		Order("name ASC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ ledger.PaymentMethodRepository = (*GormPaymentMethodRepository)(nil)
