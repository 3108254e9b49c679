package persistence

import (
	"context"
	"errors"

	"github.com/casaverde/backoffice/internal/domain/treasury"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTreasuryRequestRepository implements treasury.RequestRepository using GORM
type GormTreasuryRequestRepository struct {
	db *gorm.DB
}

// NewGormTreasuryRequestRepository creates a new GormTreasuryRequestRepository
func NewGormTreasuryRequestRepository(db *gorm.DB) *GormTreasuryRequestRepository {
	return &GormTreasuryRequestRepository{db: db}
}

// FindByID finds a request by its ID, nil when it does not exist
func (r *GormTreasuryRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*treasury.Request, error) {
	var model models.TreasuryRequestModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds a request by the reporter's request number
func (r *GormTreasuryRequestRepository) FindByExternalID(ctx context.Context, externalID string) (*treasury.Request, error) {
	var model models.TreasuryRequestModel
	if err := dbFromContext(ctx, r.db).
		Where("external_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalIDForUpdate finds a request holding a row lock inside
// the ambient transaction. Concurrent validations and receipt
// generations for the same external id serialize on this lock.
func (r *GormTreasuryRequestRepository) FindByExternalIDForUpdate(ctx context.Context, externalID string) (*treasury.Request, error) {
	var model models.TreasuryRequestModel
	if err := dbFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("external_id = ?", externalID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Create inserts a new request
func (r *GormTreasuryRequestRepository) Create(ctx context.Context, request *treasury.Request) error {
	return dbFromContext(ctx, r.db).Create(models.TreasuryRequestModelFromDomain(request)).Error
}

// Save updates an existing request
func (r *GormTreasuryRequestRepository) Save(ctx context.Context, request *treasury.Request) error {
	return dbFromContext(ctx, r.db).Save(models.TreasuryRequestModelFromDomain(request)).Error
}

// ListPending returns PENDING and VALIDATED requests matching the
// filter, oldest first.
func (r *GormTreasuryRequestRepository) ListPending(ctx context.Context, filter treasury.PendingFilter) ([]treasury.Request, error) {
	query := dbFromContext(ctx, r.db).
		Where("status IN ?", []treasury.Status{treasury.StatusPending, treasury.StatusValidated})

	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	if filter.PaymentDateUntil != nil {
		query = query.Where("payment_date <= ?", *filter.PaymentDateUntil)
	}

	var requestModels []models.TreasuryRequestModel
	if err := query.Order("created_at ASC").Find(&requestModels).Error; err != nil {
		return nil, err
	}

	requests := make([]treasury.Request, len(requestModels))
	for i, model := range requestModels {
		requests[i] = *model.ToDomain()
	}
	return requests, nil
}

var _ treasury.RequestRepository = (*GormTreasuryRequestRepository)(nil)
