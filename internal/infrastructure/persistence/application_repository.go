package persistence

import (
	"context"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormApplicationRepository implements ledger.ApplicationRepository using GORM
type GormApplicationRepository struct {
	db *gorm.DB
}

// NewGormApplicationRepository creates a new GormApplicationRepository
func NewGormApplicationRepository(db *gorm.DB) *GormApplicationRepository {
	return &GormApplicationRepository{db: db}
}

// ListBySale returns every settlement line of a sale's receipts
func (r *GormApplicationRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]ledger.Application, error) {
	var appModels []models.ApplicationModel
	if err := dbFromContext(ctx, r.db).
		Joins("JOIN receipts ON receipts.id = receipt_applications.receipt_id").
		Where("receipts.sale_id = ?", saleID).
		Find(&appModels).Error; err != nil {
		return nil, err
	}
	return toDomainApplications(appModels), nil
}

// ListBySaleExcludingReceipt returns the sale's settlement lines that
// belong to other receipts, the baseline for a reallocation.
func (r *GormApplicationRepository) ListBySaleExcludingReceipt(ctx context.Context, saleID, receiptID uuid.UUID) ([]ledger.Application, error) {
	var appModels []models.ApplicationModel
	if err := dbFromContext(ctx, r.db).
		Joins("JOIN receipts ON receipts.id = receipt_applications.receipt_id").
		Where("receipts.sale_id = ? AND receipt_applications.receipt_id <> ?", saleID, receiptID).
		Find(&appModels).Error; err != nil {
		return nil, err
	}
	return toDomainApplications(appModels), nil
}

// DeleteByReceipt removes a receipt's settlement lines ahead of a rebuild
func (r *GormApplicationRepository) DeleteByReceipt(ctx context.Context, receiptID uuid.UUID) error {
	return dbFromContext(ctx, r.db).
		Delete(&models.ApplicationModel{}, "receipt_id = ?", receiptID).Error
}

// CreateBatch inserts a receipt's settlement lines in one statement
func (r *GormApplicationRepository) CreateBatch(ctx context.Context, applications []ledger.Application) error {
	if len(applications) == 0 {
		return nil
	}
	appModels := make([]*models.ApplicationModel, len(applications))
	for i, app := range applications {
		appModels[i] = models.ApplicationModelFromDomain(app)
	}
	return dbFromContext(ctx, r.db).Create(appModels).Error
}

func toDomainApplications(appModels []models.ApplicationModel) []ledger.Application {
	applications := make([]ledger.Application, len(appModels))
	for i, model := range appModels {
		applications[i] = model.ToDomain()
	}
	return applications
}

var _ ledger.ApplicationRepository = (*GormApplicationRepository)(nil)
