package persistence

import (
	"context"
	"errors"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReceiptRepository implements ledger.ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// FindByID finds a receipt by its ID, nil when it does not exist
func (r *GormReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Receipt, error) {
	var model models.ReceiptModel
	if err := dbFromContext(ctx, r.db).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a receipt
func (r *GormReceiptRepository) Save(ctx context.Context, receipt *ledger.Receipt) error {
	return dbFromContext(ctx, r.db).Save(models.ReceiptModelFromDomain(receipt)).Error
}

// ListBySale returns a sale's receipts, oldest payment first
func (r *GormReceiptRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]ledger.Receipt, error) {
	var receiptModels []models.ReceiptModel
	if err := dbFromContext(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("date_paid ASC, created_at ASC").
		Find(&receiptModels).Error; err != nil {
		return nil, err
	}

	receipts := make([]ledger.Receipt, len(receiptModels))
	for i, model := range receiptModels {
		receipts[i] = *model.ToDomain()
	}
	return receipts, nil
}

// SumBySale totals receipt amounts for a sale
func (r *GormReceiptRepository) SumBySale(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := dbFromContext(ctx, r.db).
		Model(&models.ReceiptModel{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// FindBySaleAndHash finds a receipt by its evidence file hash, the
// duplicate guard for re-submitted supports.
func (r *GormReceiptRepository) FindBySaleAndHash(ctx context.Context, saleID uuid.UUID, fileHash string) (*ledger.Receipt, error) {
	if fileHash == "" {
		return nil, nil
	}
	var model models.ReceiptModel
	if err := dbFromContext(ctx, r.db).
		Where("sale_id = ? AND file_hash = ?", saleID, fileHash).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

var _ ledger.ReceiptRepository = (*GormReceiptRepository)(nil)
