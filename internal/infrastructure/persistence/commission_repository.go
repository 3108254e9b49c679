package persistence

import (
	"context"
	"errors"

	"github.com/casaverde/backoffice/internal/domain/commission"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormScaleRepository implements commission.ScaleRepository using GORM
type GormScaleRepository struct {
	db *gorm.DB
}

// NewGormScaleRepository creates a new GormScaleRepository
func NewGormScaleRepository(db *gorm.DB) *GormScaleRepository {
	return &GormScaleRepository{db: db}
}

// ListBySale returns a sale's commission scales
func (r *GormScaleRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]commission.Scale, error) {
	var scaleModels []models.CommissionScaleModel
	if err := dbFromContext(ctx, r.db).
		Where("sale_id = ?", saleID).
		Order("role_name ASC").
		Find(&scaleModels).Error; err != nil {
		return nil, err
	}

	scales := make([]commission.Scale, len(scaleModels))
	for i, model := range scaleModels {
		scales[i] = model.ToDomain()
	}
	return scales, nil
}

// ListSaleIDsWithScales returns the sales that have at least one scale
func (r *GormScaleRepository) ListSaleIDsWithScales(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbFromContext(ctx, r.db).
		Model(&models.CommissionScaleModel{}).
		Distinct("sale_id").
		Order("sale_id ASC").
		Pluck("sale_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

var _ commission.ScaleRepository = (*GormScaleRepository)(nil)

// GormParticipantRepository implements commission.ParticipantRepository using GORM
type GormParticipantRepository struct {
	db *gorm.DB
}

// NewGormParticipantRepository creates a new GormParticipantRepository
func NewGormParticipantRepository(db *gorm.DB) *GormParticipantRepository {
	return &GormParticipantRepository{db: db}
}

// FindBySaleUserRole finds the payout participant of a (sale, user, role) bucket
func (r *GormParticipantRepository) FindBySaleUserRole(ctx context.Context, saleID, userID uuid.UUID, roleName string) (*commission.Participant, error) {
	var model models.CommissionParticipantModel
	if err := dbFromContext(ctx, r.db).
		Where("sale_id = ? AND user_id = ? AND role_name = ?", saleID, userID, roleName).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a participant
func (r *GormParticipantRepository) Save(ctx context.Context, participant *commission.Participant) error {
	model := &models.CommissionParticipantModel{}
	model.FromDomain(participant)
	return dbFromContext(ctx, r.db).Save(model).Error
}

var _ commission.ParticipantRepository = (*GormParticipantRepository)(nil)

// GormPaymentRepository implements commission.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Append writes a payout ledger row. Rows are never updated or deleted.
func (r *GormPaymentRepository) Append(ctx context.Context, payment *commission.Payment) error {
	return dbFromContext(ctx, r.db).Create(models.CommissionPaymentModelFromDomain(payment)).Error
}

// SumBySaleGrouped returns paid-so-far per (user, role) bucket of a
// sale, summed from the append-only ledger.
func (r *GormPaymentRepository) SumBySaleGrouped(ctx context.Context, saleID uuid.UUID) (map[commission.ScaleKey]decimal.Decimal, error) {
	type row struct {
		UserID   uuid.UUID
		RoleName string
		Total    decimal.Decimal
	}

	var rows []row
	if err := dbFromContext(ctx, r.db).
		Model(&models.CommissionPaymentModel{}).
		Select("commission_participants.user_id, commission_participants.role_name, COALESCE(SUM(commission_payments.amount), 0) AS total").
		Joins("JOIN commission_participants ON commission_participants.id = commission_payments.participant_id").
		Where("commission_participants.sale_id = ?", saleID).
		Group("commission_participants.user_id, commission_participants.role_name").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make(map[commission.ScaleKey]decimal.Decimal, len(rows))
	for _, r := range rows {
		sums[commission.ScaleKey{UserID: r.UserID, RoleName: r.RoleName}] = r.Total
	}
	return sums, nil
}

// CountBySale counts a sale's payout rows
func (r *GormPaymentRepository) CountBySale(ctx context.Context, saleID uuid.UUID) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).
		Model(&models.CommissionPaymentModel{}).
		Joins("JOIN commission_participants ON commission_participants.id = commission_payments.participant_id").
		Where("commission_participants.sale_id = ?", saleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

var _ commission.PaymentRepository = (*GormPaymentRepository)(nil)
