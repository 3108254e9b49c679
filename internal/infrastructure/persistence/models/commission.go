package models

import (
	"time"

	"github.com/casaverde/backoffice/internal/domain/commission"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CommissionScaleModel is the persistence model for commission scales.
type CommissionScaleModel struct {
	BaseModel
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_scales_sale_role,priority:1"`
	UserID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	RoleName   string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_scales_sale_role,priority:2"`
	Percentage decimal.Decimal `gorm:"type:decimal(8,4);not null"`
}

// TableName returns the table name for GORM
func (CommissionScaleModel) TableName() string {
	return "commission_scales"
}

// ToDomain converts the persistence model to a domain Scale.
func (m *CommissionScaleModel) ToDomain() commission.Scale {
	return commission.Scale{
		BaseEntity: m.BaseModel.ToDomain(),
		SaleID:     m.SaleID,
		UserID:     m.UserID,
		RoleName:   m.RoleName,
		Percentage: m.Percentage,
	}
}

// CommissionParticipantModel is the persistence model for payout participants.
type CommissionParticipantModel struct {
	BaseModel
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_participants_sale_user_role,priority:1"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_participants_sale_user_role,priority:2"`
	RoleName        string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_participants_sale_user_role,priority:3"`
	Percentage      decimal.Decimal `gorm:"type:decimal(8,4);not null"`
	CommissionTotal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (CommissionParticipantModel) TableName() string {
	return "commission_participants"
}

// ToDomain converts the persistence model to a domain Participant entity.
func (m *CommissionParticipantModel) ToDomain() *commission.Participant {
	return &commission.Participant{
		BaseEntity:      m.BaseModel.ToDomain(),
		SaleID:          m.SaleID,
		UserID:          m.UserID,
		RoleName:        m.RoleName,
		Percentage:      m.Percentage,
		CommissionTotal: m.CommissionTotal,
	}
}

// FromDomain populates the persistence model from a domain Participant entity.
func (m *CommissionParticipantModel) FromDomain(p *commission.Participant) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SaleID = p.SaleID
	m.UserID = p.UserID
	m.RoleName = p.RoleName
	m.Percentage = p.Percentage
	m.CommissionTotal = p.CommissionTotal
}

// CommissionPaymentModel is the persistence model for the append-only payout ledger.
type CommissionPaymentModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ParticipantID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Trigger       string          `gorm:"type:varchar(100);not null"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (CommissionPaymentModel) TableName() string {
	return "commission_payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *CommissionPaymentModel) ToDomain() commission.Payment {
	return commission.Payment{
		ID:            m.ID,
		ParticipantID: m.ParticipantID,
		Amount:        m.Amount,
		Trigger:       m.Trigger,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
}

// CommissionPaymentModelFromDomain creates a new persistence model from a domain Payment.
func CommissionPaymentModelFromDomain(p *commission.Payment) *CommissionPaymentModel {
	return &CommissionPaymentModel{
		ID:            p.ID,
		ParticipantID: p.ParticipantID,
		Amount:        p.Amount,
		Trigger:       p.Trigger,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     p.CreatedAt,
	}
}
