package models

import (
	"time"

	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleModel is the persistence model for the Sale aggregate root.
type SaleModel struct {
	AggregateModel
	ProjectID      uuid.UUID        `gorm:"type:uuid;not null;index"`
	ContractNumber string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	ClientName     string           `gorm:"type:varchar(200);not null"`
	FinalPrice     *decimal.Decimal `gorm:"type:decimal(18,2)"`
	Status         sales.SaleStatus `gorm:"type:varchar(10);not null;index"`
}

// TableName returns the table name for GORM
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the persistence model to a domain Sale entity.
func (m *SaleModel) ToDomain() *sales.Sale {
	return &sales.Sale{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProjectID:         m.ProjectID,
		ContractNumber:    m.ContractNumber,
		ClientName:        m.ClientName,
		FinalPrice:        m.FinalPrice,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Sale entity.
func (m *SaleModel) FromDomain(s *sales.Sale) {
	m.FromDomainAggregateRoot(s.BaseAggregateRoot)
	m.ProjectID = s.ProjectID
	m.ContractNumber = s.ContractNumber
	m.ClientName = s.ClientName
	m.FinalPrice = s.FinalPrice
	m.Status = s.Status
}

// SaleModelFromDomain creates a new persistence model from a domain Sale.
func SaleModelFromDomain(s *sales.Sale) *SaleModel {
	m := &SaleModel{}
	m.FromDomain(s)
	return m
}

// ProjectModel is the persistence model for real-estate projects.
type ProjectModel struct {
	BaseModel
	Name             string          `gorm:"type:varchar(200);not null"`
	PaymentGraceDays int             `gorm:"not null;default:0"`
	MoraRateMonthly  decimal.Decimal `gorm:"type:decimal(8,6);not null;default:0"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project entity.
func (m *ProjectModel) ToDomain() *sales.Project {
	return &sales.Project{
		BaseEntity:       m.BaseModel.ToDomain(),
		Name:             m.Name,
		PaymentGraceDays: m.PaymentGraceDays,
		MoraRateMonthly:  m.MoraRateMonthly,
	}
}

// FromDomain populates the persistence model from a domain Project entity.
func (m *ProjectModel) FromDomain(p *sales.Project) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Name = p.Name
	m.PaymentGraceDays = p.PaymentGraceDays
	m.MoraRateMonthly = p.MoraRateMonthly
}

// PaymentPlanModel is the persistence model for financing agreements.
type PaymentPlanModel struct {
	BaseModel
	SaleID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProjectID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	PriceTotal decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	IsActive   bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PaymentPlanModel) TableName() string {
	return "payment_plans"
}

// ToDomain converts the persistence model to a domain PaymentPlan entity.
func (m *PaymentPlanModel) ToDomain() *sales.PaymentPlan {
	return &sales.PaymentPlan{
		BaseEntity: m.BaseModel.ToDomain(),
		SaleID:     m.SaleID,
		ProjectID:  m.ProjectID,
		PriceTotal: m.PriceTotal,
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain PaymentPlan entity.
func (m *PaymentPlanModel) FromDomain(p *sales.PaymentPlan) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.SaleID = p.SaleID
	m.ProjectID = p.ProjectID
	m.PriceTotal = p.PriceTotal
	m.IsActive = p.IsActive
}

// SaleLogModel is the persistence model for the append-only sale audit log.
type SaleLogModel struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Action    sales.LogAction `gorm:"type:varchar(30);not null;index"`
	Message   string          `gorm:"type:text;not null"`
	Metadata  JSONMap         `gorm:"type:jsonb;default:'{}'"`
	CreatedBy *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (SaleLogModel) TableName() string {
	return "sale_logs"
}

// ToDomain converts the persistence model to a domain SaleLog entity.
func (m *SaleLogModel) ToDomain() *sales.SaleLog {
	return &sales.SaleLog{
		ID:        m.ID,
		SaleID:    m.SaleID,
		Action:    m.Action,
		Message:   m.Message,
		Metadata:  m.Metadata,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

// SaleLogModelFromDomain creates a new persistence model from a domain SaleLog.
func SaleLogModelFromDomain(l *sales.SaleLog) *SaleLogModel {
	return &SaleLogModel{
		ID:        l.ID,
		SaleID:    l.SaleID,
		Action:    l.Action,
		Message:   l.Message,
		Metadata:  l.Metadata,
		CreatedBy: l.CreatedBy,
		CreatedAt: l.CreatedAt,
	}
}
