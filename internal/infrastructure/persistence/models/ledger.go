package models

import (
	"time"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleItemModel is the persistence model for amortization schedule rows.
type ScheduleItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	N                 int             `gorm:"not null"`
	InstallmentNumber int             `gorm:"not null"`
	DueDate           time.Time       `gorm:"not null;index"`
	Label             string          `gorm:"type:varchar(100)"`
	TotalValue        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Capital           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Interest          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Balance           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
}

// TableName returns the table name for GORM
func (ScheduleItemModel) TableName() string {
	return "schedule_items"
}

// ToDomain converts the persistence model to a domain ScheduleItem.
func (m *ScheduleItemModel) ToDomain() ledger.ScheduleItem {
	return ledger.ScheduleItem{
		ID:                m.ID,
		SaleID:            m.SaleID,
		N:                 m.N,
		InstallmentNumber: m.InstallmentNumber,
		DueDate:           m.DueDate,
		Label:             m.Label,
		TotalValue:        m.TotalValue,
		Capital:           m.Capital,
		Interest:          m.Interest,
		Balance:           m.Balance,
	}
}

// ReceiptModel is the persistence model for the Receipt aggregate root.
type ReceiptModel struct {
	AggregateModel
	SaleID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number          string          `gorm:"type:varchar(40);not null;index"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DatePaid        time.Time       `gorm:"not null;index"`
	DateRegistered  time.Time       `gorm:"not null"`
	PaymentMethodID *uuid.UUID      `gorm:"type:uuid"`
	EvidenceURL     string          `gorm:"type:varchar(500)"`
	FileHash        string          `gorm:"type:varchar(64);index:idx_receipts_sale_hash"`
	Notes           string          `gorm:"type:text"`
	Surplus         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ReceiptModel) TableName() string {
	return "receipts"
}

// ToDomain converts the persistence model to a domain Receipt entity.
func (m *ReceiptModel) ToDomain() *ledger.Receipt {
	return &ledger.Receipt{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		SaleID:            m.SaleID,
		Number:            m.Number,
		Amount:            m.Amount,
		DatePaid:          m.DatePaid,
		DateRegistered:    m.DateRegistered,
		PaymentMethodID:   m.PaymentMethodID,
		EvidenceURL:       m.EvidenceURL,
		FileHash:          m.FileHash,
		Notes:             m.Notes,
		Surplus:           m.Surplus,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Receipt entity.
func (m *ReceiptModel) FromDomain(r *ledger.Receipt) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.SaleID = r.SaleID
	m.Number = r.Number
	m.Amount = r.Amount
	m.DatePaid = r.DatePaid
	m.DateRegistered = r.DateRegistered
	m.PaymentMethodID = r.PaymentMethodID
	m.EvidenceURL = r.EvidenceURL
	m.FileHash = r.FileHash
	m.Notes = r.Notes
	m.Surplus = r.Surplus
	m.CreatedBy = r.CreatedBy
}

// ReceiptModelFromDomain creates a new persistence model from a domain Receipt.
func ReceiptModelFromDomain(r *ledger.Receipt) *ReceiptModel {
	m := &ReceiptModel{}
	m.FromDomain(r)
	return m
}

// ApplicationModel is the persistence model for receipt settlement lines.
type ApplicationModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ScheduleItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Concept        ledger.Concept  `gorm:"type:varchar(10);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ApplicationModel) TableName() string {
	return "receipt_applications"
}

// ToDomain converts the persistence model to a domain Application.
func (m *ApplicationModel) ToDomain() ledger.Application {
	return ledger.Application{
		ID:             m.ID,
		ReceiptID:      m.ReceiptID,
		ScheduleItemID: m.ScheduleItemID,
		Concept:        m.Concept,
		Amount:         m.Amount,
		CreatedAt:      m.CreatedAt,
	}
}

// ApplicationModelFromDomain creates a new persistence model from a domain Application.
func ApplicationModelFromDomain(a ledger.Application) *ApplicationModel {
	return &ApplicationModel{
		ID:             a.ID,
		ReceiptID:      a.ReceiptID,
		ScheduleItemID: a.ScheduleItemID,
		Concept:        a.Concept,
		Amount:         a.Amount,
		CreatedAt:      a.CreatedAt,
	}
}

// PaymentMethodModel is the persistence model for per-project collection channels.
type PaymentMethodModel struct {
	BaseModel
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"type:varchar(100);not null"`
	IsActive  bool      `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// ToDomain converts the persistence model to a domain PaymentMethod.
func (m *PaymentMethodModel) ToDomain() *ledger.PaymentMethod {
	return &ledger.PaymentMethod{
		BaseEntity: m.BaseModel.ToDomain(),
		ProjectID:  m.ProjectID,
		Name:       m.Name,
		IsActive:   m.IsActive,
	}
}
