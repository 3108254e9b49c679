package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/casaverde/backoffice/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TreasuryAlerts stores a request's alert list as a jsonb column.
type TreasuryAlerts []treasury.Alert

// Value implements driver.Valuer
func (a TreasuryAlerts) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner
func (a *TreasuryAlerts) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into TreasuryAlerts", value)
	}
}

// TreasuryRequestModel is the persistence model for the treasury Request aggregate root.
type TreasuryRequestModel struct {
	AggregateModel
	ExternalID       string                     `gorm:"type:varchar(50);not null;uniqueIndex"`
	SaleID           *uuid.UUID                 `gorm:"type:uuid;index"`
	ContractNumber   string                     `gorm:"type:varchar(50)"`
	ClientName       string                     `gorm:"type:varchar(200)"`
	ProjectName      string                     `gorm:"type:varchar(200)"`
	AdvisorName      string                     `gorm:"type:varchar(200)"`
	AmountReported   decimal.Decimal            `gorm:"type:decimal(18,2);not null"`
	PaymentDate      *time.Time                 `gorm:"index"`
	SupportURL       string                     `gorm:"type:varchar(500)"`
	Source           string                     `gorm:"type:varchar(50)"`
	AbonoCapital     bool                       `gorm:"not null;default:false"`
	CondonacionMora  bool                       `gorm:"not null;default:false"`
	Status           treasury.Status            `gorm:"type:varchar(20);not null;index"`
	ValidationResult treasury.ValidationResult  `gorm:"type:varchar(20)"`
	Alerts           TreasuryAlerts             `gorm:"type:jsonb;default:'[]'"`
	FormToken        string                     `gorm:"type:varchar(64)"`
	ReviewReason     string                     `gorm:"type:varchar(500)"`
	ReceiptID        *uuid.UUID                 `gorm:"type:uuid;index"`
	IdempotencyKey   string                     `gorm:"type:varchar(120)"`
	LastValidatedAt  *time.Time
	CreatedBy        *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (TreasuryRequestModel) TableName() string {
	return "treasury_requests"
}

// ToDomain converts the persistence model to a domain Request entity.
func (m *TreasuryRequestModel) ToDomain() *treasury.Request {
	return &treasury.Request{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ExternalID:        m.ExternalID,
		SaleID:            m.SaleID,
		ContractNumber:    m.ContractNumber,
		ClientName:        m.ClientName,
		ProjectName:       m.ProjectName,
		AdvisorName:       m.AdvisorName,
		AmountReported:    m.AmountReported,
		PaymentDate:       m.PaymentDate,
		SupportURL:        m.SupportURL,
		Source:            m.Source,
		AbonoCapital:      m.AbonoCapital,
		CondonacionMora:   m.CondonacionMora,
		Status:            m.Status,
		ValidationResult:  m.ValidationResult,
		Alerts:            m.Alerts,
		FormToken:         m.FormToken,
		ReviewReason:      m.ReviewReason,
		ReceiptID:         m.ReceiptID,
		IdempotencyKey:    m.IdempotencyKey,
		LastValidatedAt:   m.LastValidatedAt,
		CreatedBy:         m.CreatedBy,
	}
}

// FromDomain populates the persistence model from a domain Request entity.
func (m *TreasuryRequestModel) FromDomain(r *treasury.Request) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.ExternalID = r.ExternalID
	m.SaleID = r.SaleID
	m.ContractNumber = r.ContractNumber
	m.ClientName = r.ClientName
	m.ProjectName = r.ProjectName
	m.AdvisorName = r.AdvisorName
	m.AmountReported = r.AmountReported
	m.PaymentDate = r.PaymentDate
	m.SupportURL = r.SupportURL
	m.Source = r.Source
	m.AbonoCapital = r.AbonoCapital
	m.CondonacionMora = r.CondonacionMora
	m.Status = r.Status
	m.ValidationResult = r.ValidationResult
	m.Alerts = r.Alerts
	m.FormToken = r.FormToken
	m.ReviewReason = r.ReviewReason
	m.ReceiptID = r.ReceiptID
	m.IdempotencyKey = r.IdempotencyKey
	m.LastValidatedAt = r.LastValidatedAt
	m.CreatedBy = r.CreatedBy
}

// TreasuryRequestModelFromDomain creates a new persistence model from a domain Request.
func TreasuryRequestModelFromDomain(r *treasury.Request) *TreasuryRequestModel {
	m := &TreasuryRequestModel{}
	m.FromDomain(r)
	return m
}
