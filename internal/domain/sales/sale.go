package sales

import (
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleStatus is the commercial state of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PEND"
	SaleStatusApproved  SaleStatus = "APP"
	SaleStatusDesisted  SaleStatus = "DES"
	SaleStatusAnnulled  SaleStatus = "ANU"
	SaleStatusCancelled SaleStatus = "CAN"
)

// IsValid checks if the status is a known value
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusApproved, SaleStatusDesisted, SaleStatusAnnulled, SaleStatusCancelled:
		return true
	}
	return false
}

// Sale is the commercial record payments and commissions hang off.
// It is owned by the sales back office; this service only reads it and
// appends audit entries.
type Sale struct {
	shared.BaseAggregateRoot
	ProjectID      uuid.UUID
	ContractNumber string
	ClientName     string
	FinalPrice     *decimal.Decimal
	Status         SaleStatus
}

// IsApproved reports whether the sale is in the APP state. Commission
// accrual only runs for approved sales.
func (s *Sale) IsApproved() bool {
	return s.Status == SaleStatusApproved
}

// PaymentPlan is the financing agreement of a sale. Its total price is
// the preferred base for commission math; the sale's final price is the
// fallback when no plan exists.
type PaymentPlan struct {
	shared.BaseEntity
	SaleID     uuid.UUID
	ProjectID  uuid.UUID
	PriceTotal decimal.Decimal
	IsActive   bool
}

// TotalValue resolves the commission base of a sale: the plan total
// when a plan exists, otherwise the sale's final price, otherwise zero.
func TotalValue(sale *Sale, plan *PaymentPlan) decimal.Decimal {
	if plan != nil && plan.PriceTotal.IsPositive() {
		return plan.PriceTotal
	}
	if sale.FinalPrice != nil {
		return *sale.FinalPrice
	}
	return decimal.Zero
}
