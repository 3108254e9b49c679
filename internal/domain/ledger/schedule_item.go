package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleItem is one row of a sale's amortization schedule. Rows are
// produced by the plan generator and never modified here; payment state
// is always derived by summing applications against them.
type ScheduleItem struct {
	ID                uuid.UUID
	SaleID            uuid.UUID
	N                 int
	InstallmentNumber int
	DueDate           time.Time
	Label             string
	TotalValue        decimal.Decimal
	Capital           decimal.Decimal
	Interest          decimal.Decimal
	Balance           decimal.Decimal
}

// PendingCapital returns the unpaid capital of the item given the
// applied totals, floored at zero.
func (s *ScheduleItem) PendingCapital(applied AppliedTotals) decimal.Decimal {
	pending := s.Capital.Sub(applied.Get(s.ID, ConceptCapital))
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// PendingInterest returns the unpaid interest of the item, floored at zero.
func (s *ScheduleItem) PendingInterest(applied AppliedTotals) decimal.Decimal {
	pending := s.Interest.Sub(applied.Get(s.ID, ConceptInterest))
	if pending.IsNegative() {
		return decimal.Zero
	}
	return pending
}

// PaidMora returns the mora already settled against the item.
func (s *ScheduleItem) PaidMora(applied AppliedTotals) decimal.Decimal {
	return applied.Get(s.ID, ConceptMora)
}

// IsFullyPaid reports whether capital and interest are both settled.
// Mora is open-ended and does not count against completion.
func (s *ScheduleItem) IsFullyPaid(applied AppliedTotals) bool {
	return !s.PendingCapital(applied).IsPositive() && !s.PendingInterest(applied).IsPositive()
}

// IsDue reports whether the item's due date is on or before the given date.
func (s *ScheduleItem) IsDue(at time.Time) bool {
	return !s.DueDate.After(at)
}

// appliedKey indexes applied sums per (item, concept)
type appliedKey struct {
	ItemID  uuid.UUID
	Concept Concept
}

// AppliedTotals holds per-item, per-concept application sums. It is the
// ledger state the allocator and validators work against.
type AppliedTotals map[appliedKey]decimal.Decimal

// NewAppliedTotals builds the index from a list of applications.
func NewAppliedTotals(applications []Application) AppliedTotals {
	totals := make(AppliedTotals, len(applications))
	for _, app := range applications {
		totals.Add(app.ScheduleItemID, app.Concept, app.Amount)
	}
	return totals
}

// Add accumulates an applied amount for the given item and concept.
func (t AppliedTotals) Add(itemID uuid.UUID, concept Concept, amount decimal.Decimal) {
	key := appliedKey{ItemID: itemID, Concept: concept}
	t[key] = t[key].Add(amount)
}

// Get returns the applied sum for the given item and concept.
func (t AppliedTotals) Get(itemID uuid.UUID, concept Concept) decimal.Decimal {
	return t[appliedKey{ItemID: itemID, Concept: concept}]
}
