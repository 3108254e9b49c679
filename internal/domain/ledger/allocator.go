package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Allocation is one settlement line produced by the waterfall: an amount
// applied to a single (installment, concept) bucket.
type Allocation struct {
	ScheduleItemID uuid.UUID
	Concept        Concept
	Amount         decimal.Decimal
}

// AllocationResult is the outcome of running a payment through the
// waterfall: the settlement lines plus whatever could not be placed.
type AllocationResult struct {
	Allocations []Allocation
	Surplus     decimal.Decimal
}

// Allocate runs the payment waterfall. Items are walked in (n, dueDate)
// order; within each item the buckets settle mora, then interest, then
// capital, each taking min(remaining, pending). Zero-amount lines are
// skipped. Whatever remains after the last item is surplus.
//
// The applied totals must exclude the receipt being (re)allocated so the
// operation stays idempotent under delete-then-recreate.
func Allocate(items []ScheduleItem, applied AppliedTotals, amount decimal.Decimal, datePaid time.Time, cfg MoraConfig) AllocationResult {
	sorted := make([]ScheduleItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].N != sorted[j].N {
			return sorted[i].N < sorted[j].N
		}
		return sorted[i].DueDate.Before(sorted[j].DueDate)
	})

	remaining := amount
	result := AllocationResult{Surplus: decimal.Zero}

	for i := range sorted {
		if !remaining.IsPositive() {
			break
		}
		item := &sorted[i]

		for _, concept := range waterfallOrder {
			if !remaining.IsPositive() {
				break
			}

			pending := pendingFor(item, concept, applied, datePaid, cfg)
			if !pending.IsPositive() {
				continue
			}

			take := decimal.Min(remaining, pending)
			result.Allocations = append(result.Allocations, Allocation{
				ScheduleItemID: item.ID,
				Concept:        concept,
				Amount:         take,
			})
			remaining = remaining.Sub(take)
		}
	}

	if remaining.IsPositive() {
		result.Surplus = remaining
	}
	return result
}

// pendingFor resolves the open balance of one bucket. Mora is computed
// fresh for the payment date and netted against what was already applied.
func pendingFor(item *ScheduleItem, concept Concept, applied AppliedTotals, datePaid time.Time, cfg MoraConfig) decimal.Decimal {
	switch concept {
	case ConceptMora:
		owed := CalculateMora(item, applied, datePaid, cfg)
		pending := owed.Sub(item.PaidMora(applied))
		if pending.IsNegative() {
			return decimal.Zero
		}
		return pending
	case ConceptInterest:
		return item.PendingInterest(applied)
	case ConceptCapital:
		return item.PendingCapital(applied)
	}
	return decimal.Zero
}
