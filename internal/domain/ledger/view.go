package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the read model for one schedule row: the immutable plan
// figures next to what has been settled against them.
type ItemStatus struct {
	Item            ScheduleItem
	PaidCapital     decimal.Decimal
	PaidInterest    decimal.Decimal
	PaidMora        decimal.Decimal
	PendingCapital  decimal.Decimal
	PendingInterest decimal.Decimal
	MoraToDate      decimal.Decimal
	FullyPaid       bool
}

// ScheduleView is the full ledger view of a sale's schedule as of a date.
type ScheduleView struct {
	AsOf            time.Time
	Items           []ItemStatus
	PendingCapital  decimal.Decimal
	PendingInterest decimal.Decimal
	MoraToDate      decimal.Decimal
}

// BuildScheduleView derives the per-item and aggregate balances of a
// schedule from its applications, with mora computed as of asOf.
func BuildScheduleView(items []ScheduleItem, applications []Application, asOf time.Time, cfg MoraConfig) ScheduleView {
	applied := NewAppliedTotals(applications)

	view := ScheduleView{
		AsOf:            asOf,
		Items:           make([]ItemStatus, 0, len(items)),
		PendingCapital:  decimal.Zero,
		PendingInterest: decimal.Zero,
		MoraToDate:      decimal.Zero,
	}

	for i := range items {
		item := items[i]
		status := ItemStatus{
			Item:            item,
			PaidCapital:     applied.Get(item.ID, ConceptCapital),
			PaidInterest:    applied.Get(item.ID, ConceptInterest),
			PaidMora:        applied.Get(item.ID, ConceptMora),
			PendingCapital:  item.PendingCapital(applied),
			PendingInterest: item.PendingInterest(applied),
			MoraToDate:      CalculateMora(&item, applied, asOf, cfg),
			FullyPaid:       item.IsFullyPaid(applied),
		}
		view.Items = append(view.Items, status)
		view.PendingCapital = view.PendingCapital.Add(status.PendingCapital)
		view.PendingInterest = view.PendingInterest.Add(status.PendingInterest)
		view.MoraToDate = view.MoraToDate.Add(status.MoraToDate)
	}

	return view
}

// PendingCapitalForSale sums open capital across a schedule, the figure
// the treasury blocking rule compares payments against.
func PendingCapitalForSale(items []ScheduleItem, applications []Application) decimal.Decimal {
	applied := NewAppliedTotals(applications)
	total := decimal.Zero
	for i := range items {
		total = total.Add(items[i].PendingCapital(applied))
	}
	return total
}
