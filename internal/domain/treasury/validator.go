package treasury

import (
	"sort"
	"time"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

const (
	// maxFutureInstallments is how many not-yet-due installments a
	// payment may touch before it is flagged for review.
	maxFutureInstallments = 2
)

// maxFutureShare is the fraction of a payment allowed to land on
// not-yet-due installments before it is flagged for review.
var maxFutureShare = decimal.RequireFromString("0.70")

// EvaluateRules runs the automatic validation rules for a reported
// payment against the sale's schedule. Mora is deliberately left out of
// the simulation: it only decides where money would land, not how much
// is owed. A nil paymentDate means the report carried no date; without
// one no installment counts as future, so the spread rules are skipped.
func EvaluateRules(items []ledger.ScheduleItem, applications []ledger.Application, amount decimal.Decimal, paymentDate *time.Time) []Alert {
	var alerts []Alert

	if len(items) == 0 || !amount.IsPositive() {
		return append(alerts, NewAlert(AlertInconsistentValue))
	}

	applied := ledger.NewAppliedTotals(applications)

	pendingCapital := decimal.Zero
	for i := range items {
		pendingCapital = pendingCapital.Add(items[i].PendingCapital(applied))
	}
	if amount.GreaterThan(pendingCapital) {
		alerts = append(alerts, NewAlert(AlertExceedsPending))
	}

	if paymentDate == nil {
		return alerts
	}

	futureCount, futureApplied := simulateSpread(items, applied, amount, *paymentDate)
	if futureCount > maxFutureInstallments {
		alerts = append(alerts, NewAlert(AlertTooManyFutureItems))
	}
	if amount.IsPositive() {
		share := futureApplied.Div(amount)
		if share.GreaterThan(maxFutureShare) {
			alerts = append(alerts, NewAlert(AlertExcessiveFutureShare))
		}
	}

	return alerts
}

// simulateSpread walks the schedule in due-date order applying the
// amount against capital plus interest pendings, and reports how many
// not-yet-due installments get touched and how much lands on them.
func simulateSpread(items []ledger.ScheduleItem, applied ledger.AppliedTotals, amount decimal.Decimal, paymentDate time.Time) (int, decimal.Decimal) {
	sorted := make([]ledger.ScheduleItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].DueDate.Equal(sorted[j].DueDate) {
			return sorted[i].DueDate.Before(sorted[j].DueDate)
		}
		return sorted[i].N < sorted[j].N
	})

	remaining := amount
	futureCount := 0
	futureApplied := decimal.Zero

	for i := range sorted {
		if !remaining.IsPositive() {
			break
		}
		item := &sorted[i]

		pending := item.PendingCapital(applied).Add(item.PendingInterest(applied))
		if !pending.IsPositive() {
			continue
		}

		take := decimal.Min(remaining, pending)
		remaining = remaining.Sub(take)

		if !item.IsDue(paymentDate) {
			futureCount++
			futureApplied = futureApplied.Add(take)
		}
	}

	return futureCount, futureApplied
}
