package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// MoraConfig carries the late-interest parameters of a project. It is
// passed explicitly to every calculation; there is no ambient default.
type MoraConfig struct {
	// GraceDays shifts the mora deadline past the due date.
	GraceDays int
	// MonthlyRate is the simple monthly late-interest rate as a
	// fraction (0.015 means 1.5% per month).
	MonthlyRate decimal.Decimal
}

var daysPerMonth = decimal.NewFromInt(30)

// CalculateMora computes the simple, non-compounding late interest owed
// on an installment as of datePaid:
//
//	round(pendingCapital * monthlyRate/30 * daysLate, 2)
//
// Zero when the payment lands on or before dueDate + graceDays. The
// amount is recomputed from scratch on every call; nothing is accrued.
func CalculateMora(item *ScheduleItem, applied AppliedTotals, datePaid time.Time, cfg MoraConfig) decimal.Decimal {
	deadline := item.DueDate.AddDate(0, 0, cfg.GraceDays)
	if !datePaid.After(deadline) {
		return decimal.Zero
	}

	pendingCapital := item.PendingCapital(applied)
	if !pendingCapital.IsPositive() {
		return decimal.Zero
	}

	daysLate := int64(datePaid.Sub(deadline).Hours() / 24)
	if daysLate <= 0 {
		return decimal.Zero
	}

	dailyRate := cfg.MonthlyRate.Div(daysPerMonth)
	return pendingCapital.Mul(dailyRate).Mul(decimal.NewFromInt(daysLate)).Round(2)
}
