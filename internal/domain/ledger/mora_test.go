package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dateAt(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testItem(n int, dueDate time.Time, capital, interest string) ScheduleItem {
	cap := decimal.RequireFromString(capital)
	intr := decimal.RequireFromString(interest)
	return ScheduleItem{
		ID:                uuid.New(),
		SaleID:            uuid.New(),
		N:                 n,
		InstallmentNumber: n,
		DueDate:           dueDate,
		TotalValue:        cap.Add(intr),
		Capital:           cap,
		Interest:          intr,
	}
}

func TestCalculateMora(t *testing.T) {
	cfg := MoraConfig{GraceDays: 5, MonthlyRate: decimal.RequireFromString("0.015")}

	t.Run("zero on or before grace deadline", func(t *testing.T) {
		item := testItem(1, dateAt(2024, 1, 15), "1200.00", "100.00")
		applied := AppliedTotals{}

		mora := CalculateMora(&item, applied, dateAt(2024, 1, 20), cfg)
		assert.True(t, mora.IsZero(), "deadline day carries no mora")

		mora = CalculateMora(&item, applied, dateAt(2024, 1, 10), cfg)
		assert.True(t, mora.IsZero())
	})

	t.Run("accrues per day past the deadline", func(t *testing.T) {
		item := testItem(1, dateAt(2024, 1, 15), "1200.00", "100.00")
		applied := AppliedTotals{}

		// 1200 * 0.015/30 * 1 = 0.60
		mora := CalculateMora(&item, applied, dateAt(2024, 1, 21), cfg)
		assert.Equal(t, "0.60", mora.StringFixed(2))

		// 50 days late
		mora = CalculateMora(&item, applied, dateAt(2024, 3, 10), cfg)
		assert.Equal(t, "30.00", mora.StringFixed(2))
	})

	t.Run("zero when capital fully settled", func(t *testing.T) {
		item := testItem(1, dateAt(2024, 1, 15), "1200.00", "100.00")
		applied := AppliedTotals{}
		applied.Add(item.ID, ConceptCapital, decimal.RequireFromString("1200.00"))

		mora := CalculateMora(&item, applied, dateAt(2024, 3, 10), cfg)
		assert.True(t, mora.IsZero())
	})

	t.Run("uses remaining capital only", func(t *testing.T) {
		item := testItem(1, dateAt(2024, 1, 15), "1200.00", "100.00")
		applied := AppliedTotals{}
		applied.Add(item.ID, ConceptCapital, decimal.RequireFromString("600.00"))

		// 600 * 0.0005 * 50 = 15.00
		mora := CalculateMora(&item, applied, dateAt(2024, 3, 10), cfg)
		assert.Equal(t, "15.00", mora.StringFixed(2))
	})

	t.Run("rounds half up to two decimals", func(t *testing.T) {
		item := testItem(1, dateAt(2024, 1, 15), "1000.00", "0.00")
		applied := AppliedTotals{}

		// 1000 * 0.015/30 * 3 = 1.50; odd capital forces a rounding case
		oddItem := testItem(1, dateAt(2024, 1, 15), "1234.56", "0.00")
		mora := CalculateMora(&oddItem, applied, dateAt(2024, 1, 23), cfg)
		// 1234.56 * 0.0005 * 3 = 1.85184 -> 1.85
		assert.Equal(t, "1.85", mora.StringFixed(2))

		mora = CalculateMora(&item, applied, dateAt(2024, 1, 23), cfg)
		assert.Equal(t, "1.50", mora.StringFixed(2))
	})
}
