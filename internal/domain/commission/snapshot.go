package commission

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// liquidationBasePercent gates payouts to collection progress: scales
// liquidate in proportion to how much of 20% of the sale value has
// been collected.
var liquidationBasePercent = decimal.RequireFromString("0.20")

var one = decimal.NewFromInt(1)

// ScaleKey identifies a scale's payout bucket within a sale
type ScaleKey struct {
	UserID   uuid.UUID
	RoleName string
}

// ScaleStatus is the computed payout state of one scale
type ScaleStatus struct {
	Scale              Scale
	CommissionTotal    decimal.Decimal
	LiquidableToDate   decimal.Decimal
	AlreadyLiquidated  decimal.Decimal
	PendingToLiquidate decimal.Decimal
}

// Snapshot is the liquidation state of a sale at a point in time
type Snapshot struct {
	SaleID           uuid.UUID
	SaleTotal        decimal.Decimal
	TotalPaid        decimal.Decimal
	LiquidationBase  decimal.Decimal
	LiquidationRatio decimal.Decimal
	Scales           []ScaleStatus
	TotalPending     decimal.Decimal
}

// HasPending reports whether any scale still has money to liquidate
func (s *Snapshot) HasPending() bool {
	return s.TotalPending.IsPositive()
}

// ComputeSnapshot derives the liquidation state of a sale. The ratio
// only accrues for approved sales and is capped at 1; every monetary
// figure rounds half up to two decimals, the ratio to four.
func ComputeSnapshot(saleID uuid.UUID, saleTotal decimal.Decimal, approved bool, totalPaid decimal.Decimal, scales []Scale, alreadyPaid map[ScaleKey]decimal.Decimal) Snapshot {
	saleTotal = saleTotal.Round(2)
	base := saleTotal.Mul(liquidationBasePercent).Round(2)

	ratio := decimal.Zero
	if approved && base.IsPositive() {
		ratio = decimal.Min(totalPaid.Div(base), one).Round(4)
	}

	snapshot := Snapshot{
		SaleID:           saleID,
		SaleTotal:        saleTotal,
		TotalPaid:        totalPaid.Round(2),
		LiquidationBase:  base,
		LiquidationRatio: ratio,
		Scales:           make([]ScaleStatus, 0, len(scales)),
		TotalPending:     decimal.Zero,
	}

	for _, scale := range scales {
		commissionTotal := saleTotal.Mul(scale.Percentage).Div(decimal.NewFromInt(100)).Round(2)
		liquidable := commissionTotal.Mul(ratio).Round(2)

		already := alreadyPaid[ScaleKey{UserID: scale.UserID, RoleName: scale.RoleName}]
		pending := liquidable.Sub(already)
		if pending.IsNegative() {
			pending = decimal.Zero
		}
		pending = pending.Round(2)

		snapshot.Scales = append(snapshot.Scales, ScaleStatus{
			Scale:              scale,
			CommissionTotal:    commissionTotal,
			LiquidableToDate:   liquidable,
			AlreadyLiquidated:  already.Round(2),
			PendingToLiquidate: pending,
		})
		snapshot.TotalPending = snapshot.TotalPending.Add(pending)
	}

	return snapshot
}
