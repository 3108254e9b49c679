package sales

import (
	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Project is a real-estate development. It carries the payment
// parameters every sale under it settles with.
type Project struct {
	shared.BaseEntity
	Name string
	// PaymentGraceDays shifts the mora deadline past each due date.
	PaymentGraceDays int
	// MoraRateMonthly is the simple monthly late-interest fraction.
	MoraRateMonthly decimal.Decimal
}

// MoraConfig materializes the project's late-interest parameters.
func (p *Project) MoraConfig() ledger.MoraConfig {
	return ledger.MoraConfig{
		GraceDays:   p.PaymentGraceDays,
		MonthlyRate: p.MoraRateMonthly,
	}
}
