package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receipt domain errors
var (
	ErrReceiptInvalidAmount = shared.NewDomainError("RECEIPT_INVALID_AMOUNT", "Receipt amount must be positive")
	ErrReceiptMissingSale   = shared.NewDomainError("RECEIPT_MISSING_SALE", "Receipt must reference a sale")
	ErrReceiptMissingDate   = shared.NewDomainError("RECEIPT_MISSING_DATE", "Receipt must carry a payment date")
)

// Receipt is a recorded collection against a sale. Its effect on the
// schedule lives entirely in its applications, which are rebuilt from
// scratch on every reallocation.
type Receipt struct {
	shared.BaseAggregateRoot
	SaleID          uuid.UUID
	Number          string
	Amount          decimal.Decimal
	DatePaid        time.Time
	DateRegistered  time.Time
	PaymentMethodID *uuid.UUID
	EvidenceURL     string
	FileHash        string
	Notes           string
	Surplus         decimal.Decimal
	CreatedBy       *uuid.UUID
}

// NewReceipt creates a receipt after validating its invariants.
// Amounts are normalized to two decimal places.
func NewReceipt(saleID uuid.UUID, amount decimal.Decimal, datePaid time.Time) (*Receipt, error) {
	if saleID == uuid.Nil {
		return nil, ErrReceiptMissingSale
	}
	if !amount.IsPositive() {
		return nil, ErrReceiptInvalidAmount
	}
	if datePaid.IsZero() {
		return nil, ErrReceiptMissingDate
	}
	return &Receipt{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SaleID:            saleID,
		Number:            newReceiptNumber(datePaid),
		Amount:            amount.Round(2),
		DatePaid:          datePaid,
		DateRegistered:    time.Now(),
		Surplus:           decimal.Zero,
	}, nil
}

// newReceiptNumber builds the human-facing receipt number handed to the
// payer. The date prefix keeps accounting exports sortable; the random
// suffix makes collisions implausible without a database sequence.
func newReceiptNumber(datePaid time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("RB-%s-%s", datePaid.Format("20060102"), suffix)
}

// SetSurplus records the unallocated remainder after a waterfall run.
func (r *Receipt) SetSurplus(surplus decimal.Decimal) {
	r.Surplus = surplus.Round(2)
	r.Touch()
}

// Application is one settlement line of a receipt against a schedule
// item bucket. Rows are owned by their receipt and replaced wholesale
// whenever the receipt is reallocated.
type Application struct {
	ID             uuid.UUID
	ReceiptID      uuid.UUID
	ScheduleItemID uuid.UUID
	Concept        Concept
	Amount         decimal.Decimal
	CreatedAt      time.Time
}

// NewApplication builds an application line for a receipt.
func NewApplication(receiptID uuid.UUID, alloc Allocation) Application {
	return Application{
		ID:             uuid.New(),
		ReceiptID:      receiptID,
		ScheduleItemID: alloc.ScheduleItemID,
		Concept:        alloc.Concept,
		Amount:         alloc.Amount.Round(2),
		CreatedAt:      time.Now(),
	}
}
