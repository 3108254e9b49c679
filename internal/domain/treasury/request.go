package treasury

import (
	"time"

	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Treasury domain errors
var (
	ErrInvalidTransition   = shared.NewDomainError("TREASURY_INVALID_TRANSITION", "Request state does not allow this transition")
	ErrRequestNotValidated = shared.NewDomainError("TREASURY_NOT_VALIDATED", "Request must validate clean before a receipt can be generated")
	ErrRequestBlocked      = shared.NewDomainError("TREASURY_BLOCKED", "Request is blocked and cannot produce a receipt")
	ErrFormTokenMismatch   = shared.NewDomainError("TREASURY_FORM_TOKEN_MISMATCH", "Form token is missing or does not match")
	ErrMissingExternalID   = shared.NewDomainError("TREASURY_MISSING_EXTERNAL_ID", "Request must carry an external id")
	ErrInvalidAmount       = shared.NewDomainError("TREASURY_INVALID_AMOUNT", "Reported amount must be positive")
)

// Status is the workflow state of a treasury request
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusValidated      Status = "VALIDATED"
	StatusRequiresManual Status = "REQUIRES_MANUAL"
	StatusBlocked        Status = "BLOCKED"
	StatusReceiptCreated Status = "RECEIPT_CREATED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusValidated, StatusRequiresManual, StatusBlocked, StatusReceiptCreated:
		return true
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions
func (s Status) IsTerminal() bool {
	return s == StatusReceiptCreated
}

// CanTransitionTo is the single transition guard for the workflow.
// Validation outcomes may be revisited any number of times until a
// receipt is created; RECEIPT_CREATED is terminal.
func (s Status) CanTransitionTo(target Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch target {
	case StatusValidated, StatusRequiresManual, StatusBlocked:
		return true
	case StatusReceiptCreated:
		return s == StatusValidated
	}
	return false
}

// Request is a collection notice reported by the external payments
// front end, waiting to be validated and turned into a receipt.
type Request struct {
	shared.BaseAggregateRoot
	// ExternalID is the reporter's request number (numsolicitud);
	// creation is idempotent per external id.
	ExternalID       string
	SaleID           *uuid.UUID
	ContractNumber   string
	ClientName       string
	ProjectName      string
	AdvisorName      string
	AmountReported   decimal.Decimal
	PaymentDate      *time.Time
	SupportURL       string
	Source           string
	// AbonoCapital marks the payment as a direct capital contribution
	// reported by the advisor; CondonacionMora asks for the mora to be
	// waived. Both are operator hints, not automatic behavior.
	AbonoCapital     bool
	CondonacionMora  bool
	Status           Status
	ValidationResult ValidationResult
	Alerts           []Alert
	// FormToken is single use: issued on a clean validation, required
	// and consumed by receipt generation.
	FormToken       string
	ReviewReason    string
	ReceiptID       *uuid.UUID
	IdempotencyKey  string
	LastValidatedAt *time.Time
	CreatedBy       *uuid.UUID
}

// NewRequest creates a pending treasury request.
func NewRequest(externalID string, amount decimal.Decimal) (*Request, error) {
	if externalID == "" {
		return nil, ErrMissingExternalID
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &Request{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ExternalID:        externalID,
		AmountReported:    amount.Round(2),
		Status:            StatusPending,
	}, nil
}

// statusForResult maps a validation result onto the workflow state
func statusForResult(result ValidationResult) Status {
	switch result {
	case ResultBlocked:
		return StatusBlocked
	case ResultAlerts:
		return StatusRequiresManual
	default:
		return StatusValidated
	}
}

// ApplyValidation records a validation run. A clean run arms a fresh
// form token; any other outcome clears it.
func (r *Request) ApplyValidation(alerts []Alert, token string) error {
	result := ClassifyAlerts(alerts)
	target := statusForResult(result)
	if !r.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}

	now := time.Now()
	r.Status = target
	r.ValidationResult = result
	r.Alerts = alerts
	r.LastValidatedAt = &now
	r.UpdatedAt = now

	if result == ResultClean {
		r.FormToken = token
		r.ReviewReason = ""
	} else {
		r.FormToken = ""
	}
	return nil
}

// MarkManual is the operator override that parks a request for human
// review with a free-text reason.
func (r *Request) MarkManual(reason string) error {
	if !r.Status.CanTransitionTo(StatusRequiresManual) {
		return ErrInvalidTransition
	}
	r.Status = StatusRequiresManual
	r.FormToken = ""
	r.ReviewReason = reason
	r.Touch()
	return nil
}

// VerifyFormToken checks the single-use token. A request without an
// armed token always fails; a provided token must match exactly.
func (r *Request) VerifyFormToken(provided string) error {
	if r.FormToken == "" {
		return ErrFormTokenMismatch
	}
	if provided != "" && provided != r.FormToken {
		return ErrFormTokenMismatch
	}
	return nil
}

// AttachReceipt links the generated receipt and closes the workflow.
// The form token is consumed; replays are served from ReceiptID.
func (r *Request) AttachReceipt(receiptID uuid.UUID, idempotencyKey string) error {
	if r.Status == StatusBlocked {
		return ErrRequestBlocked
	}
	if r.Status != StatusValidated || r.ValidationResult != ResultClean {
		return ErrRequestNotValidated
	}
	if !r.Status.CanTransitionTo(StatusReceiptCreated) {
		return ErrInvalidTransition
	}
	r.Status = StatusReceiptCreated
	r.ReceiptID = &receiptID
	r.FormToken = ""
	r.IdempotencyKey = idempotencyKey
	r.Touch()
	return nil
}
