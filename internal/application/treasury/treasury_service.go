package treasury

import (
	"context"
	"fmt"
	"time"

	ledgerapp "github.com/casaverde/backoffice/internal/application/ledger"
	"github.com/casaverde/backoffice/internal/domain/identity"
	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/casaverde/backoffice/internal/domain/treasury"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service errors
var (
	ErrRequestNotFound   = shared.NewDomainError("TREASURY_REQUEST_NOT_FOUND", "Treasury request not found")
	ErrSaleNotLinked     = shared.NewDomainError("TREASURY_SALE_NOT_LINKED", "Request is not linked to a sale")
	ErrNoPaymentMethod   = shared.NewDomainError("TREASURY_NO_PAYMENT_METHOD", "No active payment method for the sale's project")
	ErrNoActingUser      = shared.NewDomainError("TREASURY_NO_ACTING_USER", "No acting user could be resolved")
	ErrPaymentMethodGone = shared.NewDomainError("TREASURY_PAYMENT_METHOD_INVALID", "Payment method is inactive or belongs to another project")
)

// maxIdempotencyKeyLen caps the stored Idempotency-Key header value
const maxIdempotencyKeyLen = 120

// receiptCreator is the slice of the ledger service the workflow needs
type receiptCreator interface {
	CreateReceipt(ctx context.Context, req ledgerapp.CreateReceiptRequest) (*ledgerapp.CreateReceiptResult, error)
	FindReceipt(ctx context.Context, id uuid.UUID) (*ledger.Receipt, error)
}

// Service drives treasury requests from external report to receipt.
type Service struct {
	tx           shared.TransactionManager
	requests     treasury.RequestRepository
	sales        sales.SaleRepository
	schedules    ledger.ScheduleItemRepository
	applications ledger.ApplicationRepository
	methods      ledger.PaymentMethodRepository
	users        identity.UserRepository
	receipts     receiptCreator
	idempotency  shared.IdempotencyStore
	logger       *zap.Logger
}

// NewService creates the treasury workflow service
func NewService(
	tx shared.TransactionManager,
	requestRepo treasury.RequestRepository,
	saleRepo sales.SaleRepository,
	scheduleRepo ledger.ScheduleItemRepository,
	applicationRepo ledger.ApplicationRepository,
	methodRepo ledger.PaymentMethodRepository,
	userRepo identity.UserRepository,
	receipts receiptCreator,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *Service {
	return &Service{
		tx:           tx,
		requests:     requestRepo,
		sales:        saleRepo,
		schedules:    scheduleRepo,
		applications: applicationRepo,
		methods:      methodRepo,
		users:        userRepo,
		receipts:     receipts,
		idempotency:  idempotency,
		logger:       logger,
	}
}

// CreateRequestInput is an externally reported payment
type CreateRequestInput struct {
	ExternalID      string
	SaleID          *uuid.UUID
	ClientName      string
	ProjectName     string
	AdvisorName     string
	Amount          decimal.Decimal
	PaymentDate     *time.Time
	SupportURL      string
	Source          string
	AbonoCapital    bool
	CondonacionMora bool
}

// CreateRequestResult distinguishes fresh creations from replays
type CreateRequestResult struct {
	Request *treasury.Request
	Created bool
}

// CreateRequest registers a reported payment. Creation is idempotent
// per external id: replays return the existing record untouched.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput) (*CreateRequestResult, error) {
	existing, err := s.requests.FindByExternalID(ctx, input.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up request: %w", err)
	}
	if existing != nil {
		return &CreateRequestResult{Request: existing, Created: false}, nil
	}

	request, err := treasury.NewRequest(input.ExternalID, input.Amount)
	if err != nil {
		return nil, err
	}
	request.SaleID = input.SaleID
	request.ClientName = input.ClientName
	request.ProjectName = input.ProjectName
	request.AdvisorName = input.AdvisorName
	request.PaymentDate = input.PaymentDate
	request.SupportURL = input.SupportURL
	request.Source = input.Source
	request.AbonoCapital = input.AbonoCapital
	request.CondonacionMora = input.CondonacionMora

	if input.SaleID != nil {
		sale, err := s.sales.FindByID(ctx, *input.SaleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load sale: %w", err)
		}
		if sale == nil {
			return nil, ledgerapp.ErrSaleNotFound
		}
		request.ContractNumber = sale.ContractNumber
		if request.ClientName == "" {
			request.ClientName = sale.ClientName
		}
	}

	if err := s.requests.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Info("treasury request created",
		zap.String("external_id", request.ExternalID),
		zap.String("amount", request.AmountReported.StringFixed(2)))
	return &CreateRequestResult{Request: request, Created: true}, nil
}

// ListPending returns PENDING and VALIDATED requests, oldest first.
func (s *Service) ListPending(ctx context.Context, filter treasury.PendingFilter) ([]treasury.Request, error) {
	return s.requests.ListPending(ctx, filter)
}

// ValidateInput may override the reported amount and payment date
// before the rules run; zero values keep what was reported.
type ValidateInput struct {
	ExternalID  string
	Amount      decimal.Decimal
	PaymentDate *time.Time
}

// ValidateResult is the outcome of a validation run
type ValidateResult struct {
	Request   *treasury.Request
	Result    treasury.ValidationResult
	Alerts    []treasury.Alert
	FormToken string
}

// Validate re-runs the automatic rules against the sale's live ledger
// state. Validation may be repeated any number of times before a
// receipt exists; each run overwrites the previous alerts and result.
func (s *Service) Validate(ctx context.Context, input ValidateInput) (*ValidateResult, error) {
	var result *ValidateResult
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.requests.FindByExternalIDForUpdate(txCtx, input.ExternalID)
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}
		if request == nil {
			return ErrRequestNotFound
		}

		if input.Amount.IsPositive() {
			request.AmountReported = input.Amount.Round(2)
		}
		if input.PaymentDate != nil {
			request.PaymentDate = input.PaymentDate
		}

		alerts, err := s.evaluate(txCtx, request)
		if err != nil {
			return err
		}

		if err := request.ApplyValidation(alerts, treasury.NewFormToken()); err != nil {
			return err
		}
		if err := s.requests.Save(txCtx, request); err != nil {
			return fmt.Errorf("failed to save request: %w", err)
		}

		result = &ValidateResult{
			Request:   request,
			Result:    request.ValidationResult,
			Alerts:    request.Alerts,
			FormToken: request.FormToken,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("treasury request validated",
		zap.String("external_id", input.ExternalID),
		zap.String("result", string(result.Result)),
		zap.Int("alerts", len(result.Alerts)))
	return result, nil
}

// evaluate loads the sale's ledger state and runs the rule set. A
// request without a linked sale validates as inconsistent.
func (s *Service) evaluate(ctx context.Context, request *treasury.Request) ([]treasury.Alert, error) {
	if request.SaleID == nil {
		return treasury.EvaluateRules(nil, nil, request.AmountReported, request.PaymentDate), nil
	}

	items, err := s.schedules.ListBySale(ctx, *request.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	applications, err := s.applications.ListBySale(ctx, *request.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	return treasury.EvaluateRules(items, applications, request.AmountReported, request.PaymentDate), nil
}

// GenerateReceiptInput authorizes turning a validated request into a
// receipt. Amount and PaymentDate are the figures the treasurer
// confirmed on the form; zero values keep what the request carries.
type GenerateReceiptInput struct {
	ExternalID      string
	FormToken       string
	Amount          decimal.Decimal
	PaymentDate     *time.Time
	PaymentMethodID *uuid.UUID
	ActorID         *uuid.UUID
	IdempotencyKey  string
}

// GenerateReceiptResult carries the materialized receipt; Idempotent is
// true when the call was a replay served from the linked receipt.
type GenerateReceiptResult struct {
	Request       *treasury.Request
	ReceiptID     uuid.UUID
	ReceiptNumber string
	Idempotent    bool
}

// GenerateReceipt materializes the receipt for a clean-validated
// request. The whole unit runs in one transaction holding a row lock on
// the request: concurrent calls for the same external id serialize, and
// the loser observes RECEIPT_CREATED and replays idempotently.
func (s *Service) GenerateReceipt(ctx context.Context, input GenerateReceiptInput) (*GenerateReceiptResult, error) {
	idemKey := truncateKey(input.IdempotencyKey)
	if idemKey != "" && s.idempotency != nil {
		cfg := shared.DefaultIdempotencyConfig()
		first, err := s.idempotency.MarkProcessed(ctx, idemKey, cfg.TTL)
		if err != nil {
			// The store is an optimization; the row lock below is
			// the correctness guarantee.
			s.logger.Warn("idempotency store unavailable", zap.Error(err))
		} else if !first {
			s.logger.Info("replayed idempotency key",
				zap.String("external_id", input.ExternalID))
		}
	}

	var result *GenerateReceiptResult
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		request, err := s.requests.FindByExternalIDForUpdate(txCtx, input.ExternalID)
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}
		if request == nil {
			return ErrRequestNotFound
		}

		if request.Status == treasury.StatusReceiptCreated && request.ReceiptID != nil {
			result = &GenerateReceiptResult{Request: request, ReceiptID: *request.ReceiptID, Idempotent: true}
			receipt, err := s.receipts.FindReceipt(txCtx, *request.ReceiptID)
			if err != nil {
				return fmt.Errorf("failed to load linked receipt: %w", err)
			}
			if receipt != nil {
				result.ReceiptNumber = receipt.Number
			}
			return nil
		}

		if err := request.VerifyFormToken(input.FormToken); err != nil {
			return err
		}
		if request.SaleID == nil {
			return ErrSaleNotLinked
		}

		if input.Amount.IsPositive() {
			request.AmountReported = input.Amount.Round(2)
		}
		if input.PaymentDate != nil {
			request.PaymentDate = input.PaymentDate
		}

		sale, err := s.sales.FindByID(txCtx, *request.SaleID)
		if err != nil {
			return fmt.Errorf("failed to load sale: %w", err)
		}
		if sale == nil {
			return ledgerapp.ErrSaleNotFound
		}

		method, err := s.resolvePaymentMethod(txCtx, sale.ProjectID, input.PaymentMethodID)
		if err != nil {
			return err
		}
		actor, err := s.resolveActingUser(txCtx, input.ActorID)
		if err != nil {
			return err
		}

		datePaid := time.Now()
		if request.PaymentDate != nil {
			datePaid = *request.PaymentDate
		}

		created, err := s.receipts.CreateReceipt(txCtx, ledgerapp.CreateReceiptRequest{
			SaleID:          sale.ID,
			Amount:          request.AmountReported,
			DatePaid:        datePaid,
			PaymentMethodID: &method.ID,
			EvidenceURL:     request.SupportURL,
			Notes:           fmt.Sprintf("Solicitud de tesorería %s", request.ExternalID),
			CreatedBy:       &actor.ID,
		})
		if err != nil {
			return err
		}

		if err := request.AttachReceipt(created.Receipt.ID, idemKey); err != nil {
			return err
		}
		if err := s.requests.Save(txCtx, request); err != nil {
			return fmt.Errorf("failed to save request: %w", err)
		}

		result = &GenerateReceiptResult{
			Request:       request,
			ReceiptID:     created.Receipt.ID,
			ReceiptNumber: created.Receipt.Number,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("treasury receipt generated",
		zap.String("external_id", input.ExternalID),
		zap.String("receipt_id", result.ReceiptID.String()),
		zap.Bool("idempotent", result.Idempotent))
	return result, nil
}

// MarkManual parks a request for human review with a free-text reason.
func (s *Service) MarkManual(ctx context.Context, externalID, reason string) (*treasury.Request, error) {
	var request *treasury.Request
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		request, err = s.requests.FindByExternalIDForUpdate(txCtx, externalID)
		if err != nil {
			return fmt.Errorf("failed to load request: %w", err)
		}
		if request == nil {
			return ErrRequestNotFound
		}
		if err := request.MarkManual(reason); err != nil {
			return err
		}
		if err := s.requests.Save(txCtx, request); err != nil {
			return fmt.Errorf("failed to save request: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// PaymentMethodsByProject lists active collection channels for a project.
func (s *Service) PaymentMethodsByProject(ctx context.Context, projectID uuid.UUID) ([]ledger.PaymentMethod, error) {
	return s.methods.ListActiveByProject(ctx, projectID)
}

// resolvePaymentMethod picks the caller's method after checking it is
// active and belongs to the sale's project, or falls back to the first
// active method of the project.
func (s *Service) resolvePaymentMethod(ctx context.Context, projectID uuid.UUID, methodID *uuid.UUID) (*ledger.PaymentMethod, error) {
	if methodID != nil {
		method, err := s.methods.FindByID(ctx, *methodID)
		if err != nil {
			return nil, fmt.Errorf("failed to load payment method: %w", err)
		}
		if method == nil || !method.IsActive || method.ProjectID != projectID {
			return nil, ErrPaymentMethodGone
		}
		return method, nil
	}

	method, err := s.methods.FirstActiveByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve payment method: %w", err)
	}
	if method == nil {
		return nil, ErrNoPaymentMethod
	}
	return method, nil
}

// resolveActingUser attributes the receipt: the authenticated caller
// when present, else the treasury role, else a superuser, else any
// active user.
func (s *Service) resolveActingUser(ctx context.Context, actorID *uuid.UUID) (*identity.User, error) {
	if actorID != nil {
		user, err := s.users.FindByID(ctx, *actorID)
		if err != nil {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		if user != nil {
			return user, nil
		}
	}

	for _, lookup := range []func(context.Context) (*identity.User, error){
		func(c context.Context) (*identity.User, error) { return s.users.FirstActiveByRole(c, identity.RoleTreasury) },
		s.users.FirstSuperuser,
		s.users.FirstActive,
	} {
		user, err := lookup(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve acting user: %w", err)
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, ErrNoActingUser
}

// truncateKey bounds header-provided idempotency keys
func truncateKey(key string) string {
	if len(key) > maxIdempotencyKeyLen {
		return key[:maxIdempotencyKeyLen]
	}
	return key
}
