package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service errors
var (
	ErrSaleNotFound    = shared.NewDomainError("SALE_NOT_FOUND", "Sale not found")
	ErrProjectNotFound = shared.NewDomainError("PROJECT_NOT_FOUND", "Project not found for sale")
	ErrReceiptNotFound = shared.NewDomainError("RECEIPT_NOT_FOUND", "Receipt not found")
)

// ReceiptService registers collections against sales and keeps their
// schedule applications consistent through reallocation.
type ReceiptService struct {
	tx           shared.TransactionManager
	sales        sales.SaleRepository
	projects     sales.ProjectRepository
	schedules    ledger.ScheduleItemRepository
	applications ledger.ApplicationRepository
	receipts     ledger.ReceiptRepository
	saleLogs     sales.SaleLogRepository
}

// NewReceiptService creates a new ReceiptService
func NewReceiptService(
	tx shared.TransactionManager,
	saleRepo sales.SaleRepository,
	projectRepo sales.ProjectRepository,
	scheduleRepo ledger.ScheduleItemRepository,
	applicationRepo ledger.ApplicationRepository,
	receiptRepo ledger.ReceiptRepository,
	saleLogRepo sales.SaleLogRepository,
) *ReceiptService {
	return &ReceiptService{
		tx:           tx,
		sales:        saleRepo,
		projects:     projectRepo,
		schedules:    scheduleRepo,
		applications: applicationRepo,
		receipts:     receiptRepo,
		saleLogs:     saleLogRepo,
	}
}

// CreateReceiptRequest carries a direct collection registration
type CreateReceiptRequest struct {
	SaleID          uuid.UUID
	Amount          decimal.Decimal
	DatePaid        time.Time
	PaymentMethodID *uuid.UUID
	EvidenceURL     string
	EvidenceContent []byte
	Notes           string
	CreatedBy       *uuid.UUID
}

// CreateReceiptResult is the outcome of registering a collection
type CreateReceiptResult struct {
	Receipt     *ledger.Receipt
	Allocations []ledger.Application
	Duplicate   bool
}

// CreateReceipt registers a receipt against a sale and runs the
// waterfall in the same transaction. When evidence content hashes to an
// already-registered receipt for the sale, that receipt is returned
// unchanged instead of double-recording the payment.
func (s *ReceiptService) CreateReceipt(ctx context.Context, req CreateReceiptRequest) (*CreateReceiptResult, error) {
	sale, err := s.sales.FindByID(ctx, req.SaleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale: %w", err)
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}

	fileHash := hashEvidence(req.EvidenceContent)
	if fileHash != "" {
		existing, err := s.receipts.FindBySaleAndHash(ctx, req.SaleID, fileHash)
		if err != nil {
			return nil, fmt.Errorf("failed to check evidence hash: %w", err)
		}
		if existing != nil {
			return &CreateReceiptResult{Receipt: existing, Duplicate: true}, nil
		}
	}

	receipt, err := ledger.NewReceipt(req.SaleID, req.Amount, req.DatePaid)
	if err != nil {
		return nil, err
	}
	receipt.PaymentMethodID = req.PaymentMethodID
	receipt.EvidenceURL = req.EvidenceURL
	receipt.FileHash = fileHash
	receipt.Notes = req.Notes
	receipt.CreatedBy = req.CreatedBy

	var allocations []ledger.Application
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.receipts.Save(txCtx, receipt); err != nil {
			return fmt.Errorf("failed to save receipt: %w", err)
		}
		allocations, err = s.reallocateInTx(txCtx, sale.ID, receipt)
		if err != nil {
			return err
		}

		entry := sales.NewSaleLog(sale.ID, sales.LogActionCollection,
			fmt.Sprintf("Recaudo registrado por $%s", receipt.Amount.StringFixed(2)), req.CreatedBy)
		if err := s.saleLogs.Append(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append sale log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &CreateReceiptResult{Receipt: receipt, Allocations: allocations}, nil
}

// Reallocate rebuilds a receipt's applications from scratch. Safe to
// call any number of times; each run deletes the receipt's own lines
// before running the waterfall against everything else.
func (s *ReceiptService) Reallocate(ctx context.Context, receiptID uuid.UUID) (*CreateReceiptResult, error) {
	receipt, err := s.receipts.FindByID(ctx, receiptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load receipt: %w", err)
	}
	if receipt == nil {
		return nil, ErrReceiptNotFound
	}

	var allocations []ledger.Application
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		allocations, err = s.reallocateInTx(txCtx, receipt.SaleID, receipt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &CreateReceiptResult{Receipt: receipt, Allocations: allocations}, nil
}

// reallocateInTx is the delete-then-recreate unit. It must run inside
// the caller's transaction; the sale row lock taken here is what makes
// concurrent allocations for the same sale serialize, so the applied
// totals read below cannot go stale under a racing receipt.
func (s *ReceiptService) reallocateInTx(ctx context.Context, saleID uuid.UUID, receipt *ledger.Receipt) ([]ledger.Application, error) {
	sale, err := s.sales.FindByIDForUpdate(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock sale: %w", err)
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}

	project, err := s.projects.FindByID(ctx, sale.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if err := s.applications.DeleteByReceipt(ctx, receipt.ID); err != nil {
		return nil, fmt.Errorf("failed to clear receipt applications: %w", err)
	}

	items, err := s.schedules.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	others, err := s.applications.ListBySaleExcludingReceipt(ctx, sale.ID, receipt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	result := ledger.Allocate(items, ledger.NewAppliedTotals(others), receipt.Amount, receipt.DatePaid, project.MoraConfig())

	applications := make([]ledger.Application, 0, len(result.Allocations))
	for _, alloc := range result.Allocations {
		applications = append(applications, ledger.NewApplication(receipt.ID, alloc))
	}
	if len(applications) > 0 {
		if err := s.applications.CreateBatch(ctx, applications); err != nil {
			return nil, fmt.Errorf("failed to persist applications: %w", err)
		}
	}

	receipt.SetSurplus(result.Surplus)
	if err := s.receipts.Save(ctx, receipt); err != nil {
		return nil, fmt.Errorf("failed to save receipt surplus: %w", err)
	}
	return applications, nil
}

// FindReceipt loads a receipt by id, nil when unknown.
func (s *ReceiptService) FindReceipt(ctx context.Context, id uuid.UUID) (*ledger.Receipt, error) {
	return s.receipts.FindByID(ctx, id)
}

// ScheduleView builds the ledger view of a sale's schedule with mora
// computed as of today.
func (s *ReceiptService) ScheduleView(ctx context.Context, saleID uuid.UUID) (*ledger.ScheduleView, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale: %w", err)
	}
	if sale == nil {
		return nil, ErrSaleNotFound
	}
	project, err := s.projects.FindByID(ctx, sale.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	items, err := s.schedules.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	applications, err := s.applications.ListBySale(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	view := ledger.BuildScheduleView(items, applications, time.Now(), project.MoraConfig())
	return &view, nil
}

// hashEvidence fingerprints evidence content for receipt dedup
func hashEvidence(content []byte) string {
	if len(content) == 0 {
		return ""
	}
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
