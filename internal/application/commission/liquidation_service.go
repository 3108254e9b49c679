package commission

import (
	"context"
	"fmt"

	ledgerapp "github.com/casaverde/backoffice/internal/application/ledger"
	"github.com/casaverde/backoffice/internal/domain/commission"
	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// liquidationTrigger labels payout ledger rows with the collection
// progress that authorized them.
func liquidationTrigger(ratio decimal.Decimal) string {
	percent := ratio.Mul(decimal.NewFromInt(100)).Round(2)
	return fmt.Sprintf("Liquidación por recaudo (%s%%)", percent)
}

// LiquidationService computes and pays commission deltas per sale.
type LiquidationService struct {
	tx           shared.TransactionManager
	sales        sales.SaleRepository
	saleLogs     sales.SaleLogRepository
	receipts     ledger.ReceiptRepository
	scales       commission.ScaleRepository
	participants commission.ParticipantRepository
	payments     commission.PaymentRepository
	logger       *zap.Logger
}

// NewLiquidationService creates the commission liquidation service
func NewLiquidationService(
	tx shared.TransactionManager,
	saleRepo sales.SaleRepository,
	saleLogRepo sales.SaleLogRepository,
	receiptRepo ledger.ReceiptRepository,
	scaleRepo commission.ScaleRepository,
	participantRepo commission.ParticipantRepository,
	paymentRepo commission.PaymentRepository,
	logger *zap.Logger,
) *LiquidationService {
	return &LiquidationService{
		tx:           tx,
		sales:        saleRepo,
		saleLogs:     saleLogRepo,
		receipts:     receiptRepo,
		scales:       scaleRepo,
		participants: participantRepo,
		payments:     paymentRepo,
		logger:       logger,
	}
}

// Snapshot recomputes the liquidation state of a sale from its live
// receipts and payout ledger.
func (s *LiquidationService) Snapshot(ctx context.Context, saleID uuid.UUID) (*commission.Snapshot, error) {
	sale, err := s.sales.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sale: %w", err)
	}
	if sale == nil {
		return nil, ledgerapp.ErrSaleNotFound
	}
	return s.snapshotFor(ctx, sale)
}

func (s *LiquidationService) snapshotFor(ctx context.Context, sale *sales.Sale) (*commission.Snapshot, error) {
	plan, err := s.sales.FindPlanBySale(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment plan: %w", err)
	}
	totalPaid, err := s.receipts.SumBySale(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum receipts: %w", err)
	}
	scales, err := s.scales.ListBySale(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scales: %w", err)
	}
	alreadyPaid, err := s.payments.SumBySaleGrouped(ctx, sale.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payouts: %w", err)
	}

	snapshot := commission.ComputeSnapshot(
		sale.ID,
		sales.TotalValue(sale, plan),
		sale.IsApproved(),
		totalPaid,
		scales,
		alreadyPaid,
	)
	return &snapshot, nil
}

// LiquidateResult summarizes one liquidation run
type LiquidateResult struct {
	Snapshot        *commission.Snapshot
	TotalLiquidated string
	PaymentsCreated int
}

// Liquidate pays every positive pending delta of a sale's scales, in
// one transaction holding a row lock on the sale. With no new receipts
// since the last run every pending recomputes to zero and the call is
// a no-op.
func (s *LiquidationService) Liquidate(ctx context.Context, saleID uuid.UUID, actorID *uuid.UUID) (*LiquidateResult, error) {
	var result *LiquidateResult
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		sale, err := s.sales.FindByIDForUpdate(txCtx, saleID)
		if err != nil {
			return fmt.Errorf("failed to load sale: %w", err)
		}
		if sale == nil {
			return ledgerapp.ErrSaleNotFound
		}

		snapshot, err := s.snapshotFor(txCtx, sale)
		if err != nil {
			return err
		}

		total := snapshot.TotalPending
		created := 0
		for _, status := range snapshot.Scales {
			if !status.PendingToLiquidate.IsPositive() {
				continue
			}

			participant, err := s.upsertParticipant(txCtx, status)
			if err != nil {
				return err
			}

			payment := commission.NewPayment(participant.ID, status.PendingToLiquidate, liquidationTrigger(snapshot.LiquidationRatio), actorID)
			if err := s.payments.Append(txCtx, payment); err != nil {
				return fmt.Errorf("failed to append payout: %w", err)
			}
			created++
		}

		if total.IsPositive() {
			entry := sales.NewSaleLog(sale.ID, sales.LogActionNote,
				fmt.Sprintf("Liquidación de comisiones registrada por $%s", total.StringFixed(2)), actorID)
			if err := s.saleLogs.Append(txCtx, entry); err != nil {
				return fmt.Errorf("failed to append sale log: %w", err)
			}
		}

		result = &LiquidateResult{
			Snapshot:        snapshot,
			TotalLiquidated: total.StringFixed(2),
			PaymentsCreated: created,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("commission liquidation run",
		zap.String("sale_id", saleID.String()),
		zap.String("total", result.TotalLiquidated),
		zap.Int("payments", result.PaymentsCreated))
	return result, nil
}

// upsertParticipant materializes the (sale, user, role) bucket and
// refreshes its percentage and commission snapshot.
func (s *LiquidationService) upsertParticipant(ctx context.Context, status commission.ScaleStatus) (*commission.Participant, error) {
	scale := status.Scale
	participant, err := s.participants.FindBySaleUserRole(ctx, scale.SaleID, scale.UserID, scale.RoleName)
	if err != nil {
		return nil, fmt.Errorf("failed to load participant: %w", err)
	}
	if participant == nil {
		participant = &commission.Participant{
			BaseEntity: shared.NewBaseEntity(),
			SaleID:     scale.SaleID,
			UserID:     scale.UserID,
			RoleName:   scale.RoleName,
		}
	}
	participant.Percentage = scale.Percentage
	participant.CommissionTotal = status.CommissionTotal
	if err := s.participants.Save(ctx, participant); err != nil {
		return nil, fmt.Errorf("failed to save participant: %w", err)
	}
	return participant, nil
}

// QueueItem is one sale in the liquidation queue
type QueueItem struct {
	SaleID         uuid.UUID
	ContractNumber string
	ClientName     string
	Snapshot       *commission.Snapshot
	Ready          bool
}

// Queue lists approved sales with scales, their snapshot and a
// readiness flag, plus aggregate figures for the whole queue.
type Queue struct {
	Items        []QueueItem
	ReadyCount   int
	TotalPending string
}

// LiquidationQueue builds the queue of sales with commission scales.
func (s *LiquidationService) LiquidationQueue(ctx context.Context) (*Queue, error) {
	saleIDs, err := s.scales.ListSaleIDsWithScales(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales with scales: %w", err)
	}

	queue := &Queue{Items: make([]QueueItem, 0, len(saleIDs))}
	totalPending := decimal.Zero

	for _, saleID := range saleIDs {
		sale, err := s.sales.FindByID(ctx, saleID)
		if err != nil {
			return nil, fmt.Errorf("failed to load sale: %w", err)
		}
		if sale == nil || !sale.IsApproved() {
			continue
		}

		snapshot, err := s.snapshotFor(ctx, sale)
		if err != nil {
			return nil, err
		}

		ready := snapshot.HasPending()
		if ready {
			queue.ReadyCount++
		}
		totalPending = totalPending.Add(snapshot.TotalPending)

		queue.Items = append(queue.Items, QueueItem{
			SaleID:         sale.ID,
			ContractNumber: sale.ContractNumber,
			ClientName:     sale.ClientName,
			Snapshot:       snapshot,
			Ready:          ready,
		})
	}

	queue.TotalPending = totalPending.StringFixed(2)
	return queue, nil
}
