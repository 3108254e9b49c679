package commission

import (
	"context"
	"testing"

	"github.com/casaverde/backoffice/internal/domain/commission"
	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeSaleRepo struct {
	sales map[uuid.UUID]*sales.Sale
	plans map[uuid.UUID]*sales.PaymentPlan
}

func (f *fakeSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	return f.sales[id], nil
}

func (f *fakeSaleRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeSaleRepo) FindByContractNumber(_ context.Context, _ string) (*sales.Sale, error) {
	return nil, nil
}

func (f *fakeSaleRepo) FindPlanBySale(_ context.Context, saleID uuid.UUID) (*sales.PaymentPlan, error) {
	return f.plans[saleID], nil
}

type fakeSaleLogRepo struct {
	entries []sales.SaleLog
}

func (f *fakeSaleLogRepo) Append(_ context.Context, entry *sales.SaleLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeSaleLogRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]sales.SaleLog, error) {
	var out []sales.SaleLog
	for _, e := range f.entries {
		if e.SaleID == saleID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeReceiptRepo struct {
	paid map[uuid.UUID]decimal.Decimal
}

func (f *fakeReceiptRepo) FindByID(_ context.Context, _ uuid.UUID) (*ledger.Receipt, error) {
	return nil, nil
}

func (f *fakeReceiptRepo) Save(_ context.Context, _ *ledger.Receipt) error { return nil }

func (f *fakeReceiptRepo) ListBySale(_ context.Context, _ uuid.UUID) ([]ledger.Receipt, error) {
	return nil, nil
}

func (f *fakeReceiptRepo) SumBySale(_ context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	if total, ok := f.paid[saleID]; ok {
		return total, nil
	}
	return decimal.Zero, nil
}

func (f *fakeReceiptRepo) FindBySaleAndHash(_ context.Context, _ uuid.UUID, _ string) (*ledger.Receipt, error) {
	return nil, nil
}

type fakeScaleRepo struct {
	scales map[uuid.UUID][]commission.Scale
}

func (f *fakeScaleRepo) ListBySale(_ context.Context, saleID uuid.UUID) ([]commission.Scale, error) {
	return f.scales[saleID], nil
}

func (f *fakeScaleRepo) ListSaleIDsWithScales(_ context.Context) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(f.scales))
	for id := range f.scales {
		ids = append(ids, id)
	}
	return ids, nil
}

type fakeParticipantRepo struct {
	participants []*commission.Participant
}

func (f *fakeParticipantRepo) FindBySaleUserRole(_ context.Context, saleID, userID uuid.UUID, roleName string) (*commission.Participant, error) {
	for _, p := range f.participants {
		if p.SaleID == saleID && p.UserID == userID && p.RoleName == roleName {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakeParticipantRepo) Save(_ context.Context, participant *commission.Participant) error {
	for i, p := range f.participants {
		if p.ID == participant.ID {
			f.participants[i] = participant
			return nil
		}
	}
	f.participants = append(f.participants, participant)
	return nil
}

type fakePaymentRepo struct {
	participants *fakeParticipantRepo
	payments     []commission.Payment
}

func (f *fakePaymentRepo) Append(_ context.Context, payment *commission.Payment) error {
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) SumBySaleGrouped(_ context.Context, saleID uuid.UUID) (map[commission.ScaleKey]decimal.Decimal, error) {
	sums := make(map[commission.ScaleKey]decimal.Decimal)
	for _, payment := range f.payments {
		for _, p := range f.participants.participants {
			if p.ID == payment.ParticipantID && p.SaleID == saleID {
				key := commission.ScaleKey{UserID: p.UserID, RoleName: p.RoleName}
				sums[key] = sums[key].Add(payment.Amount)
			}
		}
	}
	return sums, nil
}

func (f *fakePaymentRepo) CountBySale(_ context.Context, saleID uuid.UUID) (int64, error) {
	var count int64
	for _, payment := range f.payments {
		for _, p := range f.participants.participants {
			if p.ID == payment.ParticipantID && p.SaleID == saleID {
				count++
			}
		}
	}
	return count, nil
}

type liquidationFixture struct {
	service  *LiquidationService
	sale     *sales.Sale
	advisor  uuid.UUID
	receipts *fakeReceiptRepo
	scales   *fakeScaleRepo
	logs     *fakeSaleLogRepo
	payments *fakePaymentRepo
}

// newLiquidationFixture builds an approved sale worth 450,000,000 with a
// 3% advisor scale. The liquidation base is 20% of the sale value, so
// 90,000,000 collected liquidates the full 13,500,000 commission.
func newLiquidationFixture(t *testing.T) *liquidationFixture {
	t.Helper()

	sale := &sales.Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         uuid.New(),
		ContractNumber:    "CV-2026-020",
		ClientName:        "Lucia Ramirez",
		Status:            sales.SaleStatusApproved,
	}
	plan := &sales.PaymentPlan{
		BaseEntity: shared.NewBaseEntity(),
		SaleID:     sale.ID,
		ProjectID:  sale.ProjectID,
		PriceTotal: decimal.RequireFromString("450000000.00"),
		IsActive:   true,
	}

	advisor := uuid.New()
	scales := &fakeScaleRepo{scales: map[uuid.UUID][]commission.Scale{
		sale.ID: {{
			BaseEntity: shared.NewBaseEntity(),
			SaleID:     sale.ID,
			UserID:     advisor,
			RoleName:   "ASESOR",
			Percentage: decimal.RequireFromString("3"),
		}},
	}}

	receipts := &fakeReceiptRepo{paid: map[uuid.UUID]decimal.Decimal{}}
	logs := &fakeSaleLogRepo{}
	participants := &fakeParticipantRepo{}
	payments := &fakePaymentRepo{participants: participants}

	service := NewLiquidationService(
		passthroughTx{},
		&fakeSaleRepo{
			sales: map[uuid.UUID]*sales.Sale{sale.ID: sale},
			plans: map[uuid.UUID]*sales.PaymentPlan{sale.ID: plan},
		},
		logs,
		receipts,
		scales,
		participants,
		payments,
		zap.NewNop(),
	)

	return &liquidationFixture{
		service:  service,
		sale:     sale,
		advisor:  advisor,
		receipts: receipts,
		scales:   scales,
		logs:     logs,
		payments: payments,
	}
}

func TestSnapshotAccruesWithCollections(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()

	// Half the 90,000,000 base collected: ratio 0.5.
	f.receipts.paid[f.sale.ID] = decimal.RequireFromString("45000000.00")

	snapshot, err := f.service.Snapshot(ctx, f.sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "90000000.00", snapshot.LiquidationBase.StringFixed(2))
	assert.Equal(t, "0.5000", snapshot.LiquidationRatio.StringFixed(4))
	require.Len(t, snapshot.Scales, 1)
	assert.Equal(t, "13500000.00", snapshot.Scales[0].CommissionTotal.StringFixed(2))
	assert.Equal(t, "6750000.00", snapshot.Scales[0].PendingToLiquidate.StringFixed(2))
}

func TestLiquidatePaysPendingAndLogs(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()
	f.receipts.paid[f.sale.ID] = decimal.RequireFromString("45000000.00")

	actor := uuid.New()
	result, err := f.service.Liquidate(ctx, f.sale.ID, &actor)
	require.NoError(t, err)
	assert.Equal(t, "6750000.00", result.TotalLiquidated)
	assert.Equal(t, 1, result.PaymentsCreated)

	require.Len(t, f.payments.payments, 1)
	assert.Equal(t, "6750000.00", f.payments.payments[0].Amount.StringFixed(2))
	assert.Equal(t, "Liquidación por recaudo (50%)", f.payments.payments[0].Trigger)

	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, "Liquidación de comisiones registrada por $6750000.00", f.logs.entries[0].Message)
}

func TestLiquidateSecondRunIsNoOp(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()
	f.receipts.paid[f.sale.ID] = decimal.RequireFromString("45000000.00")

	_, err := f.service.Liquidate(ctx, f.sale.ID, nil)
	require.NoError(t, err)

	second, err := f.service.Liquidate(ctx, f.sale.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "0.00", second.TotalLiquidated)
	assert.Equal(t, 0, second.PaymentsCreated)

	assert.Len(t, f.payments.payments, 1, "no duplicate payout rows")
	assert.Len(t, f.logs.entries, 1, "no audit note for a zero run")
}

func TestLiquidateAccruesDeltaAfterNewCollections(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()

	f.receipts.paid[f.sale.ID] = decimal.RequireFromString("45000000.00")
	_, err := f.service.Liquidate(ctx, f.sale.ID, nil)
	require.NoError(t, err)

	// Base fully collected: the remaining half becomes liquidable.
	f.receipts.paid[f.sale.ID] = decimal.RequireFromString("90000000.00")
	result, err := f.service.Liquidate(ctx, f.sale.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, "6750000.00", result.TotalLiquidated)

	total := decimal.Zero
	for _, payment := range f.payments.payments {
		total = total.Add(payment.Amount)
	}
	assert.Equal(t, "13500000.00", total.StringFixed(2))
}

func TestLiquidateUnknownSale(t *testing.T) {
	f := newLiquidationFixture(t)

	_, err := f.service.Liquidate(context.Background(), uuid.New(), nil)
	assert.Error(t, err)
}

func TestLiquidationQueue(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()
	f.receipts.paid[f.sale.ID] = decimal.RequireFromString("45000000.00")

	queue, err := f.service.LiquidationQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue.Items, 1)
	assert.Equal(t, "CV-2026-020", queue.Items[0].ContractNumber)
	assert.True(t, queue.Items[0].Ready)
	assert.Equal(t, 1, queue.ReadyCount)
	assert.Equal(t, "6750000.00", queue.TotalPending)
}

func TestLiquidationQueueSkipsUnapprovedSales(t *testing.T) {
	f := newLiquidationFixture(t)
	ctx := context.Background()

	f.sale.Status = sales.SaleStatusPending
	queue, err := f.service.LiquidationQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue.Items)
	assert.Equal(t, 0, queue.ReadyCount)
	assert.Equal(t, "0.00", queue.TotalPending)
}
