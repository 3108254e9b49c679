package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupReceiptTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ReceiptModel{}, &models.ApplicationModel{})
	require.NoError(t, err)

	return db
}

func newTestReceipt(t *testing.T, saleID uuid.UUID, amount string, datePaid time.Time) *ledger.Receipt {
	t.Helper()
	receipt, err := ledger.NewReceipt(saleID, decimal.RequireFromString(amount), datePaid)
	require.NoError(t, err)
	return receipt
}

func TestReceiptRepository_SaveAndFind(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := NewGormReceiptRepository(db)
	ctx := context.Background()

	saleID := uuid.New()
	datePaid := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)

	t.Run("saves and finds a receipt", func(t *testing.T) {
		receipt := newTestReceipt(t, saleID, "1500000.00", datePaid)
		receipt.Notes = "pago parcial"
		require.NoError(t, repo.Save(ctx, receipt))

		found, err := repo.FindByID(ctx, receipt.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, saleID, found.SaleID)
		assert.True(t, found.Amount.Equal(decimal.RequireFromString("1500000.00")))
		assert.Equal(t, "pago parcial", found.Notes)
	})

	t.Run("returns nil for unknown id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestReceiptRepository_ListBySale(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := NewGormReceiptRepository(db)
	ctx := context.Background()

	saleID := uuid.New()
	day := func(d int) time.Time {
		return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC)
	}

	second := newTestReceipt(t, saleID, "200.00", day(20))
	first := newTestReceipt(t, saleID, "100.00", day(5))
	other := newTestReceipt(t, uuid.New(), "999.00", day(1))
	require.NoError(t, repo.Save(ctx, second))
	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, other))

	receipts, err := repo.ListBySale(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, receipts, 2)
	assert.Equal(t, first.ID, receipts[0].ID)
	assert.Equal(t, second.ID, receipts[1].ID)
}

func TestReceiptRepository_SumBySale(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := NewGormReceiptRepository(db)
	ctx := context.Background()

	saleID := uuid.New()
	datePaid := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sums to zero with no receipts", func(t *testing.T) {
		total, err := repo.SumBySale(ctx, saleID)
		require.NoError(t, err)
		assert.True(t, total.IsZero())
	})

	t.Run("sums amounts", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, newTestReceipt(t, saleID, "100.50", datePaid)))
		require.NoError(t, repo.Save(ctx, newTestReceipt(t, saleID, "200.25", datePaid)))

		total, err := repo.SumBySale(ctx, saleID)
		require.NoError(t, err)
		assert.True(t, total.Equal(decimal.RequireFromString("300.75")))
	})
}

func TestReceiptRepository_FindBySaleAndHash(t *testing.T) {
	db := setupReceiptTestDB(t)
	repo := NewGormReceiptRepository(db)
	ctx := context.Background()

	saleID := uuid.New()
	datePaid := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	receipt := newTestReceipt(t, saleID, "100.00", datePaid)
	receipt.FileHash = "abc123"
	require.NoError(t, repo.Save(ctx, receipt))

	t.Run("finds by hash", func(t *testing.T) {
		found, err := repo.FindBySaleAndHash(ctx, saleID, "abc123")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, receipt.ID, found.ID)
	})

	t.Run("empty hash never matches", func(t *testing.T) {
		found, err := repo.FindBySaleAndHash(ctx, saleID, "")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("hash on another sale does not match", func(t *testing.T) {
		found, err := repo.FindBySaleAndHash(ctx, uuid.New(), "abc123")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestApplicationRepository(t *testing.T) {
	db := setupReceiptTestDB(t)
	receipts := NewGormReceiptRepository(db)
	repo := NewGormApplicationRepository(db)
	ctx := context.Background()

	saleID := uuid.New()
	datePaid := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	receiptA := newTestReceipt(t, saleID, "100.00", datePaid)
	receiptB := newTestReceipt(t, saleID, "50.00", datePaid)
	require.NoError(t, receipts.Save(ctx, receiptA))
	require.NoError(t, receipts.Save(ctx, receiptB))

	itemID := uuid.New()
	appsA := []ledger.Application{
		ledger.NewApplication(receiptA.ID, ledger.Allocation{ScheduleItemID: itemID, Concept: ledger.ConceptInterest, Amount: decimal.RequireFromString("30.00")}),
		ledger.NewApplication(receiptA.ID, ledger.Allocation{ScheduleItemID: itemID, Concept: ledger.ConceptCapital, Amount: decimal.RequireFromString("70.00")}),
	}
	appsB := []ledger.Application{
		ledger.NewApplication(receiptB.ID, ledger.Allocation{ScheduleItemID: itemID, Concept: ledger.ConceptCapital, Amount: decimal.RequireFromString("50.00")}),
	}
	require.NoError(t, repo.CreateBatch(ctx, appsA))
	require.NoError(t, repo.CreateBatch(ctx, appsB))

	t.Run("lists every line of the sale", func(t *testing.T) {
		apps, err := repo.ListBySale(ctx, saleID)
		require.NoError(t, err)
		assert.Len(t, apps, 3)
	})

	t.Run("excludes one receipt's lines", func(t *testing.T) {
		apps, err := repo.ListBySaleExcludingReceipt(ctx, saleID, receiptA.ID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, receiptB.ID, apps[0].ReceiptID)
	})

	t.Run("deletes a receipt's lines", func(t *testing.T) {
		require.NoError(t, repo.DeleteByReceipt(ctx, receiptA.ID))

		apps, err := repo.ListBySale(ctx, saleID)
		require.NoError(t, err)
		require.Len(t, apps, 1)
		assert.Equal(t, receiptB.ID, apps[0].ReceiptID)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.CreateBatch(ctx, nil))
	})
}
