package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSalesTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.SaleModel{},
		&models.ProjectModel{},
		&models.PaymentPlanModel{},
		&models.SaleLogModel{},
	)
	require.NoError(t, err)

	return db
}

func insertSale(t *testing.T, db *gorm.DB, contract string, status sales.SaleStatus) *sales.Sale {
	t.Helper()
	sale := &sales.Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         uuid.New(),
		ContractNumber:    contract,
		ClientName:        "Cliente de Prueba",
		Status:            status,
	}
	require.NoError(t, db.Create(models.SaleModelFromDomain(sale)).Error)
	return sale
}

func TestSaleRepository(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewGormSaleRepository(db)
	ctx := context.Background()

	sale := insertSale(t, db, "CT-0042", sales.SaleStatusApproved)

	t.Run("finds by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, sale.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "CT-0042", found.ContractNumber)
		assert.True(t, found.IsApproved())
	})

	t.Run("nil for unknown id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("finds by contract number", func(t *testing.T) {
		found, err := repo.FindByContractNumber(ctx, "CT-0042")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, sale.ID, found.ID)
	})

	t.Run("nil for unknown contract number", func(t *testing.T) {
		found, err := repo.FindByContractNumber(ctx, "CT-NONE")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("finds the active payment plan", func(t *testing.T) {
		inactive := &models.PaymentPlanModel{
			SaleID:     sale.ID,
			ProjectID:  sale.ProjectID,
			PriceTotal: decimal.RequireFromString("100000000.00"),
			IsActive:   false,
		}
		inactive.FromDomainBaseEntity(shared.NewBaseEntity())
		require.NoError(t, db.Create(inactive).Error)

		active := &models.PaymentPlanModel{
			SaleID:     sale.ID,
			ProjectID:  sale.ProjectID,
			PriceTotal: decimal.RequireFromString("150000000.00"),
			IsActive:   true,
		}
		active.FromDomainBaseEntity(shared.NewBaseEntity())
		require.NoError(t, db.Create(active).Error)

		plan, err := repo.FindPlanBySale(ctx, sale.ID)
		require.NoError(t, err)
		require.NotNil(t, plan)
		assert.True(t, plan.PriceTotal.Equal(decimal.RequireFromString("150000000.00")))
	})

	t.Run("nil plan when the sale has none", func(t *testing.T) {
		other := insertSale(t, db, "CT-0043", sales.SaleStatusPending)
		plan, err := repo.FindPlanBySale(ctx, other.ID)
		require.NoError(t, err)
		assert.Nil(t, plan)
	})
}

func TestProjectRepository_MoraFallback(t *testing.T) {
	db := setupSalesTestDB(t)
	ctx := context.Background()

	fallback := ledger.MoraConfig{
		GraceDays:   5,
		MonthlyRate: decimal.RequireFromString("0.015"),
	}

	insertProject := func(graceDays int, rate string) uuid.UUID {
		model := &models.ProjectModel{
			Name:             "Proyecto",
			PaymentGraceDays: graceDays,
			MoraRateMonthly:  decimal.RequireFromString(rate),
		}
		model.FromDomainBaseEntity(shared.NewBaseEntity())
		require.NoError(t, db.Create(model).Error)
		return model.ID
	}

	t.Run("keeps the project's own parameters", func(t *testing.T) {
		repo := NewGormProjectRepositoryWithFallback(db, fallback)
		id := insertProject(10, "0.02")

		project, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, 10, project.PaymentGraceDays)
		assert.True(t, project.MoraRateMonthly.Equal(decimal.RequireFromString("0.02")))
	})

	t.Run("fills zero values from the fallback", func(t *testing.T) {
		repo := NewGormProjectRepositoryWithFallback(db, fallback)
		id := insertProject(0, "0")

		project, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, 5, project.PaymentGraceDays)
		assert.True(t, project.MoraRateMonthly.Equal(decimal.RequireFromString("0.015")))
	})

	t.Run("without fallback zero values stay zero", func(t *testing.T) {
		repo := NewGormProjectRepository(db)
		id := insertProject(0, "0")

		project, err := repo.FindByID(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, 0, project.PaymentGraceDays)
		assert.True(t, project.MoraRateMonthly.IsZero())
	})

	t.Run("nil for unknown project", func(t *testing.T) {
		repo := NewGormProjectRepositoryWithFallback(db, fallback)
		project, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, project)
	})
}

func TestSaleLogRepository(t *testing.T) {
	db := setupSalesTestDB(t)
	repo := NewGormSaleLogRepository(db)
	ctx := context.Background()

	saleID := uuid.New()
	actor := uuid.New()

	first := sales.NewSaleLog(saleID, sales.LogActionCollection, "recaudo registrado", &actor)
	first.CreatedAt = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	second := sales.NewSaleLog(saleID, sales.LogActionNote, "comision liquidada", nil)
	second.CreatedAt = time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Append(ctx, second))
	require.NoError(t, repo.Append(ctx, first))

	// Newest first
	entries, err := repo.ListBySale(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, first.ID, entries[1].ID)
	require.NotNil(t, entries[1].CreatedBy)
	assert.Equal(t, actor, *entries[1].CreatedBy)
}
