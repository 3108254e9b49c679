package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/casaverde/backoffice/internal/domain/treasury"
	"github.com/casaverde/backoffice/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTreasuryRequestTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.TreasuryRequestModel{})
	require.NoError(t, err)

	return db
}

func newTestRequest(t *testing.T, externalID string, amount string) *treasury.Request {
	t.Helper()
	request, err := treasury.NewRequest(externalID, decimal.RequireFromString(amount))
	require.NoError(t, err)
	return request
}

func TestTreasuryRequestRepository_CreateAndFind(t *testing.T) {
	db := setupTreasuryRequestTestDB(t)
	repo := NewGormTreasuryRequestRepository(db)
	ctx := context.Background()

	t.Run("creates and finds by external id", func(t *testing.T) {
		request := newTestRequest(t, "SOL-1001", "2500000.00")
		request.ClientName = "Maria Lopez"
		request.Source = "formulario"
		require.NoError(t, repo.Create(ctx, request))

		found, err := repo.FindByExternalID(ctx, "SOL-1001")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, request.ID, found.ID)
		assert.Equal(t, treasury.StatusPending, found.Status)
		assert.True(t, found.AmountReported.Equal(decimal.RequireFromString("2500000.00")))
		assert.Equal(t, "Maria Lopez", found.ClientName)
	})

	t.Run("returns nil for unknown external id", func(t *testing.T) {
		found, err := repo.FindByExternalID(ctx, "SOL-NONE")
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("finds by id", func(t *testing.T) {
		request := newTestRequest(t, "SOL-1002", "100.00")
		require.NoError(t, repo.Create(ctx, request))

		found, err := repo.FindByID(ctx, request.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "SOL-1002", found.ExternalID)
	})

	t.Run("rejects duplicate external id", func(t *testing.T) {
		first := newTestRequest(t, "SOL-1003", "100.00")
		require.NoError(t, repo.Create(ctx, first))

		second := newTestRequest(t, "SOL-1003", "200.00")
		assert.Error(t, repo.Create(ctx, second))
	})
}

func TestTreasuryRequestRepository_Save(t *testing.T) {
	db := setupTreasuryRequestTestDB(t)
	repo := NewGormTreasuryRequestRepository(db)
	ctx := context.Background()

	request := newTestRequest(t, "SOL-2001", "100.00")
	require.NoError(t, repo.Create(ctx, request))

	require.NoError(t, request.ApplyValidation(nil, "token-abc"))
	require.NoError(t, repo.Save(ctx, request))

	found, err := repo.FindByExternalID(ctx, "SOL-2001")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, treasury.StatusValidated, found.Status)
	assert.Equal(t, "token-abc", found.FormToken)
	assert.NotNil(t, found.LastValidatedAt)
}

func TestTreasuryRequestRepository_AlertsRoundTrip(t *testing.T) {
	db := setupTreasuryRequestTestDB(t)
	repo := NewGormTreasuryRequestRepository(db)
	ctx := context.Background()

	request := newTestRequest(t, "SOL-3001", "100.00")
	require.NoError(t, repo.Create(ctx, request))

	alerts := []treasury.Alert{
		treasury.NewAlert(treasury.AlertInconsistentValue),
		treasury.NewAlert(treasury.AlertTooManyFutureItems),
	}
	require.NoError(t, request.ApplyValidation(alerts, ""))
	require.NoError(t, repo.Save(ctx, request))

	found, err := repo.FindByExternalID(ctx, "SOL-3001")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Alerts, 2)
	assert.Equal(t, treasury.AlertInconsistentValue, found.Alerts[0].Code)
	assert.NotEmpty(t, found.Alerts[0].Message)
}

func TestTreasuryRequestRepository_ListPending(t *testing.T) {
	db := setupTreasuryRequestTestDB(t)
	repo := NewGormTreasuryRequestRepository(db)
	ctx := context.Background()

	mustCreate := func(externalID string, status treasury.Status, createdAt time.Time, paymentDate *time.Time) {
		request := newTestRequest(t, externalID, "100.00")
		request.Status = status
		request.CreatedAt = createdAt
		request.UpdatedAt = createdAt
		request.PaymentDate = paymentDate
		require.NoError(t, repo.Create(ctx, request))
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	payEarly := base.AddDate(0, 0, -10)
	payLate := base.AddDate(0, 0, 10)

	mustCreate("SOL-A", treasury.StatusPending, base, &payEarly)
	mustCreate("SOL-B", treasury.StatusValidated, base.Add(time.Hour), &payLate)
	mustCreate("SOL-C", treasury.StatusBlocked, base.Add(2*time.Hour), nil)
	mustCreate("SOL-D", treasury.StatusReceiptCreated, base.Add(3*time.Hour), nil)
	mustCreate("SOL-E", treasury.StatusPending, base.Add(4*time.Hour), nil)

	t.Run("returns only pending and validated, oldest first", func(t *testing.T) {
		requests, err := repo.ListPending(ctx, treasury.PendingFilter{})
		require.NoError(t, err)
		require.Len(t, requests, 3)
		assert.Equal(t, "SOL-A", requests[0].ExternalID)
		assert.Equal(t, "SOL-B", requests[1].ExternalID)
		assert.Equal(t, "SOL-E", requests[2].ExternalID)
	})

	t.Run("filters by creation window", func(t *testing.T) {
		from := base.Add(30 * time.Minute)
		to := base.Add(90 * time.Minute)
		requests, err := repo.ListPending(ctx, treasury.PendingFilter{
			CreatedFrom: &from,
			CreatedTo:   &to,
		})
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "SOL-B", requests[0].ExternalID)
	})

	t.Run("filters by payment date upper bound", func(t *testing.T) {
		until := base
		requests, err := repo.ListPending(ctx, treasury.PendingFilter{
			PaymentDateUntil: &until,
		})
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "SOL-A", requests[0].ExternalID)
	})
}
