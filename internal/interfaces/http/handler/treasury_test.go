package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ledgerapp "github.com/casaverde/backoffice/internal/application/ledger"
	treasuryapp "github.com/casaverde/backoffice/internal/application/treasury"
	"github.com/casaverde/backoffice/internal/domain/identity"
	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/domain/sales"
	"github.com/casaverde/backoffice/internal/domain/shared"
	"github.com/casaverde/backoffice/internal/domain/treasury"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noopTx struct{}

func (noopTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memRequestRepo struct {
	byExternalID map[string]*treasury.Request
}

func (m *memRequestRepo) FindByID(_ context.Context, id uuid.UUID) (*treasury.Request, error) {
	for _, r := range m.byExternalID {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (m *memRequestRepo) FindByExternalID(_ context.Context, externalID string) (*treasury.Request, error) {
	return m.byExternalID[externalID], nil
}

func (m *memRequestRepo) FindByExternalIDForUpdate(ctx context.Context, externalID string) (*treasury.Request, error) {
	return m.FindByExternalID(ctx, externalID)
}

func (m *memRequestRepo) Create(_ context.Context, request *treasury.Request) error {
	m.byExternalID[request.ExternalID] = request
	return nil
}

func (m *memRequestRepo) Save(_ context.Context, request *treasury.Request) error {
	m.byExternalID[request.ExternalID] = request
	return nil
}

func (m *memRequestRepo) ListPending(_ context.Context, _ treasury.PendingFilter) ([]treasury.Request, error) {
	var out []treasury.Request
	for _, r := range m.byExternalID {
		if r.Status == treasury.StatusPending || r.Status == treasury.StatusValidated {
			out = append(out, *r)
		}
	}
	return out, nil
}

type memSaleRepo struct {
	sale *sales.Sale
}

func (m *memSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	if m.sale != nil && m.sale.ID == id {
		return m.sale, nil
	}
	return nil, nil
}

func (m *memSaleRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	return m.FindByID(ctx, id)
}

func (m *memSaleRepo) FindByContractNumber(_ context.Context, _ string) (*sales.Sale, error) {
	return nil, nil
}

func (m *memSaleRepo) FindPlanBySale(_ context.Context, _ uuid.UUID) (*sales.PaymentPlan, error) {
	return nil, nil
}

type memScheduleRepo struct {
	items []ledger.ScheduleItem
}

func (m *memScheduleRepo) ListBySale(_ context.Context, _ uuid.UUID) ([]ledger.ScheduleItem, error) {
	return m.items, nil
}

type memApplicationRepo struct{}

func (memApplicationRepo) ListBySale(_ context.Context, _ uuid.UUID) ([]ledger.Application, error) {
	return nil, nil
}

func (memApplicationRepo) ListBySaleExcludingReceipt(_ context.Context, _, _ uuid.UUID) ([]ledger.Application, error) {
	return nil, nil
}

func (memApplicationRepo) DeleteByReceipt(_ context.Context, _ uuid.UUID) error { return nil }

func (memApplicationRepo) CreateBatch(_ context.Context, _ []ledger.Application) error { return nil }

type memMethodRepo struct {
	methods []ledger.PaymentMethod
}

func (m *memMethodRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.PaymentMethod, error) {
	for i := range m.methods {
		if m.methods[i].ID == id {
			return &m.methods[i], nil
		}
	}
	return nil, nil
}

func (m *memMethodRepo) ListActiveByProject(_ context.Context, projectID uuid.UUID) ([]ledger.PaymentMethod, error) {
	var out []ledger.PaymentMethod
	for _, method := range m.methods {
		if method.ProjectID == projectID && method.IsActive {
			out = append(out, method)
		}
	}
	return out, nil
}

func (m *memMethodRepo) FirstActiveByProject(ctx context.Context, projectID uuid.UUID) (*ledger.PaymentMethod, error) {
	active, err := m.ListActiveByProject(ctx, projectID)
	if err != nil || len(active) == 0 {
		return nil, err
	}
	return &active[0], nil
}

type memUserRepo struct {
	user identity.User
}

func (m *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	if m.user.ID == id {
		return &m.user, nil
	}
	return nil, nil
}

func (m *memUserRepo) FirstActiveByRole(_ context.Context, role identity.RoleCode) (*identity.User, error) {
	if m.user.Role == role && m.user.IsActive {
		return &m.user, nil
	}
	return nil, nil
}

func (m *memUserRepo) FirstSuperuser(_ context.Context) (*identity.User, error) {
	if m.user.IsSuperuser {
		return &m.user, nil
	}
	return nil, nil
}

func (m *memUserRepo) FirstActive(_ context.Context) (*identity.User, error) {
	if m.user.IsActive {
		return &m.user, nil
	}
	return nil, nil
}

type memReceiptCreator struct {
	receipts []*ledger.Receipt
}

func (m *memReceiptCreator) CreateReceipt(_ context.Context, req ledgerapp.CreateReceiptRequest) (*ledgerapp.CreateReceiptResult, error) {
	receipt, err := ledger.NewReceipt(req.SaleID, req.Amount, req.DatePaid)
	if err != nil {
		return nil, err
	}
	m.receipts = append(m.receipts, receipt)
	return &ledgerapp.CreateReceiptResult{Receipt: receipt}, nil
}

func (m *memReceiptCreator) FindReceipt(_ context.Context, id uuid.UUID) (*ledger.Receipt, error) {
	for _, r := range m.receipts {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

// newTreasuryRouter wires the handler over an in-memory workflow: one
// approved sale with two 1100.00 installments, one active payment
// method and one treasury user.
func newTreasuryRouter(t *testing.T) (*gin.Engine, *sales.Sale) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	projectID := uuid.New()
	sale := &sales.Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProjectID:         projectID,
		ContractNumber:    "CV-2026-012",
		ClientName:        "Ana Torres",
		Status:            sales.SaleStatusApproved,
	}
	items := []ledger.ScheduleItem{
		{
			ID: uuid.New(), SaleID: sale.ID, N: 1, InstallmentNumber: 1,
			DueDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			Capital: decimal.RequireFromString("1000.00"), Interest: decimal.RequireFromString("100.00"),
		},
		{
			ID: uuid.New(), SaleID: sale.ID, N: 2, InstallmentNumber: 2,
			DueDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			Capital: decimal.RequireFromString("1000.00"), Interest: decimal.RequireFromString("100.00"),
		},
	}

	service := treasuryapp.NewService(
		noopTx{},
		&memRequestRepo{byExternalID: map[string]*treasury.Request{}},
		&memSaleRepo{sale: sale},
		&memScheduleRepo{items: items},
		memApplicationRepo{},
		&memMethodRepo{methods: []ledger.PaymentMethod{
			{BaseEntity: shared.NewBaseEntity(), ProjectID: projectID, Name: "Transferencia", IsActive: true},
		}},
		&memUserRepo{user: identity.User{
			BaseEntity: shared.NewBaseEntity(),
			Username:   "tesoreria",
			Role:       identity.RoleTreasury,
			IsActive:   true,
		}},
		&memReceiptCreator{},
		nil,
		zap.NewNop(),
	)

	h := NewTreasuryHandler(service)
	router := gin.New()
	router.POST("/tesoreria/solicitudes", h.Create)
	router.GET("/tesoreria/solicitudes/pendientes", h.ListPending)
	router.POST("/tesoreria/solicitudes/:numsolicitud/validar", h.Validate)
	router.POST("/tesoreria/solicitudes/:numsolicitud/generar-recibo", h.GenerateReceipt)
	router.POST("/recibos/validar", h.ValidateLegacy)
	return router, sale
}

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	return w, decoded
}

func reportPayment(t *testing.T, router *gin.Engine, sale *sales.Sale, externalID string) {
	t.Helper()
	w, _ := postJSON(t, router, "/tesoreria/solicitudes", map[string]any{
		"numsolicitud": externalID,
		"sale_id":      sale.ID.String(),
		"cliente":      sale.ClientName,
		"valor":        "1100.00",
		"fecha_pago":   "2026-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

// The collections automation reads fields off the document root, so
// the treasury endpoints must not wrap their payloads.
func TestTreasuryCreateRespondsAtDocumentRoot(t *testing.T) {
	router, sale := newTreasuryRouter(t)

	w, body := postJSON(t, router, "/tesoreria/solicitudes", map[string]any{
		"numsolicitud": "SOL-100",
		"sale_id":      sale.ID.String(),
		"valor":        "1100.00",
		"fecha_pago":   "2026-01-15",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "SOL-100", body["id"])
	assert.Equal(t, true, body["created"])
	assert.Equal(t, string(treasury.StatusPending), body["status"])
	assert.NotContains(t, body, "data")
	assert.NotContains(t, body, "success")

	// A replay answers 200 with created=false, still at the root.
	w, body = postJSON(t, router, "/tesoreria/solicitudes", map[string]any{
		"numsolicitud": "SOL-100",
		"valor":        "1100.00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["created"])
}

func TestTreasuryValidateRespondsAtDocumentRoot(t *testing.T) {
	router, sale := newTreasuryRouter(t)
	reportPayment(t, router, sale, "SOL-200")

	w, body := postJSON(t, router, "/tesoreria/solicitudes/SOL-200/validar", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SOL-200", body["solicitud_id"])
	assert.Equal(t, string(treasury.ResultClean), body["resultado"])
	assert.Contains(t, body, "alerts")
	assert.NotEmpty(t, body["form_token"])
	assert.NotContains(t, body, "data")
}

func TestTreasuryGenerateReceiptRespondsAtDocumentRoot(t *testing.T) {
	router, sale := newTreasuryRouter(t)
	reportPayment(t, router, sale, "SOL-300")

	_, validated := postJSON(t, router, "/tesoreria/solicitudes/SOL-300/validar", map[string]any{})
	token, ok := validated["form_token"].(string)
	require.True(t, ok)

	w, body := postJSON(t, router, "/tesoreria/solicitudes/SOL-300/generar-recibo", map[string]any{
		"form_token": token,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, body["id"])
	assert.NotEmpty(t, body["nro_recibo"])
	assert.Equal(t, "SOL-300", body["solicitud_id"])
	assert.NotContains(t, body, "data")
}

func TestTreasuryLegacyValidateRespondsAtDocumentRoot(t *testing.T) {
	router, sale := newTreasuryRouter(t)
	reportPayment(t, router, sale, "SOL-400")

	w, body := postJSON(t, router, "/recibos/validar", map[string]any{
		"numsolicitud": "SOL-400",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "SOL-400", body["solicitud_id"])
	assert.NotEmpty(t, body["form_token"])
	assert.NotContains(t, body, "data")
}
