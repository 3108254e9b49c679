package handler

import (
	"time"

	ledgerapp "github.com/casaverde/backoffice/internal/application/ledger"
	"github.com/casaverde/backoffice/internal/domain/ledger"
	"github.com/casaverde/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerHandler exposes the payment ledger of a sale
type LedgerHandler struct {
	BaseHandler
	service *ledgerapp.ReceiptService
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(service *ledgerapp.ReceiptService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// ScheduleItemResponse is one schedule row with its settled state
type ScheduleItemResponse struct {
	ID               string `json:"id"`
	N                int    `json:"n"`
	Cuota            int    `json:"cuota"`
	FechaVencimiento string `json:"fecha_vencimiento"`
	Etiqueta         string `json:"etiqueta,omitempty"`
	ValorTotal       string `json:"valor_total"`
	Capital          string `json:"capital"`
	Interes          string `json:"interes"`
	CapitalPagado    string `json:"capital_pagado"`
	InteresPagado    string `json:"interes_pagado"`
	MoraPagada       string `json:"mora_pagada"`
	CapitalPendiente string `json:"capital_pendiente"`
	InteresPendiente string `json:"interes_pendiente"`
	MoraALaFecha     string `json:"mora_a_la_fecha"`
	TotalmentePagada bool   `json:"totalmente_pagada"`
}

// ScheduleViewResponse is the full ledger view of a sale
type ScheduleViewResponse struct {
	Corte            time.Time              `json:"corte"`
	Cuotas           []ScheduleItemResponse `json:"cuotas"`
	CapitalPendiente string                 `json:"capital_pendiente"`
	InteresPendiente string                 `json:"interes_pendiente"`
	MoraALaFecha     string                 `json:"mora_a_la_fecha"`
}

func toScheduleViewResponse(view *ledger.ScheduleView) ScheduleViewResponse {
	response := ScheduleViewResponse{
		Corte:            view.AsOf,
		Cuotas:           make([]ScheduleItemResponse, 0, len(view.Items)),
		CapitalPendiente: view.PendingCapital.StringFixed(2),
		InteresPendiente: view.PendingInterest.StringFixed(2),
		MoraALaFecha:     view.MoraToDate.StringFixed(2),
	}
	for _, status := range view.Items {
		response.Cuotas = append(response.Cuotas, ScheduleItemResponse{
			ID:               status.Item.ID.String(),
			N:                status.Item.N,
			Cuota:            status.Item.InstallmentNumber,
			FechaVencimiento: status.Item.DueDate.Format(dateLayout),
			Etiqueta:         status.Item.Label,
			ValorTotal:       status.Item.TotalValue.StringFixed(2),
			Capital:          status.Item.Capital.StringFixed(2),
			Interes:          status.Item.Interest.StringFixed(2),
			CapitalPagado:    status.PaidCapital.StringFixed(2),
			InteresPagado:    status.PaidInterest.StringFixed(2),
			MoraPagada:       status.PaidMora.StringFixed(2),
			CapitalPendiente: status.PendingCapital.StringFixed(2),
			InteresPendiente: status.PendingInterest.StringFixed(2),
			MoraALaFecha:     status.MoraToDate.StringFixed(2),
			TotalmentePagada: status.FullyPaid,
		})
	}
	return response
}

// Schedule returns a sale's schedule with mora computed as of today
func (h *LedgerHandler) Schedule(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "sale id must be a UUID")
		return
	}

	view, err := h.service.ScheduleView(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toScheduleViewResponse(view))
}

// CreateReceiptInput registers a collection directly against a sale
type CreateReceiptInput struct {
	Valor       string  `json:"valor" binding:"required"`
	FechaPago   string  `json:"fecha_pago" binding:"required"`
	FormaPagoID *string `json:"forma_pago_id" binding:"omitempty,uuid"`
	Soporte     string  `json:"soporte"`
	Notas       string  `json:"notas"`
}

// AllocationResponse is one waterfall line of a receipt
type AllocationResponse struct {
	CuotaID  string `json:"cuota_id"`
	Concepto string `json:"concepto"`
	Valor    string `json:"valor"`
}

// ReceiptResponse is the wire shape of a registered receipt
type ReceiptResponse struct {
	ID           string               `json:"id"`
	NroRecibo    string               `json:"nro_recibo"`
	VentaID      string               `json:"venta_id"`
	Valor        string               `json:"valor"`
	FechaPago    string               `json:"fecha_pago"`
	Excedente    string               `json:"excedente"`
	Notas        string               `json:"notas,omitempty"`
	Duplicado    bool                 `json:"duplicado"`
	Aplicaciones []AllocationResponse `json:"aplicaciones"`
}

func toReceiptResponse(result *ledgerapp.CreateReceiptResult) ReceiptResponse {
	receipt := result.Receipt
	response := ReceiptResponse{
		ID:           receipt.ID.String(),
		NroRecibo:    receipt.Number,
		VentaID:      receipt.SaleID.String(),
		Valor:        receipt.Amount.StringFixed(2),
		FechaPago:    receipt.DatePaid.Format(dateLayout),
		Excedente:    receipt.Surplus.StringFixed(2),
		Notas:        receipt.Notes,
		Duplicado:    result.Duplicate,
		Aplicaciones: make([]AllocationResponse, 0, len(result.Allocations)),
	}
	for _, app := range result.Allocations {
		response.Aplicaciones = append(response.Aplicaciones, AllocationResponse{
			CuotaID:  app.ScheduleItemID.String(),
			Concepto: app.Concept.String(),
			Valor:    app.Amount.StringFixed(2),
		})
	}
	return response
}

// CreateReceipt registers a collection and runs the waterfall
func (h *LedgerHandler) CreateReceipt(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "sale id must be a UUID")
		return
	}

	var input CreateReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	amount, err := decimal.NewFromString(input.Valor)
	if err != nil {
		h.BadRequest(c, "valor must be a decimal number")
		return
	}
	datePaid, err := time.Parse(dateLayout, input.FechaPago)
	if err != nil {
		h.BadRequest(c, "fecha_pago must use YYYY-MM-DD")
		return
	}

	req := ledgerapp.CreateReceiptRequest{
		SaleID:      saleID,
		Amount:      amount,
		DatePaid:    datePaid,
		EvidenceURL: input.Soporte,
		Notes:       input.Notas,
		CreatedBy:   actingUserID(c),
	}
	if input.FormaPagoID != nil {
		methodID, err := uuid.Parse(*input.FormaPagoID)
		if err != nil {
			h.BadRequest(c, "forma_pago_id must be a UUID")
			return
		}
		req.PaymentMethodID = &methodID
	}

	result, err := h.service.CreateReceipt(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := toReceiptResponse(result)
	if result.Duplicate {
		h.Success(c, response)
		return
	}
	h.Created(c, response)
}

// Reallocate rebuilds a receipt's applications from scratch
func (h *LedgerHandler) Reallocate(c *gin.Context) {
	receiptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "receipt id must be a UUID")
		return
	}

	result, err := h.service.Reallocate(c.Request.Context(), receiptID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toReceiptResponse(result))
}
