package handler

import (
	"net/http"
	"time"

	treasuryapp "github.com/casaverde/backoffice/internal/application/treasury"
	"github.com/casaverde/backoffice/internal/domain/treasury"
	"github.com/casaverde/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IdempotencyKeyHeader carries the caller's replay key for receipt
// generation.
const IdempotencyKeyHeader = "Idempotency-Key"

// dateLayout is the wire format for plain dates
const dateLayout = "2006-01-02"

// TreasuryHandler exposes the treasury request workflow. Successful
// responses go out as top-level documents rather than the back-office
// envelope: the collections automation reads id, form_token and
// nro_recibo off the document root.
type TreasuryHandler struct {
	BaseHandler
	service *treasuryapp.Service
}

// NewTreasuryHandler creates a new TreasuryHandler
func NewTreasuryHandler(service *treasuryapp.Service) *TreasuryHandler {
	return &TreasuryHandler{service: service}
}

// CreateTreasuryRequestInput is the payload the collections front end
// reports. Field names follow its wire contract; the external id may
// arrive as id or as the older numsolicitud.
type CreateTreasuryRequestInput struct {
	ID              string  `json:"id"`
	NumSolicitud    string  `json:"numsolicitud"`
	SaleID          *string `json:"sale_id" binding:"omitempty,uuid"`
	Cliente         string  `json:"cliente"`
	Proyecto        string  `json:"proyecto"`
	Asesor          string  `json:"asesor"`
	Valor           string  `json:"valor" binding:"required"`
	FechaPago       string  `json:"fecha_pago"`
	SoporteURL      string  `json:"soporte_url"`
	Origen          string  `json:"origen"`
	AbonoCapital    bool    `json:"abono_capital"`
	CondonacionMora bool    `json:"condonacion_mora"`
}

// ValidateTreasuryRequestInput optionally overrides the reported figures
type ValidateTreasuryRequestInput struct {
	Valor     string `json:"valor"`
	FechaPago string `json:"fecha_pago"`
}

// GenerateReceiptHTTPInput authorizes receipt generation. Valor and
// fecha_pago carry the figures confirmed on the treasurer's form.
type GenerateReceiptHTTPInput struct {
	FormToken   string  `json:"form_token"`
	Valor       string  `json:"valor"`
	FechaPago   string  `json:"fecha_pago"`
	FormaPagoID *string `json:"forma_pago_id" binding:"omitempty,uuid"`
}

// UpdateStatusInput is the manual-review override payload
type UpdateStatusInput struct {
	Estado string `json:"estado" binding:"required,oneof=REQUIRES_MANUAL"`
	Motivo string `json:"motivo"`
}

// TreasuryRequestResponse is the wire shape of a treasury request. The
// id is the external request number the automation keys on; the
// internal uuid never crosses the wire.
type TreasuryRequestResponse struct {
	ID              string           `json:"id"`
	NumSolicitud    string           `json:"numsolicitud"`
	SaleID          *string          `json:"sale_id,omitempty"`
	Contrato        string           `json:"contrato,omitempty"`
	Cliente         string           `json:"cliente,omitempty"`
	ProyectoNombre  string           `json:"proyecto_nombre,omitempty"`
	Asesor          string           `json:"asesor,omitempty"`
	Valor           string           `json:"valor"`
	FechaPago       *string          `json:"fecha_pago,omitempty"`
	SoporteURL      string           `json:"soporte_url,omitempty"`
	Origen          string           `json:"origen,omitempty"`
	AbonoCapital    bool             `json:"abono_capital"`
	CondonacionMora bool             `json:"condonacion_mora"`
	Estado          string           `json:"estado"`
	Resultado       string           `json:"resultado,omitempty"`
	Alertas         []treasury.Alert `json:"alertas"`
	MotivoRevision  string           `json:"motivo_revision,omitempty"`
	ReciboID        *string          `json:"recibo_id,omitempty"`
	UltimaValidada  *time.Time       `json:"ultima_validacion,omitempty"`
	CreadaEn        time.Time        `json:"creada_en"`
}

func toTreasuryRequestResponse(r *treasury.Request) TreasuryRequestResponse {
	resp := TreasuryRequestResponse{
		ID:              r.ExternalID,
		NumSolicitud:    r.ExternalID,
		Contrato:        r.ContractNumber,
		Cliente:         r.ClientName,
		ProyectoNombre:  r.ProjectName,
		Asesor:          r.AdvisorName,
		Valor:           r.AmountReported.StringFixed(2),
		SoporteURL:      r.SupportURL,
		Origen:          r.Source,
		AbonoCapital:    r.AbonoCapital,
		CondonacionMora: r.CondonacionMora,
		Estado:          string(r.Status),
		Resultado:       string(r.ValidationResult),
		Alertas:         r.Alerts,
		MotivoRevision:  r.ReviewReason,
		UltimaValidada:  r.LastValidatedAt,
		CreadaEn:        r.CreatedAt,
	}
	if r.Alerts == nil {
		resp.Alertas = []treasury.Alert{}
	}
	if r.SaleID != nil {
		id := r.SaleID.String()
		resp.SaleID = &id
	}
	if r.PaymentDate != nil {
		d := r.PaymentDate.Format(dateLayout)
		resp.FechaPago = &d
	}
	if r.ReceiptID != nil {
		id := r.ReceiptID.String()
		resp.ReciboID = &id
	}
	return resp
}

// CreateTreasuryResponse acknowledges a reported payment and flags
// replays with created=false.
type CreateTreasuryResponse struct {
	ID        string                  `json:"id"`
	Created   bool                    `json:"created"`
	Status    string                  `json:"status"`
	Solicitud TreasuryRequestResponse `json:"solicitud"`
}

// Create registers a reported payment. Replays with the same external
// id return the existing request and a 200 instead of a 201.
func (h *TreasuryHandler) Create(c *gin.Context) {
	var input CreateTreasuryRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	externalID := input.ID
	if externalID == "" {
		externalID = input.NumSolicitud
	}
	if externalID == "" {
		h.BadRequest(c, "id is required")
		return
	}

	amount, err := decimal.NewFromString(input.Valor)
	if err != nil {
		h.BadRequest(c, "valor must be a decimal number")
		return
	}

	appInput := treasuryapp.CreateRequestInput{
		ExternalID:      externalID,
		ClientName:      input.Cliente,
		ProjectName:     input.Proyecto,
		AdvisorName:     input.Asesor,
		Amount:          amount,
		SupportURL:      input.SoporteURL,
		Source:          input.Origen,
		AbonoCapital:    input.AbonoCapital,
		CondonacionMora: input.CondonacionMora,
	}
	if input.SaleID != nil {
		saleID, err := uuid.Parse(*input.SaleID)
		if err != nil {
			h.BadRequest(c, "sale_id must be a UUID")
			return
		}
		appInput.SaleID = &saleID
	}
	if input.FechaPago != "" {
		paid, err := time.Parse(dateLayout, input.FechaPago)
		if err != nil {
			h.BadRequest(c, "fecha_pago must use YYYY-MM-DD")
			return
		}
		appInput.PaymentDate = &paid
	}

	result, err := h.service.CreateRequest(c.Request.Context(), appInput)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := CreateTreasuryResponse{
		ID:        result.Request.ExternalID,
		Created:   result.Created,
		Status:    string(result.Request.Status),
		Solicitud: toTreasuryRequestResponse(result.Request),
	}
	if result.Created {
		c.JSON(http.StatusCreated, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// PendingListResponse wraps the pending listing with its count
type PendingListResponse struct {
	Items []TreasuryRequestResponse `json:"items"`
	Count int                       `json:"count"`
}

// ListPending lists PENDING and VALIDATED requests, oldest first.
// Supports fecha_desde, fecha_hasta and fecha_pago_hasta date filters.
func (h *TreasuryHandler) ListPending(c *gin.Context) {
	var filter treasury.PendingFilter

	if from := c.Query("fecha_desde"); from != "" {
		parsed, err := time.Parse(dateLayout, from)
		if err != nil {
			h.BadRequest(c, "fecha_desde must use YYYY-MM-DD")
			return
		}
		filter.CreatedFrom = &parsed
	}
	if to := c.Query("fecha_hasta"); to != "" {
		parsed, err := time.Parse(dateLayout, to)
		if err != nil {
			h.BadRequest(c, "fecha_hasta must use YYYY-MM-DD")
			return
		}
		// Inclusive upper bound
		end := parsed.Add(24*time.Hour - time.Nanosecond)
		filter.CreatedTo = &end
	}
	if until := c.Query("fecha_pago_hasta"); until != "" {
		parsed, err := time.Parse(dateLayout, until)
		if err != nil {
			h.BadRequest(c, "fecha_pago_hasta must use YYYY-MM-DD")
			return
		}
		filter.PaymentDateUntil = &parsed
	}

	requests, err := h.service.ListPending(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	items := make([]TreasuryRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, toTreasuryRequestResponse(&requests[i]))
	}
	c.JSON(http.StatusOK, PendingListResponse{Items: items, Count: len(items)})
}

// ValidationResponse carries the outcome of a validation run. The form
// token is only non-null after a clean run.
type ValidationResponse struct {
	SolicitudID    string           `json:"solicitud_id"`
	Estado         string           `json:"estado"`
	Resultado      string           `json:"resultado"`
	Alerts         []treasury.Alert `json:"alerts"`
	FormToken      *string          `json:"form_token"`
	MotivoRevision *string          `json:"motivo_revision"`
}

// Validate re-runs the automatic rules for a request
func (h *TreasuryHandler) Validate(c *gin.Context) {
	var input ValidateTreasuryRequestInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		middleware.HandleValidationError(c, err)
		return
	}
	h.validate(c, c.Param("numsolicitud"), input)
}

// LegacyValidateInput is the old wire contract: the request id travels
// in the body instead of the path.
type LegacyValidateInput struct {
	NumSolicitud string `json:"numsolicitud" binding:"required"`
	Valor        string `json:"valor"`
	FechaPago    string `json:"fecha_pago"`
}

// ValidateLegacy serves the original POST /recibos/validar contract
func (h *TreasuryHandler) ValidateLegacy(c *gin.Context) {
	var input LegacyValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.validate(c, input.NumSolicitud, ValidateTreasuryRequestInput{
		Valor:     input.Valor,
		FechaPago: input.FechaPago,
	})
}

func (h *TreasuryHandler) validate(c *gin.Context, externalID string, input ValidateTreasuryRequestInput) {
	appInput := treasuryapp.ValidateInput{ExternalID: externalID}
	if input.Valor != "" {
		amount, err := decimal.NewFromString(input.Valor)
		if err != nil {
			h.BadRequest(c, "valor must be a decimal number")
			return
		}
		appInput.Amount = amount
	}
	if input.FechaPago != "" {
		paid, err := time.Parse(dateLayout, input.FechaPago)
		if err != nil {
			h.BadRequest(c, "fecha_pago must use YYYY-MM-DD")
			return
		}
		appInput.PaymentDate = &paid
	}

	result, err := h.service.Validate(c.Request.Context(), appInput)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	alerts := result.Alerts
	if alerts == nil {
		alerts = []treasury.Alert{}
	}
	response := ValidationResponse{
		SolicitudID: result.Request.ExternalID,
		Estado:      string(result.Request.Status),
		Resultado:   string(result.Result),
		Alerts:      alerts,
	}
	if result.FormToken != "" {
		response.FormToken = &result.FormToken
	}
	if result.Request.ReviewReason != "" {
		response.MotivoRevision = &result.Request.ReviewReason
	}
	c.JSON(http.StatusOK, response)
}

// ReceiptGenerationResponse links the request to its receipt
type ReceiptGenerationResponse struct {
	ID          string `json:"id"`
	NroRecibo   string `json:"nro_recibo"`
	SolicitudID string `json:"solicitud_id"`
	Estado      string `json:"estado"`
	Idempotent  bool   `json:"idempotent"`
}

// GenerateReceipt turns a clean-validated request into a receipt.
// Replays, detected by the request's terminal state, return the
// original receipt with idempotente=true.
func (h *TreasuryHandler) GenerateReceipt(c *gin.Context) {
	var input GenerateReceiptHTTPInput
	if err := c.ShouldBindJSON(&input); err != nil && c.Request.ContentLength > 0 {
		middleware.HandleValidationError(c, err)
		return
	}
	h.generateReceipt(c, c.Param("numsolicitud"), input)
}

// LegacyGenerateReceiptInput is the old wire contract for receipt
// creation, request id in the body.
type LegacyGenerateReceiptInput struct {
	NumSolicitud string  `json:"numsolicitud" binding:"required"`
	FormToken    string  `json:"form_token"`
	Valor        string  `json:"valor"`
	FechaPago    string  `json:"fecha_pago"`
	FormaPagoID  *string `json:"forma_pago_id" binding:"omitempty,uuid"`
}

// GenerateReceiptLegacy serves the original POST /recibos/crear contract
func (h *TreasuryHandler) GenerateReceiptLegacy(c *gin.Context) {
	var input LegacyGenerateReceiptInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	h.generateReceipt(c, input.NumSolicitud, GenerateReceiptHTTPInput{
		FormToken:   input.FormToken,
		Valor:       input.Valor,
		FechaPago:   input.FechaPago,
		FormaPagoID: input.FormaPagoID,
	})
}

func (h *TreasuryHandler) generateReceipt(c *gin.Context, externalID string, input GenerateReceiptHTTPInput) {
	appInput := treasuryapp.GenerateReceiptInput{
		ExternalID:     externalID,
		FormToken:      input.FormToken,
		ActorID:        actingUserID(c),
		IdempotencyKey: c.GetHeader(IdempotencyKeyHeader),
	}
	if input.Valor != "" {
		amount, err := decimal.NewFromString(input.Valor)
		if err != nil {
			h.BadRequest(c, "valor must be a decimal number")
			return
		}
		appInput.Amount = amount
	}
	if input.FechaPago != "" {
		paid, err := time.Parse(dateLayout, input.FechaPago)
		if err != nil {
			h.BadRequest(c, "fecha_pago must use YYYY-MM-DD")
			return
		}
		appInput.PaymentDate = &paid
	}
	if input.FormaPagoID != nil {
		methodID, err := uuid.Parse(*input.FormaPagoID)
		if err != nil {
			h.BadRequest(c, "forma_pago_id must be a UUID")
			return
		}
		appInput.PaymentMethodID = &methodID
	}

	result, err := h.service.GenerateReceipt(c.Request.Context(), appInput)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := ReceiptGenerationResponse{
		ID:          result.ReceiptID.String(),
		NroRecibo:   result.ReceiptNumber,
		SolicitudID: result.Request.ExternalID,
		Estado:      string(result.Request.Status),
		Idempotent:  result.Idempotent,
	}
	if result.Idempotent {
		c.JSON(http.StatusOK, response)
		return
	}
	c.JSON(http.StatusCreated, response)
}

// UpdateStatus parks a request for manual review
func (h *TreasuryHandler) UpdateStatus(c *gin.Context) {
	externalID := c.Param("numsolicitud")

	var input UpdateStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	request, err := h.service.MarkManual(c.Request.Context(), externalID, input.Motivo)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTreasuryRequestResponse(request))
}

// PaymentMethodResponse is one collection channel of a project
type PaymentMethodResponse struct {
	ID         string `json:"id"`
	ProyectoID string `json:"proyecto_id"`
	Nombre     string `json:"nombre"`
	Activa     bool   `json:"activa"`
}

// PaymentMethods lists active collection channels for a project
func (h *TreasuryHandler) PaymentMethods(c *gin.Context) {
	projectID, err := uuid.Parse(c.Query("proyecto_id"))
	if err != nil {
		h.BadRequest(c, "proyecto_id must be a UUID")
		return
	}

	methods, err := h.service.PaymentMethodsByProject(c.Request.Context(), projectID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]PaymentMethodResponse, 0, len(methods))
	for _, method := range methods {
		responses = append(responses, PaymentMethodResponse{
			ID:         method.ID.String(),
			ProyectoID: method.ProjectID.String(),
			Nombre:     method.Name,
			Activa:     method.IsActive,
		})
	}
	c.JSON(http.StatusOK, responses)
}
