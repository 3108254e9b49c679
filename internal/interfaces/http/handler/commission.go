package handler

import (
	commissionapp "github.com/casaverde/backoffice/internal/application/commission"
	"github.com/casaverde/backoffice/internal/domain/commission"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CommissionHandler exposes commission liquidation per sale
type CommissionHandler struct {
	BaseHandler
	service *commissionapp.LiquidationService
}

// NewCommissionHandler creates a new CommissionHandler
func NewCommissionHandler(service *commissionapp.LiquidationService) *CommissionHandler {
	return &CommissionHandler{service: service}
}

// ScaleStatusResponse is the payout state of one scale
type ScaleStatusResponse struct {
	UsuarioID         string `json:"usuario_id"`
	Rol               string `json:"rol"`
	Porcentaje        string `json:"porcentaje"`
	ComisionTotal     string `json:"comision_total"`
	LiquidableHoy     string `json:"liquidable_a_la_fecha"`
	YaLiquidado       string `json:"ya_liquidado"`
	PendientePorPagar string `json:"pendiente_por_liquidar"`
}

// SnapshotResponse is the liquidation state of a sale
type SnapshotResponse struct {
	VentaID          string                `json:"venta_id"`
	ValorVenta       string                `json:"valor_venta"`
	TotalRecaudado   string                `json:"total_recaudado"`
	BaseLiquidacion  string                `json:"base_liquidacion"`
	RatioLiquidacion string                `json:"ratio_liquidacion"`
	Escalas          []ScaleStatusResponse `json:"escalas"`
	TotalPendiente   string                `json:"total_pendiente"`
}

func toSnapshotResponse(snapshot *commission.Snapshot) SnapshotResponse {
	response := SnapshotResponse{
		VentaID:          snapshot.SaleID.String(),
		ValorVenta:       snapshot.SaleTotal.StringFixed(2),
		TotalRecaudado:   snapshot.TotalPaid.StringFixed(2),
		BaseLiquidacion:  snapshot.LiquidationBase.StringFixed(2),
		RatioLiquidacion: snapshot.LiquidationRatio.StringFixed(4),
		Escalas:          make([]ScaleStatusResponse, 0, len(snapshot.Scales)),
		TotalPendiente:   snapshot.TotalPending.StringFixed(2),
	}
	for _, status := range snapshot.Scales {
		response.Escalas = append(response.Escalas, ScaleStatusResponse{
			UsuarioID:         status.Scale.UserID.String(),
			Rol:               status.Scale.RoleName,
			Porcentaje:        status.Scale.Percentage.StringFixed(2),
			ComisionTotal:     status.CommissionTotal.StringFixed(2),
			LiquidableHoy:     status.LiquidableToDate.StringFixed(2),
			YaLiquidado:       status.AlreadyLiquidated.StringFixed(2),
			PendientePorPagar: status.PendingToLiquidate.StringFixed(2),
		})
	}
	return response
}

// Snapshot returns the live liquidation state of a sale
func (h *CommissionHandler) Snapshot(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "sale id must be a UUID")
		return
	}

	snapshot, err := h.service.Snapshot(c.Request.Context(), saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSnapshotResponse(snapshot))
}

// LiquidateResponse summarizes one liquidation run
type LiquidateResponse struct {
	Snapshot       SnapshotResponse `json:"snapshot"`
	TotalLiquidado string           `json:"total_liquidado"`
	PagosCreados   int              `json:"pagos_creados"`
}

// Liquidate pays every positive pending delta of a sale. Running it
// twice without new collections is a no-op.
func (h *CommissionHandler) Liquidate(c *gin.Context) {
	saleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "sale id must be a UUID")
		return
	}

	result, err := h.service.Liquidate(c.Request.Context(), saleID, actingUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LiquidateResponse{
		Snapshot:       toSnapshotResponse(result.Snapshot),
		TotalLiquidado: result.TotalLiquidated,
		PagosCreados:   result.PaymentsCreated,
	})
}

// QueueItemResponse is one sale in the liquidation queue
type QueueItemResponse struct {
	VentaID  string           `json:"venta_id"`
	Contrato string           `json:"contrato"`
	Cliente  string           `json:"cliente"`
	Snapshot SnapshotResponse `json:"snapshot"`
	Lista    bool             `json:"lista"`
}

// QueueResponse is the whole liquidation queue with aggregates
type QueueResponse struct {
	Ventas         []QueueItemResponse `json:"ventas"`
	ListasParaPago int                 `json:"listas_para_pago"`
	TotalPendiente string              `json:"total_pendiente"`
}

// Queue lists approved sales with scales and their pending payouts
func (h *CommissionHandler) Queue(c *gin.Context) {
	queue, err := h.service.LiquidationQueue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	response := QueueResponse{
		Ventas:         make([]QueueItemResponse, 0, len(queue.Items)),
		ListasParaPago: queue.ReadyCount,
		TotalPendiente: queue.TotalPending,
	}
	for _, item := range queue.Items {
		response.Ventas = append(response.Ventas, QueueItemResponse{
			VentaID:  item.SaleID.String(),
			Contrato: item.ContractNumber,
			Cliente:  item.ClientName,
			Snapshot: toSnapshotResponse(item.Snapshot),
			Lista:    item.Ready,
		})
	}
	h.Success(c, response)
}
