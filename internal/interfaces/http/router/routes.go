package router

import (
	"github.com/casaverde/backoffice/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the API mounts
type Handlers struct {
	System     *handler.SystemHandler
	Treasury   *handler.TreasuryHandler
	Ledger     *handler.LedgerHandler
	Commission *handler.CommissionHandler
}

// APITokenMiddleware guards the endpoints the collections front end
// calls with the static shared token.
type APITokenMiddleware = gin.HandlerFunc

// BuildRoutes assembles the route tree. The treasury group carries the
// static API token guard; the back office groups ride on whatever
// authentication the engine-level middleware provides.
func BuildRoutes(r *Router, h Handlers, apiToken APITokenMiddleware) {
	system := NewDomainGroup("system", "/system")
	system.GET("/ping", h.System.Ping)
	system.GET("/info", h.System.GetSystemInfo)
	r.Register(system)

	treasury := NewDomainGroup("treasury", "/tesoreria")
	treasury.Use(apiToken)
	treasury.POST("/solicitudes", h.Treasury.Create)
	treasury.GET("/solicitudes/pendientes", h.Treasury.ListPending)
	treasury.POST("/solicitudes/:numsolicitud/validar", h.Treasury.Validate)
	treasury.POST("/solicitudes/:numsolicitud/generar-recibo", h.Treasury.GenerateReceipt)
	treasury.PATCH("/solicitudes/:numsolicitud/estado", h.Treasury.UpdateStatus)
	treasury.GET("/formas-pago", h.Treasury.PaymentMethods)
	r.Register(treasury)

	// Legacy aliases kept for the original front end's /recibos paths;
	// validate and crear take numsolicitud in the body.
	legacy := NewDomainGroup("treasury-legacy", "/recibos")
	legacy.Use(apiToken)
	legacy.GET("/pendientes", h.Treasury.ListPending)
	legacy.POST("/validar", h.Treasury.ValidateLegacy)
	legacy.POST("/crear", h.Treasury.GenerateReceiptLegacy)
	legacy.PATCH("/:numsolicitud/estado", h.Treasury.UpdateStatus)
	r.Register(legacy)

	sales := NewDomainGroup("sales", "/ventas")
	sales.GET("/:id/cronograma", h.Ledger.Schedule)
	sales.POST("/:id/recaudos", h.Ledger.CreateReceipt)
	sales.GET("/:id/comisiones", h.Commission.Snapshot)
	sales.POST("/:id/comisiones/liquidar", h.Commission.Liquidate)
	r.Register(sales)

	receipts := NewDomainGroup("receipts", "/recibos-registrados")
	receipts.POST("/:id/reasignar", h.Ledger.Reallocate)
	r.Register(receipts)

	commissions := NewDomainGroup("commissions", "/comisiones")
	commissions.GET("/cola", h.Commission.Queue)
	r.Register(commissions)

	r.Setup()
}

// HealthRoutes mounts the unauthenticated health endpoints directly on
// the engine, outside the versioned API group.
func HealthRoutes(engine *gin.Engine, ping gin.HandlerFunc) {
	engine.GET("/health", ping)
	engine.GET("/healthz", ping)
}
