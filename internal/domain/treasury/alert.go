package treasury

// AlertCode is the closed set of validation findings. Codes are part of
// the wire contract with the collections front end; messages are fixed
// templates keyed by code.
type AlertCode string

const (
	AlertInconsistentValue    AlertCode = "VALOR_INCONSISTENTE_CON_PLAN"
	AlertExceedsPending       AlertCode = "VALOR_MAYOR_CAPITAL_PENDIENTE"
	AlertTooManyFutureItems   AlertCode = "APLICACION_A_MUCHAS_CUOTAS_FUTURAS"
	AlertExcessiveFutureShare AlertCode = "PAGO_EN_CUOTAS_NO_VENCIDAS_EXCESIVO"
)

// alertMessages maps every code to its fixed display template
var alertMessages = map[AlertCode]string{
	AlertInconsistentValue:    "El valor reportado no es consistente con el plan de pagos",
	AlertExceedsPending:       "El valor reportado supera el capital pendiente de la venta",
	AlertTooManyFutureItems:   "El pago se aplicaría a más de dos cuotas no vencidas",
	AlertExcessiveFutureShare: "Más del 70% del pago se aplicaría a cuotas no vencidas",
}

// IsValid checks if the code is a known value
func (c AlertCode) IsValid() bool {
	_, ok := alertMessages[c]
	return ok
}

// IsBlocking reports whether the code blocks receipt generation
// outright instead of routing to manual review.
func (c AlertCode) IsBlocking() bool {
	return c == AlertExceedsPending
}

// Message returns the fixed template for the code
func (c AlertCode) Message() string {
	return alertMessages[c]
}

// Alert is one validation finding attached to a request
type Alert struct {
	Code    AlertCode `json:"code"`
	Message string    `json:"message"`
}

// NewAlert builds an alert with the code's fixed message
func NewAlert(code AlertCode) Alert {
	return Alert{Code: code, Message: code.Message()}
}

// ValidationResult summarizes a validation run
type ValidationResult string

const (
	ResultClean   ValidationResult = "sin_alertas"
	ResultAlerts  ValidationResult = "con_alertas"
	ResultBlocked ValidationResult = "bloqueo"
)

// ClassifyAlerts folds a list of findings into a validation result:
// any blocking alert wins, then any alert at all, then clean.
func ClassifyAlerts(alerts []Alert) ValidationResult {
	result := ResultClean
	for _, a := range alerts {
		if a.Code.IsBlocking() {
			return ResultBlocked
		}
		result = ResultAlerts
	}
	return result
}
