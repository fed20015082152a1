package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics contadores del motor de inventario. Un *LedgerMetrics nil no registra nada.
type LedgerMetrics struct {
	movements   *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	bulkItems   *prometheus.CounterVec
	orders      *prometheus.CounterVec
	wizardTurns *prometheus.CounterVec
}

// NewLedgerMetrics registra las métricas en el registerer indicado.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movements_total",
		Help: "Movimientos registrados en el ledger por tipo.",
	}, []string{"type"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_movement_rejections_total",
		Help: "Movimientos rechazados por motivo.",
	}, []string{"reason"})
	bulkItems := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_operation_items_total",
		Help: "Productos procesados por operaciones masivas.",
	}, []string{"operation", "result"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_transitions_total",
		Help: "Transiciones de estado de órdenes.",
	}, []string{"status"})
	wizardTurns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wizard_turns_total",
		Help: "Turnos del asistente conversacional por estado resultante.",
	}, []string{"state"})
	reg.MustRegister(movements, rejections, bulkItems, orders, wizardTurns)
	return &LedgerMetrics{
		movements:   movements,
		rejections:  rejections,
		bulkItems:   bulkItems,
		orders:      orders,
		wizardTurns: wizardTurns,
	}
}

// IncMovement cuenta un movimiento confirmado.
func (m *LedgerMetrics) IncMovement(movementType string) {
	if m == nil || m.movements == nil {
		return
	}
	m.movements.WithLabelValues(normalizeLabel(movementType)).Inc()
}

// IncRejection cuenta un movimiento rechazado.
func (m *LedgerMetrics) IncRejection(reason string) {
	if m == nil || m.rejections == nil {
		return
	}
	m.rejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// IncBulkItem cuenta un producto procesado en una operación masiva.
func (m *LedgerMetrics) IncBulkItem(operation string, ok bool) {
	if m == nil || m.bulkItems == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.bulkItems.WithLabelValues(normalizeLabel(operation), result).Inc()
}

// IncOrderTransition cuenta una transición de orden aplicada.
func (m *LedgerMetrics) IncOrderTransition(status string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncWizardTurn cuenta un turno del asistente.
func (m *LedgerMetrics) IncWizardTurn(state string) {
	if m == nil || m.wizardTurns == nil {
		return
	}
	m.wizardTurns.WithLabelValues(normalizeLabel(state)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
