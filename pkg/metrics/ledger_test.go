package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLedgerMetrics_Cuenta(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncMovement("IN")
	m.IncMovement("IN")
	m.IncRejection("insufficient_stock")
	m.IncBulkItem("stock", true)
	m.IncBulkItem("stock", false)
	m.IncOrderTransition("")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues("IN")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejections.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bulkItems.WithLabelValues("stock", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.orders.WithLabelValues("unknown")))
}

func TestLedgerMetrics_NilSeguro(t *testing.T) {
	var m *LedgerMetrics
	assert.NotPanics(t, func() {
		m.IncMovement("IN")
		m.IncWizardTurn("AWAITING_PRODUCT")
	})
	assert.NotPanics(t, func() { NewLedgerMetrics(nil).IncBulkItem("stock", true) })
}
