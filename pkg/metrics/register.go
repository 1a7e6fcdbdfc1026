package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RegisterMetrics records checkout and restock activity at the register.
type RegisterMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	payments         *prometheus.CounterVec
	restocks         *prometheus.CounterVec
}

// NewRegisterMetrics registers the register metrics on the provided registerer.
func NewRegisterMetrics(reg prometheus.Registerer) *RegisterMetrics {
	if reg == nil {
		return &RegisterMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payments_recorded_total",
		Help: "Committed payment records by mode.",
	}, []string{"mode"})
	restocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "restocks_total",
		Help: "Restock events by trigger.",
	}, []string{"trigger"})
	reg.MustRegister(checkoutDuration, payments, restocks)
	return &RegisterMetrics{
		checkoutDuration: checkoutDuration,
		payments:         payments,
		restocks:         restocks,
	}
}

// ObserveCheckout records the duration for the named checkout operation.
func (m *RegisterMetrics) ObserveCheckout(operation string, duration time.Duration) {
	if m == nil || m.checkoutDuration == nil {
		return
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncPayment increments the recorded-payments counter for the given mode.
func (m *RegisterMetrics) IncPayment(mode string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(mode)).Inc()
}

// IncRestock increments the restock counter for the given trigger.
func (m *RegisterMetrics) IncRestock(trigger string) {
	if m == nil || m.restocks == nil {
		return
	}
	m.restocks.WithLabelValues(normalizeLabel(trigger)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
