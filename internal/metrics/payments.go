package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "influencehub"

// PaymentMetrics records outcomes of payment and refund operations.
type PaymentMetrics struct {
	payments *prometheus.CounterVec
	refunds  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
// A nil registerer yields a recorder that drops every observation.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_total",
		Help:      "Payment attempts by outcome.",
	}, []string{"outcome"})
	refunds := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refunds_total",
		Help:      "Refund attempts by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "payment_operation_seconds",
		Help:      "Duration of payment operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(payments, refunds, duration)
	return &PaymentMetrics{
		payments: payments,
		refunds:  refunds,
		duration: duration,
	}
}

// IncPayment counts a payment attempt with the given outcome.
func (m *PaymentMetrics) IncPayment(outcome string) {
	if m == nil || m.payments == nil {
		return
	}
	m.payments.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncRefund counts a refund attempt with the given outcome.
func (m *PaymentMetrics) IncRefund(outcome string) {
	if m == nil || m.refunds == nil {
		return
	}
	m.refunds.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveDuration records how long the named operation took.
func (m *PaymentMetrics) ObserveDuration(operation string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(operation)).Observe(d.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
