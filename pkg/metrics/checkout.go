package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout submission outcomes.
type CheckoutMetrics struct {
	duration  *prometheus.HistogramVec
	submitted *prometheus.CounterVec
	rejected  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of checkout submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"payment_method"})
	submitted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_placed",
		Help: "Orders placed successfully.",
	}, []string{"payment_method"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_rejected",
		Help: "Checkout submissions rejected before an order was placed.",
	}, []string{"reason"})
	reg.MustRegister(duration, submitted, rejected)
	return &CheckoutMetrics{
		duration:  duration,
		submitted: submitted,
		rejected:  rejected,
	}
}

// ObserveDuration records the duration for a submission with the given payment method.
func (c *CheckoutMetrics) ObserveDuration(paymentMethod string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(paymentMethod)).Observe(duration.Seconds())
}

// IncPlaced increments the placed-order counter for the given payment method.
func (c *CheckoutMetrics) IncPlaced(paymentMethod string) {
	if c == nil || c.submitted == nil {
		return
	}
	c.submitted.WithLabelValues(normalizeLabel(paymentMethod)).Inc()
}

// IncRejected increments the rejection counter for the given reason.
func (c *CheckoutMetrics) IncRejected(reason string) {
	if c == nil || c.rejected == nil {
		return
	}
	c.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
