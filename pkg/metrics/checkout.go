package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records submission and approval activity for the checkout flow.
type CheckoutMetrics struct {
	submitDuration *prometheus.HistogramVec
	submissions    *prometheus.CounterVec
	approvals      *prometheus.CounterVec
	reconciles     prometheus.Counter
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submit_duration_seconds",
		Help:    "Duration of order submission attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	approvals := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_approvals_total",
		Help: "Parental approval gate evaluations by status.",
	}, []string{"status"})
	reconciles := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_reconciles_total",
		Help: "Guest cart reconciliations performed at login.",
	})
	reg.MustRegister(submitDuration, submissions, approvals, reconciles)
	return &CheckoutMetrics{
		submitDuration: submitDuration,
		submissions:    submissions,
		approvals:      approvals,
		reconciles:     reconciles,
	}
}

// ObserveSubmit records the duration of a submission attempt with its outcome.
func (c *CheckoutMetrics) ObserveSubmit(outcome string, duration time.Duration) {
	if c == nil || c.submitDuration == nil {
		return
	}
	c.submitDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncSubmission increments the submission counter for the given outcome.
func (c *CheckoutMetrics) IncSubmission(outcome string) {
	if c == nil || c.submissions == nil {
		return
	}
	c.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncApproval increments the approval gate counter for the given status.
func (c *CheckoutMetrics) IncApproval(status string) {
	if c == nil || c.approvals == nil {
		return
	}
	c.approvals.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncReconcile increments the guest cart reconciliation counter.
func (c *CheckoutMetrics) IncReconcile() {
	if c == nil || c.reconciles == nil {
		return
	}
	c.reconciles.Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
