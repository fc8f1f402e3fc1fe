package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are shared by every controller in a process.
type Metrics struct {
	Quotes     *prometheus.CounterVec
	Payments   *prometheus.CounterVec
	SubmitTime prometheus.Histogram
}

// NewMetrics registers the checkout collectors on reg. A nil reg skips
// registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "quotes_total",
			Help:      "Quote requests by result (ok, fallback, error, stale).",
		}, []string{"result"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "checkout",
			Name:      "payments_total",
			Help:      "Checkout attempts by final status.",
		}, []string{"status"}),
		SubmitTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "checkout",
			Name:      "submit_duration_seconds",
			Help:      "Time spent waiting on the settlement network.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Quotes, m.Payments, m.SubmitTime)
	}
	return m
}

func (m *Metrics) quote(result string) {
	if m == nil {
		return
	}
	m.Quotes.WithLabelValues(result).Inc()
}

func (m *Metrics) payment(status string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(status).Inc()
}

func (m *Metrics) submitted(seconds float64) {
	if m == nil {
		return
	}
	m.SubmitTime.Observe(seconds)
}
