package shop

import "github.com/prometheus/client_golang/prometheus"

// Metrics carries the RED instruments the shop flows report into. A nil
// *Metrics is valid and records nothing, which keeps test wiring small.
type Metrics struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

// NewMetrics builds and registers the shop flow instruments.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shop_requests_total",
				Help: "Total number of shop flow invocations.",
			},
			[]string{"flow", "outcome"},
		),
		durations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shop_flow_duration_seconds",
				Help:    "Duration of shop flow execution in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"flow"},
		),
	}
	reg.MustRegister(m.requests, m.durations)
	return m
}

func (m *Metrics) observe(flow, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(flow, outcome).Inc()
	m.durations.WithLabelValues(flow).Observe(seconds)
}
