package remote

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times calls to the booking service. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg when it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rooms",
			Subsystem: "remote",
			Name:      "requests_total",
			Help:      "Requests sent to the booking service by endpoint and status code.",
		}, []string{"endpoint", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "rooms",
			Subsystem: "remote",
			Name:      "request_duration_seconds",
			Help:      "Latency of booking service requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(endpoint, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, code).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}
