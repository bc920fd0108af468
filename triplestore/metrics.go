package triplestore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records triplestore request durations.
type Metrics struct {
	duration *prometheus.HistogramVec
}

// NewMetrics creates the triplestore metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "paralog",
			Subsystem: "triplestore",
			Name:      "request_duration_seconds",
			Help:      "Duration of triplestore requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "outcome"}), // outcome: ok, upstream_error, timeout, unavailable, malformed
	}
	if reg != nil {
		reg.MustRegister(m.duration)
	}
	return m
}

func (m *Metrics) observe(operation string, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(operation, outcome).Observe(time.Since(start).Seconds())
}
