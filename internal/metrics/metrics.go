package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the engine's prometheus collectors. A nil *Metrics is valid
// and records nothing, so tests can skip registration.
type Metrics struct {
	decisions     *prometheus.CounterVec
	checkFailures *prometheus.CounterVec
	checkLatency  *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendverify",
			Name:      "decisions_total",
			Help:      "Attendance decisions by resulting status.",
		}, []string{"status"}),
		checkFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "attendverify",
			Name:      "check_failures_total",
			Help:      "Failed verification checks by channel and cause.",
		}, []string{"channel", "cause"}),
		checkLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "attendverify",
			Name:      "check_duration_seconds",
			Help:      "Verification check latency by channel.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	reg.MustRegister(m.decisions, m.checkFailures, m.checkLatency)
	return m
}

// IncDecision counts a final decision.
func (m *Metrics) IncDecision(status string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(status).Inc()
}

// IncCheckFailure counts a failed check; cause distinguishes a genuine
// mismatch from a verifier that did not answer.
func (m *Metrics) IncCheckFailure(channel, cause string) {
	if m == nil {
		return
	}
	m.checkFailures.WithLabelValues(channel, cause).Inc()
}

// ObserveCheckLatency records one check's duration.
func (m *Metrics) ObserveCheckLatency(channel string, d time.Duration) {
	if m == nil {
		return
	}
	m.checkLatency.WithLabelValues(channel).Observe(d.Seconds())
}
