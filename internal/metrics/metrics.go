// Package metrics provides Prometheus instrumentation for the
// authorization layer
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Effect labels for decision metrics
const (
	EffectAllow = "allow"
	EffectDeny  = "deny"
	EffectError = "error"
)

// Metrics collects authorization decision metrics
type Metrics struct {
	decisions *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates metrics registered on the given registerer
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "softdesk_authz_decisions_total",
			Help: "Authorization decisions by resource kind, action and effect",
		}, []string{"resource", "action", "effect"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "softdesk_authz_decision_duration_seconds",
			Help:    "Time spent evaluating one authorization decision",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource", "action"}),
	}
}

// ObserveDecision records one completed authorization decision. Nil
// receivers are valid so instrumentation stays optional.
func (m *Metrics) ObserveDecision(resource, action, effect string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(resource, action, effect).Inc()
	m.duration.WithLabelValues(resource, action).Observe(elapsed.Seconds())
}
