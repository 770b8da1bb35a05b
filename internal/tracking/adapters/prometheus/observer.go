package prometheus

import (
	"conversion-tracking-service/internal/tracking/core/domain"
	"conversion-tracking-service/internal/tracking/core/ports"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer exports dispatch outcomes as counters.
type Observer struct {
	attempts      *prometheus.CounterVec
	confirmations *prometheus.CounterVec
	timeouts      *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion",
			Subsystem: "dispatch",
			Name:      "attempts_total",
			Help:      "Collector delivery attempts by event kind, verb and channel",
		}, []string{"kind", "verb", "channel"}),
		confirmations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion",
			Subsystem: "dispatch",
			Name:      "confirmations_total",
			Help:      "Deliveries confirmed by a direct collector call",
		}, []string{"kind"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion",
			Subsystem: "dispatch",
			Name:      "ready_timeouts_total",
			Help:      "Deliveries whose collector did not become ready in time",
		}, []string{"kind"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "conversion",
			Subsystem: "dispatch",
			Name:      "failures_total",
			Help:      "Failed delivery steps by stage (direct, queue)",
		}, []string{"kind", "stage"}),
	}
	reg.MustRegister(o.attempts, o.confirmations, o.timeouts, o.failures)
	return o
}

var _ ports.DispatchObserver = (*Observer)(nil)

func (o *Observer) Attempted(kind domain.EventKind, verb domain.Verb, channel string) {
	o.attempts.WithLabelValues(string(kind), string(verb), channel).Inc()
}

func (o *Observer) Confirmed(kind domain.EventKind) {
	o.confirmations.WithLabelValues(string(kind)).Inc()
}

func (o *Observer) TimedOut(kind domain.EventKind) {
	o.timeouts.WithLabelValues(string(kind)).Inc()
}

func (o *Observer) Failed(kind domain.EventKind, stage string) {
	o.failures.WithLabelValues(string(kind), stage).Inc()
}
