package observability

import (
	"errors"
	"net/http"

	"github.com/aretw0/tendril/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the controller collectors.
type Metrics struct {
	gatherer prometheus.Gatherer

	passes          prometheus.Counter
	passDuration    prometheus.Histogram
	eventsFired     *prometheus.CounterVec
	eventErrors     *prometheus.CounterVec
	transitions     *prometheus.CounterVec
	componentErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// Registering twice on the same registry reuses the existing collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		gatherer: reg,
		passes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tendril_passes_total",
			Help: "Total number of engine passes",
		}),
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tendril_pass_duration_seconds",
			Help:    "Duration of engine passes",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		eventsFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tendril_events_fired_total",
			Help: "Total number of trigger effects run, by event",
		}, []string{"event"}),
		eventErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tendril_event_errors_total",
			Help: "Total number of failed event evaluations, by event",
		}, []string{"event"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tendril_event_transitions_total",
			Help: "Total number of event activation changes, by event and target state",
		}, []string{"event", "state"}),
		componentErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tendril_component_errors_total",
			Help: "Total number of driver failures, by component",
		}, []string{"component"}),
	}

	m.passes = register(reg, m.passes)
	m.passDuration = register(reg, m.passDuration)
	m.eventsFired = register(reg, m.eventsFired)
	m.eventErrors = register(reg, m.eventErrors)
	m.transitions = register(reg, m.transitions)
	m.componentErrors = register(reg, m.componentErrors)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Hooks returns engine hooks recording into the collectors.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnPass: func(r domain.PassReport) {
			m.passes.Inc()
			m.passDuration.Observe(r.Duration.Seconds())
		},
		OnEventFired: func(event string) {
			m.eventsFired.WithLabelValues(event).Inc()
		},
		OnEventError: func(event string, _ error) {
			m.eventErrors.WithLabelValues(event).Inc()
		},
		OnEventTransition: func(t domain.TransitionEvent) {
			m.transitions.WithLabelValues(t.Event, string(t.To)).Inc()
		},
		OnComponentError: func(label string, _ error) {
			m.componentErrors.WithLabelValues(label).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
