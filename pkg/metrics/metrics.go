package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// HTTP surface
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Backend calls
	BackendCalls   *prometheus.CounterVec
	BackendLatency *prometheus.HistogramVec
	BreakerState   *prometheus.GaugeVec

	// Schedule projection
	Reconciliations     *prometheus.CounterVec
	DroppedAppointments prometheus.Counter
	StaleResults        prometheus.Counter

	// Broker
	EventsPublished *prometheus.CounterVec
}

// New creates the metrics and registers them on reg. A nil registerer
// leaves them unregistered.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),

		BackendCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "calls_total",
			Help:      "Total number of calls to the business backend",
		}, []string{"operation", "status"}),
		BackendLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "call_duration_seconds",
			Help:      "Duration of backend calls",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"name"}),

		Reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "reconciliations_total",
			Help:      "Week reconciliations by source and outcome",
		}, []string{"source", "status"}),
		DroppedAppointments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "dropped_appointments_total",
			Help:      "Appointments without a weekday cell or a readable date",
		}),
		StaleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "schedule",
			Name:      "stale_results_total",
			Help:      "Fetch results discarded because the week changed",
		}),

		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "broker",
			Name:      "events_published_total",
			Help:      "Schedule events published to the broker",
		}, []string{"type", "status"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.RequestsTotal, m.RequestDuration,
			m.BackendCalls, m.BackendLatency, m.BreakerState,
			m.Reconciliations, m.DroppedAppointments, m.StaleResults,
			m.EventsPublished,
		)
	}
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *Metrics) ObserveBackendCall(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(operation, outcome(err)).Inc()
	m.BackendLatency.WithLabelValues(operation).Observe(d.Seconds())
}

func (m *Metrics) SetBreakerState(name string, state float64) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(state)
}

func (m *Metrics) ObserveReconcile(source string, err error) {
	if m == nil {
		return
	}
	m.Reconciliations.WithLabelValues(source, outcome(err)).Inc()
}

func (m *Metrics) AddDropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.DroppedAppointments.Add(float64(n))
}

func (m *Metrics) IncStale() {
	if m == nil {
		return
	}
	m.StaleResults.Inc()
}

func (m *Metrics) ObservePublish(eventType string, err error) {
	if m == nil {
		return
	}
	m.EventsPublished.WithLabelValues(eventType, outcome(err)).Inc()
}
