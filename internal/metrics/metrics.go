// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "telemetry_agent"

// Metrics holds the agent's collectors. Registered on the given registry so
// tests can use a private one.
type Metrics struct {
	Frames           *prometheus.CounterVec
	DeliveryAttempts *prometheus.CounterVec
	DeliveryOutcomes *prometheus.CounterVec
	AttemptDuration  prometheus.Histogram
	PortEvents       *prometheus.CounterVec
	SensorErrors     prometheus.Counter
	LoopState        *prometheus.GaugeVec
	Temperature      prometheus.Gauge
	Humidity         prometheus.Gauge
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Device lines seen, by parse result (accepted|chatter|malformed).",
		}, []string{"result"}),

		DeliveryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_attempts_total",
			Help:      "HTTP delivery attempts by result (ok|http_status|timeout|network|cancelled).",
		}, []string{"result"}),

		DeliveryOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_outcomes_total",
			Help:      "Final delivery outcome per reading.",
		}, []string{"outcome"}),

		AttemptDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "delivery_attempt_seconds",
			Help:      "Duration of single delivery attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		PortEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "port_events_total",
			Help:      "Serial port lifecycle events (discovered|opened|open_failed|faulted|closed).",
		}, []string{"event"}),

		SensorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sensor_read_errors_total",
			Help:      "Failed register sensor reads.",
		}),

		LoopState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loop_state",
			Help:      "1 for the current ingestion state, 0 otherwise.",
		}, []string{"state"}),

		Temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_temperature_celsius",
			Help:      "Temperature of the last accepted reading.",
		}),

		Humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_humidity_percent",
			Help:      "Relative humidity of the last accepted reading.",
		}),
	}

	reg.MustRegister(
		m.Frames,
		m.DeliveryAttempts,
		m.DeliveryOutcomes,
		m.AttemptDuration,
		m.PortEvents,
		m.SensorErrors,
		m.LoopState,
		m.Temperature,
		m.Humidity,
	)
	return m
}

// ---- delivery.Observer ----

func (m *Metrics) ObserveAttempt(result string, d time.Duration) {
	m.DeliveryAttempts.WithLabelValues(result).Inc()
	m.AttemptDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveOutcome(outcome string) {
	m.DeliveryOutcomes.WithLabelValues(outcome).Inc()
}

// ---- ingestion ----

func (m *Metrics) Frame(result string) {
	m.Frames.WithLabelValues(result).Inc()
}

func (m *Metrics) PortEvent(event string) {
	m.PortEvents.WithLabelValues(event).Inc()
}

func (m *Metrics) SensorError() {
	m.SensorErrors.Inc()
}

func (m *Metrics) Reading(temperature, humidity float64) {
	m.Temperature.Set(temperature)
	m.Humidity.Set(humidity)
}

// SetState flips the one-hot state gauge.
func (m *Metrics) SetState(current string, all []string) {
	for _, s := range all {
		v := 0.0
		if s == current {
			v = 1
		}
		m.LoopState.WithLabelValues(s).Set(v)
	}
}
