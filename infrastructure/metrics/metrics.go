package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Manager is the process-wide metrics surface. Gauges are created lazily so
// the runtime middleware can set whatever it observes.
type Manager interface {
	SetGauge(name string, value float64)
	CountSettlement(outcome string)
	AddChargedMicro(amount int64)
	ObserveInferenceSeconds(seconds float64)
}

// Settlement outcomes recorded per request.
const (
	OutcomeNoHost       = "no_host"
	OutcomeInsufficient = "insufficient_funds"
	OutcomeUnreachable  = "upstream_unavailable"
	OutcomeUnsettled    = "settlement_failed"
	OutcomeSettled      = "settled"
)

type manager struct {
	mu     sync.Mutex
	gauges map[string]prometheus.Gauge

	settlements  *prometheus.CounterVec
	chargedMicro prometheus.Counter
	inference    prometheus.Histogram
}

func NewManager() Manager {
	m := &manager{
		gauges: make(map[string]prometheus.Gauge),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "promptroom_settlements_total",
			Help: "Guest prompt settlements by outcome.",
		}, []string{"outcome"}),
		chargedMicro: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "promptroom_charged_micro_units_total",
			Help: "Total settled charge volume in micro-units.",
		}),
		inference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "promptroom_inference_duration_seconds",
			Help:    "Latency of forwarded inference calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	prometheus.MustRegister(m.settlements, m.chargedMicro, m.inference)

	return m
}

func (m *manager) SetGauge(name string, value float64) {
	m.mu.Lock()
	gauge, ok := m.gauges[name]
	if !ok {
		gauge = prometheus.NewGauge(prometheus.GaugeOpts{Name: name})
		if err := prometheus.Register(gauge); err != nil {
			m.mu.Unlock()
			return
		}
		m.gauges[name] = gauge
	}
	m.mu.Unlock()

	gauge.Set(value)
}

func (m *manager) CountSettlement(outcome string) {
	m.settlements.WithLabelValues(outcome).Inc()
}

func (m *manager) AddChargedMicro(amount int64) {
	if amount > 0 {
		m.chargedMicro.Add(float64(amount))
	}
}

func (m *manager) ObserveInferenceSeconds(seconds float64) {
	m.inference.Observe(seconds)
}

// NopManager discards every observation; handy in tests.
type NopManager struct{}

func (NopManager) SetGauge(string, float64)        {}
func (NopManager) CountSettlement(string)          {}
func (NopManager) AddChargedMicro(int64)           {}
func (NopManager) ObserveInferenceSeconds(float64) {}
