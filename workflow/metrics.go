package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics nil 也可用，什么都不记
type Metrics struct {
	operations *prometheus.CounterVec
	reserved   prometheus.Counter
	released   prometheus.Counter
	overdue    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lab",
			Subsystem: "workflow",
			Name:      "operations_total",
			Help:      "Workflow operations by name and outcome",
		}, []string{"op", "outcome"}),
		reserved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lab",
			Subsystem: "inventory",
			Name:      "reserved_units_total",
			Help:      "Component units reserved by submitted requests",
		}),
		released: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lab",
			Subsystem: "inventory",
			Name:      "released_units_total",
			Help:      "Component units put back by rejections and returns",
		}),
		overdue: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lab",
			Subsystem: "workflow",
			Name:      "overdue_marked_total",
			Help:      "Issued items flagged overdue by the sweep",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.operations, m.reserved, m.released, m.overdue)
	}
	return m
}

func (m *Metrics) observe(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	m.operations.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) addReserved(n int) {
	if m != nil {
		m.reserved.Add(float64(n))
	}
}

func (m *Metrics) addReleased(n int) {
	if m != nil {
		m.released.Add(float64(n))
	}
}

func (m *Metrics) addOverdue(n int64) {
	if m != nil {
		m.overdue.Add(float64(n))
	}
}
