package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IntakeMetrics collects the counters and gauges for the intake pipeline.
// A nil *IntakeMetrics is valid and records nothing, so tests can pass nil.
type IntakeMetrics struct {
	pollsTotal      prometheus.Counter
	pollFailures    prometheus.Counter
	newOrders       prometheus.Counter
	ordersAccepted  prometheus.Counter
	ordersCancelled prometheus.Counter
	pendingOrders   prometheus.Gauge
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	factory := promauto.With(reg)
	return &IntakeMetrics{
		pollsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "intake_polls_total",
			Help: "Total polling cycles executed.",
		}),
		pollFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "intake_poll_failures_total",
			Help: "Polling cycles that failed to fetch orders.",
		}),
		newOrders: factory.NewCounter(prometheus.CounterOpts{
			Name: "intake_new_orders_total",
			Help: "Genuinely new orders detected.",
		}),
		ordersAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "orders_accepted_total",
			Help: "Orders accepted by the merchant.",
		}),
		ordersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Orders cancelled by the merchant.",
		}),
		pendingOrders: factory.NewGauge(prometheus.GaugeOpts{
			Name: "intake_pending_orders",
			Help: "Orders currently pending merchant review.",
		}),
	}
}

func (m *IntakeMetrics) IncPoll() {
	if m == nil {
		return
	}
	m.pollsTotal.Inc()
}

func (m *IntakeMetrics) IncPollFailure() {
	if m == nil {
		return
	}
	m.pollFailures.Inc()
}

func (m *IntakeMetrics) AddNewOrders(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.newOrders.Add(float64(n))
}

func (m *IntakeMetrics) IncAccepted() {
	if m == nil {
		return
	}
	m.ordersAccepted.Inc()
}

func (m *IntakeMetrics) IncCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *IntakeMetrics) SetPending(n int) {
	if m == nil {
		return
	}
	m.pendingOrders.Set(float64(n))
}
