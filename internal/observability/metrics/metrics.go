package metrics

import "github.com/prometheus/client_golang/prometheus"

// PortalMetrics exposes counters/gauges/histograms for the portal's
// upstream traffic, queue polling, and push channel.
type PortalMetrics struct {
	upstreamTotal   *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	pollCycles      *prometheus.CounterVec
	remindersFired  prometheus.Counter
	pushSessions    prometheus.Gauge
}

func NewPortalMetrics(reg prometheus.Registerer) *PortalMetrics {
	m := &PortalMetrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "clinicapi",
			Name:      "requests_total",
			Help:      "Total requests issued to the clinic API",
		}, []string{"endpoint", "status"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "clinicapi",
			Name:      "request_duration_seconds",
			Help:      "Latency of clinic API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		pollCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "queue",
			Name:      "poll_cycles_total",
			Help:      "Queue poll cycles by outcome",
		}, []string{"outcome"}),
		remindersFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "queue",
			Name:      "reminders_fired_total",
			Help:      "Appointment reminders delivered to sessions",
		}),
		pushSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Subsystem: "push",
			Name:      "sessions",
			Help:      "Currently connected browser push sessions",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.upstreamLatency, m.pollCycles, m.remindersFired, m.pushSessions)
	return m
}

func (m *PortalMetrics) ObserveUpstream(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(endpoint, status).Inc()
	m.upstreamLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *PortalMetrics) ObservePollCycle(outcome string) {
	if m == nil {
		return
	}
	m.pollCycles.WithLabelValues(outcome).Inc()
}

func (m *PortalMetrics) ObserveReminderFired() {
	if m == nil {
		return
	}
	m.remindersFired.Inc()
}

func (m *PortalMetrics) PushSessionOpened() {
	if m == nil {
		return
	}
	m.pushSessions.Inc()
}

func (m *PortalMetrics) PushSessionClosed() {
	if m == nil {
		return
	}
	m.pushSessions.Dec()
}
