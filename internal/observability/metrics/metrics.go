package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebhookMetrics exposes counters/histograms for the voice webhook and the calendar calls behind it.
type WebhookMetrics struct {
	eventsTotal     *prometheus.CounterVec
	outcomesTotal   *prometheus.CounterVec
	webhookLatency  *prometheus.HistogramVec
	calendarLatency *prometheus.HistogramVec
}

func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	m := &WebhookMetrics{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Total inbound voice webhook events",
		}, []string{"event", "function"}),
		outcomesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scheduling",
			Subsystem: "webhook",
			Name:      "outcomes_total",
			Help:      "Scheduling outcomes spoken back to callers",
		}, []string{"operation", "outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of voice webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event"}),
		calendarLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scheduling",
			Subsystem: "calendar",
			Name:      "request_duration_seconds",
			Help:      "Latency of Cal.com API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.eventsTotal, m.outcomesTotal, m.webhookLatency, m.calendarLatency)
	return m
}

func (m *WebhookMetrics) ObserveEvent(event, function string) {
	if m == nil {
		return
	}
	if function == "" {
		function = "none"
	}
	m.eventsTotal.WithLabelValues(event, function).Inc()
}

func (m *WebhookMetrics) ObserveOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.outcomesTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *WebhookMetrics) ObserveWebhookLatency(event string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(event).Observe(seconds)
}

func (m *WebhookMetrics) ObserveCalendarRequest(operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.calendarLatency.WithLabelValues(operation, status).Observe(seconds)
}
