package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric family %s not gathered", name)
	return nil
}

func labels(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

func TestWebhookMetricsCountsEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.ObserveEvent("function_call", "check_availability")
	m.ObserveEvent("function_call", "check_availability")
	m.ObserveEvent("call_ended", "")

	f := family(t, reg, "scheduling_webhook_events_total")
	require.Len(t, f.GetMetric(), 2)
	counts := map[string]float64{}
	for _, metric := range f.GetMetric() {
		l := labels(metric)
		counts[l["event"]+"/"+l["function"]] = metric.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, counts["function_call/check_availability"])
	assert.Equal(t, 1.0, counts["call_ended/none"])
}

func TestWebhookMetricsOutcomesAndLatency(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWebhookMetrics(reg)
	m.ObserveOutcome("book_appointment", "booked")
	m.ObserveWebhookLatency("function_call", 0.25)
	m.ObserveCalendarRequest("get_slots", "200", 0.1)
	m.ObserveCalendarRequest("get_slots", "200", 0.3)

	outcomes := family(t, reg, "scheduling_webhook_outcomes_total")
	require.Len(t, outcomes.GetMetric(), 1)
	assert.Equal(t, map[string]string{"operation": "book_appointment", "outcome": "booked"}, labels(outcomes.GetMetric()[0]))

	latency := family(t, reg, "scheduling_webhook_latency_seconds")
	assert.Equal(t, dto.MetricType_HISTOGRAM, latency.GetType())
	assert.Equal(t, uint64(1), latency.GetMetric()[0].GetHistogram().GetSampleCount())

	calendar := family(t, reg, "scheduling_calendar_request_duration_seconds")
	h := calendar.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.4, h.GetSampleSum(), 1e-9)
}

func TestWebhookMetricsDefaultRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	prev := prometheus.DefaultRegisterer
	prometheus.DefaultRegisterer = reg
	t.Cleanup(func() { prometheus.DefaultRegisterer = prev })

	m := NewWebhookMetrics(nil)
	m.ObserveOutcome("check_availability", "degraded")
	family(t, reg, "scheduling_webhook_outcomes_total")
}

func TestWebhookMetricsNilSafe(t *testing.T) {
	var m *WebhookMetrics
	m.ObserveEvent("event", "function")
	m.ObserveOutcome("operation", "outcome")
	m.ObserveWebhookLatency("event", 0.1)
	m.ObserveCalendarRequest("get_slots", "error", 0.1)
}
