package directory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dentalRecord() Record {
	return Record{
		ID:          "agent_smile",
		DisplayName: "Smile Dental",
		CalAPIKey:   "cal_live_123",
		Timezone:    "America/Chicago",
		AppointmentTypes: map[string]EventTypeID{
			"cleaning":    "101",
			"Exam":        "102",
			"new-patient": "103",
			"emergency":   "104",
		},
	}
}

func TestEventTypeIDLabelVariants(t *testing.T) {
	tenant, err := NewTenant(dentalRecord(), "America/New_York")
	require.NoError(t, err)

	for _, label := range []string{"new-patient", "new patient", "New Patient", "NEW_PATIENT", "  new  -  patient "} {
		id, ok := tenant.EventTypeID(label)
		assert.True(t, ok, label)
		assert.Equal(t, "103", id, label)
	}

	id, ok := tenant.EventTypeID("EXAM")
	assert.True(t, ok)
	assert.Equal(t, "102", id)

	_, ok = tenant.EventTypeID("whitening")
	assert.False(t, ok)
}

func TestNewTenantDefaultsTimezone(t *testing.T) {
	rec := dentalRecord()
	rec.Timezone = ""
	tenant, err := NewTenant(rec, "America/Denver")
	require.NoError(t, err)
	assert.Equal(t, "America/Denver", tenant.Timezone())
	assert.Equal(t, "America/Denver", tenant.Location().String())
}

func TestNewTenantValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Record)
	}{
		{"missing id", func(r *Record) { r.ID = " " }},
		{"missing api key", func(r *Record) { r.CalAPIKey = "" }},
		{"bad timezone", func(r *Record) { r.Timezone = "Mars/Olympus" }},
		{"conflicting labels", func(r *Record) {
			r.AppointmentTypes["new patient"] = "999"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := dentalRecord()
			tt.mutate(&rec)
			_, err := NewTenant(rec, "UTC")
			assert.Error(t, err)
		})
	}
}

func TestTenantRecordRoundTrip(t *testing.T) {
	tenant, err := NewTenant(dentalRecord(), "UTC")
	require.NoError(t, err)

	rec := tenant.Record()
	assert.Equal(t, EventTypeID("103"), rec.AppointmentTypes["new-patient"])
	assert.Equal(t, EventTypeID("102"), rec.AppointmentTypes["exam"])

	again, err := NewTenant(rec, "UTC")
	require.NoError(t, err)
	assert.Equal(t, tenant.AppointmentTypes(), again.AppointmentTypes())
}

func TestServicesSummary(t *testing.T) {
	tenant, err := NewTenant(dentalRecord(), "UTC")
	require.NoError(t, err)
	assert.Equal(t, "cleaning, emergency, exam, and new patient", tenant.ServicesSummary())

	rec := dentalRecord()
	rec.ServicesSummary = "cleanings and exams"
	tenant, err = NewTenant(rec, "UTC")
	require.NoError(t, err)
	assert.Equal(t, "cleanings and exams", tenant.ServicesSummary())
}

func TestJoinSpoken(t *testing.T) {
	assert.Equal(t, "", JoinSpoken(nil))
	assert.Equal(t, "a", JoinSpoken([]string{"a"}))
	assert.Equal(t, "a and b", JoinSpoken([]string{"a", "b"}))
	assert.Equal(t, "a, b, and c", JoinSpoken([]string{"a", "b", "c"}))
}

func TestEventTypeIDUnmarshal(t *testing.T) {
	var rec Record
	require.NoError(t, jsonUnmarshal(`{"id":"x","cal_api_key":"k","appointment_types":{"cleaning":101,"exam":"102"}}`, &rec))
	assert.Equal(t, EventTypeID("101"), rec.AppointmentTypes["cleaning"])
	assert.Equal(t, EventTypeID("102"), rec.AppointmentTypes["exam"])

	assert.Error(t, jsonUnmarshal(`{"appointment_types":{"cleaning":true}}`, &rec))
}
