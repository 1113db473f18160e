package directory

// legacyServicesSummary is the spoken list used by single-tenant deployments
// configured through CAL_EVENT_* variables.
const legacyServicesSummary = "cleanings, exams, new patient visits, and emergency appointments"

// LegacyRecord builds a tenant record from single-tenant settings. Labels with
// an empty event type are omitted so they resolve as unsupported.
func LegacyRecord(tenantID, apiKey, timezone string, eventTypes map[string]string) Record {
	types := make(map[string]EventTypeID, len(eventTypes))
	for label, id := range eventTypes {
		if id == "" {
			continue
		}
		types[label] = EventTypeID(id)
	}
	return Record{
		ID:               tenantID,
		DisplayName:      "Default practice",
		CalAPIKey:        apiKey,
		Timezone:         timezone,
		AppointmentTypes: types,
		ServicesSummary:  legacyServicesSummary,
	}
}
