// Package directory maps call-platform tenant identifiers to Cal.com
// credentials, timezone, and appointment-type taxonomy.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultAppointmentType is booked or checked when the caller names no type.
const DefaultAppointmentType = "cleaning"

// ErrTenantNotFound is returned by Resolve when the identifier is unknown.
var ErrTenantNotFound = errors.New("directory: tenant not found")

// Directory resolves tenants by identifier. Implementations must be safe for
// concurrent use and must not mutate tenants after they are handed out.
type Directory interface {
	Resolve(ctx context.Context, tenantID string) (Tenant, error)
}

// EventTypeID is a Cal.com event type identifier. Config files may spell it
// as a JSON/YAML string or number.
type EventTypeID string

// UnmarshalJSON accepts both "123" and 123.
func (e *EventTypeID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*e = EventTypeID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("event type id must be a string or number: %s", string(b))
	}
	*e = EventTypeID(n.String())
	return nil
}

// Record is the serialized form of a tenant, used by directory files and the
// Redis store.
type Record struct {
	ID               string                 `json:"id"`
	DisplayName      string                 `json:"display_name,omitempty"`
	CalAPIKey        string                 `json:"cal_api_key"`
	Timezone         string                 `json:"timezone,omitempty"`
	AppointmentTypes map[string]EventTypeID `json:"appointment_types"`
	// ServicesSummary is spoken when a caller asks for an unsupported type,
	// e.g. "cleanings, exams, new patient visits, and emergency appointments".
	ServicesSummary string `json:"services_summary,omitempty"`
}

// Tenant is an immutable, validated tenant configuration.
type Tenant struct {
	id              string
	displayName     string
	apiKey          string
	timezone        string
	location        *time.Location
	eventTypes      map[string]string
	servicesSummary string
}

// NewTenant validates a record and normalizes its appointment labels. An empty
// timezone falls back to defaultTimezone.
func NewTenant(rec Record, defaultTimezone string) (Tenant, error) {
	id := strings.TrimSpace(rec.ID)
	if id == "" {
		return Tenant{}, errors.New("directory: tenant id is required")
	}
	if strings.TrimSpace(rec.CalAPIKey) == "" {
		return Tenant{}, fmt.Errorf("directory: tenant %s: cal api key is required", id)
	}

	tz := strings.TrimSpace(rec.Timezone)
	if tz == "" {
		tz = strings.TrimSpace(defaultTimezone)
	}
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Tenant{}, fmt.Errorf("directory: tenant %s: invalid timezone %q: %w", id, tz, err)
	}

	eventTypes := make(map[string]string, len(rec.AppointmentTypes))
	for label, eventType := range rec.AppointmentTypes {
		key := NormalizeLabel(label)
		value := strings.TrimSpace(string(eventType))
		if key == "" || value == "" {
			continue
		}
		if existing, ok := eventTypes[key]; ok && existing != value {
			return Tenant{}, fmt.Errorf("directory: tenant %s: label %q maps to both %s and %s", id, key, existing, value)
		}
		eventTypes[key] = value
	}

	return Tenant{
		id:              id,
		displayName:     strings.TrimSpace(rec.DisplayName),
		apiKey:          strings.TrimSpace(rec.CalAPIKey),
		timezone:        tz,
		location:        loc,
		eventTypes:      eventTypes,
		servicesSummary: strings.TrimSpace(rec.ServicesSummary),
	}, nil
}

func (t Tenant) ID() string { return t.id }

func (t Tenant) DisplayName() string {
	if t.displayName == "" {
		return t.id
	}
	return t.displayName
}

func (t Tenant) APIKey() string { return t.apiKey }

// Timezone returns the IANA timezone name sent to Cal.com.
func (t Tenant) Timezone() string { return t.timezone }

// Location returns the loaded timezone used to format times for callers.
func (t Tenant) Location() *time.Location {
	if t.location == nil {
		return time.UTC
	}
	return t.location
}

// EventTypeID maps a free-text appointment label to a Cal.com event type.
func (t Tenant) EventTypeID(label string) (string, bool) {
	id, ok := t.eventTypes[NormalizeLabel(label)]
	return id, ok
}

// AppointmentTypes lists the normalized labels this tenant accepts.
func (t Tenant) AppointmentTypes() []string {
	labels := make([]string, 0, len(t.eventTypes))
	for label := range t.eventTypes {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// ServicesSummary returns the spoken list of supported appointment types.
func (t Tenant) ServicesSummary() string {
	if t.servicesSummary != "" {
		return t.servicesSummary
	}
	labels := t.AppointmentTypes()
	for i, label := range labels {
		labels[i] = strings.ReplaceAll(label, "-", " ")
	}
	return JoinSpoken(labels)
}

// Record converts the tenant back to its serialized form.
func (t Tenant) Record() Record {
	types := make(map[string]EventTypeID, len(t.eventTypes))
	for label, id := range t.eventTypes {
		types[label] = EventTypeID(id)
	}
	return Record{
		ID:               t.id,
		DisplayName:      t.displayName,
		CalAPIKey:        t.apiKey,
		Timezone:         t.timezone,
		AppointmentTypes: types,
		ServicesSummary:  t.servicesSummary,
	}
}

// NormalizeLabel lowercases a label and folds spaces, underscores and
// hyphens into single hyphens, so "New Patient" and "new-patient" match.
func NormalizeLabel(label string) string {
	fields := strings.FieldsFunc(strings.ToLower(label), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	return strings.Join(fields, "-")
}

// JoinSpoken joins items the way they are read aloud: "a, b, and c".
func JoinSpoken(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
