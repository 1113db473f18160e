// Package calcom contains a minimal client for the Cal.com v1 REST API.
package calcom

import (
	"fmt"
	"time"
)

// SlotsQuery selects open slots for one event type over a time range.
type SlotsQuery struct {
	EventTypeID string
	Start       time.Time
	End         time.Time
	TimeZone    string
}

// Slot is one open start time as reported by Cal.com.
type Slot struct {
	Time string `json:"time"`
}

// SlotsResponse maps a calendar date ("2006-01-02") to its open slots.
type SlotsResponse struct {
	Slots map[string][]Slot `json:"slots"`
}

// BookingRequest is the body of POST /bookings.
type BookingRequest struct {
	EventTypeID int              `json:"eventTypeId"`
	Start       string           `json:"start"`
	Responses   BookingResponses `json:"responses"`
	TimeZone    string           `json:"timeZone"`
	Language    string           `json:"language"`
	Metadata    BookingMetadata  `json:"metadata"`
}

// BookingResponses carries the attendee's contact fields.
type BookingResponses struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// BookingMetadata is stored on the booking for downstream systems.
type BookingMetadata struct {
	Source string `json:"source"`
	Notes  string `json:"notes"`
}

// Booking is the created booking. StartTime is authoritative.
type Booking struct {
	ID        int64  `json:"id"`
	UID       string `json:"uid,omitempty"`
	Title     string `json:"title,omitempty"`
	Status    string `json:"status,omitempty"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cal.com API returned %d: %s", e.StatusCode, e.Body)
}
