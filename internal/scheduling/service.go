// Package scheduling turns voice-agent function calls into Cal.com requests
// and phrases the outcome as a sentence the agent can speak.
package scheduling

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/wolfman30/retell-calcom-bridge/internal/calcom"
	"github.com/wolfman30/retell-calcom-bridge/internal/directory"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

const (
	// maxOfferedSlots caps how many times are read out to a caller.
	maxOfferedSlots = 4

	defaultCallTimeout = 8 * time.Second

	spokenTimeLayout = "3:04 PM"
	spokenDateLayout = "Monday, January 2"
)

// Calendar is the subset of the Cal.com client the service needs.
type Calendar interface {
	GetSlots(ctx context.Context, apiKey string, q calcom.SlotsQuery) (*calcom.SlotsResponse, error)
	CreateBooking(ctx context.Context, apiKey string, req calcom.BookingRequest) (*calcom.Booking, error)
}

// OutcomeObserver records what each operation told the caller.
type OutcomeObserver interface {
	ObserveOutcome(operation, outcome string)
}

// AvailabilityQuery is a check_availability request.
type AvailabilityQuery struct {
	Date            string // 2006-01-02
	Time            string // optional, matched as a substring of slot timestamps
	AppointmentType string // optional, defaults to directory.DefaultAppointmentType
}

// BookingRequest is a book_appointment request.
type BookingRequest struct {
	Name            string
	Phone           string
	Email           string
	Date            string // 2006-01-02
	Time            string // 15:04
	AppointmentType string
	Notes           string
}

// Service implements availability checks and bookings. Remote failures are
// logged and converted to spoken fallbacks; no method returns an error.
type Service struct {
	calendar    Calendar
	logger      *logging.Logger
	callTimeout time.Duration
	observer    OutcomeObserver
}

// NewService creates a scheduling service. callTimeout bounds every Cal.com
// call so a voice call is never left waiting indefinitely.
func NewService(calendar Calendar, callTimeout time.Duration, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if callTimeout <= 0 {
		callTimeout = defaultCallTimeout
	}
	return &Service{
		calendar:    calendar,
		logger:      logger,
		callTimeout: callTimeout,
	}
}

// WithObserver attaches an outcome observer and returns the service.
func (s *Service) WithObserver(o OutcomeObserver) *Service {
	s.observer = o
	return s
}

// CheckAvailability answers whether the tenant has openings on q.Date.
func (s *Service) CheckAvailability(ctx context.Context, tenant directory.Tenant, q AvailabilityQuery) string {
	const op = "check_availability"
	label := appointmentLabel(q.AppointmentType)
	eventTypeID, ok := tenant.EventTypeID(label)
	if !ok {
		s.observe(op, OutcomeUnknownType)
		return unknownTypeMessage(tenant.ServicesSummary())
	}

	log := s.logger.With(
		"tenant_id", tenant.ID(),
		"operation", op,
		"date", q.Date,
		"time", q.Time,
		"appointment_type", label,
	)
	degraded := func(err error) string {
		log.Warn("availability check failed", "error", err)
		s.observe(op, OutcomeDegraded)
		return MsgAvailabilityDown
	}

	day, err := time.Parse(time.DateOnly, strings.TrimSpace(q.Date))
	if err != nil {
		return degraded(fmt.Errorf("invalid date %q: %w", q.Date, err))
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	resp, err := s.calendar.GetSlots(callCtx, tenant.APIKey(), calcom.SlotsQuery{
		EventTypeID: eventTypeID,
		Start:       day,
		End:         day.Add(24*time.Hour - time.Second),
		TimeZone:    tenant.Timezone(),
	})
	if err != nil {
		return degraded(err)
	}

	slots := slotsForDay(resp, day.Format(time.DateOnly))
	if len(slots) == 0 {
		s.observe(op, OutcomeNoAvailability)
		return MsgNoAvailability
	}

	offered, err := formatSlots(slots, tenant.Location())
	if err != nil {
		return degraded(err)
	}
	times := strings.Join(offered, ", ")

	if requested := strings.TrimSpace(q.Time); requested != "" {
		if containsTime(slots, requested) {
			s.observe(op, OutcomeTimeAvailable)
			return MsgTimeAvailable
		}
		s.observe(op, OutcomeTimeUnavailable)
		return timeUnavailableMessage(times)
	}

	s.observe(op, OutcomeSlotsOffered)
	return slotsOfferedMessage(times)
}

// BookAppointment books req with Cal.com and confirms the booked time.
func (s *Service) BookAppointment(ctx context.Context, tenant directory.Tenant, req BookingRequest) string {
	const op = "book_appointment"
	label := appointmentLabel(req.AppointmentType)
	eventTypeID, ok := tenant.EventTypeID(label)
	if !ok {
		s.observe(op, OutcomeUnknownType)
		return MsgBookingTypeUnsupported
	}

	log := s.logger.With(
		"tenant_id", tenant.ID(),
		"operation", op,
		"date", req.Date,
		"time", req.Time,
		"appointment_type", label,
	)
	degraded := func(err error) string {
		log.Warn("booking failed", "error", err)
		s.observe(op, OutcomeDegraded)
		return MsgBookingDown
	}

	submission, err := buildSubmission(tenant, eventTypeID, req)
	if err != nil {
		return degraded(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	booking, err := s.calendar.CreateBooking(callCtx, tenant.APIKey(), submission)
	if err != nil {
		return degraded(err)
	}

	// Cal.com's start time is authoritative, not the submitted one.
	start, err := parseSlotTime(booking.StartTime)
	if err != nil {
		return degraded(fmt.Errorf("booking %d: %w", booking.ID, err))
	}
	local := start.In(tenant.Location())

	log.Info("appointment booked", "booking_id", booking.ID, "booking_uid", booking.UID)
	s.observe(op, OutcomeBooked)
	return bookedMessage(label, local.Format(spokenDateLayout), local.Format(spokenTimeLayout))
}

func buildSubmission(tenant directory.Tenant, eventTypeID string, req BookingRequest) (calcom.BookingRequest, error) {
	id, err := parseEventTypeID(eventTypeID)
	if err != nil {
		return calcom.BookingRequest{}, err
	}

	date := strings.TrimSpace(req.Date)
	clock := strings.TrimSpace(req.Time)
	if _, err := time.Parse("2006-01-02T15:04", date+"T"+clock); err != nil {
		return calcom.BookingRequest{}, fmt.Errorf("invalid date/time %q %q: %w", req.Date, req.Time, err)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return calcom.BookingRequest{}, fmt.Errorf("name is required")
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		if digitsOnly(req.Phone) == "" {
			return calcom.BookingRequest{}, fmt.Errorf("phone or email is required")
		}
		email = PlaceholderEmail(req.Phone)
	}

	return calcom.BookingRequest{
		EventTypeID: id,
		Start:       date + "T" + clock + ":00.000Z",
		Responses: calcom.BookingResponses{
			Name:  name,
			Email: email,
			Phone: req.Phone,
		},
		TimeZone: tenant.Timezone(),
		Language: bookingLanguage,
		Metadata: calcom.BookingMetadata{
			Source: bookingSource,
			Notes:  req.Notes,
		},
	}, nil
}

// PlaceholderEmail derives the stand-in address used when a caller gives no
// email: every non-digit is stripped from phone and the placeholder domain
// appended. "(555) 123-4567" becomes "5551234567@noemail.placeholder".
func PlaceholderEmail(phone string) string {
	return digitsOnly(phone) + PlaceholderEmailDomain
}

func digitsOnly(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func appointmentLabel(raw string) string {
	label := strings.ToLower(strings.TrimSpace(raw))
	if label == "" {
		return directory.DefaultAppointmentType
	}
	return label
}

// slotsForDay picks the requested date's slots, falling back to the earliest
// date key when Cal.com keyed the response differently.
func slotsForDay(resp *calcom.SlotsResponse, date string) []calcom.Slot {
	if resp == nil || len(resp.Slots) == 0 {
		return nil
	}
	if slots, ok := resp.Slots[date]; ok {
		return slots
	}
	keys := make([]string, 0, len(resp.Slots))
	for k := range resp.Slots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return resp.Slots[keys[0]]
}

// formatSlots renders the first maxOfferedSlots slots in API order.
func formatSlots(slots []calcom.Slot, loc *time.Location) ([]string, error) {
	n := len(slots)
	if n > maxOfferedSlots {
		n = maxOfferedSlots
	}
	out := make([]string, 0, n)
	for _, slot := range slots[:n] {
		t, err := parseSlotTime(slot.Time)
		if err != nil {
			return nil, err
		}
		out = append(out, t.In(loc).Format(spokenTimeLayout))
	}
	return out, nil
}

// containsTime reports whether any raw slot timestamp contains requested.
// This is a lexical match: "1:00" also matches "11:00".
func containsTime(slots []calcom.Slot, requested string) bool {
	for _, slot := range slots {
		if strings.Contains(slot.Time, requested) {
			return true
		}
	}
	return false
}

func parseSlotTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q: %w", raw, err)
	}
	return t, nil
}

func parseEventTypeID(raw string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(raw, "%d", &id); err != nil {
		return 0, fmt.Errorf("event type id %q is not an integer: %w", raw, err)
	}
	return id, nil
}

func (s *Service) observe(operation, outcome string) {
	if s.observer != nil {
		s.observer.ObserveOutcome(operation, outcome)
	}
}
