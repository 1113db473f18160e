package scheduling

// Spoken responses returned to the voice platform.
const (
	MsgNoAvailability         = "There's no availability on that date. Would you like to try a different day?"
	MsgTimeAvailable          = "That time is available! Can I get your name to book it?"
	MsgAvailabilityDown       = "I'm having a little trouble checking the schedule. Can I get your name and number and have someone call you back to book?"
	MsgBookingTypeUnsupported = "I couldn't book that type of appointment. Let me take your info and have the office call you."
	MsgBookingDown            = "I wasn't able to complete the booking in our system. Let me take your information and have someone call you right back to confirm."
)

// PlaceholderEmailDomain is appended to the caller's digits when no email is
// given; Cal.com requires an email on every booking.
const PlaceholderEmailDomain = "@noemail.placeholder"

// Booking metadata constants.
const (
	bookingSource   = "ai-receptionist"
	bookingLanguage = "en"
)

// Outcomes reported to an OutcomeObserver.
const (
	OutcomeSlotsOffered    = "slots_offered"
	OutcomeTimeAvailable   = "time_available"
	OutcomeTimeUnavailable = "time_unavailable"
	OutcomeNoAvailability  = "no_availability"
	OutcomeUnknownType     = "unknown_type"
	OutcomeBooked          = "booked"
	OutcomeDegraded        = "degraded"
)

func unknownTypeMessage(servicesSummary string) string {
	return "I don't have that appointment type. We offer " + servicesSummary + "."
}

func timeUnavailableMessage(times string) string {
	return "That specific time isn't available. I have openings at " + times + ". Would any of those work?"
}

func slotsOfferedMessage(times string) string {
	return "I have availability at " + times + ". What time works best for you?"
}

func bookedMessage(label, day, at string) string {
	return "You're all set! Your " + label + " appointment is booked for " + day + " at " + at + ". We'll see you then!"
}
