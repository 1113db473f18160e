package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// EventKind is the parsed form of the payload's "event" field.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventFunctionCall
	EventCallEnded
)

func ParseEventKind(raw string) EventKind {
	switch raw {
	case "function_call":
		return EventFunctionCall
	case "call_ended":
		return EventCallEnded
	default:
		return EventUnknown
	}
}

func (k EventKind) String() string {
	switch k {
	case EventFunctionCall:
		return "function_call"
	case EventCallEnded:
		return "call_ended"
	default:
		return "unknown"
	}
}

// FunctionName is the parsed form of "function_name". Matching is exact.
type FunctionName int

const (
	FunctionUnknown FunctionName = iota
	FunctionCheckAvailability
	FunctionBookAppointment
)

func ParseFunctionName(raw string) FunctionName {
	switch raw {
	case "check_availability":
		return FunctionCheckAvailability
	case "book_appointment":
		return FunctionBookAppointment
	default:
		return FunctionUnknown
	}
}

func (f FunctionName) String() string {
	switch f {
	case FunctionCheckAvailability:
		return "check_availability"
	case FunctionBookAppointment:
		return "book_appointment"
	default:
		return "unknown"
	}
}

// Event is the inbound voice platform webhook payload.
type Event struct {
	Event        string    `json:"event"`
	Call         Call      `json:"call"`
	FunctionName string    `json:"function_name,omitempty"`
	Arguments    Arguments `json:"arguments"`
}

func (e Event) Kind() EventKind { return ParseEventKind(e.Event) }
func (e Event) Function() FunctionName { return ParseFunctionName(e.FunctionName) }

// Call describes the live call that raised the event.
type Call struct {
	CallID     string         `json:"call_id,omitempty"`
	AgentID    string         `json:"agent_id,omitempty"`
	TenantID   string         `json:"tenant_id,omitempty"`
	FromNumber string         `json:"from_number,omitempty"`
	ToNumber   string         `json:"to_number,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// TenantKey returns the identifier used to resolve the tenant: an explicit
// tenant_id, then the agent id, then metadata.tenant_id.
func (c Call) TenantKey() string {
	if id := strings.TrimSpace(c.TenantID); id != "" {
		return id
	}
	if id := strings.TrimSpace(c.AgentID); id != "" {
		return id
	}
	if v, ok := c.Metadata["tenant_id"].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// Arguments are the function-call arguments collected by the voice agent.
type Arguments struct {
	Date            Text `json:"date,omitempty"`
	Time            Text `json:"time,omitempty"`
	AppointmentType Text `json:"appointment_type,omitempty"`
	Name            Text `json:"name,omitempty"`
	Phone           Text `json:"phone,omitempty"`
	Email           Text `json:"email,omitempty"`
	Notes           Text `json:"notes,omitempty"`
}

// Text is a string argument that also accepts JSON numbers, booleans and null,
// since the voice agent's LLM does not always quote values.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*t = ""
	case string:
		*t = Text(v)
	case float64:
		*t = Text(strconv.FormatFloat(v, 'f', -1, 64))
	case bool:
		*t = Text(strconv.FormatBool(v))
	default:
		return fmt.Errorf("webhook: argument must be a scalar, got %T", v)
	}
	return nil
}

func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Response is the webhook reply. Function calls carry Result; everything else Success.
type Response struct {
	Result  string `json:"result,omitempty"`
	Success bool   `json:"success,omitempty"`
}
