package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/retell-calcom-bridge/internal/callevents"
	"github.com/wolfman30/retell-calcom-bridge/internal/directory"
	"github.com/wolfman30/retell-calcom-bridge/internal/scheduling"
	"github.com/wolfman30/retell-calcom-bridge/internal/tenancy"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

const (
	// MsgTechnicalIssue is spoken when the call cannot be tied to a configured tenant.
	MsgTechnicalIssue = "I'm sorry, I'm having a technical issue. Please call back in a moment."
	// MsgGenericAck answers function names this service does not implement.
	MsgGenericAck = "I'll help you with that."

	maxBodyBytes = 1 << 20
)

var tracer = otel.Tracer("scheduling.internal.webhook")

// Scheduler runs the two scheduling operations for a resolved tenant.
type Scheduler interface {
	CheckAvailability(ctx context.Context, tenant directory.Tenant, q scheduling.AvailabilityQuery) string
	BookAppointment(ctx context.Context, tenant directory.Tenant, req scheduling.BookingRequest) string
}

// Observer records webhook metrics.
type Observer interface {
	ObserveEvent(event, function string)
	ObserveWebhookLatency(event string, seconds float64)
}

// HandlerConfig configures the Handler.
type HandlerConfig struct {
	Directory directory.Directory
	Scheduler Scheduler
	Sink      callevents.Sink
	Metrics   Observer
	Logger    *logging.Logger
	Now       func() time.Time
}

// Handler is the single voice platform webhook entry point.
type Handler struct {
	directory directory.Directory
	scheduler Scheduler
	sink      callevents.Sink
	metrics   Observer
	logger    *logging.Logger
	now       func() time.Time
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = callevents.NewLogSink(cfg.Logger)
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Handler{
		directory: cfg.Directory,
		scheduler: cfg.Scheduler,
		sink:      cfg.Sink,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		now:       cfg.Now,
	}
}

// ServeHTTP decodes the event and always answers 200 unless the body is not valid JSON.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("webhook: failed to read body", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("webhook: failed to parse event", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// A caller hanging up must not abort an in-flight booking.
	ctx := context.WithoutCancel(r.Context())
	writeJSON(w, h.Dispatch(ctx, event))
}

// Dispatch routes a decoded event and returns the reply envelope.
func (h *Handler) Dispatch(ctx context.Context, event Event) Response {
	kind := event.Kind()
	fn := ""
	if kind == EventFunctionCall {
		fn = event.Function().String()
	}

	ctx, span := tracer.Start(ctx, "webhook.dispatch", trace.WithAttributes(
		attribute.String("webhook.event", kind.String()),
		attribute.String("webhook.function", fn),
		attribute.String("call.id", event.Call.CallID),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		if h.metrics != nil {
			h.metrics.ObserveEvent(kind.String(), fn)
			h.metrics.ObserveWebhookLatency(kind.String(), time.Since(start).Seconds())
		}
	}()

	h.logger.Info("webhook received",
		"event", event.Event,
		"function", event.FunctionName,
		"call_id", event.Call.CallID,
		"tenant_key", event.Call.TenantKey(),
	)

	switch kind {
	case EventFunctionCall:
		return Response{Result: h.handleFunctionCall(ctx, span, event)}
	case EventCallEnded:
		h.handleCallEnded(ctx, event)
	}
	return Response{Success: true}
}

func (h *Handler) handleFunctionCall(ctx context.Context, span trace.Span, event Event) string {
	tenantKey := event.Call.TenantKey()
	tenant, err := h.resolveTenant(ctx, tenantKey)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, directory.ErrTenantNotFound) {
			h.logger.Warn("webhook: tenant not found", "tenant_key", tenantKey, "call_id", event.Call.CallID)
		} else {
			h.logger.Error("webhook: tenant lookup failed", "tenant_key", tenantKey, "error", err)
		}
		return MsgTechnicalIssue
	}

	ctx = tenancy.WithTenantID(ctx, tenant.ID())
	span.SetAttributes(attribute.String("tenant.id", tenant.ID()))
	args := event.Arguments

	switch event.Function() {
	case FunctionCheckAvailability:
		return h.scheduler.CheckAvailability(ctx, tenant, scheduling.AvailabilityQuery{
			Date:            args.Date.String(),
			Time:            args.Time.String(),
			AppointmentType: args.AppointmentType.String(),
		})
	case FunctionBookAppointment:
		return h.scheduler.BookAppointment(ctx, tenant, scheduling.BookingRequest{
			Name:            args.Name.String(),
			Phone:           args.Phone.String(),
			Email:           args.Email.String(),
			Date:            args.Date.String(),
			Time:            args.Time.String(),
			AppointmentType: args.AppointmentType.String(),
			Notes:           args.Notes.String(),
		})
	default:
		h.logger.Info("webhook: unhandled function", "function", event.FunctionName, "tenant_id", tenant.ID())
		return MsgGenericAck
	}
}

func (h *Handler) resolveTenant(ctx context.Context, tenantKey string) (directory.Tenant, error) {
	if h.directory == nil || tenantKey == "" {
		return directory.Tenant{}, directory.ErrTenantNotFound
	}
	return h.directory.Resolve(ctx, tenantKey)
}

func (h *Handler) handleCallEnded(ctx context.Context, event Event) {
	record := callevents.CallEnded{
		TenantID:   event.Call.TenantKey(),
		AgentID:    event.Call.AgentID,
		CallID:     event.Call.CallID,
		FromNumber: event.Call.FromNumber,
		EndedAt:    h.now().UTC(),
	}
	if err := h.sink.Record(ctx, record); err != nil {
		h.logger.Warn("webhook: failed to record call ended", "call_id", record.CallID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}
