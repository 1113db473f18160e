package callevents

import (
	"context"
	"time"

	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

// CallEnded is the record kept when the voice platform reports a finished call.
type CallEnded struct {
	TenantID   string    `json:"tenant_id,omitempty"`
	AgentID    string    `json:"agent_id,omitempty"`
	CallID     string    `json:"call_id,omitempty"`
	FromNumber string    `json:"from_number,omitempty"`
	EndedAt    time.Time `json:"ended_at"`
}

// Sink receives call-ended records. Implementations must be safe for concurrent use.
type Sink interface {
	Record(ctx context.Context, event CallEnded) error
}

// LogSink writes call-ended records to the structured log only.
type LogSink struct {
	logger *logging.Logger
}

func NewLogSink(logger *logging.Logger) *LogSink {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, event CallEnded) error {
	s.logger.Info("call ended",
		"tenant_id", event.TenantID,
		"call_id", event.CallID,
		"from_number", event.FromNumber,
		"ended_at", event.EndedAt.Format(time.RFC3339),
	)
	return nil
}

// Fanout records to every sink and returns the first error after all have run.
type Fanout []Sink

func (f Fanout) Record(ctx context.Context, event CallEnded) error {
	var first error
	for _, sink := range f {
		if sink == nil {
			continue
		}
		if err := sink.Record(ctx, event); err != nil && first == nil {
			first = err
		}
	}
	return first
}
