package catalog

import (
	"context"
	"io"
	"log/slog"
)

// Operation names reported to observers.
const (
	OpPersonalized = "personalized"
	OpPopular      = "popular"
	OpStart        = "start"
	OpComplete     = "complete"
)

// CallEvent records metadata about one catalog call.
type CallEvent struct {
	Op        string
	LatencyMs int64
	Success   bool
	ErrorCode string
}

// Observer receives catalog call events for logging and metrics.
type Observer interface {
	OnCallComplete(ctx context.Context, event CallEvent)
}

// NoopObserver discards all events. Useful for tests.
type NoopObserver struct{}

func (NoopObserver) OnCallComplete(context.Context, CallEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogObserver writes catalog call events as structured log lines.
func NewLogObserver(w io.Writer) Observer {
	if w == nil {
		return NoopObserver{}
	}
	return &logObserver{logger: slog.New(slog.NewTextHandler(w, nil))}
}

func (o *logObserver) OnCallComplete(ctx context.Context, e CallEvent) {
	if e.Success {
		o.logger.DebugContext(ctx, "catalog_call", "op", e.Op, "latency_ms", e.LatencyMs)
		return
	}
	o.logger.WarnContext(ctx, "catalog_call", "op", e.Op, "latency_ms", e.LatencyMs, "error_code", e.ErrorCode)
}

// MultiObserver fans events out to several observers.
type MultiObserver []Observer

func (m MultiObserver) OnCallComplete(ctx context.Context, e CallEvent) {
	for _, o := range m {
		if o != nil {
			o.OnCallComplete(ctx, e)
		}
	}
}
