package stats

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"github.com/m3rciful/toybot/core/dispatch"
	"github.com/m3rciful/toybot/core/logger"
)

// Async hands records to a dispatcher so sinks never block the caller. A
// retried job runs next again, so next should be a single idempotent sink.
type Async struct {
	next Recorder
	d    *dispatch.Dispatcher
}

// NewAsync runs next on d. The caller owns d and must Close it on shutdown.
func NewAsync(next Recorder, d *dispatch.Dispatcher) *Async {
	return &Async{next: next, d: d}
}

// Record implements Recorder. A full queue drops the record with a warning.
func (a *Async) Record(ctx context.Context, r Record) error {
	err := a.d.Enqueue(ctx, "stats.record", strconv.FormatInt(r.SessionID, 10), func(ctx context.Context) error {
		return a.next.Record(ctx, r)
	})
	if errors.Is(err, dispatch.ErrQueueFull) {
		logger.Warn(ctx, logger.ComponentStats, "stats.dropped",
			slog.String("event_id", r.EventID.String()),
			slog.String("outcome", r.Outcome.String()),
		)
	}
	return err
}
