// Package worker drains buffered audit events into a store off the request
// path.
package worker

import (
	"context"
	"log/slog"

	audit "worktrack/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. Append
// failures are logged and the event dropped; audit here is observational,
// not a ledger of record.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run processes events until ctx is cancelled, then drains whatever is
// already buffered before returning.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return nil
		case event := <-w.inbox:
			w.append(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	for {
		select {
		case event := <-w.inbox:
			// Use a fresh context: the run context is already cancelled.
			w.append(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"error", err,
		)
	}
}

// ChannelPublisher adapts a buffered channel to the audit.Publisher
// interface. Emit never blocks: when the buffer is full the event is
// dropped and reported through the returned error.
type ChannelPublisher struct {
	outbox chan<- audit.Event
}

func NewChannelPublisher(outbox chan<- audit.Event) *ChannelPublisher {
	return &ChannelPublisher{outbox: outbox}
}

func (p *ChannelPublisher) Emit(_ context.Context, event audit.Event) error {
	select {
	case p.outbox <- event:
		return nil
	default:
		return audit.ErrBufferFull
	}
}
