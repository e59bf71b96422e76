package notify

import (
	"context"
	"log/slog"
)

// Worker consumes notification events from a channel and hands them to the
// emitter. Emitter failures are logged and the worker keeps going; the
// workflow state that triggered the event is already committed.
type Worker struct {
	inbox   <-chan Event
	emitter Emitter
	logger  *slog.Logger
}

func NewWorker(inbox <-chan Event, emitter Emitter, logger *slog.Logger) *Worker {
	return &Worker{inbox: inbox, emitter: emitter, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.emitter.Emit(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "notification delivery failed",
					"kind", event.Kind,
					"entity_id", event.EntityID,
					"recipient", event.Recipient,
					"error", err.Error(),
				)
			}
		}
	}
}
