package notify

import (
	"log/slog"
	"time"
)

const defaultQueueSize = 256

// Publisher queues notification events for the worker. Publish never blocks
// the calling workflow; when the queue is full the event is dropped and
// logged.
type Publisher struct {
	queue  chan Event
	logger *slog.Logger
}

// NewPublisher creates a publisher and the queue the worker consumes.
func NewPublisher(logger *slog.Logger) *Publisher {
	return &Publisher{
		queue:  make(chan Event, defaultQueueSize),
		logger: logger,
	}
}

// Queue exposes the consuming side for the worker.
func (p *Publisher) Queue() <-chan Event {
	return p.queue
}

// Publish enqueues an event without blocking.
func (p *Publisher) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	select {
	case p.queue <- event:
	default:
		p.logger.Warn("notification queue full, dropping event",
			"kind", event.Kind,
			"entity_id", event.EntityID,
		)
	}
}
