// Package notify delivers approval-outcome notifications as decoupled
// post-commit events. Workflow services publish onto an in-process queue and
// carry on; a worker drains the queue into an emitter. Delivery is strictly
// best-effort: a full queue drops the event and an emitter failure is logged,
// never propagated back into the workflow.
package notify

import (
	"context"
	"time"
)

// Kind is the notification outcome.
type Kind string

const (
	KindApproved Kind = "approved"
	KindRejected Kind = "rejected"
)

// Event describes one notification to send.
type Event struct {
	Kind       Kind   `json:"kind"`
	Recipient  string `json:"recipient"`
	EntityID   string `json:"entityId"`
	EntityName string `json:"entityName"`
	// Details carries approval notes or the rejection reason.
	Details string    `json:"details,omitempty"`
	At      time.Time `json:"at"`
}

// Emitter sends one event to its destination.
type Emitter interface {
	Emit(ctx context.Context, event Event) error
}

// Notifier is what workflow services depend on.
type Notifier interface {
	Publish(event Event)
}
