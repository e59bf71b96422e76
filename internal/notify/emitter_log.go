package notify

import (
	"context"
	"log/slog"

	"intake/pkg/email"
)

// LogEmitter writes notifications to the structured log. It stands in for a
// real mail integration in development and tests.
type LogEmitter struct {
	logger *slog.Logger
}

func NewLogEmitter(logger *slog.Logger) *LogEmitter {
	return &LogEmitter{logger: logger}
}

func (e *LogEmitter) Emit(ctx context.Context, event Event) error {
	firstName, _ := email.DeriveNameFromEmail(event.Recipient)
	e.logger.InfoContext(ctx, "notification",
		"kind", event.Kind,
		"recipient", event.Recipient,
		"recipient_name", firstName,
		"entity_id", event.EntityID,
		"entity_name", event.EntityName,
		"details", event.Details,
	)
	return nil
}
