package port

import (
	"context"

	"github.com/rl1809/car-inventory/internal/core/domain"
)

type EventJournal interface {
	// RecordEvent appends the event to the change journal
	RecordEvent(ctx context.Context, event domain.ItemEvent) error
}

type EventPublisher interface {
	// PublishEvent broadcasts the event once, returns false if it was already published
	PublishEvent(ctx context.Context, event domain.ItemEvent) (bool, error)
}
