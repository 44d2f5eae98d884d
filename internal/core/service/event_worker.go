package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/port"
)

const defaultEventTimeout = 5 * time.Second

// EventWorker drains item events into the change journal and the publisher.
// Either sink may be nil. A failing sink is logged and never stops the worker.
type EventWorker struct {
	id        int
	journal   port.EventJournal
	publisher port.EventPublisher
	timeout   time.Duration
	logger    *slog.Logger
}

func NewEventWorker(id int, journal port.EventJournal, publisher port.EventPublisher, logger *slog.Logger) *EventWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventWorker{
		id:        id,
		journal:   journal,
		publisher: publisher,
		timeout:   defaultEventTimeout,
		logger:    logger.With("worker", id),
	}
}

// Run blocks until queue is closed and drained.
func (w *EventWorker) Run(queue <-chan domain.ItemEvent) {
	for event := range queue {
		w.handle(event)
	}
	w.logger.Debug("event worker stopped")
}

func (w *EventWorker) handle(event domain.ItemEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	attrs := []any{"event_id", event.ID, "kind", event.Kind, "item_id", event.ItemID}

	if w.journal != nil {
		if err := w.journal.RecordEvent(ctx, event); err != nil {
			w.logger.Error("failed to journal event", append(attrs, "error", err)...)
		}
	}

	if w.publisher != nil {
		published, err := w.publisher.PublishEvent(ctx, event)
		switch {
		case err != nil:
			w.logger.Error("failed to publish event", append(attrs, "error", err)...)
		case !published:
			w.logger.Debug("event already published", attrs...)
		}
	}

	w.logger.Debug("handled event", attrs...)
}
