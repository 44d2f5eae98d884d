package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/port"
)

var (
	ErrItemNotFound     = errors.New("item id does not exist")
	ErrItemExists       = errors.New("item id already exists")
	ErrItemTypeNotFound = errors.New("item name not found")
)

type InventoryService struct {
	repo   port.ItemRepository
	logger *slog.Logger

	writeMu sync.Mutex // keeps queued events in mutation order

	mu         sync.RWMutex // guards closed and sends on eventQueue
	closed     bool
	eventQueue chan domain.ItemEvent
	dropped    atomic.Int64
}

func NewInventoryService(repo port.ItemRepository, queueSize int, logger *slog.Logger) *InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryService{
		repo:       repo,
		logger:     logger,
		eventQueue: make(chan domain.ItemEvent, queueSize),
	}
}

func (s *InventoryService) GetItem(ctx context.Context, id int) (domain.Item, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return domain.Item{}, translate(err, ErrItemNotFound)
	}
	return item, nil
}

// FindByType returns the first item whose type matches itemType ignoring case.
func (s *InventoryService) FindByType(ctx context.Context, itemType string) (domain.Item, error) {
	found, err := s.repo.FindByType(ctx, itemType)
	if err != nil {
		return domain.Item{}, translate(err, ErrItemTypeNotFound)
	}
	return found.Item, nil
}

func (s *InventoryService) ListItems(ctx context.Context) ([]domain.StoredItem, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *InventoryService) CreateItem(ctx context.Context, id int, item domain.Item) (domain.Item, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	created, err := s.repo.CreateItem(ctx, id, item)
	if err != nil {
		return domain.Item{}, translate(err, ErrItemExists)
	}

	s.emit(domain.EventKindCreated, id, created)
	return created, nil
}

// UpdateItem applies patch to the item at id. An empty patch changes nothing
// and emits no event.
func (s *InventoryService) UpdateItem(ctx context.Context, id int, patch domain.ItemPatch) (domain.Item, error) {
	if patch.IsEmpty() {
		return s.GetItem(ctx, id)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	updated, err := s.repo.UpdateItem(ctx, id, patch)
	if err != nil {
		return domain.Item{}, translate(err, ErrItemNotFound)
	}

	s.emit(domain.EventKindUpdated, id, updated)
	return updated, nil
}

func (s *InventoryService) DeleteItem(ctx context.Context, id int) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	removed, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		return translate(err, ErrItemNotFound)
	}

	s.emit(domain.EventKindDeleted, id, removed)
	return nil
}

func (s *InventoryService) GetEventQueue() <-chan domain.ItemEvent {
	return s.eventQueue
}

// DroppedEvents reports how many events were discarded because the queue was full.
func (s *InventoryService) DroppedEvents() int64 {
	return s.dropped.Load()
}

func (s *InventoryService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.eventQueue)
}

// emit never blocks the caller: a full queue drops the event.
func (s *InventoryService) emit(kind domain.EventKind, id int, item domain.Item) {
	event := domain.ItemEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		ItemID:     id,
		Item:       item,
		OccurredAt: time.Now().UTC(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}

	select {
	case s.eventQueue <- event:
		return
	default:
	}

	s.dropped.Add(1)
	s.logger.Warn("event queue full, dropping event",
		"event_id", event.ID, "kind", kind, "item_id", id)
}

// translate maps storage sentinels onto the service error for the operation.
func translate(err error, sentinel error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrAlreadyExists):
		return sentinel
	default:
		return fmt.Errorf("inventory store: %w", err)
	}
}
