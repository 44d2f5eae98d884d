package storage

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/port"
)

var _ port.ItemRepository = (*MemoryAdapter)(nil)

// MemoryAdapter keeps items in a process-local map guarded by a single lock.
// Nothing is persisted; a new adapter starts from whatever seed it is given.
type MemoryAdapter struct {
	mu    sync.RWMutex
	items map[int]domain.Item
}

func NewMemoryAdapter(seed map[int]domain.Item) *MemoryAdapter {
	items := make(map[int]domain.Item, len(seed))
	maps.Copy(items, seed)
	return &MemoryAdapter{items: items}
}

func (m *MemoryAdapter) GetItem(ctx context.Context, id int) (domain.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	return item, nil
}

func (m *MemoryAdapter) FindByType(ctx context.Context, itemType string) (domain.StoredItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range slices.Sorted(maps.Keys(m.items)) {
		item := m.items[id]
		if strings.EqualFold(item.Type, itemType) {
			return domain.StoredItem{ID: id, Item: item}, nil
		}
	}
	return domain.StoredItem{}, domain.ErrNotFound
}

func (m *MemoryAdapter) CreateItem(ctx context.Context, id int, item domain.Item) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.items[id]; exists {
		return domain.Item{}, domain.ErrAlreadyExists
	}
	m.items[id] = item
	return item, nil
}

func (m *MemoryAdapter) UpdateItem(ctx context.Context, id int, patch domain.ItemPatch) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	item = patch.Apply(item)
	m.items[id] = item
	return item, nil
}

func (m *MemoryAdapter) DeleteItem(ctx context.Context, id int) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, ok := m.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	delete(m.items, id)
	return item, nil
}

func (m *MemoryAdapter) ListItems(ctx context.Context) ([]domain.StoredItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := make([]domain.StoredItem, 0, len(m.items))
	for _, id := range slices.Sorted(maps.Keys(m.items)) {
		items = append(items, domain.StoredItem{ID: id, Item: m.items[id]})
	}
	return items, nil
}

// Len reports the number of stored items.
func (m *MemoryAdapter) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}
