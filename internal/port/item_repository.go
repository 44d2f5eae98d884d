package port

import (
	"context"

	"github.com/rl1809/car-inventory/internal/core/domain"
)

type ItemRepository interface {
	// GetItem returns the item stored under id, or domain.ErrNotFound
	GetItem(ctx context.Context, id int) (domain.Item, error)

	// FindByType returns the first item, in ascending id order, whose type matches case-insensitively
	FindByType(ctx context.Context, itemType string) (domain.StoredItem, error)

	// CreateItem stores item under id, or fails with domain.ErrAlreadyExists
	CreateItem(ctx context.Context, id int, item domain.Item) (domain.Item, error)

	// UpdateItem applies patch to the item stored under id and returns the result
	UpdateItem(ctx context.Context, id int, patch domain.ItemPatch) (domain.Item, error)

	// DeleteItem removes id and returns the removed item
	DeleteItem(ctx context.Context, id int) (domain.Item, error)

	// ListItems returns every item in ascending id order
	ListItems(ctx context.Context) ([]domain.StoredItem, error)
}
