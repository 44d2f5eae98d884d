package storage

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/car-inventory/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func TestMemoryAdapter_GetItem(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(domain.SeedItems())

	item, err := adapter.GetItem(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.Item{Type: "Suv", Price: "26k", Brand: "Honda", Year: "2018"}, item)

	_, err = adapter.GetItem(ctx, 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryAdapter_SeedIsCopied(t *testing.T) {
	seed := domain.SeedItems()
	adapter := NewMemoryAdapter(seed)

	delete(seed, 1)

	_, err := adapter.GetItem(context.Background(), 1)
	assert.NoError(t, err)
}

func TestMemoryAdapter_FindByType(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(domain.SeedItems())

	for _, query := range []string{"suv", "SUV", "Suv"} {
		found, err := adapter.FindByType(ctx, query)
		require.NoError(t, err, query)
		assert.Equal(t, 2, found.ID)
		assert.Equal(t, "Honda", found.Brand)
	}

	_, err := adapter.FindByType(ctx, "truck")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = adapter.FindByType(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryAdapter_FindByType_FirstMatchIsLowestID(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(map[int]domain.Item{
		9: {Type: "Suv", Brand: "Kia"},
		5: {Type: "suv", Brand: "Toyota"},
		7: {Type: "SUV", Brand: "Mazda"},
	})

	for i := 0; i < 20; i++ {
		found, err := adapter.FindByType(ctx, "suv")
		require.NoError(t, err)
		assert.Equal(t, 5, found.ID)
		assert.Equal(t, "Toyota", found.Brand)
	}
}

func TestMemoryAdapter_CreateItem(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(domain.SeedItems())

	truck := domain.Item{Type: "Truck", Price: "50k", Brand: "Ford"}
	created, err := adapter.CreateItem(ctx, 4, truck)
	require.NoError(t, err)
	assert.Equal(t, truck, created)

	got, err := adapter.GetItem(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, truck, got)
	assert.Equal(t, "", got.Year)

	_, err = adapter.CreateItem(ctx, 1, truck)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	original, err := adapter.GetItem(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Mercedes", original.Brand)
}

func TestMemoryAdapter_UpdateItem(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(domain.SeedItems())

	updated, err := adapter.UpdateItem(ctx, 2, domain.ItemPatch{Price: strPtr("24k")})
	require.NoError(t, err)
	assert.Equal(t, domain.Item{Type: "Suv", Price: "24k", Brand: "Honda", Year: "2018"}, updated)

	_, err = adapter.UpdateItem(ctx, 99, domain.ItemPatch{Price: strPtr("1k")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 3, adapter.Len())
}

func TestMemoryAdapter_DeleteItem(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(domain.SeedItems())

	removed, err := adapter.DeleteItem(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "BMW", removed.Brand)

	_, err = adapter.GetItem(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = adapter.DeleteItem(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryAdapter_ListItems(t *testing.T) {
	adapter := NewMemoryAdapter(domain.SeedItems())

	items, err := adapter.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{items[0].ID, items[1].ID, items[2].ID})
}

func TestMemoryAdapter_CreateItem_Concurrent(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter(nil)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := adapter.CreateItem(ctx, n%10, domain.Item{Brand: fmt.Sprintf("brand-%d", n)})
			if err == nil {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	assert.Equal(t, int32(10), successCount.Load())
	assert.Equal(t, 10, adapter.Len())
}
