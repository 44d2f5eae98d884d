package storage

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/car-inventory/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func newTestEvent() domain.ItemEvent {
	return domain.ItemEvent{
		ID:         uuid.NewString(),
		Kind:       domain.EventKindUpdated,
		ItemID:     2,
		Item:       domain.Item{Type: "Suv", Price: "24k", Brand: "Honda", Year: "2018"},
		OccurredAt: time.Now().UTC(),
	}
}

func TestPublishEvent_DeliversToSubscriber(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adapter := NewRedisAdapter(client, "inventory:events:test-"+uuid.NewString())

	sub := adapter.Subscribe(ctx)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	event := newTestEvent()
	ok, err := adapter.PublishEvent(ctx, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected event to be published")
	}

	msg, err := sub.ReceiveMessage(ctx)
	if err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	var got domain.ItemEvent
	if err := json.Unmarshal([]byte(msg.Payload), &got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.ID != event.ID || got.Kind != event.Kind || got.Item != event.Item {
		t.Errorf("expected %+v, got %+v", event, got)
	}
}

func TestPublishEvent_SkipsDuplicate(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, "")

	event := newTestEvent()
	defer client.Del(ctx, eventKeyPrefix+event.ID)

	ok, err := adapter.PublishEvent(ctx, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected first publish to succeed")
	}

	ok, err = adapter.PublishEvent(ctx, event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second publish to be skipped")
	}

	ttl, err := client.TTL(ctx, eventKeyPrefix+event.ID).Result()
	if err != nil {
		t.Fatalf("ttl failed: %v", err)
	}
	if ttl <= 0 || ttl > eventKeyTTL {
		t.Errorf("expected ttl within (0, %v], got %v", eventKeyTTL, ttl)
	}
}

func TestPublishEvent_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, "")

	event := newTestEvent()
	defer client.Del(ctx, eventKeyPrefix+event.ID)

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.PublishEvent(ctx, event)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 publish, got %d", successCount.Load())
	}
}

func TestNewRedisAdapter_DefaultChannel(t *testing.T) {
	adapter := NewRedisAdapter(redis.NewClient(&redis.Options{Addr: "localhost:0"}), "")
	defer adapter.client.Close()

	if adapter.channel != DefaultChannel {
		t.Errorf("expected channel %q, got %q", DefaultChannel, adapter.channel)
	}
}
