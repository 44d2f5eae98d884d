package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/car-inventory/internal/core/domain"
	"github.com/rl1809/car-inventory/internal/port"
)

const (
	eventKeyPrefix = "inventory:event:"
	eventKeyTTL    = 24 * time.Hour
	DefaultChannel = "inventory:events"
)

// Marks the event id and publishes only when the mark is new, so a redelivered
// event reaches subscribers at most once.
var publishOnceScript = redis.NewScript(`
local key = KEYS[1]
local channel = ARGV[1]
local payload = ARGV[2]
local ttl = tonumber(ARGV[3])

if not redis.call('SET', key, 1, 'NX', 'EX', ttl) then
	return 0
end

redis.call('PUBLISH', channel, payload)
return 1
`)

var _ port.EventPublisher = (*RedisAdapter)(nil)

type RedisAdapter struct {
	client  *redis.Client
	channel string
}

func NewRedisAdapter(client *redis.Client, channel string) *RedisAdapter {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisAdapter{client: client, channel: channel}
}

func (r *RedisAdapter) PublishEvent(ctx context.Context, event domain.ItemEvent) (bool, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("encode event: %w", err)
	}

	key := eventKeyPrefix + event.ID
	result, err := publishOnceScript.Run(ctx, r.client, []string{key},
		r.channel, string(payload), int(eventKeyTTL.Seconds()),
	).Int()
	if err != nil {
		return false, fmt.Errorf("publish event: %w", err)
	}

	return result == 1, nil
}

// Subscribe returns a subscription to the change channel. The caller closes it.
func (r *RedisAdapter) Subscribe(ctx context.Context) *redis.PubSub {
	return r.client.Subscribe(ctx, r.channel)
}
