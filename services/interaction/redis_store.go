package interaction

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"fieldbot/models"
	"fieldbot/utils"

	"github.com/go-redis/redis/v8"
)

// consumeScript performs the atomic read-and-delete on the Redis side.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v then
	redis.call('DEL', KEYS[1])
end
return v
`)

// RedisStore backs the pending-interaction state with a keyed store that
// survives process restarts and is safe behind multiple server instances.
// Expiry rides on native Redis TTLs, so no sweep is needed.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = utils.PendingInteractionTTL
	}
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) key(conversationID string) string {
	return utils.InteractionCachePrefix + conversationID
}

func (s *RedisStore) Set(ctx context.Context, conversationID string, pi models.PendingInteraction) error {
	pi.ConversationID = conversationID
	pi.ExpiresAt = time.Now().Add(s.TTL)
	payload, err := json.Marshal(pi)
	if err != nil {
		return fmt.Errorf("failed to marshal pending interaction: %w", err)
	}
	if err := s.Client.Set(ctx, s.key(conversationID), payload, s.TTL).Err(); err != nil {
		return fmt.Errorf("failed to store pending interaction: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, conversationID string) (*models.PendingInteraction, error) {
	raw, err := consumeScript.Run(ctx, s.Client, []string{s.key(conversationID)}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to consume pending interaction: %w", err)
	}
	payload, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected pending interaction payload type %T", raw)
	}

	var pi models.PendingInteraction
	if err := json.Unmarshal([]byte(payload), &pi); err != nil {
		return nil, fmt.Errorf("failed to decode pending interaction: %w", err)
	}
	if pi.Expired(time.Now()) {
		return nil, nil
	}
	return &pi, nil
}
