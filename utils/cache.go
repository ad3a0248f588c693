// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"fieldbot/config"

	"github.com/go-redis/redis/v8"
)

// InteractionCacheClient is the dedicated client for pending-interaction state.
var InteractionCacheClient *redis.Client

// InitInteractionCache initializes the Redis client backing the pending-interaction store.
func InitInteractionCache() {
	InteractionCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisInteractionDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := InteractionCacheClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Interactions): %v", err)
	}
}

// GetInteractionCacheClient returns the pending-interaction Redis client.
func GetInteractionCacheClient() *redis.Client {
	if InteractionCacheClient == nil {
		InitInteractionCache()
	}
	return InteractionCacheClient
}
