package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/SaturnGames/internal/pkg/config"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the connection to the redis server. The cache is a
// hardening layer (catalog cache, reconcile locks, limiter storage); the
// service stays up when it is unreachable.
func SetupCache(cfg *config.Config) {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.CacheHost, cfg.CachePort),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance, nil before SetupCache ran.
func GetClient() *redis.Client {
	return client
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	c := GetClient()
	if c == nil {
		return redis.ErrClosed
	}
	return c.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	c := GetClient()
	if c == nil {
		return "", redis.ErrClosed
	}
	return c.Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	c := GetClient()
	if c == nil {
		return redis.ErrClosed
	}
	return c.Del(ctx, key).Err()
}
