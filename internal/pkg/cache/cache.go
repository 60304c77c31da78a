package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Lloyd3312/brightpost-ai/internal/pkg/config"
)

var client *redis.Client

// SetupCache initializes the Redis connection used for single-use OAuth state
// nonces. A failed ping is logged, not fatal; state redemption fails closed
// when the store is unreachable.
func SetupCache(cfg *config.Config) {
	client = redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		log.Printf("Warning: could not connect to Redis: %v", err)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// NonceStore marks OAuth state nonces as used. The SETNX semantics make the
// first redemption the only one that succeeds.
type NonceStore struct {
	client *redis.Client
}

// NewNonceStore creates a nonce store on the shared Redis client.
func NewNonceStore() *NonceStore {
	return &NonceStore{client: GetClient()}
}

// Consume returns true exactly once per nonce. The key lives for ttl so a
// replayed state cannot be redeemed within its validity window.
func (s *NonceStore) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	if s.client == nil {
		return false, fmt.Errorf("nonce store unavailable")
	}
	ok, err := s.client.SetNX(ctx, "oauth_state:"+nonce, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("nonce store: %w", err)
	}
	return ok, nil
}
