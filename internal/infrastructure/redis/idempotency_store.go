package redisstore

import (
	"context"
	"time"

	"cryptodata-service/internal/application"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "cryptodata:idem:"

var _ application.IdempotencyStore = (*Store)(nil)

// Store reserves idempotency keys with SETNX so concurrent API replicas agree
// on the first request.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func (s *Store) TryReserve(ctx context.Context, key string) (bool, error) {
	return s.Client.SetNX(ctx, keyPrefix+key, "1", s.TTL).Result()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}
