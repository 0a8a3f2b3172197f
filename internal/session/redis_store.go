package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

type RedisStore struct {
	cache *cache.RedisClient
	ttl   time.Duration
}

func NewRedisStore(c *cache.RedisClient, ttl time.Duration) *RedisStore {
	return &RedisStore{cache: c, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	val, err := r.cache.Client.Get(ctx, key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var s Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, err
	}
	s.ID = id
	return &s, nil
}

// Save writes the session and refreshes its TTL (rolling expiry).
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.cache.Client.Set(ctx, key(s.ID), data, r.ttl).Err()
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.cache.Client.Del(ctx, key(id)).Err()
}
