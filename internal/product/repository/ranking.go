package repository

import (
	"context"
	"strconv"

	"github.com/fekuna/omnipos-storefront-service/pkg/cache"
)

const bestsellerKey = "products:bestsellers"

// RedisRanking counts units sold per product in a sorted set.
type RedisRanking struct {
	cache *cache.RedisClient
}

func NewRedisRanking(c *cache.RedisClient) *RedisRanking {
	return &RedisRanking{cache: c}
}

func (r *RedisRanking) IncrBy(ctx context.Context, productID int64, quantity int) error {
	return r.cache.Client.ZIncrBy(ctx, bestsellerKey, float64(quantity), strconv.FormatInt(productID, 10)).Err()
}

func (r *RedisRanking) Top(ctx context.Context, n int) ([]int64, error) {
	if n <= 0 {
		return nil, nil
	}
	members, err := r.cache.Client.ZRevRange(ctx, bestsellerKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
