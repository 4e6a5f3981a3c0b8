package trending

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minhlq/setwave/internal/platform/constants"
)

// cacheTTL keeps ranked output hot between recomputes without letting a
// stale ranking outlive a scheduler cycle by much.
const cacheTTL = 5 * time.Minute

// RedisCache stores ranked output keyed by (entity type, window, weights).
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(entityType EntityType, windowHours int, weights Weights) string {
	return fmt.Sprintf("%s%s:%d:%s", constants.RedisPrefixTrending, entityType, windowHours, weights.CacheKeyPart())
}

// Get returns the cached ranking, or (nil, nil) on a miss. Cache failures
// are misses: the caller recomputes instead of failing.
func (cache *RedisCache) Get(context context.Context, entityType EntityType, windowHours int, weights Weights) ([]TrendingScoreResult, error) {
	raw, err := cache.client.Get(context, cacheKey(entityType, windowHours, weights)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var results []TrendingScoreResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (cache *RedisCache) Set(context context.Context, entityType EntityType, windowHours int, weights Weights, results []TrendingScoreResult) error {
	raw, err := json.Marshal(results)
	if err != nil {
		return err
	}
	return cache.client.Set(context, cacheKey(entityType, windowHours, weights), raw, cacheTTL).Err()
}
