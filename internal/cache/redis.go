package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const pageKeyPrefix = "page:"

// RedisPageCache stores fetched page markup keyed by URL with a TTL.
type RedisPageCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisPageCache(client redis.UniversalClient, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisPageCache) Get(ctx context.Context, url string) (string, bool, error) {
	html, err := c.client.Get(ctx, pageKeyPrefix+url).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		return "", false, err
	}

	return html, true, nil
}

func (c *RedisPageCache) Set(ctx context.Context, url, html string) error {
	return c.client.Set(ctx, pageKeyPrefix+url, html, c.ttl).Err()
}
