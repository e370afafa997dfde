package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	answerCachePrefix     = "answer:"
	defaultAnswerCacheTTL = 15 * time.Minute
)

// AnswerCache caches resolved answers keyed by the trimmed query, so
// repeating a question does not hit the answering service again.
type AnswerCache struct {
	client *Client
	ttl    time.Duration
}

// NewAnswerCache creates a new answer cache
func NewAnswerCache(client *Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = defaultAnswerCacheTTL
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// Get retrieves a cached answer for a query. A miss returns "" with a
// nil error.
func (c *AnswerCache) Get(ctx context.Context, query string) (string, error) {
	key := fmt.Sprintf("%s%s", answerCachePrefix, query)

	answer, err := c.client.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read answer cache: %w", err)
	}
	return answer, nil
}

// Set caches the resolved answer for a query
func (c *AnswerCache) Set(ctx context.Context, query, answer string) error {
	key := fmt.Sprintf("%s%s", answerCachePrefix, query)
	return c.client.rdb.Set(ctx, key, answer, c.ttl).Err()
}

// FlushAll removes all cached answers
func (c *AnswerCache) FlushAll(ctx context.Context) (int64, error) {
	pattern := answerCachePrefix + "*"
	var cursor uint64
	var deleted int64

	for {
		keys, nextCursor, err := c.client.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			count, err := c.client.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += count
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
