package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "votetopics:article:"

// DefaultTTL is how long extracted article text stays cached.
const DefaultTTL = 6 * time.Hour

// ArticleCache keeps extracted article text in Redis, keyed by URL hash.
type ArticleCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewArticleCache connects to Redis and pings it.
func NewArticleCache(ctx context.Context, opts Options) (*ArticleCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}
	return NewArticleCacheFromClient(client, opts.TTL), nil
}

// NewArticleCacheFromClient wraps an existing client.
func NewArticleCacheFromClient(client *redis.Client, ttl time.Duration) *ArticleCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ArticleCache{client: client, ttl: ttl}
}

// Get returns the cached text for articleURL. A miss is not an error.
func (c *ArticleCache) Get(ctx context.Context, articleURL string) (string, bool, error) {
	text, err := c.client.Get(ctx, key(articleURL)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache get: %w", err)
	}
	return text, true, nil
}

// Set stores text for articleURL with the configured TTL.
func (c *ArticleCache) Set(ctx context.Context, articleURL, text string) error {
	if err := c.client.Set(ctx, key(articleURL), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *ArticleCache) Close() error {
	return c.client.Close()
}

func key(articleURL string) string {
	sum := sha1.Sum([]byte(articleURL))
	return keyPrefix + hex.EncodeToString(sum[:])
}
