package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*ArticleCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	c := NewArticleCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestArticleCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()
	u := "https://www.lemonde.fr/politique/article/2025/reforme.html"

	_, ok, err := c.Get(ctx, u)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, u, "Le texte de l'article"))

	text, ok, err := c.Get(ctx, u)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Le texte de l'article", text)
}

func TestArticleCacheExpires(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "https://example.test/a", "texte"))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "https://example.test/a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArticleCacheDefaultTTL(t *testing.T) {
	c, mr := newTestCache(t, 0)
	require.NoError(t, c.Set(context.Background(), "https://example.test/b", "texte"))

	assert.Equal(t, DefaultTTL, mr.TTL(key("https://example.test/b")))
}

func TestArticleCacheReportsConnectionErrors(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	_, _, err := c.Get(context.Background(), "https://example.test/c")
	assert.Error(t, err)
}

func TestNewArticleCachePingFails(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewArticleCache(context.Background(), Options{Addr: addr})
	assert.Error(t, err)
}
