package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T, ttl time.Duration) *CourseListCache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCourseListCache(client, ttl, zap.NewNop())
}

func TestCacheRoundTrip(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	if _, ok := c.Get(ctx, 1, 10, "go"); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	c.Set(ctx, 1, 10, "go", []byte(`{"total":1}`))
	payload, ok := c.Get(ctx, 1, 10, "go")
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if string(payload) != `{"total":1}` {
		t.Fatalf("unexpected payload %q", payload)
	}

	if _, ok := c.Get(ctx, 2, 10, "go"); ok {
		t.Fatal("expected distinct pages to have distinct keys")
	}
	if _, ok := c.Get(ctx, 1, 10, "other"); ok {
		t.Fatal("expected distinct search terms to have distinct keys")
	}
}

func TestCacheInvalidateDropsAllPages(t *testing.T) {
	c := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, 1, 10, "", []byte(`a`))
	c.Set(ctx, 2, 10, "", []byte(`b`))

	c.Invalidate(ctx)

	if _, ok := c.Get(ctx, 1, 10, ""); ok {
		t.Fatal("expected page 1 to miss after invalidation")
	}
	if _, ok := c.Get(ctx, 2, 10, ""); ok {
		t.Fatal("expected page 2 to miss after invalidation")
	}

	// New writes after the version bump are served again.
	c.Set(ctx, 1, 10, "", []byte(`c`))
	if payload, ok := c.Get(ctx, 1, 10, ""); !ok || string(payload) != "c" {
		t.Fatalf("expected fresh write to hit, got %q ok=%v", payload, ok)
	}
}

func TestCacheDisabled(t *testing.T) {
	ctx := context.Background()

	var nilCache *CourseListCache
	if _, ok := nilCache.Get(ctx, 1, 10, ""); ok {
		t.Fatal("nil cache must always miss")
	}
	nilCache.Set(ctx, 1, 10, "", []byte(`a`))
	nilCache.Invalidate(ctx)

	noClient := NewCourseListCache(nil, time.Minute, zap.NewNop())
	if _, ok := noClient.Get(ctx, 1, 10, ""); ok {
		t.Fatal("client-less cache must always miss")
	}

	zeroTTL := newTestCache(t, 0)
	zeroTTL.Set(ctx, 1, 10, "", []byte(`a`))
	if _, ok := zeroTTL.Get(ctx, 1, 10, ""); ok {
		t.Fatal("zero ttl disables the cache")
	}
}

func TestCacheDegradesWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := NewCourseListCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	mr.Close()

	if _, ok := c.Get(ctx, 1, 10, ""); ok {
		t.Fatal("expected a miss when redis is unreachable")
	}
	c.Set(ctx, 1, 10, "", []byte(`a`))
	c.Invalidate(ctx)
}
