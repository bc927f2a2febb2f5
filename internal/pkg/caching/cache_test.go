package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/cache/v9"
)

type mapCache struct {
	values map[string]any
}

func (c *mapCache) Get(ctx context.Context, key string, target any) error {
	v, ok := c.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	if t, ok := target.(*string); ok {
		*t = v.(string)
	}
	return nil
}

func (c *mapCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

func TestUseCacheMissRunsCallbackAndStores(t *testing.T) {
	c := &mapCache{values: map[string]any{}}

	calls := 0
	v, err := UseCache(context.Background(), c, "k", time.Minute, func() (string, error) {
		calls++
		return "fresh", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != "fresh" || calls != 1 {
		t.Errorf("got %q after %d calls", v, calls)
	}
	if c.values["k"] != "fresh" {
		t.Error("miss did not populate the cache")
	}
}

func TestUseCacheHitSkipsCallback(t *testing.T) {
	c := &mapCache{values: map[string]any{"k": "cached"}}

	v, err := UseCache(context.Background(), c, "k", time.Minute, func() (string, error) {
		t.Fatal("callback ran on a cache hit")
		return "", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if v != "cached" {
		t.Errorf("got %q", v)
	}
}

func TestUseCacheCallbackErrorNotStored(t *testing.T) {
	c := &mapCache{values: map[string]any{}}
	boom := errors.New("boom")

	_, err := UseCache(context.Background(), c, "k", time.Minute, func() (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
	if _, ok := c.values["k"]; ok {
		t.Error("failed lookup must not be cached")
	}
}
