package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/go-redis/redis_rate/v10"

	"promobot/internal/pkg/limiter"
)

// stubCache backs UseCache with a plain map so services can run without
// Redis in tests.
type stubCache struct {
	values map[string]any
}

func newStubCache() *stubCache {
	return &stubCache{values: map[string]any{}}
}

func (c *stubCache) Get(ctx context.Context, key string, target any) error {
	v, ok := c.values[key]
	if !ok {
		return cache.ErrCacheMiss
	}

	switch t := target.(type) {
	case *string:
		*t = v.(string)
	case *bool:
		*t = v.(bool)
	case *int:
		*t = v.(int)
	}
	return nil
}

func (c *stubCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	c.values[key] = value
	return nil
}

func (c *stubCache) Delete(ctx context.Context, key string) error {
	delete(c.values, key)
	return nil
}

type stubLimiter struct {
	err   error
	calls int
}

func (l *stubLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	l.calls++
	return l.err
}

func membershipService(cacheStub *stubCache, lim *stubLimiter) *ServiceMembership {
	return &ServiceMembership{
		ServiceHTTP:   &ServiceHTTP{},
		cache:         cacheStub,
		limiter:       lim,
		serviceConfig: &ServiceConfig{cache: cacheStub},
		baseURL:       TELEGRAM_API_BASE_URL,
	}
}

func TestIsMemberGateOpenWithoutChannel(t *testing.T) {
	cacheStub := newStubCache()
	cacheStub.values[DBKeyConfig(CONFIG_REQUIRED_CHANNEL)] = ""
	lim := &stubLimiter{}

	service := membershipService(cacheStub, lim)

	member, err := service.IsMember(context.Background(), 42)
	if err != nil {
		t.Fatal(err)
	}
	if !member {
		t.Error("no configured channel should leave the gate open")
	}
	if lim.calls != 0 {
		t.Error("open gate must not consume rate-limit budget")
	}
}

func TestIsMemberRateLimited(t *testing.T) {
	cacheStub := newStubCache()
	cacheStub.values[DBKeyConfig(CONFIG_REQUIRED_CHANNEL)] = "@channel"
	lim := &stubLimiter{err: fmt.Errorf("membership check: %w", limiter.ErrRateLimited)}

	service := membershipService(cacheStub, lim)

	_, err := service.IsMember(context.Background(), 42)
	if err == nil {
		t.Fatal("expected a rate-limit error")
	}
	// the sentinel must survive wrapping; string comparison would miss it
	if !errors.Is(err, limiter.ErrRateLimited) {
		t.Errorf("errors.Is lost the sentinel: %v", err)
	}
}
