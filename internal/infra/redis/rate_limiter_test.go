//go:build !integration

package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClient is an in-memory counter store standing in for redis.
type fakeClient struct {
	mu      sync.Mutex
	counts  map[string]int64
	expires map[string]time.Duration

	incrErr   error
	expireErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{counts: make(map[string]int64), expires: make(map[string]time.Duration)}
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return nil
}
func (f *fakeClient) Get(ctx context.Context, key string) (string, error) { return "", nil }
func (f *fakeClient) Del(ctx context.Context, keys ...string) error       { return nil }
func (f *fakeClient) Close() error                                        { return nil }

func (f *fakeClient) Incr(ctx context.Context, key string) (int64, error) {
	if f.incrErr != nil {
		return 0, f.incrErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	if f.expireErr != nil {
		return f.expireErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expires[key] = expiration
	return nil
}

func TestRateLimiter_Allow(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to the limit then blocks", func(t *testing.T) {
		client := newFakeClient()
		rl := NewRateLimiter(client)
		key := UserActionKey("user-1", "claim")

		for i := 0; i < 3; i++ {
			ok, err := rl.Allow(ctx, key, 3, time.Minute)
			if err != nil {
				t.Fatalf("request %d: %v", i, err)
			}
			if !ok {
				t.Fatalf("request %d should be allowed", i)
			}
		}
		ok, err := rl.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			t.Error("fourth request should be blocked")
		}
	})

	t.Run("sets the window expiry on the first hit only", func(t *testing.T) {
		client := newFakeClient()
		rl := NewRateLimiter(client)
		key := UserActionKey("user-1", "claim")

		rl.Allow(ctx, key, 10, time.Minute)
		if client.expires[key] != time.Minute {
			t.Errorf("expected expiry set to 1m, got %v", client.expires[key])
		}
		client.expireErr = errors.New("should not be called again")
		if _, err := rl.Allow(ctx, key, 10, time.Minute); err != nil {
			t.Errorf("second hit must not call EXPIRE, got %v", err)
		}
	})

	t.Run("propagates backend errors", func(t *testing.T) {
		client := newFakeClient()
		client.incrErr = errors.New("redis down")
		rl := NewRateLimiter(client)

		if _, err := rl.Allow(ctx, "k", 10, time.Minute); err == nil {
			t.Fatal("expected an error")
		}
	})

	t.Run("keys are scoped per user and action", func(t *testing.T) {
		if got, want := UserActionKey("u-1", "claim"), "rate_limit:u-1:claim"; got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})
}
