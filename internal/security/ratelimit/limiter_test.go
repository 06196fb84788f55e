package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLimiterSlidingWindow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatalf("third request within the window should be refused")
	}
	if ok, _ := l.Allow(ctx, "10.0.0.2"); !ok {
		t.Fatalf("other clients have their own window")
	}

	now = now.Add(61 * time.Second)
	if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("request after the window should pass")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(0, time.Minute)
	defer l.Stop()
	for i := 0; i < 10; i++ {
		if ok, _ := l.Allow(context.Background(), "10.0.0.1"); !ok {
			t.Fatalf("a zero limit must not refuse requests")
		}
	}
}

type fakeCounter struct {
	counts map[string]int64
	keys   []string
	err    error
}

func (f *fakeCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.counts[key]++
	f.keys = append(f.keys, key)
	return f.counts[key], nil
}

func TestRedisLimiter(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}}
	l := NewRedisLimiter(counter, 2, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, err := l.Allow(ctx, "10.0.0.1"); !ok || err != nil {
			t.Fatalf("request %d should pass (err=%v)", i+1, err)
		}
	}
	if ok, _ := l.Allow(ctx, "10.0.0.1"); ok {
		t.Fatalf("third request in the same window should be refused")
	}

	now = now.Add(time.Minute)
	if ok, _ := l.Allow(ctx, "10.0.0.1"); !ok {
		t.Fatalf("next window starts a fresh counter")
	}
	if counter.keys[0] == counter.keys[len(counter.keys)-1] {
		t.Errorf("expected a new key for the next window, got %q twice", counter.keys[0])
	}
}

func TestRedisLimiterFailsOpen(t *testing.T) {
	l := NewRedisLimiter(&fakeCounter{err: errors.New("connection refused")}, 1, time.Minute)
	ok, err := l.Allow(context.Background(), "10.0.0.1")
	if !ok {
		t.Fatalf("limiter errors must let the request through")
	}
	if err == nil {
		t.Fatalf("expected the counter error to be reported")
	}
}
