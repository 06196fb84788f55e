package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestBreaker(threshold int, cooldown time.Duration) (*CircuitBreaker, *clock) {
	clk := &clock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	cb := New(threshold, cooldown)
	cb.now = clk.now
	return cb, clk
}

var errDown = errors.New("dial tcp: connection refused")

func TestTripsAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(3, time.Second)
	for i := 0; i < 3; i++ {
		if err := cb.Allow(); err != nil {
			t.Fatalf("call %d refused while closed: %v", i, err)
		}
		cb.Record(errDown)
	}
	if cb.State() != StateOpen {
		t.Fatalf("expected open after 3 failures, got %s", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen, got %v", err)
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(2, time.Second)
	cb.Allow()
	cb.Record(errDown)
	cb.Allow()
	cb.Record(nil)
	cb.Allow()
	cb.Record(errDown)
	if cb.State() != StateClosed {
		t.Fatalf("non-consecutive failures must not trip, got %s", cb.State())
	}
}

func TestHalfOpenAllowsSingleTrial(t *testing.T) {
	cb, clk := newTestBreaker(1, time.Second)
	cb.Allow()
	cb.Record(errDown)

	clk.t = clk.t.Add(2 * time.Second)
	if err := cb.Allow(); err != nil {
		t.Fatalf("expected trial call after cooldown, got %v", err)
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %s", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("second concurrent trial must be refused, got %v", err)
	}

	cb.Record(nil)
	if cb.State() != StateClosed {
		t.Fatalf("successful trial should close, got %s", cb.State())
	}
}

func TestFailedTrialReopens(t *testing.T) {
	cb, clk := newTestBreaker(1, time.Second)
	cb.Allow()
	cb.Record(errDown)

	clk.t = clk.t.Add(2 * time.Second)
	cb.Allow()
	cb.Record(errDown)
	if cb.State() != StateOpen {
		t.Fatalf("failed trial should re-open, got %s", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrOpen) {
		t.Fatalf("cooldown restarts on re-open, got %v", err)
	}
}

func TestStateChangeCallback(t *testing.T) {
	cb, _ := newTestBreaker(1, time.Second)
	var transitions []string
	cb.OnStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})
	cb.Allow()
	cb.Record(errDown)
	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Fatalf("unexpected transitions %v", transitions)
	}
}

type fakeAcquirer struct {
	calls int
	err   error
}

func (f *fakeAcquirer) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	f.calls++
	return nil, f.err
}

func TestGuardAcquirerFailsFast(t *testing.T) {
	backing := &fakeAcquirer{err: errDown}
	cb, _ := newTestBreaker(2, time.Minute)
	acq := GuardAcquirer(backing, cb)

	for i := 0; i < 2; i++ {
		if _, err := acq.Acquire(context.Background()); !errors.Is(err, errDown) {
			t.Fatalf("expected pool error, got %v", err)
		}
	}
	if _, err := acq.Acquire(context.Background()); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen once tripped, got %v", err)
	}
	if backing.calls != 2 {
		t.Errorf("open breaker must not reach the pool, got %d calls", backing.calls)
	}
}

func TestGuardAcquirerIgnoresCanceledClients(t *testing.T) {
	backing := &fakeAcquirer{err: context.Canceled}
	cb, _ := newTestBreaker(1, time.Minute)
	acq := GuardAcquirer(backing, cb)

	for i := 0; i < 3; i++ {
		acq.Acquire(context.Background())
	}
	if cb.State() != StateClosed {
		t.Fatalf("canceled requests must not trip the breaker, got %s", cb.State())
	}
}
