package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/yourorg/estatehub/pkg/database"
)

// ErrOpen is returned while the breaker is refusing calls
var ErrOpen = errors.New("circuit breaker open")

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker fails fast once a dependency has failed threshold times in a
// row. After cooldown a single trial call is let through; its outcome closes
// or re-opens the circuit.
type CircuitBreaker struct {
	mu            sync.Mutex
	state         State
	failures      int
	threshold     int
	cooldown      time.Duration
	openedAt      time.Time
	trialInFlight bool
	now           func() time.Time
	onStateChange func(from, to State)
}

// New creates a closed breaker
func New(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 1
	}
	return &CircuitBreaker{
		threshold:     threshold,
		cooldown:      cooldown,
		now:           time.Now,
		onStateChange: func(_, _ State) {},
	}
}

// OnStateChange registers a callback for state transitions. The callback runs
// with the breaker locked and must not call back into it.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.onStateChange = fn
}

// State returns the current state
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Allow reports whether a call may proceed. Every allowed call must be
// followed by exactly one Record or Abandon.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.cooldown {
			return ErrOpen
		}
		cb.setState(StateHalfOpen)
		cb.trialInFlight = true
		return nil
	case StateHalfOpen:
		if cb.trialInFlight {
			return ErrOpen
		}
		cb.trialInFlight = true
		return nil
	default:
		return nil
	}
}

// Record reports the outcome of an allowed call
func (cb *CircuitBreaker) Record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		cb.trialInFlight = false
		cb.setState(StateClosed)
		return
	}

	switch cb.state {
	case StateHalfOpen:
		cb.trialInFlight = false
		cb.trip()
	case StateClosed:
		cb.failures++
		if cb.failures >= cb.threshold {
			cb.trip()
		}
	}
}

// Abandon releases an allowed call without counting its outcome
func (cb *CircuitBreaker) Abandon() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.trialInFlight = false
}

func (cb *CircuitBreaker) trip() {
	cb.failures = 0
	cb.openedAt = cb.now()
	cb.setState(StateOpen)
}

func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.onStateChange(from, to)
}

// Acquirer guards connection acquisition with a breaker so requests fail fast
// while PostgreSQL is unreachable.
type Acquirer struct {
	next    database.Acquirer
	breaker *CircuitBreaker
}

// GuardAcquirer wraps next with breaker
func GuardAcquirer(next database.Acquirer, breaker *CircuitBreaker) *Acquirer {
	return &Acquirer{next: next, breaker: breaker}
}

// Acquire implements database.Acquirer
func (a *Acquirer) Acquire(ctx context.Context) (*sqlx.Conn, error) {
	if err := a.breaker.Allow(); err != nil {
		return nil, err
	}
	conn, err := a.next.Acquire(ctx)
	if errors.Is(err, context.Canceled) {
		a.breaker.Abandon()
		return nil, err
	}
	a.breaker.Record(err)
	return conn, err
}
