// Package resilience provides the fault-tolerance primitives the ranking
// service wraps around Postgres and Redis: a circuit breaker, jittered
// exponential-backoff retry, and a context timeout wrapper.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker is refusing calls. Callers
// treat it as "dependency unavailable" without hitting the dependency.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker phase: closed (passing), open (refusing), or
// half-open (probing for recovery).
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig controls when the breaker trips and how long it
// cools down. Zero values fall back to defaults.
type CircuitBreakerConfig struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HalfOpenMaxRequests int
}

func (cfg CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = 1
	}
	return cfg
}

// CircuitBreaker trips open after a run of consecutive failures, refuses
// calls for ResetTimeout, then lets a limited number of trial requests
// through before fully closing again. The index source keeps one around
// its snapshot loads so a dead database does not stall every refresh.
type CircuitBreaker struct {
	name string
	cfg  CircuitBreakerConfig
	log  *slog.Logger

	mu          sync.Mutex
	state       State
	failureRun  int
	openedAt    time.Time
	trialsInUse int
}

// NewCircuitBreaker creates a closed breaker, filling in defaults for zero
// config values.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		name:  name,
		cfg:   cfg.withDefaults(),
		state: StateClosed,
		log:   slog.Default().With("component", "circuit-breaker", "name", name),
	}
}

// Execute runs fn if the breaker allows it and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

// GetState reports the current breaker phase.
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Reset forces the breaker back to closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = StateClosed
	cb.failureRun = 0
	cb.trialsInUse = 0
	cb.log.Info("circuit manually reset")
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateClosed:
		return nil
	case StateOpen:
		remaining := cb.cfg.ResetTimeout - time.Since(cb.openedAt)
		if remaining > 0 {
			return fmt.Errorf("%w: %s (retry after %v)", ErrCircuitOpen, cb.name, remaining)
		}
		cb.state = StateHalfOpen
		cb.trialsInUse = 1
		cb.log.Info("circuit transitioning to half-open", "after", cb.cfg.ResetTimeout)
		return nil
	case StateHalfOpen:
		if cb.trialsInUse >= cb.cfg.HalfOpenMaxRequests {
			return fmt.Errorf("%w: %s (half-open trial limit reached)", ErrCircuitOpen, cb.name)
		}
		cb.trialsInUse++
		return nil
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err == nil {
		switch cb.state {
		case StateClosed:
			cb.failureRun = 0
		case StateHalfOpen:
			cb.state = StateClosed
			cb.failureRun = 0
			cb.trialsInUse = 0
			cb.log.Info("circuit closed (recovered)")
		}
		return
	}

	cb.openedAt = time.Now()
	cb.failureRun++
	switch cb.state {
	case StateClosed:
		if cb.failureRun >= cb.cfg.FailureThreshold {
			cb.state = StateOpen
			cb.log.Warn("circuit opened",
				"consecutive_failures", cb.failureRun,
				"threshold", cb.cfg.FailureThreshold,
			)
		}
	case StateHalfOpen:
		cb.state = StateOpen
		cb.log.Warn("circuit re-opened (trial request failed)")
	}
}
