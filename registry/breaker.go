package registry

import (
	"sync"
	"time"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// CircuitBreaker guards a lookup provider against cascading failures.
// After failureThreshold consecutive errors the breaker opens and blocks
// calls; after the cooldown it lets probe calls through, and closes again
// once successThreshold of them succeed.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            breakerState
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	timeout          time.Duration
	lastFailureTime  time.Time
}

func NewCircuitBreaker() *CircuitBreaker {
	return &CircuitBreaker{
		state:            stateClosed,
		failureThreshold: 5,
		successThreshold: 2,
		timeout:          30 * time.Second,
	}
}

// CanProceed reports whether a call may go through, transitioning an open
// breaker to half-open once the cooldown has passed.
func (cb *CircuitBreaker) CanProceed() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return true
	case stateOpen:
		if time.Since(cb.lastFailureTime) > cb.timeout {
			cb.state = stateHalfOpen
			cb.successCount = 0
			return true
		}
		return false
	case stateHalfOpen:
		return true
	default:
		return false
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		cb.failureCount = 0
	case stateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = stateClosed
			cb.failureCount = 0
			cb.successCount = 0
		}
	}
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	switch cb.state {
	case stateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = stateOpen
		}
	case stateHalfOpen:
		cb.state = stateOpen
		cb.failureCount = cb.failureThreshold
		cb.successCount = 0
	}
}

// State returns the current state name for logging.
func (cb *CircuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateClosed:
		return "closed"
	case stateOpen:
		return "open"
	case stateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}
