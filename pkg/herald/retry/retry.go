// Package retry decides whether failed deliveries get another attempt and
// computes the exponential backoff schedule for attempts that do.
package retry

import (
	"math/rand"
	"sync"
	"time"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/ratelimit"
)

// Attempt describes one scheduled retry for a request.
type Attempt struct {
	RequestID   string        `json:"request_id"`
	Attempt     int           `json:"attempt"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	Delay       time.Duration `json:"delay"`
	ErrorCode   errors.Code   `json:"error_code"`
}

// Policy holds the retry tunables.
type Policy struct {
	// MaxAttempts bounds the number of retries per request ID.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// Multiplier grows the delay per attempt.
	Multiplier float64
	// MaxDelay caps the computed delay.
	MaxDelay time.Duration
	// MaxJitter adds up to this much random spread to each delay.
	MaxJitter time.Duration
}

// DefaultPolicy returns the default exponential backoff policy: three
// attempts starting at 2s, doubling, capped at 60s.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
		MaxDelay:    60 * time.Second,
	}
}

// Delay computes the backoff before the given 1-based attempt.
func (p *Policy) Delay(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * p.Multiplier)
		if p.MaxDelay > 0 && delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(p.MaxJitter)))
	}
	return delay
}

// Manager tracks per-request attempt counts and applies the retry policy.
// Safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	policy   *Policy
	clock    ratelimit.Clock
	attempts map[string]int
}

// NewManager creates a retry manager with the given policy. A nil policy
// uses defaults.
func NewManager(policy *Policy) *Manager {
	return NewManagerWithClock(policy, ratelimit.SystemClock{})
}

// NewManagerWithClock creates a retry manager with a custom clock.
func NewManagerWithClock(policy *Policy, clock ratelimit.Clock) *Manager {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Manager{
		policy:   policy,
		clock:    clock,
		attempts: make(map[string]int),
	}
}

// ShouldRetry reports whether a failure with the given code warrants another
// attempt: the code must be classified retryable and the request must have
// attempt budget left.
func (m *Manager) ShouldRetry(requestID string, code errors.Code) bool {
	if !errors.IsRetryable(code) {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[requestID] < m.policy.MaxAttempts
}

// ScheduleRetry computes the next attempt for the request and records it.
// The returned attempt number never exceeds MaxAttempts; callers must gate
// with ShouldRetry first, and a call past the budget returns a terminal
// RETRY_EXHAUSTED error.
func (m *Manager) ScheduleRetry(requestID string, code errors.Code) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.attempts[requestID] + 1
	if next > m.policy.MaxAttempts {
		return nil, errors.Newf(errors.ErrRetryExhausted,
			"request %s exhausted %d attempts", requestID, m.policy.MaxAttempts)
	}
	m.attempts[requestID] = next

	delay := m.policy.Delay(next)
	return &Attempt{
		RequestID:   requestID,
		Attempt:     next,
		ScheduledAt: m.clock.Now().Add(delay),
		Delay:       delay,
		ErrorCode:   code,
	}, nil
}

// AttemptCount returns the number of retries recorded for the request.
func (m *Manager) AttemptCount(requestID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[requestID]
}

// Forget clears the attempt history of a request after a terminal outcome.
func (m *Manager) Forget(requestID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attempts, requestID)
}

// MaxAttempts returns the configured attempt budget.
func (m *Manager) MaxAttempts() int {
	return m.policy.MaxAttempts
}
