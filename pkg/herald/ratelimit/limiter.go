// Package ratelimit provides per-recipient admission control over a sliding
// window, plus inter-send pacing advice for bulk dispatch. All state mutation
// is safe under concurrent orchestration tasks.
package ratelimit

import (
	"sync"
	"time"

	"github.com/herald-io/herald/pkg/herald/errors"
)

// Config holds the rate limiter tunables.
type Config struct {
	// Limit is the maximum number of admitted sends per recipient per window.
	Limit int
	// Window is the sliding window length.
	Window time.Duration
	// InterSendDelay is the minimum spacing advised between sequential sends
	// in a bulk dispatch.
	InterSendDelay time.Duration
}

// DefaultConfig returns the default limiter configuration.
func DefaultConfig() *Config {
	return &Config{
		Limit:          10,
		Window:         time.Minute,
		InterSendDelay: 100 * time.Millisecond,
	}
}

// RecipientLimiter enforces a per-recipient sliding window. A successful
// CheckRateLimit consumes one window slot; RecordDelivery only updates the
// delivery counters used for pacing advice and health reporting.
type RecipientLimiter struct {
	mu            sync.Mutex
	config        *Config
	clock         Clock
	admissions    map[string][]time.Time
	deliveries    map[string]int64
	lastDelivery  time.Time
	totalAdmitted int64
	totalDenied   int64
}

// NewRecipientLimiter creates a limiter with the given configuration. A nil
// config uses defaults.
func NewRecipientLimiter(config *Config) *RecipientLimiter {
	return NewRecipientLimiterWithClock(config, SystemClock{})
}

// NewRecipientLimiterWithClock creates a limiter with a custom clock.
func NewRecipientLimiterWithClock(config *Config, clock Clock) *RecipientLimiter {
	if config == nil {
		config = DefaultConfig()
	}
	return &RecipientLimiter{
		config:     config,
		clock:      clock,
		admissions: make(map[string][]time.Time),
		deliveries: make(map[string]int64),
	}
}

// CheckRateLimit admits or denies a send for the recipient. Admission
// consumes one slot of the recipient's window.
func (l *RecipientLimiter) CheckRateLimit(recipientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	window := l.pruneLocked(recipientID, now)

	if len(window) >= l.config.Limit {
		l.totalDenied++
		return errors.Newf(errors.ErrRateLimitExceeded,
			"recipient %s exceeded %d sends per %s", recipientID, l.config.Limit, l.config.Window)
	}

	l.admissions[recipientID] = append(window, now)
	l.totalAdmitted++
	return nil
}

// RecordDelivery records a confirmed gateway success for the recipient.
func (l *RecipientLimiter) RecordDelivery(recipientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deliveries[recipientID]++
	l.lastDelivery = l.clock.Now()
}

// RequiresDelay reports whether bulk dispatch should pause before the next
// send.
func (l *RecipientLimiter) RequiresDelay() bool {
	return l.DelayAmount() > 0
}

// DelayAmount returns how long bulk dispatch should wait before the next
// send, based on the time of the last confirmed delivery.
func (l *RecipientLimiter) DelayAmount() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.config.InterSendDelay <= 0 || l.lastDelivery.IsZero() {
		return 0
	}
	elapsed := l.clock.Now().Sub(l.lastDelivery)
	if elapsed >= l.config.InterSendDelay {
		return 0
	}
	return l.config.InterSendDelay - elapsed
}

// IsHealthy reports whether the limiter is operational.
func (l *RecipientLimiter) IsHealthy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.admissions != nil && l.config.Limit > 0 && l.config.Window > 0
}

// WindowUsage returns the number of admissions currently counted against the
// recipient's window.
func (l *RecipientLimiter) WindowUsage(recipientID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pruneLocked(recipientID, l.clock.Now()))
}

// Stats returns aggregate admission counters.
func (l *RecipientLimiter) Stats() (admitted, denied int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totalAdmitted, l.totalDenied
}

// Reset clears all per-recipient state.
func (l *RecipientLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.admissions = make(map[string][]time.Time)
	l.deliveries = make(map[string]int64)
	l.lastDelivery = time.Time{}
}

// pruneLocked drops admissions that fell out of the window and returns the
// remaining entries. Empty windows are removed so idle recipients do not
// accumulate.
func (l *RecipientLimiter) pruneLocked(recipientID string, now time.Time) []time.Time {
	cutoff := now.Add(-l.config.Window)
	window := l.admissions[recipientID]

	valid := 0
	for ; valid < len(window); valid++ {
		if window[valid].After(cutoff) {
			break
		}
	}
	if valid > 0 {
		window = append([]time.Time(nil), window[valid:]...)
		if len(window) == 0 {
			delete(l.admissions, recipientID)
		} else {
			l.admissions[recipientID] = window
		}
	}
	return window
}
