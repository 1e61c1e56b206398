// Package result defines the outcome types returned by the orchestrator:
// per-request results, bulk aggregates, and delivery status values.
package result

import (
	"time"

	"github.com/herald-io/herald/pkg/herald/errors"
)

// Outcome is the terminal disposition of one delivery attempt.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeFailure        Outcome = "failure"
	OutcomeRetryScheduled Outcome = "retry_scheduled"
)

// Result is the outcome of one orchestration run for a single request.
// Exactly one terminal outcome exists per request ID per attempt.
type Result struct {
	RequestID string         `json:"request_id"`
	Outcome   Outcome        `json:"outcome"`
	Message   string         `json:"message,omitempty"`
	MessageID string         `json:"message_id,omitempty"`
	ErrorCode errors.Code    `json:"error_code,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Success reports whether the delivery succeeded.
func (r *Result) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// RetryScheduled reports whether another attempt has been scheduled.
func (r *Result) RetryScheduled() bool {
	return r.Outcome == OutcomeRetryScheduled
}

// SetMetadata attaches a key-value pair to the result.
func (r *Result) SetMetadata(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}

// NewSuccess creates a success result with the gateway message ID.
func NewSuccess(requestID, messageID string) *Result {
	return &Result{
		RequestID: requestID,
		Outcome:   OutcomeSuccess,
		MessageID: messageID,
		Timestamp: time.Now(),
	}
}

// NewFailure creates a failure result tagged with an error code and a
// human-readable reason.
func NewFailure(requestID string, code errors.Code, reason string) *Result {
	return &Result{
		RequestID: requestID,
		Outcome:   OutcomeFailure,
		Message:   reason,
		ErrorCode: code,
		Timestamp: time.Now(),
	}
}

// NewRetryScheduled creates a retry-scheduled result carrying the attempt
// number and the time of the next attempt.
func NewRetryScheduled(requestID string, code errors.Code, attempt int, retryAt time.Time) *Result {
	r := &Result{
		RequestID: requestID,
		Outcome:   OutcomeRetryScheduled,
		Message:   "delivery failed, retry scheduled",
		ErrorCode: code,
		Timestamp: time.Now(),
	}
	r.SetMetadata("retry_attempt", attempt)
	r.SetMetadata("retry_at", retryAt)
	return r
}

// BulkResult aggregates per-recipient results of one bulk request.
// Results preserve the input order of the bulk request.
type BulkResult struct {
	BulkID         string    `json:"bulk_id"`
	Results        []*Result `json:"results"`
	FailedRequests []string  `json:"failed_requests"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
}

// Succeeded returns the number of successful items.
func (b *BulkResult) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Success() {
			n++
		}
	}
	return n
}

// AllSucceeded reports whether every item in the batch succeeded.
func (b *BulkResult) AllSucceeded() bool {
	return len(b.FailedRequests) == 0 && len(b.Results) > 0
}
