// Package tracker records per-request delivery history and derives aggregate
// delivery metrics. Records are keyed by request ID and retained for the
// lifetime of the orchestrator process; per-request status lives here so the
// orchestrator itself holds no mutable request state.
package tracker

import (
	"time"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/result"
)

// AttemptRecord is one entry in a request's delivery history.
type AttemptRecord struct {
	Attempt   int            `json:"attempt"`
	Outcome   result.Outcome `json:"outcome"`
	MessageID string         `json:"message_id,omitempty"`
	ErrorCode errors.Code    `json:"error_code,omitempty"`
	RetryAt   *time.Time     `json:"retry_at,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// DeliveryRecord is the full history and current status of one request.
// Owned exclusively by the tracker; never deleted.
type DeliveryRecord struct {
	RequestID   string                `json:"request_id"`
	RecipientID string                `json:"recipient_id,omitempty"`
	Channel     notification.Channel  `json:"channel,omitempty"`
	Status      result.DeliveryStatus `json:"status"`
	Attempts    []AttemptRecord       `json:"attempts"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// LastAttempt returns the most recent attempt, or nil for a fresh record.
func (r *DeliveryRecord) LastAttempt() *AttemptRecord {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}

// Metrics are the aggregate delivery counters.
type Metrics struct {
	TotalSent      int64   `json:"total_sent"`
	TotalDelivered int64   `json:"total_delivered"`
	TotalFailed    int64   `json:"total_failed"`
	DeliveryRate   float64 `json:"delivery_rate"`
}
