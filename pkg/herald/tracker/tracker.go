package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/result"
	"github.com/herald-io/herald/pkg/herald/retry"
	"github.com/herald-io/herald/pkg/logger"
)

// Tracker is the delivery tracker. The in-memory map is authoritative;
// every update is written through to the configured store. Aggregate
// counters are atomics so metrics reads never block writers.
type Tracker struct {
	mu      sync.RWMutex
	records map[string]*DeliveryRecord
	store   Store
	logger  logger.Logger

	totalSent      atomic.Int64
	totalDelivered atomic.Int64
	totalFailed    atomic.Int64
}

// New creates a tracker backed by the given store. A nil store keeps records
// in memory only.
func New(store Store, log logger.Logger) *Tracker {
	if store == nil {
		store = NewMemoryStore()
	}
	if log == nil {
		log = logger.Discard
	}
	return &Tracker{
		records: make(map[string]*DeliveryRecord),
		store:   store,
		logger:  log,
	}
}

// Track registers a request as in flight. Called once at the start of an
// orchestration run; subsequent calls for the same ID are no-ops.
func (t *Tracker) Track(req *notification.Request) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.records[req.ID]; exists {
		return
	}
	now := time.Now()
	record := &DeliveryRecord{
		RequestID: req.ID,
		Status:    result.StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Recipient != nil {
		record.RecipientID = req.Recipient.ID
		record.Channel = req.Recipient.Channel
	}
	t.records[req.ID] = record
	t.persistLocked(record)
}

// RecordSuccess appends a successful attempt and marks the request delivered.
func (t *Tracker) RecordSuccess(requestID, messageID string) {
	t.appendAttempt(requestID, AttemptRecord{
		Outcome:   result.OutcomeSuccess,
		MessageID: messageID,
		Timestamp: time.Now(),
	}, result.StatusDelivered)

	t.totalSent.Add(1)
	t.totalDelivered.Add(1)
}

// RecordFailure appends a failed attempt. When a retry has been scheduled its
// attempt metadata is recorded and the request stays live in retry_scheduled
// state; otherwise the failure is terminal.
func (t *Tracker) RecordFailure(requestID string, code errors.Code, retryAttempt *retry.Attempt) {
	attempt := AttemptRecord{
		Outcome:   result.OutcomeFailure,
		ErrorCode: code,
		Timestamp: time.Now(),
	}
	status := result.StatusFailed
	if retryAttempt != nil {
		attempt.Outcome = result.OutcomeRetryScheduled
		attempt.Attempt = retryAttempt.Attempt
		retryAt := retryAttempt.ScheduledAt
		attempt.RetryAt = &retryAt
		status = result.StatusRetryScheduled
	}
	t.appendAttempt(requestID, attempt, status)

	t.totalSent.Add(1)
	if retryAttempt == nil {
		t.totalFailed.Add(1)
	}
}

// RecordPermanentFailure appends a terminal failure without a gateway
// attempt, such as validation or processing rejections.
func (t *Tracker) RecordPermanentFailure(requestID string, code errors.Code) {
	t.appendAttempt(requestID, AttemptRecord{
		Outcome:   result.OutcomeFailure,
		ErrorCode: code,
		Timestamp: time.Now(),
	}, result.StatusFailed)

	t.totalFailed.Add(1)
}

// GetDeliveryStatus returns the current status for the request, or
// StatusUnknown for an untracked ID.
func (t *Tracker) GetDeliveryStatus(requestID string) result.DeliveryStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if record, ok := t.records[requestID]; ok {
		return record.Status
	}
	return result.StatusUnknown
}

// GetRecord returns a copy of the request's delivery record.
func (t *Tracker) GetRecord(requestID string) (*DeliveryRecord, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	record, ok := t.records[requestID]
	if !ok {
		return nil, false
	}
	clone := *record
	clone.Attempts = append([]AttemptRecord(nil), record.Attempts...)
	return &clone, true
}

// GetMetrics derives the aggregate counters. Lock-free with respect to
// record writers.
func (t *Tracker) GetMetrics() Metrics {
	m := Metrics{
		TotalSent:      t.totalSent.Load(),
		TotalDelivered: t.totalDelivered.Load(),
		TotalFailed:    t.totalFailed.Load(),
	}
	if m.TotalSent > 0 {
		m.DeliveryRate = float64(m.TotalDelivered) / float64(m.TotalSent)
	}
	return m
}

// IsHealthy reports whether the tracker and its store are operational.
func (t *Tracker) IsHealthy(ctx context.Context) bool {
	return t.store.Ping(ctx) == nil
}

func (t *Tracker) appendAttempt(requestID string, attempt AttemptRecord, status result.DeliveryStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record, ok := t.records[requestID]
	if !ok {
		record = &DeliveryRecord{
			RequestID: requestID,
			CreatedAt: attempt.Timestamp,
		}
		t.records[requestID] = record
	}
	if attempt.Attempt == 0 {
		attempt.Attempt = len(record.Attempts) + 1
	}
	record.Attempts = append(record.Attempts, attempt)
	record.Status = status
	record.UpdatedAt = attempt.Timestamp
	t.persistLocked(record)
}

// persistLocked writes the record through to the store. Store failures are
// logged, not surfaced: the in-memory record stays authoritative.
func (t *Tracker) persistLocked(record *DeliveryRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := t.store.Save(ctx, record); err != nil {
		t.logger.Warn("delivery record persistence failed",
			"request_id", record.RequestID, "error", err)
	}
}
