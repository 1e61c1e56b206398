package async

import (
	"context"
	"sync"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/result"
)

// ProgressCallback reports bulk dispatch progress after each request
// resolves.
type ProgressCallback func(completed, failed, total int)

// BatchCompletionCallback receives the aggregate once a bulk dispatch
// finishes.
type BatchCompletionCallback func(*result.BulkResult)

// BatchHandle is a future for one bulk dispatch. Per-request results arrive
// incrementally; the handle resolves once the whole batch has been walked.
type BatchHandle struct {
	bulkID string
	total  int

	mu         sync.Mutex
	status     Status
	completed  int
	failed     int
	bulk       *result.BulkResult
	onProgress []ProgressCallback
	onComplete []BatchCompletionCallback

	done chan struct{}
}

// NewBatchHandle creates a pending handle for a bulk dispatch of the given
// size.
func NewBatchHandle(bulkID string, total int) *BatchHandle {
	return &BatchHandle{
		bulkID: bulkID,
		total:  total,
		status: StatusPending,
		done:   make(chan struct{}),
	}
}

// BulkID returns the id of the tracked bulk dispatch.
func (h *BatchHandle) BulkID() string {
	return h.bulkID
}

// Status returns the current lifecycle state.
func (h *BatchHandle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Progress returns the counts of resolved requests so far.
func (h *BatchHandle) Progress() (completed, failed, total int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.completed, h.failed, h.total
}

// Record accounts one resolved request and fires the progress callbacks.
func (h *BatchHandle) Record(res *result.Result) {
	h.mu.Lock()
	if h.status == StatusPending {
		h.status = StatusRunning
	}
	h.completed++
	if res != nil && res.Outcome != result.OutcomeSuccess {
		h.failed++
	}
	completed, failed, total := h.completed, h.failed, h.total
	callbacks := h.onProgress
	h.mu.Unlock()

	for _, cb := range callbacks {
		cb(completed, failed, total)
	}
}

// Finish resolves the handle with the batch aggregate. Subsequent calls are
// ignored.
func (h *BatchHandle) Finish(bulk *result.BulkResult) {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return
	default:
	}
	h.bulk = bulk
	h.status = StatusCompleted
	callbacks := h.onComplete
	close(h.done)
	h.mu.Unlock()

	for _, cb := range callbacks {
		cb(bulk)
	}
}

// OnProgress registers a callback fired after each request resolves.
func (h *BatchHandle) OnProgress(cb ProgressCallback) *BatchHandle {
	h.mu.Lock()
	h.onProgress = append(h.onProgress, cb)
	h.mu.Unlock()
	return h
}

// OnComplete registers a callback fired on resolution. Registered after
// resolution, it fires immediately.
func (h *BatchHandle) OnComplete(cb BatchCompletionCallback) *BatchHandle {
	h.mu.Lock()
	select {
	case <-h.done:
		bulk := h.bulk
		h.mu.Unlock()
		cb(bulk)
		return h
	default:
	}
	h.onComplete = append(h.onComplete, cb)
	h.mu.Unlock()
	return h
}

// Done returns a channel closed on resolution.
func (h *BatchHandle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the batch resolves or the context ends.
func (h *BatchHandle) Wait(ctx context.Context) (*result.BulkResult, error) {
	select {
	case <-h.done:
		return h.bulk, nil
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrInternal, "wait aborted", ctx.Err())
	}
}
