// Package async provides the future-style handles returned by asynchronous
// dispatch. A handle resolves exactly once; callbacks registered after
// resolution fire immediately.
package async

import (
	"context"
	"sync"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/result"
)

// Status is the lifecycle state of an asynchronous operation.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// CompletionCallback receives the delivery result once the operation
// resolves, whether it succeeded or failed.
type CompletionCallback func(*result.Result)

// ErrorCallback receives the request id and error when the operation
// resolves unsuccessfully.
type ErrorCallback func(requestID string, err error)

// Handle is a future for one asynchronous dispatch.
type Handle struct {
	requestID string

	mu         sync.Mutex
	status     Status
	res        *result.Result
	err        error
	onComplete []CompletionCallback
	onError    []ErrorCallback

	done chan struct{}
}

// NewHandle creates a pending handle for the request.
func NewHandle(requestID string) *Handle {
	return &Handle{
		requestID: requestID,
		status:    StatusPending,
		done:      make(chan struct{}),
	}
}

// RequestID returns the id of the tracked request.
func (h *Handle) RequestID() string {
	return h.requestID
}

// Status returns the current lifecycle state.
func (h *Handle) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Start marks the operation as running. It is a no-op once resolved.
func (h *Handle) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == StatusPending {
		h.status = StatusRunning
	}
}

// Complete resolves the handle with a delivery result. A failure result also
// fires the error callbacks; success and retry-scheduled results do not.
// Subsequent resolutions are ignored.
func (h *Handle) Complete(res *result.Result) {
	var err error
	if res != nil && res.Outcome == result.OutcomeFailure {
		err = errors.New(res.ErrorCode, res.Message)
	}
	h.resolve(res, err)
}

// Fail resolves the handle with an error and a synthesized failure result.
func (h *Handle) Fail(err error) {
	h.resolve(result.NewFailure(h.requestID, errors.CodeOf(err), err.Error()), err)
}

func (h *Handle) resolve(res *result.Result, err error) {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return
	default:
	}

	h.res = res
	h.err = err
	if err != nil {
		h.status = StatusFailed
	} else {
		h.status = StatusCompleted
	}
	completions := h.onComplete
	failures := h.onError
	close(h.done)
	h.mu.Unlock()

	for _, cb := range completions {
		cb(res)
	}
	if err != nil {
		for _, cb := range failures {
			cb(h.requestID, err)
		}
	}
}

// OnComplete registers a callback fired on resolution. Registered after
// resolution, it fires immediately.
func (h *Handle) OnComplete(cb CompletionCallback) *Handle {
	h.mu.Lock()
	select {
	case <-h.done:
		res := h.res
		h.mu.Unlock()
		cb(res)
		return h
	default:
	}
	h.onComplete = append(h.onComplete, cb)
	h.mu.Unlock()
	return h
}

// OnError registers a callback fired when the operation resolves with an
// error. Registered after a failed resolution, it fires immediately.
func (h *Handle) OnError(cb ErrorCallback) *Handle {
	h.mu.Lock()
	select {
	case <-h.done:
		err := h.err
		h.mu.Unlock()
		if err != nil {
			cb(h.requestID, err)
		}
		return h
	default:
	}
	h.onError = append(h.onError, cb)
	h.mu.Unlock()
	return h
}

// Done returns a channel closed on resolution.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the resolved outcome without blocking. The boolean reports
// whether the handle has resolved.
func (h *Handle) Result() (*result.Result, error, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	select {
	case <-h.done:
		return h.res, h.err, true
	default:
		return nil, nil, false
	}
}

// Wait blocks until the handle resolves or the context ends. A context error
// leaves the handle unresolved.
func (h *Handle) Wait(ctx context.Context) (*result.Result, error) {
	select {
	case <-h.done:
		return h.res, h.err
	case <-ctx.Done():
		return nil, errors.Wrap(errors.ErrInternal, "wait aborted", ctx.Err())
	}
}
