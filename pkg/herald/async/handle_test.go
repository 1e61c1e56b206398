package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/result"
)

func TestHandle_Lifecycle(t *testing.T) {
	h := NewHandle("req-1")
	assert.Equal(t, StatusPending, h.Status())
	assert.Equal(t, "req-1", h.RequestID())

	h.Start()
	assert.Equal(t, StatusRunning, h.Status())

	_, _, resolved := h.Result()
	assert.False(t, resolved)

	h.Complete(result.NewSuccess("req-1", "msg-1"))
	assert.Equal(t, StatusCompleted, h.Status())

	res, err, resolved := h.Result()
	require.True(t, resolved)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", res.MessageID)
}

func TestHandle_WaitBlocksUntilResolution(t *testing.T) {
	h := NewHandle("req-1")

	go func() {
		time.Sleep(10 * time.Millisecond)
		h.Complete(result.NewSuccess("req-1", "msg-1"))
	}()

	res, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success())
}

func TestHandle_WaitHonorsContext(t *testing.T) {
	h := NewHandle("req-1")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := h.Wait(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.ErrInternal, errors.CodeOf(err))
	// An aborted wait leaves the handle unresolved.
	assert.Equal(t, StatusPending, h.Status())
}

func TestHandle_FailureFiresErrorCallbacks(t *testing.T) {
	h := NewHandle("req-1")

	var mu sync.Mutex
	var completions []*result.Result
	var failures []error
	h.OnComplete(func(r *result.Result) {
		mu.Lock()
		completions = append(completions, r)
		mu.Unlock()
	}).OnError(func(_ string, err error) {
		mu.Lock()
		failures = append(failures, err)
		mu.Unlock()
	})

	h.Complete(result.NewFailure("req-1", errors.ErrRetryExhausted, "no attempts left"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, completions, 1)
	assert.Equal(t, result.OutcomeFailure, completions[0].Outcome)
	require.Len(t, failures, 1)
	assert.Equal(t, errors.ErrRetryExhausted, errors.CodeOf(failures[0]))
	assert.Equal(t, StatusFailed, h.Status())
}

func TestHandle_LateCallbacksFireImmediately(t *testing.T) {
	h := NewHandle("req-1")
	h.Fail(errors.New(errors.ErrInternal, "boom"))

	var completed, errored bool
	h.OnComplete(func(*result.Result) { completed = true })
	h.OnError(func(string, error) { errored = true })

	assert.True(t, completed)
	assert.True(t, errored)
}

func TestHandle_FirstResolutionWins(t *testing.T) {
	h := NewHandle("req-1")
	h.Complete(result.NewSuccess("req-1", "msg-1"))
	h.Fail(errors.New(errors.ErrInternal, "too late"))

	res, err, _ := h.Result()
	require.NoError(t, err)
	assert.Equal(t, "msg-1", res.MessageID)
	assert.Equal(t, StatusCompleted, h.Status())
}

func TestBatchHandle_ProgressAndCompletion(t *testing.T) {
	h := NewBatchHandle("bulk-1", 3)
	assert.Equal(t, "bulk-1", h.BulkID())

	var mu sync.Mutex
	var ticks [][3]int
	h.OnProgress(func(completed, failed, total int) {
		mu.Lock()
		ticks = append(ticks, [3]int{completed, failed, total})
		mu.Unlock()
	})

	h.Record(result.NewSuccess("r1", "m1"))
	h.Record(result.NewFailure("r2", errors.ErrConnection, "down"))
	h.Record(result.NewSuccess("r3", "m3"))

	completed, failed, total := h.Progress()
	assert.Equal(t, 3, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, total)

	mu.Lock()
	assert.Equal(t, [][3]int{{1, 0, 3}, {2, 1, 3}, {3, 1, 3}}, ticks)
	mu.Unlock()

	bulk := &result.BulkResult{BulkID: "bulk-1", FailedRequests: []string{"r2"}}
	h.Finish(bulk)

	got, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, bulk, got)
	assert.Equal(t, StatusCompleted, h.Status())
}

func TestBatchHandle_LateOnCompleteFires(t *testing.T) {
	h := NewBatchHandle("bulk-1", 0)
	h.Finish(&result.BulkResult{BulkID: "bulk-1"})

	var got *result.BulkResult
	h.OnComplete(func(b *result.BulkResult) { got = b })
	require.NotNil(t, got)
	assert.Equal(t, "bulk-1", got.BulkID)
}
