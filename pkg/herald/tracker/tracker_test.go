package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/result"
	"github.com/herald-io/herald/pkg/herald/retry"
)

func testRequest(id string) *notification.Request {
	return &notification.Request{
		ID:        id,
		Recipient: &notification.Recipient{ID: "rcpt-1", Channel: notification.ChannelEmail, ContactInfo: "user@example.com"},
		Message:   &notification.Message{ID: "m1", Body: "hello"},
	}
}

func TestTracker_SuccessLifecycle(t *testing.T) {
	tr := New(nil, nil)

	tr.Track(testRequest("req-1"))
	assert.Equal(t, result.StatusProcessing, tr.GetDeliveryStatus("req-1"))

	tr.RecordSuccess("req-1", "msg-1")
	assert.Equal(t, result.StatusDelivered, tr.GetDeliveryStatus("req-1"))

	record, ok := tr.GetRecord("req-1")
	require.True(t, ok)
	assert.Equal(t, "rcpt-1", record.RecipientID)
	assert.Equal(t, notification.ChannelEmail, record.Channel)
	require.Len(t, record.Attempts, 1)
	assert.Equal(t, "msg-1", record.Attempts[0].MessageID)
	assert.Equal(t, result.OutcomeSuccess, record.Attempts[0].Outcome)
}

func TestTracker_RetryThenPermanentFailure(t *testing.T) {
	tr := New(nil, nil)
	tr.Track(testRequest("req-1"))

	retryAt := time.Now().Add(2 * time.Second)
	tr.RecordFailure("req-1", errors.ErrConnection, &retry.Attempt{
		RequestID: "req-1", Attempt: 1, ScheduledAt: retryAt,
	})
	assert.Equal(t, result.StatusRetryScheduled, tr.GetDeliveryStatus("req-1"))

	tr.RecordFailure("req-1", errors.ErrConnection, nil)
	assert.Equal(t, result.StatusFailed, tr.GetDeliveryStatus("req-1"))

	record, ok := tr.GetRecord("req-1")
	require.True(t, ok)
	require.Len(t, record.Attempts, 2)
	assert.Equal(t, result.OutcomeRetryScheduled, record.Attempts[0].Outcome)
	require.NotNil(t, record.Attempts[0].RetryAt)
	assert.Equal(t, result.OutcomeFailure, record.Attempts[1].Outcome)
}

func TestTracker_PermanentFailureWithoutGatewayAttempt(t *testing.T) {
	tr := New(nil, nil)
	tr.Track(testRequest("req-1"))

	tr.RecordPermanentFailure("req-1", errors.ErrValidation)
	assert.Equal(t, result.StatusFailed, tr.GetDeliveryStatus("req-1"))

	m := tr.GetMetrics()
	assert.Zero(t, m.TotalSent, "validation failures never reach the gateway")
	assert.Equal(t, int64(1), m.TotalFailed)
}

func TestTracker_Metrics(t *testing.T) {
	tr := New(nil, nil)

	for _, id := range []string{"a", "b", "c", "d"} {
		tr.Track(testRequest(id))
	}
	tr.RecordSuccess("a", "m-a")
	tr.RecordSuccess("b", "m-b")
	tr.RecordSuccess("c", "m-c")
	tr.RecordFailure("d", errors.ErrGateway, nil)

	m := tr.GetMetrics()
	assert.Equal(t, int64(4), m.TotalSent)
	assert.Equal(t, int64(3), m.TotalDelivered)
	assert.Equal(t, int64(1), m.TotalFailed)
	assert.InDelta(t, 0.75, m.DeliveryRate, 1e-9)
}

func TestTracker_UnknownRequest(t *testing.T) {
	tr := New(nil, nil)
	assert.Equal(t, result.StatusUnknown, tr.GetDeliveryStatus("ghost"))
	_, ok := tr.GetRecord("ghost")
	assert.False(t, ok)
}

func TestTracker_TrackIsIdempotent(t *testing.T) {
	tr := New(nil, nil)
	req := testRequest("req-1")

	tr.Track(req)
	tr.RecordSuccess("req-1", "msg-1")
	tr.Track(req) // second Track must not reset the record

	assert.Equal(t, result.StatusDelivered, tr.GetDeliveryStatus("req-1"))
}

func TestTracker_WriteThroughStore(t *testing.T) {
	store := NewMemoryStore()
	tr := New(store, nil)

	tr.Track(testRequest("req-1"))
	tr.RecordSuccess("req-1", "msg-1")

	stored, err := store.Load(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, result.StatusDelivered, stored.Status)
	require.Len(t, stored.Attempts, 1)

	_, err = store.Load(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestTracker_ConcurrentWrites(t *testing.T) {
	tr := New(nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n%10))
			tr.Track(testRequest(id))
			if n%2 == 0 {
				tr.RecordSuccess(id, "m")
			} else {
				tr.RecordFailure(id, errors.ErrService, nil)
			}
		}(i)
	}
	wg.Wait()

	m := tr.GetMetrics()
	assert.Equal(t, int64(20), m.TotalSent)
	assert.Equal(t, m.TotalSent, m.TotalDelivered+m.TotalFailed)
}
