package herald

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/herald-io/herald/config"
	"github.com/herald-io/herald/pkg/herald/gateway"
)

func TestClient_SendThroughFacade(t *testing.T) {
	transport := gateway.NewMemoryTransport()
	client, err := New(
		config.WithSilentLogger(),
		config.WithTransport(transport),
		config.WithSweepInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	defer func() { _ = client.Shutdown(context.Background()) }()

	req, err := NewBuilder().
		To("user-1", "Ada", ChannelEmail, "ada@example.com").
		Subject("Welcome").
		Body("Glad to have you aboard.").
		Priority(PriorityHigh).
		Build()
	require.NoError(t, err)

	res, err := client.Send(context.Background(), req).Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, 1, transport.CallCount())

	metrics := client.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalDelivered)
}

func TestClient_BulkThroughFacade(t *testing.T) {
	client, err := New(
		config.WithSilentLogger(),
		config.WithInterSendDelay(0),
	)
	require.NoError(t, err)
	defer func() { _ = client.Shutdown(context.Background()) }()

	first, err := NewBuilder().
		To("u1", "", ChannelSMS, "+15551234567").
		Body("short ping").
		Build()
	require.NoError(t, err)
	second, err := NewBuilder().
		To("u2", "", ChannelSlack, "#alerts").
		Subject("Deploy").
		Body("rolled out").
		Build()
	require.NoError(t, err)

	aggregate, err := client.SendBulk(context.Background(), NewBulkRequest(first, second)).
		Wait(context.Background())
	require.NoError(t, err)
	assert.True(t, aggregate.AllSucceeded())
	assert.Len(t, aggregate.Results, 2)
}
