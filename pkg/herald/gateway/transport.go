package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/idgen"
)

// Payload is the channel-agnostic envelope handed to a transport.
type Payload struct {
	Channel  notification.Channel `json:"channel"`
	Endpoint string               `json:"endpoint"`
	Subject  string               `json:"subject,omitempty"`
	Body     string               `json:"body"`
	Fields   map[string]any       `json:"fields,omitempty"`
}

// Delivery is a transport's acknowledgement of an accepted payload.
type Delivery struct {
	MessageID string `json:"message_id"`
	Response  string `json:"response,omitempty"`
}

// Transport performs the actual handoff to a delivery provider. Credentials
// and provider specifics live behind this interface, outside the core.
type Transport interface {
	// Deliver hands the payload to the provider and returns its receipt.
	Deliver(ctx context.Context, payload *Payload) (*Delivery, error)
	// Check reports transport reachability for health checks.
	Check(ctx context.Context) error
}

// MemoryTransport is a deterministic in-process transport for tests and
// local development. Outcomes are scripted per endpoint; unscripted calls
// succeed. It also acts as a spy: every delivered payload is recorded.
type MemoryTransport struct {
	mu       sync.Mutex
	calls    []*Payload
	scripted map[string][]error
	checkErr error
}

// NewMemoryTransport creates an empty memory transport.
func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{scripted: make(map[string][]error)}
}

// FailNext scripts the next deliveries to the endpoint to fail with err, in
// order. Once the queue drains, deliveries succeed again.
func (t *MemoryTransport) FailNext(endpoint string, errs ...error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.scripted[endpoint] = append(t.scripted[endpoint], errs...)
}

// SetCheckError makes Check return the given error.
func (t *MemoryTransport) SetCheckError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkErr = err
}

// Deliver records the payload and returns the scripted outcome.
func (t *MemoryTransport) Deliver(ctx context.Context, payload *Payload) (*Delivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.Lock()
	t.calls = append(t.calls, payload)
	var err error
	if queue := t.scripted[payload.Endpoint]; len(queue) > 0 {
		err = queue[0]
		t.scripted[payload.Endpoint] = queue[1:]
	}
	t.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return &Delivery{MessageID: idgen.MessageID()}, nil
}

// Check returns the configured check error.
func (t *MemoryTransport) Check(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkErr
}

// Calls returns the recorded payloads in delivery order.
func (t *MemoryTransport) Calls() []*Payload {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Payload(nil), t.calls...)
}

// CallCount returns the number of recorded deliveries.
func (t *MemoryTransport) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// HTTPTransport posts payloads as JSON to their endpoint. It suits
// webhook-style channels where the endpoint is a full URL.
type HTTPTransport struct {
	client   *http.Client
	checkURL string
}

// NewHTTPTransport creates an HTTP transport. checkURL, when non-empty, is
// probed by Check; the per-call timeout comes from the caller's context.
func NewHTTPTransport(client *http.Client, checkURL string) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client, checkURL: checkURL}
}

// Deliver posts the payload and maps the HTTP status onto the error taxonomy.
func (t *HTTPTransport) Deliver(ctx context.Context, payload *Payload) (*Delivery, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(errors.ErrGateway, "encode payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, payload.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(errors.ErrGateway, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrConnection, "http post", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if code := classifyHTTPStatus(resp.StatusCode); code != "" {
		return nil, errors.Newf(code, "endpoint returned status %d", resp.StatusCode)
	}
	return &Delivery{
		MessageID: idgen.MessageID(),
		Response:  fmt.Sprintf("status %d", resp.StatusCode),
	}, nil
}

// Check probes the configured check URL.
func (t *HTTPTransport) Check(ctx context.Context) error {
	if t.checkURL == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, t.checkURL, nil)
	if err != nil {
		return err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// classifyHTTPStatus maps a response status onto an error code, or "" for
// success.
func classifyHTTPStatus(status int) errors.Code {
	switch {
	case status >= 200 && status < 300:
		return ""
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.ErrInvalidToken
	case status == http.StatusRequestEntityTooLarge:
		return errors.ErrPayloadTooLarge
	case status == http.StatusTooManyRequests || status >= 500:
		return errors.ErrService
	default:
		return errors.ErrGateway
	}
}
