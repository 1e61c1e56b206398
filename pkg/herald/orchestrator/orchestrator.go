// Package orchestrator drives a notification request through validation,
// rate limiting, message processing, gateway delivery, retry scheduling, and
// delivery tracking. One orchestrator serves many concurrent dispatches;
// per-request state lives in the delivery tracker, never in the orchestrator
// itself.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/herald-io/herald/config"
	"github.com/herald-io/herald/pkg/herald/async"
	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/gateway"
	"github.com/herald-io/herald/pkg/herald/health"
	"github.com/herald-io/herald/pkg/herald/notification"
	"github.com/herald-io/herald/pkg/herald/processor"
	"github.com/herald-io/herald/pkg/herald/ratelimit"
	"github.com/herald-io/herald/pkg/herald/result"
	"github.com/herald-io/herald/pkg/herald/retry"
	"github.com/herald-io/herald/pkg/herald/scheduler"
	"github.com/herald-io/herald/pkg/herald/telemetry"
	"github.com/herald-io/herald/pkg/herald/tracker"
	"github.com/herald-io/herald/pkg/herald/validation"
	"github.com/herald-io/herald/pkg/idgen"
	"github.com/herald-io/herald/pkg/logger"
)

// scheduledEntry pairs a deferred request with the handle its dispatch will
// resolve.
type scheduledEntry struct {
	request *notification.Request
	handle  *async.Handle
}

// Orchestrator composes the delivery pipeline.
type Orchestrator struct {
	config    *config.Config
	logger    logger.Logger
	clock     ratelimit.Clock
	limiter   *ratelimit.RecipientLimiter
	pipeline  *processor.Pipeline
	gateways  *gateway.Registry
	retries   *retry.Manager
	tracker   *tracker.Tracker
	scheduler *scheduler.Scheduler
	checker   *health.Checker
	telemetry *telemetry.Provider

	mu        sync.Mutex
	scheduled map[string]*scheduledEntry
}

// New builds an orchestrator from the configuration, backed by an in-memory
// delivery record store.
func New(cfg *config.Config) (*Orchestrator, error) {
	return NewWithStore(cfg, nil)
}

// NewWithStore builds an orchestrator persisting delivery records to the
// given store. A nil store keeps records in memory only.
func NewWithStore(cfg *config.Config, store tracker.Store) (*Orchestrator, error) {
	if cfg == nil {
		cfg = config.New()
	}

	provider, err := telemetry.NewProvider(cfg.Telemetry)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInternal, "init telemetry", err)
	}

	o := &Orchestrator{
		config:    cfg,
		logger:    cfg.Logger,
		clock:     ratelimit.SystemClock{},
		limiter:   ratelimit.NewRecipientLimiter(cfg.RateLimit),
		pipeline:  processor.NewPipeline(cfg.Processor),
		gateways:  gateway.NewDefaultRegistry(cfg.Transport, cfg.Gateway, cfg.Logger),
		retries:   retry.NewManager(cfg.Retry),
		tracker:   tracker.New(store, cfg.Logger),
		scheduler: scheduler.New(cfg.SweepInterval, cfg.Logger),
		checker:   health.NewChecker(cfg.HealthTimeout, cfg.Logger),
		telemetry: provider,
		scheduled: make(map[string]*scheduledEntry),
	}
	o.registerHealthChecks()
	return o, nil
}

func (o *Orchestrator) registerHealthChecks() {
	o.checker.Register("rate_limiter", func(context.Context) health.CheckResult {
		if o.limiter.IsHealthy() {
			return health.Healthy("limiter operational")
		}
		return health.Degraded("limiter rejecting most admissions")
	})
	o.checker.Register("tracker", func(ctx context.Context) health.CheckResult {
		if o.tracker.IsHealthy(ctx) {
			return health.Healthy("record store reachable")
		}
		return health.Unhealthy("record store unreachable")
	})
	o.checker.Register("transport", func(ctx context.Context) health.CheckResult {
		if err := o.config.Transport.Check(ctx); err != nil {
			return health.Unhealthy(err.Error())
		}
		return health.Healthy("transport reachable")
	})
	o.checker.Register("scheduler", func(context.Context) health.CheckResult {
		r := health.Healthy("scheduler running")
		r.Details = map[string]any{"pending": o.scheduler.PendingCount()}
		return r
	})
}

// Send dispatches one request asynchronously. The returned handle resolves
// with the outcome of the first delivery attempt: success, a terminal
// failure, or retry-scheduled when a transient failure queued another
// attempt. Later attempts run in the background and land in the tracker.
func (o *Orchestrator) Send(ctx context.Context, req *notification.Request) *async.Handle {
	handle := async.NewHandle(requestID(req))
	go func() {
		handle.Start()
		handle.Complete(o.dispatch(ctx, req))
	}()
	return handle
}

// SendSync dispatches one request and blocks for its first-attempt outcome.
func (o *Orchestrator) SendSync(ctx context.Context, req *notification.Request) *result.Result {
	return o.dispatch(ctx, req)
}

// SendBulk dispatches the batch sequentially in input order, pacing
// consecutive sends with the limiter's advised delay and tolerating
// individual failures. The returned handle reports progress per item and
// resolves with the ordered aggregate.
func (o *Orchestrator) SendBulk(ctx context.Context, bulk *notification.BulkRequest) *async.BatchHandle {
	if bulk == nil {
		handle := async.NewBatchHandle(idgen.BulkID(), 0)
		handle.Finish(&result.BulkResult{BulkID: handle.BulkID()})
		return handle
	}
	if bulk.BulkID == "" {
		bulk.BulkID = idgen.BulkID()
	}

	handle := async.NewBatchHandle(bulk.BulkID, len(bulk.Requests))
	go o.runBulk(ctx, bulk, handle)
	return handle
}

func (o *Orchestrator) runBulk(ctx context.Context, bulk *notification.BulkRequest, handle *async.BatchHandle) {
	aggregate := &result.BulkResult{
		BulkID:    bulk.BulkID,
		Results:   make([]*result.Result, 0, len(bulk.Requests)),
		StartedAt: o.clock.Now(),
	}
	o.logger.Info("bulk dispatch started", "bulk_id", bulk.BulkID, "size", len(bulk.Requests))

	aborted := false
	for _, req := range bulk.Requests {
		if aborted {
			res := result.NewFailure(requestID(req), errors.ErrInternal, "bulk dispatch aborted")
			aggregate.Results = append(aggregate.Results, res)
			aggregate.FailedRequests = append(aggregate.FailedRequests, res.RequestID)
			handle.Record(res)
			continue
		}

		if o.limiter.RequiresDelay() {
			if !o.pace(ctx, o.limiter.DelayAmount()) {
				aborted = true
				res := result.NewFailure(requestID(req), errors.ErrInternal, "bulk dispatch aborted")
				aggregate.Results = append(aggregate.Results, res)
				aggregate.FailedRequests = append(aggregate.FailedRequests, res.RequestID)
				handle.Record(res)
				continue
			}
		}

		res := o.dispatch(ctx, req)
		aggregate.Results = append(aggregate.Results, res)
		if !res.Success() {
			aggregate.FailedRequests = append(aggregate.FailedRequests, res.RequestID)
		}
		handle.Record(res)
	}

	aggregate.CompletedAt = o.clock.Now()
	o.logger.Info("bulk dispatch finished",
		"bulk_id", bulk.BulkID, "succeeded", aggregate.Succeeded(), "failed", len(aggregate.FailedRequests))
	handle.Finish(aggregate)
}

// pace waits the advised delay, honoring cancellation. It reports false when
// the context ended first.
func (o *Orchestrator) pace(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// ScheduleNotification registers a deferred dispatch at the given time. It
// returns the schedule id and a handle resolving once the dispatch runs, or
// with a failure when the schedule is cancelled first.
func (o *Orchestrator) ScheduleNotification(req *notification.Request, at time.Time) (string, *async.Handle, error) {
	if req == nil {
		return "", nil, errors.New(errors.ErrValidation, "request is required")
	}
	if at.IsZero() {
		return "", nil, errors.New(errors.ErrSchedule, "schedule time is required")
	}
	if at.Before(o.clock.Now()) {
		return "", nil, errors.Newf(errors.ErrSchedule, "schedule time %s is in the past", at.Format(time.RFC3339))
	}

	scheduleID := idgen.ScheduleID()
	handle := async.NewHandle(requestID(req))
	entry := &scheduledEntry{request: req, handle: handle}

	// The deferred dispatch runs at (or just after) the scheduled time, so
	// the request's own scheduled time has been honored by then and must not
	// re-trip the past-time validation.
	deferred := *req
	deferred.ScheduledAt = nil

	o.mu.Lock()
	o.scheduled[scheduleID] = entry
	o.mu.Unlock()

	err := o.scheduler.Schedule(scheduleID, at, func(ctx context.Context) {
		o.mu.Lock()
		_, pending := o.scheduled[scheduleID]
		delete(o.scheduled, scheduleID)
		o.mu.Unlock()
		if !pending {
			return
		}
		o.telemetry.AddScheduled(ctx, -1)
		handle.Start()
		handle.Complete(o.dispatch(ctx, &deferred))
	})
	if err != nil {
		o.mu.Lock()
		delete(o.scheduled, scheduleID)
		o.mu.Unlock()
		return "", nil, err
	}

	o.telemetry.AddScheduled(context.Background(), 1)
	o.logger.Info("notification scheduled",
		"schedule_id", scheduleID, "request_id", req.ID, "run_at", at)
	return scheduleID, handle, nil
}

// CancelScheduledNotification cancels a pending deferred dispatch. It
// returns false for unknown ids and for schedules that already fired; a
// fired task ignores a late cancellation and vice versa.
func (o *Orchestrator) CancelScheduledNotification(scheduleID string) bool {
	if !o.scheduler.Cancel(scheduleID) {
		return false
	}

	o.mu.Lock()
	entry, ok := o.scheduled[scheduleID]
	delete(o.scheduled, scheduleID)
	o.mu.Unlock()
	if !ok {
		return false
	}

	o.telemetry.AddScheduled(context.Background(), -1)
	entry.handle.Complete(result.NewFailure(
		entry.request.ID, errors.ErrSchedule, "scheduled dispatch cancelled"))
	o.logger.Info("scheduled notification cancelled",
		"schedule_id", scheduleID, "request_id", entry.request.ID)
	return true
}

// dispatch runs one full delivery attempt. Panics anywhere in the pipeline
// are converted to a generic internal failure so no fault crosses the
// orchestration boundary.
func (o *Orchestrator) dispatch(ctx context.Context, req *notification.Request) (res *result.Result) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("dispatch panicked", "request_id", requestID(req), "panic", r)
			res = result.NewFailure(requestID(req), errors.ErrInternal, fmt.Sprintf("internal fault: %v", r))
			if req != nil {
				o.tracker.RecordPermanentFailure(req.ID, errors.ErrInternal)
			}
		}
	}()

	if req == nil {
		return result.NewFailure("", errors.ErrValidation, "request is required")
	}

	start := o.clock.Now()
	ctx, span := o.telemetry.TraceDispatch(ctx, req.ID, channelOf(req))

	if err := o.validate(req); err != nil {
		// Validators report plain reasons; the orchestrator owns the code.
		code := errors.ErrValidation
		o.tracker.Track(req)
		o.tracker.RecordPermanentFailure(req.ID, code)
		o.telemetry.RecordFailed(ctx, channelOf(req), o.clock.Now().Sub(start), code)
		o.telemetry.EndSpan(span, err)
		o.logger.Warn("request rejected", "request_id", req.ID, "code", code, "error", err)
		return result.NewFailure(req.ID, code, err.Error())
	}
	o.tracker.Track(req)

	if err := o.limiter.CheckRateLimit(req.Recipient.ID); err != nil {
		o.tracker.RecordPermanentFailure(req.ID, errors.ErrRateLimitExceeded)
		o.telemetry.RecordFailed(ctx, channelOf(req), o.clock.Now().Sub(start), errors.ErrRateLimitExceeded)
		o.telemetry.EndSpan(span, err)
		o.logger.Warn("request rate limited", "request_id", req.ID, "recipient", req.Recipient.ID)
		return result.NewFailure(req.ID, errors.ErrRateLimitExceeded, err.Error())
	}

	msg, err := o.pipeline.Process(req)
	if err != nil {
		code := errors.ErrProcessing
		o.tracker.RecordPermanentFailure(req.ID, code)
		o.telemetry.RecordFailed(ctx, channelOf(req), o.clock.Now().Sub(start), code)
		o.telemetry.EndSpan(span, err)
		o.logger.Warn("processing failed", "request_id", req.ID, "code", code, "error", err)
		return result.NewFailure(req.ID, code, err.Error())
	}

	g, ok := o.gateways.Get(req.Recipient.Channel)
	if !ok {
		err := errors.Newf(errors.ErrValidation, "no gateway for channel %s", req.Recipient.Channel)
		o.tracker.RecordPermanentFailure(req.ID, errors.ErrValidation)
		o.telemetry.EndSpan(span, err)
		return result.NewFailure(req.ID, errors.ErrValidation, err.Error())
	}

	sent := g.Send(ctx, msg, req.Recipient)
	if sent.Success {
		o.limiter.RecordDelivery(req.Recipient.ID)
		o.retries.Forget(req.ID)
		o.tracker.RecordSuccess(req.ID, sent.MessageID)
		o.telemetry.RecordDelivered(ctx, channelOf(req), o.clock.Now().Sub(start))
		o.telemetry.EndSpan(span, nil)
		o.logger.Info("notification delivered",
			"request_id", req.ID, "channel", req.Recipient.Channel, "message_id", sent.MessageID)

		res := result.NewSuccess(req.ID, sent.MessageID)
		o.attachConfirmation(req, res)
		return res
	}

	res = o.handleFailure(ctx, req, sent, start)
	o.telemetry.EndSpan(span, errors.New(res.ErrorCode, res.Message))
	return res
}

// validate runs request and channel-specific validation.
func (o *Orchestrator) validate(req *notification.Request) error {
	return validation.ValidateRequest(req, o.clock.Now())
}

// handleFailure decides between scheduling a retry and terminal failure
// after a gateway rejection.
func (o *Orchestrator) handleFailure(ctx context.Context, req *notification.Request, sent *gateway.SendResult, start time.Time) *result.Result {
	code := sent.ErrorCode

	if o.retries.ShouldRetry(req.ID, code) {
		attempt, err := o.retries.ScheduleRetry(req.ID, code)
		if err == nil {
			if err = o.scheduleRetry(req, attempt); err == nil {
				o.tracker.RecordFailure(req.ID, code, attempt)
				o.telemetry.RecordRetry(ctx, channelOf(req), attempt.Attempt)
				o.logger.Warn("delivery failed, retry scheduled",
					"request_id", req.ID, "code", code, "attempt", attempt.Attempt, "retry_at", attempt.ScheduledAt)
				return result.NewRetryScheduled(req.ID, code, attempt.Attempt, attempt.ScheduledAt)
			}
			// The scheduler refused the task (stopping, or a duplicate id).
			// The failure becomes terminal under its original code rather
			// than RETRY_EXHAUSTED, since attempts were not used up.
			o.logger.Error("retry scheduling failed", "request_id", req.ID, "error", err)
			o.retries.Forget(req.ID)
			o.tracker.RecordFailure(req.ID, code, nil)
			o.telemetry.RecordFailed(ctx, channelOf(req), o.clock.Now().Sub(start), code)
			return result.NewFailure(req.ID, code, sent.Response)
		}
	}

	finalCode := code
	if errors.IsRetryable(code) {
		// Transient error with no attempts left.
		finalCode = errors.ErrRetryExhausted
	}
	o.retries.Forget(req.ID)
	o.tracker.RecordFailure(req.ID, finalCode, nil)
	o.telemetry.RecordFailed(ctx, channelOf(req), o.clock.Now().Sub(start), finalCode)
	o.logger.Error("delivery failed permanently",
		"request_id", req.ID, "code", finalCode, "response", sent.Response)
	return result.NewFailure(req.ID, finalCode, sent.Response)
}

// scheduleRetry queues a background re-dispatch at the attempt's fire time.
// The re-dispatch resolves nothing; its outcome lands in the tracker. The
// caller treats a scheduling error as a terminal failure.
func (o *Orchestrator) scheduleRetry(req *notification.Request, attempt *retry.Attempt) error {
	taskID := "retry_" + req.ID + "_" + strconv.Itoa(attempt.Attempt)
	return o.scheduler.Schedule(taskID, attempt.ScheduledAt, func(ctx context.Context) {
		res := o.dispatch(ctx, req)
		o.logger.Debug("retry attempt finished",
			"request_id", req.ID, "attempt", attempt.Attempt, "outcome", res.Outcome)
	})
}

// attachConfirmation adds confirmation metadata for requests that asked for
// a delivery confirmation and named a requester.
func (o *Orchestrator) attachConfirmation(req *notification.Request, res *result.Result) {
	if req.RequestedBy == "" || !req.Options.Bool(notification.OptDeliveryConfirmation) {
		return
	}
	if res.Metadata == nil {
		res.Metadata = make(map[string]any)
	}
	res.Metadata["confirmation"] = map[string]any{
		"recipient": req.RequestedBy,
		"channel":   string(channelOf(req)),
		"delivered": res.Timestamp,
	}
}

// GetDeliveryStatus returns the tracked status for a request id.
func (o *Orchestrator) GetDeliveryStatus(requestID string) result.DeliveryStatus {
	return o.tracker.GetDeliveryStatus(requestID)
}

// GetDeliveryRecord returns a copy of the request's delivery record.
func (o *Orchestrator) GetDeliveryRecord(requestID string) (*tracker.DeliveryRecord, bool) {
	return o.tracker.GetRecord(requestID)
}

// GetMetrics returns the aggregate delivery counters.
func (o *Orchestrator) GetMetrics() tracker.Metrics {
	return o.tracker.GetMetrics()
}

// Health probes all components and returns the aggregate system state.
func (o *Orchestrator) Health(ctx context.Context) health.SystemHealth {
	return o.checker.CheckSystem(ctx)
}

// ScheduledCount returns the number of deferred dispatches still pending.
func (o *Orchestrator) ScheduledCount() int {
	return o.scheduler.PendingCount()
}

// Shutdown stops the scheduler and flushes telemetry. Pending scheduled
// dispatches are discarded.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.scheduler.Stop()
	return o.telemetry.Shutdown(ctx)
}

func requestID(req *notification.Request) string {
	if req == nil {
		return ""
	}
	return req.ID
}

func channelOf(req *notification.Request) notification.Channel {
	if req == nil || req.Recipient == nil {
		return ""
	}
	return req.Recipient.Channel
}
