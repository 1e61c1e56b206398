// Package scheduler implements deferred task execution on a min-heap ordered
// by fire time. The orchestrator uses it both for user-scheduled
// notifications and for retry re-dispatch.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/herald-io/herald/pkg/herald/errors"
	"github.com/herald-io/herald/pkg/herald/ratelimit"
	"github.com/herald-io/herald/pkg/logger"
)

// Func is the work executed when a scheduled task fires.
type Func func(ctx context.Context)

// task is one pending heap entry.
type task struct {
	id    string
	runAt time.Time
	fn    Func
	index int // heap position, maintained by taskHeap
}

// taskHeap orders tasks by fire time, earliest first.
type taskHeap []*task

func (h taskHeap) Len() int           { return len(h) }
func (h taskHeap) Less(i, j int) bool { return h[i].runAt.Before(h[j].runAt) }
func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *taskHeap) Push(x any) {
	item := x.(*task)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

// Scheduler fires registered tasks once their fire time passes. Each task is
// keyed by id; a task either fires or is cancelled, whichever transition
// happens first, never both.
type Scheduler struct {
	mu     sync.RWMutex
	heap   taskHeap
	byID   map[string]*task
	closed bool

	clock  ratelimit.Clock
	logger logger.Logger
	ticker *time.Ticker
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler sweeping at the given interval and starts its
// loop. A non-positive interval defaults to one second.
func New(interval time.Duration, log logger.Logger) *Scheduler {
	return newScheduler(interval, ratelimit.SystemClock{}, log)
}

// NewWithClock creates a scheduler with a custom clock for due checks. The
// sweep cadence still follows the wall clock.
func NewWithClock(interval time.Duration, clock ratelimit.Clock, log logger.Logger) *Scheduler {
	return newScheduler(interval, clock, log)
}

func newScheduler(interval time.Duration, clock ratelimit.Clock, log logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	if clock == nil {
		clock = ratelimit.SystemClock{}
	}
	if log == nil {
		log = logger.Discard
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		heap:   make(taskHeap, 0),
		byID:   make(map[string]*task),
		clock:  clock,
		logger: log,
		ticker: time.NewTicker(interval),
		ctx:    ctx,
		cancel: cancel,
	}
	heap.Init(&s.heap)

	go s.run()
	return s
}

// Schedule registers fn to run at runAt. A fire time that already passed
// runs on the next sweep. Duplicate ids and a stopped scheduler are
// rejected with a SCHEDULE_ERROR.
func (s *Scheduler) Schedule(id string, runAt time.Time, fn Func) error {
	if id == "" {
		return errors.New(errors.ErrSchedule, "task id is required")
	}
	if fn == nil {
		return errors.New(errors.ErrSchedule, "task function is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New(errors.ErrSchedule, "scheduler is stopped")
	}
	if _, exists := s.byID[id]; exists {
		return errors.Newf(errors.ErrSchedule, "task %s is already scheduled", id)
	}

	t := &task{id: id, runAt: runAt, fn: fn}
	heap.Push(&s.heap, t)
	s.byID[id] = t
	s.logger.Debug("task scheduled", "task_id", id, "run_at", runAt)
	return nil
}

// Cancel removes a pending task. It returns true when the task was still
// pending, false when it is unknown or has already fired.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&s.heap, t.index)
	delete(s.byID, id)
	s.logger.Debug("task cancelled", "task_id", id)
	return true
}

// PendingCount returns the number of tasks waiting to fire.
func (s *Scheduler) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heap.Len()
}

// NextFireTime returns the fire time of the earliest pending task, or nil
// when the heap is empty.
func (s *Scheduler) NextFireTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.heap.Len() == 0 {
		return nil
	}
	next := s.heap[0].runAt
	return &next
}

// Stop halts the loop and discards pending tasks. In-flight task functions
// finish; Stop blocks until they do.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.heap = s.heap[:0]
	s.byID = make(map[string]*task)
	s.mu.Unlock()

	s.cancel()
	s.ticker.Stop()
	s.wg.Wait()
}

// run is the sweep loop.
func (s *Scheduler) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.ticker.C:
			s.sweep()
		}
	}
}

// sweep fires every task whose time has come. Task functions run outside the
// lock so a slow task cannot stall the heap.
func (s *Scheduler) sweep() {
	now := s.clock.Now()

	s.mu.Lock()
	var due []*task
	for s.heap.Len() > 0 {
		next := s.heap[0]
		if next.runAt.After(now) {
			break
		}
		t := heap.Pop(&s.heap).(*task)
		delete(s.byID, t.id)
		due = append(due, t)
	}
	s.mu.Unlock()

	for _, t := range due {
		s.wg.Add(1)
		go func(t *task) {
			defer s.wg.Done()
			s.logger.Debug("task fired", "task_id", t.id)
			t.fn(s.ctx)
		}(t)
	}
}
