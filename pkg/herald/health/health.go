// Package health aggregates component health checks into a system rollup.
package health

import (
	"context"
	"sync"
	"time"

	"github.com/herald-io/herald/pkg/logger"
)

// Status is the health state of a component or the system.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// Check probes one component and reports its state.
type Check func(ctx context.Context) CheckResult

// CheckResult is the outcome of one component probe.
type CheckResult struct {
	Name      string         `json:"name"`
	Status    Status         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration"`
}

// Healthy builds a passing check result.
func Healthy(message string) CheckResult {
	return CheckResult{Status: StatusHealthy, Message: message}
}

// Degraded builds a check result for a component that works with issues.
func Degraded(message string) CheckResult {
	return CheckResult{Status: StatusDegraded, Message: message}
}

// Unhealthy builds a failing check result.
func Unhealthy(message string) CheckResult {
	return CheckResult{Status: StatusUnhealthy, Message: message}
}

// Summary counts components per state.
type Summary struct {
	Total     int `json:"total"`
	Healthy   int `json:"healthy"`
	Degraded  int `json:"degraded"`
	Unhealthy int `json:"unhealthy"`
	Unknown   int `json:"unknown"`
}

// SystemHealth is the aggregate state across all registered components.
// Status is the worst component state: any unhealthy component makes the
// system unhealthy, any degraded or unknown one makes it degraded.
type SystemHealth struct {
	Status     Status                 `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	Components map[string]CheckResult `json:"components"`
	Summary    Summary                `json:"summary"`
}

// Checker runs registered component checks under a shared timeout.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]Check
	timeout time.Duration
	logger  logger.Logger
}

// NewChecker creates a checker. A non-positive timeout defaults to ten
// seconds.
func NewChecker(timeout time.Duration, log logger.Logger) *Checker {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Discard
	}
	return &Checker{
		checks:  make(map[string]Check),
		timeout: timeout,
		logger:  log,
	}
}

// Register adds or replaces the check for a component.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
	c.logger.Debug("health check registered", "component", name)
}

// Unregister removes a component check.
func (c *Checker) Unregister(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// Components returns the registered component names.
func (c *Checker) Components() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	return names
}

// RunCheck probes one component. Unknown components report StatusUnknown.
func (c *Checker) RunCheck(ctx context.Context, name string) CheckResult {
	c.mu.RLock()
	check, ok := c.checks[name]
	c.mu.RUnlock()

	if !ok {
		return CheckResult{
			Name:      name,
			Status:    StatusUnknown,
			Message:   "no such component",
			Timestamp: time.Now(),
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	result := check(checkCtx)
	result.Name = name
	result.Timestamp = start
	result.Duration = time.Since(start)

	c.logger.Debug("health check completed",
		"component", name, "status", result.Status, "duration", result.Duration)
	return result
}

// CheckSystem probes all components concurrently and rolls the results up
// into one system state.
func (c *Checker) CheckSystem(ctx context.Context) SystemHealth {
	names := c.Components()

	var wg sync.WaitGroup
	var mu sync.Mutex
	components := make(map[string]CheckResult, len(names))

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			result := c.RunCheck(ctx, name)
			mu.Lock()
			components[name] = result
			mu.Unlock()
		}(name)
	}
	wg.Wait()

	system := SystemHealth{
		Status:     StatusHealthy,
		Timestamp:  time.Now(),
		Components: components,
		Summary:    Summary{Total: len(components)},
	}
	for _, result := range components {
		switch result.Status {
		case StatusHealthy:
			system.Summary.Healthy++
		case StatusDegraded:
			system.Summary.Degraded++
			if system.Status == StatusHealthy {
				system.Status = StatusDegraded
			}
		case StatusUnhealthy:
			system.Summary.Unhealthy++
			system.Status = StatusUnhealthy
		default:
			system.Summary.Unknown++
			if system.Status == StatusHealthy {
				system.Status = StatusDegraded
			}
		}
	}
	return system
}
