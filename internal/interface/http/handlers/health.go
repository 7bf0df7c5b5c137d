package handlers

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthChecker reports the state of the service's backends.
type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

// CheckFunc probes one backend.
type CheckFunc func(ctx context.Context) error

// Pinger is implemented by the Postgres pool and the Redis cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewPingCheck probes a backend with Ping.
func NewPingCheck(p Pinger) CheckFunc { return p.Ping }

const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
	StatusDown     = "down"
)

// HealthStatus is the body of /healthz. Healthy and Ready are false only
// when a required check fails; failing optional checks set Status to
// "degraded".
type HealthStatus struct {
	Status    string                 `json:"status"`
	Healthy   bool                   `json:"healthy"`
	Ready     bool                   `json:"ready"`
	Message   string                 `json:"message,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Uptime    string                 `json:"uptime"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version,omitempty"`
}

type CheckResult struct {
	Healthy  bool   `json:"healthy"`
	Optional bool   `json:"optional,omitempty"`
	Error    string `json:"error,omitempty"`
	Duration string `json:"duration"`
}

type probe struct {
	name     string
	optional bool
	fn       CheckFunc
}

// Checker runs its probes concurrently, each bounded by Timeout. With no
// probes it always reports ok.
type Checker struct {
	Timeout time.Duration

	version string
	started time.Time

	mu     sync.Mutex
	probes []probe
}

func NewChecker(version string) *Checker {
	return &Checker{Timeout: 5 * time.Second, version: version, started: time.Now()}
}

// Required registers a probe whose failure makes the service unready.
func (c *Checker) Required(name string, fn CheckFunc) { c.add(probe{name: name, fn: fn}) }

// Optional registers a probe whose failure only degrades the service.
func (c *Checker) Optional(name string, fn CheckFunc) {
	c.add(probe{name: name, optional: true, fn: fn})
}

func (c *Checker) add(p probe) {
	c.mu.Lock()
	c.probes = append(c.probes, p)
	c.mu.Unlock()
}

func (c *Checker) Check(ctx context.Context) HealthStatus {
	c.mu.Lock()
	probes := append([]probe(nil), c.probes...)
	c.mu.Unlock()

	results := make([]CheckResult, len(probes))
	var g errgroup.Group
	for i, p := range probes {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, c.Timeout)
			defer cancel()

			start := time.Now()
			err := p.fn(pctx)
			results[i] = CheckResult{
				Healthy:  err == nil,
				Optional: p.optional,
				Duration: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	status := HealthStatus{
		Status:    StatusOK,
		Healthy:   true,
		Ready:     true,
		Uptime:    time.Since(c.started).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
		Version:   c.version,
	}
	if len(probes) > 0 {
		status.Checks = make(map[string]CheckResult, len(probes))
	}

	var failing []string
	for i, p := range probes {
		r := results[i]
		status.Checks[p.name] = r
		if r.Healthy {
			continue
		}
		failing = append(failing, p.name)
		if p.optional {
			if status.Status == StatusOK {
				status.Status = StatusDegraded
			}
			continue
		}
		status.Status = StatusDown
		status.Healthy, status.Ready = false, false
	}
	if len(failing) > 0 {
		status.Message = "failing: " + strings.Join(failing, ", ")
	}
	return status
}
