// Package scheduler runs the background jobs of the course schedule worker
// on intervals or cron expressions.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

var (
	ErrInvalidJob     = errors.New("scheduler: job and schedule are required")
	ErrDuplicateJob   = errors.New("scheduler: job already registered")
	ErrUnknownJob     = errors.New("scheduler: no such job")
	ErrAlreadyStarted = errors.New("scheduler: already started")
	ErrNotStarted     = errors.New("scheduler: not started")
)

// Job is a unit of background work. Run receives a context that is
// cancelled when the scheduler stops.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobResult describes one finished run.
type JobResult struct {
	JobName   string
	StartedAt time.Time
	Duration  time.Duration
	Err       error
	Manual    bool
}

func (r JobResult) Success() bool { return r.Err == nil }

// JobInfo is a snapshot of a registered job.
type JobInfo struct {
	Name       string
	Schedule   string
	NextRun    time.Time
	Running    bool
	Runs       int64
	Failures   int64
	Skipped    int64
	LastResult *JobResult
}

type entry struct {
	job     Job
	when    Schedule
	next    time.Time
	running bool

	runs, failures, skipped int64
	last                    *JobResult
}

// Config for New. Zero values mean the system clock, UTC and a one-second
// tick.
type Config struct {
	Logger       *slog.Logger
	Clock        timeutil.Clock
	Timezone     *time.Location
	TickInterval time.Duration
}

// Scheduler starts due jobs on every tick. A job never overlaps itself: a
// tick that finds it still running is counted as skipped.
type Scheduler struct {
	log   *slog.Logger
	clock timeutil.Clock
	loc   *time.Location
	tick  time.Duration

	mu      sync.Mutex
	entries []*entry
	hook    func(JobResult)
	runCtx  context.Context
	cancel  context.CancelFunc
	loopEnd chan struct{}

	inflight sync.WaitGroup
}

func New(cfg Config) *Scheduler {
	s := &Scheduler{
		log:    cfg.Logger,
		clock:  timeutil.OrSystem(cfg.Clock),
		loc:    cfg.Timezone,
		tick:   cfg.TickInterval,
		runCtx: context.Background(),
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	s.log = s.log.With("component", "scheduler")
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.tick <= 0 {
		s.tick = time.Second
	}
	return s
}

func (s *Scheduler) now() time.Time { return s.clock.Now().In(s.loc) }

func (s *Scheduler) find(name string) *entry {
	for _, e := range s.entries {
		if e.job.Name() == name {
			return e
		}
	}
	return nil
}

// Register adds job. Its first run is the schedule's next time after now.
func (s *Scheduler) Register(job Job, when Schedule) error {
	if job == nil || when == nil {
		return ErrInvalidJob
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(job.Name()) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, job.Name())
	}
	e := &entry{job: job, when: when, next: when.Next(s.now())}
	s.entries = append(s.entries, e)

	s.log.Info("job registered", "job", job.Name(), "schedule", when.String(), "next_run", e.next)
	return nil
}

// OnJobComplete sets a hook called after every scheduled run.
func (s *Scheduler) OnJobComplete(fn func(JobResult)) {
	s.mu.Lock()
	s.hook = fn
	s.mu.Unlock()
}

// ── lifecycle ───────────────────────────────────────────────────────────────

func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.loopEnd = make(chan struct{})
	go s.loop(s.runCtx, s.loopEnd)

	s.log.Info("scheduler started", "jobs", len(s.entries), "tick", s.tick)
	return nil
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.cancel()
	s.cancel = nil
	loopEnd := s.loopEnd
	s.mu.Unlock()

	<-loopEnd
	s.inflight.Wait()
	s.log.Info("scheduler stopped")
	return nil
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

func (s *Scheduler) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick starts every due job in its own goroutine. The loop calls it; tests
// call it directly after moving a fixed clock.
func (s *Scheduler) Tick() {
	now := s.now()

	s.mu.Lock()
	ctx := s.runCtx
	var due []*entry
	for _, e := range s.entries {
		if e.next.IsZero() || now.Before(e.next) {
			continue
		}
		e.next = e.when.Next(now)
		if e.running {
			e.skipped++
			s.log.Warn("job still running, tick skipped", "job", e.job.Name())
			continue
		}
		e.running = true
		e.runs++
		due = append(due, e)
	}
	s.mu.Unlock()

	for _, e := range due {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			res := s.run(ctx, e.job, false)

			s.mu.Lock()
			e.running = false
			if res.Err != nil {
				e.failures++
			}
			e.last = &res
			hook := s.hook
			s.mu.Unlock()

			if hook != nil {
				hook(res)
			}
		}()
	}
}

// Wait blocks until jobs started by Tick have returned.
func (s *Scheduler) Wait() { s.inflight.Wait() }

func (s *Scheduler) run(ctx context.Context, job Job, manual bool) JobResult {
	res := JobResult{JobName: job.Name(), StartedAt: s.clock.Now(), Manual: manual}
	res.Err = job.Run(ctx)
	res.Duration = s.clock.Now().Sub(res.StartedAt)

	switch {
	case res.Err == nil:
		s.log.Info("job completed", "job", res.JobName, "duration", res.Duration, "manual", manual)
	case errors.Is(res.Err, context.Canceled):
		s.log.Warn("job cancelled", "job", res.JobName, "duration", res.Duration)
	default:
		s.log.Error("job failed", "job", res.JobName, "duration", res.Duration, "error", res.Err)
	}
	return res
}

// RunNow runs the named job once, outside its schedule, on the caller's
// goroutine. It does not count toward the scheduled statistics.
func (s *Scheduler) RunNow(ctx context.Context, name string) (JobResult, error) {
	s.mu.Lock()
	e := s.find(name)
	s.mu.Unlock()
	if e == nil {
		return JobResult{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}

	res := s.run(ctx, e.job, true)
	s.mu.Lock()
	e.last = &res
	s.mu.Unlock()
	return res, res.Err
}

// Jobs returns a snapshot of every job sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, JobInfo{
			Name:       e.job.Name(),
			Schedule:   e.when.String(),
			NextRun:    e.next,
			Running:    e.running,
			Runs:       e.runs,
			Failures:   e.failures,
			Skipped:    e.skipped,
			LastResult: e.last,
		})
	}
	slices.SortFunc(out, func(a, b JobInfo) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		}
		return 0
	})
	return out
}
