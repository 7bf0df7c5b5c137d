// Package jobs contains implementations of scheduled jobs for the course
// schedule worker.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/alem-hub/course-schedule/internal/application/query"
	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/schedule"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// PENDING DEADLINES JOB
// ══════════════════════════════════════════════════════════════════════════════

// PendingTasksFinder is the query the job runs for each watched course.
type PendingTasksFinder interface {
	Handle(ctx context.Context, q query.GetPendingDeadlineQuery) ([]course.CourseTask, error)
}

// PendingDeadlinesConfig contains configuration for the job.
type PendingDeadlinesConfig struct {
	// CourseIDs are the courses whose deadlines are watched.
	CourseIDs []int64

	// WithinHours is the look-ahead window (0 means 24).
	WithinHours int

	// Timeout is the maximum duration of one run.
	Timeout time.Duration
}

// DefaultPendingDeadlinesConfig returns sensible defaults.
func DefaultPendingDeadlinesConfig() PendingDeadlinesConfig {
	return PendingDeadlinesConfig{
		WithinHours: query.DefaultDeadlineWithinHours,
		Timeout:     5 * time.Minute,
	}
}

// PendingDeadlinesStats contains statistics from a run.
type PendingDeadlinesStats struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	Duration       time.Duration
	CoursesChecked int
	DigestsSent    int
	DigestsEmpty   int
	Failures       int
}

// PendingDeadlinesJob builds a deadline digest per watched course and hands
// it to every notifier.
type PendingDeadlinesJob struct {
	finder    PendingTasksFinder
	notifiers []schedule.DeadlineNotifier
	clock     timeutil.Clock
	logger    *slog.Logger
	config    PendingDeadlinesConfig

	lastRunStats atomic.Value // *PendingDeadlinesStats
}

// NewPendingDeadlinesJob creates the job. Without notifiers digests are
// only logged.
func NewPendingDeadlinesJob(
	finder PendingTasksFinder,
	notifiers []schedule.DeadlineNotifier,
	clock timeutil.Clock,
	logger *slog.Logger,
	config PendingDeadlinesConfig,
) *PendingDeadlinesJob {
	if logger == nil {
		logger = slog.Default()
	}
	if len(notifiers) == 0 {
		notifiers = []schedule.DeadlineNotifier{NewLogNotifier(logger)}
	}
	return &PendingDeadlinesJob{
		finder:    finder,
		notifiers: notifiers,
		clock:     timeutil.OrSystem(clock),
		logger:    logger.With("job", "pending_deadlines"),
		config:    config,
	}
}

// Name returns the job name.
func (j *PendingDeadlinesJob) Name() string {
	return "pending_deadlines"
}

// Run executes the job. Errors of single courses and notifiers do not stop
// the run; they are returned together.
func (j *PendingDeadlinesJob) Run(ctx context.Context) error {
	startedAt := j.clock.Now()
	stats := &PendingDeadlinesStats{StartedAt: startedAt}

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	var result *multierror.Error
	for _, courseID := range j.config.CourseIDs {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		stats.CoursesChecked++

		tasks, err := j.finder.Handle(ctx, query.GetPendingDeadlineQuery{
			CourseID:            courseID,
			DeadlineWithinHours: j.config.WithinHours,
		})
		if err != nil {
			stats.Failures++
			result = multierror.Append(result, fmt.Errorf("course %d: %w", courseID, err))
			continue
		}

		digest := schedule.NewDeadlineDigest(courseID, tasks, j.clock.Now())
		if digest.Empty() {
			stats.DigestsEmpty++
			continue
		}

		if err := j.notify(ctx, digest); err != nil {
			stats.Failures++
			result = multierror.Append(result, err)
			continue
		}
		stats.DigestsSent++
	}

	stats.CompletedAt = j.clock.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)

	j.logger.Info("pending_deadlines job completed",
		"courses", stats.CoursesChecked,
		"sent", stats.DigestsSent,
		"empty", stats.DigestsEmpty,
		"failures", stats.Failures,
	)
	return result.ErrorOrNil()
}

// notify delivers the digest to every notifier, even after one fails.
func (j *PendingDeadlinesJob) notify(ctx context.Context, digest schedule.DeadlineDigest) error {
	var result *multierror.Error
	for _, n := range j.notifiers {
		if err := n.NotifyDeadlines(ctx, digest); err != nil {
			j.logger.Warn("deadline notifier failed",
				"course_id", digest.CourseID,
				"notifier", fmt.Sprintf("%T", n),
				"error", err,
			)
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// LastRunStats returns statistics from the last run.
func (j *PendingDeadlinesJob) LastRunStats() *PendingDeadlinesStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*PendingDeadlinesStats)
}

// ══════════════════════════════════════════════════════════════════════════════
// LOG NOTIFIER
// ══════════════════════════════════════════════════════════════════════════════

// LogNotifier writes digests to the log.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// NotifyDeadlines logs one line per task.
func (n *LogNotifier) NotifyDeadlines(ctx context.Context, digest schedule.DeadlineDigest) error {
	for _, t := range digest.Tasks {
		attrs := []any{"course_id", digest.CourseID, "course_task_id", t.ID, "name", t.Name}
		if t.EndDate != nil {
			attrs = append(attrs, "end_date", t.EndDate.Format(time.RFC3339))
		}
		n.logger.InfoContext(ctx, "deadline approaching", attrs...)
	}
	return nil
}

var _ schedule.DeadlineNotifier = (*LogNotifier)(nil)
