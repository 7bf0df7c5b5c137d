// Package command contains write operations (CQRS - Commands).
// Commands are responsible for changing the state of the system.
package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COPY SCHEDULE COMMAND
// Duplicates every task and event of one course into another, shifting all
// dates by the difference between the two course start dates.
// Inserts are sequential and not wrapped in a transaction: a failure stops
// the copy and leaves already written records in place.
// ══════════════════════════════════════════════════════════════════════════════

// CopyScheduleCommand identifies source and destination courses.
type CopyScheduleCommand struct {
	FromCourseID int64
	ToCourseID   int64
}

// Validate validates the command.
func (c CopyScheduleCommand) Validate() error {
	if c.FromCourseID <= 0 || c.ToCourseID <= 0 {
		return shared.ErrInvalidCourseID
	}
	if c.FromCourseID == c.ToCourseID {
		return shared.ErrSameCourseCopy
	}
	return nil
}

// CopyScheduleResult reports what was written.
type CopyScheduleResult struct {
	FromCourseID int64         `json:"fromCourseId"`
	ToCourseID   int64         `json:"toCourseId"`
	Shift        time.Duration `json:"shift"`
	TasksCopied  int           `json:"tasksCopied"`
	EventsCopied int           `json:"eventsCopied"`
}

// CopyScheduleHandler handles schedule cloning.
type CopyScheduleHandler struct {
	courses course.CourseRepository
	tasks   course.CourseTaskRepository
	events  course.CourseEventRepository
	cache   course.ScheduleSourceCache
	logger  *slog.Logger
}

// NewCopyScheduleHandler creates a new handler. cache may be nil.
func NewCopyScheduleHandler(
	courses course.CourseRepository,
	tasks course.CourseTaskRepository,
	events course.CourseEventRepository,
	cache course.ScheduleSourceCache,
	logger *slog.Logger,
) *CopyScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CopyScheduleHandler{
		courses: courses,
		tasks:   tasks,
		events:  events,
		cache:   cache,
		logger:  logger,
	}
}

// Handle executes the copy. On a write failure the returned result holds
// the counts written so far alongside the error.
func (h *CopyScheduleHandler) Handle(ctx context.Context, cmd CopyScheduleCommand) (*CopyScheduleResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Step 1: Both courses must exist before anything is written
	// ─────────────────────────────────────────────────────────────────────────
	var from, to *course.Course
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		from, err = h.courses.GetByID(gctx, cmd.FromCourseID)
		return err
	})
	g.Go(func() error {
		var err error
		to, err = h.courses.GetByID(gctx, cmd.ToCourseID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &CopyScheduleResult{
		FromCourseID: from.ID,
		ToCourseID:   to.ID,
		Shift:        to.StartDate.Sub(from.StartDate),
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Step 2: Tasks, including disabled ones
	// ─────────────────────────────────────────────────────────────────────────
	tasks, err := h.tasks.FindAllByCourse(ctx, from.ID)
	if err != nil {
		return nil, fmt.Errorf("find tasks of course %d: %w", from.ID, err)
	}
	for _, ct := range tasks {
		cp := ct.CopyTo(to.ID, result.Shift)
		if err := h.tasks.Create(ctx, &cp); err != nil {
			h.logPartial(ctx, result, err)
			return result, fmt.Errorf("copy course task %d: %w", ct.ID, err)
		}
		result.TasksCopied++
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Step 3: Events
	// ─────────────────────────────────────────────────────────────────────────
	events, err := h.events.FindByCourse(ctx, from.ID)
	if err != nil {
		h.logPartial(ctx, result, err)
		return result, fmt.Errorf("find events of course %d: %w", from.ID, err)
	}
	for _, ce := range events {
		cp := ce.CopyTo(to.ID, result.Shift)
		if err := h.events.Create(ctx, &cp); err != nil {
			h.logPartial(ctx, result, err)
			return result, fmt.Errorf("copy course event %d: %w", ce.ID, err)
		}
		result.EventsCopied++
	}

	h.invalidate(ctx, to.ID)

	h.logger.Info("schedule copied",
		"from_course_id", result.FromCourseID,
		"to_course_id", result.ToCourseID,
		"shift", result.Shift.String(),
		"tasks", result.TasksCopied,
		"events", result.EventsCopied,
	)
	return result, nil
}

func (h *CopyScheduleHandler) invalidate(ctx context.Context, courseID int64) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Invalidate(ctx, courseID); err != nil {
		h.logger.Warn("failed to invalidate schedule cache",
			"course_id", courseID,
			"error", err,
		)
	}
}

func (h *CopyScheduleHandler) logPartial(ctx context.Context, result *CopyScheduleResult, err error) {
	if result.TasksCopied+result.EventsCopied > 0 {
		h.invalidate(ctx, result.ToCourseID)
	}
	h.logger.Error("schedule copy stopped, destination is partially written",
		"from_course_id", result.FromCourseID,
		"to_course_id", result.ToCourseID,
		"tasks", result.TasksCopied,
		"events", result.EventsCopied,
		"error", err,
	)
}
