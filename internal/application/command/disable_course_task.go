package command

import (
	"context"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// DisableCourseTaskHandler soft-deletes a course task.
// Disabling an already disabled task succeeds.
type DisableCourseTaskHandler struct {
	tasks course.CourseTaskRepository
	cache course.ScheduleSourceCache
}

// NewDisableCourseTaskHandler creates a new handler. cache may be nil.
func NewDisableCourseTaskHandler(tasks course.CourseTaskRepository, cache course.ScheduleSourceCache) *DisableCourseTaskHandler {
	return &DisableCourseTaskHandler{tasks: tasks, cache: cache}
}

// Handle disables the task. Unknown ids fail with NotFound.
func (h *DisableCourseTaskHandler) Handle(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidCourseTaskID
	}

	ct, err := h.tasks.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := h.tasks.Disable(ctx, id); err != nil {
		return err
	}
	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, ct.CourseID)
	}
	return nil
}
