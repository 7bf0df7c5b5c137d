package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST COURSE TASKS QUERY
// Активные задания курса с фильтром по положению окна сдачи.
// ══════════════════════════════════════════════════════════════════════════════

// ListCourseTasksQuery содержит параметры выборки.
type ListCourseTasksQuery struct {
	CourseID int64

	// Status - "started", "inprogress", "finished" или пусто.
	Status string
}

// ListCourseTasksHandler обрабатывает выборку заданий курса.
type ListCourseTasksHandler struct {
	tasks course.CourseTaskRepository
	clock timeutil.Clock
}

// NewListCourseTasksHandler создаёт обработчик.
func NewListCourseTasksHandler(tasks course.CourseTaskRepository, clock timeutil.Clock) *ListCourseTasksHandler {
	return &ListCourseTasksHandler{tasks: tasks, clock: timeutil.OrSystem(clock)}
}

// Handle возвращает задания, отсортированные по дедлайну и названию.
func (h *ListCourseTasksHandler) Handle(ctx context.Context, query ListCourseTasksQuery) ([]course.CourseTask, error) {
	if query.CourseID <= 0 {
		return nil, shared.ErrInvalidCourseID
	}
	status, err := course.ParseTaskStatusFilter(query.Status)
	if err != nil {
		return nil, err
	}

	tasks, err := h.tasks.List(ctx, course.TaskListFilter{
		CourseID: query.CourseID,
		Status:   status,
		Now:      h.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("list course tasks: %w", err)
	}
	return tasks, nil
}
