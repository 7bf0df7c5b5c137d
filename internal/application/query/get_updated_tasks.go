package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// GetUpdatedTasksQuery - задания курса, изменённые за последние LastHours часов.
type GetUpdatedTasksQuery struct {
	CourseID  int64
	LastHours int
}

// Validate проверяет корректность параметров запроса.
func (q GetUpdatedTasksQuery) Validate() error {
	if q.CourseID <= 0 {
		return shared.ErrInvalidCourseID
	}
	if q.LastHours < 0 {
		return shared.ErrNegativeHours
	}
	return nil
}

// GetUpdatedTasksHandler обрабатывает запрос изменённых заданий.
type GetUpdatedTasksHandler struct {
	tasks course.CourseTaskRepository
	clock timeutil.Clock
}

// NewGetUpdatedTasksHandler создаёт обработчик.
func NewGetUpdatedTasksHandler(tasks course.CourseTaskRepository, clock timeutil.Clock) *GetUpdatedTasksHandler {
	return &GetUpdatedTasksHandler{tasks: tasks, clock: timeutil.OrSystem(clock)}
}

// Handle возвращает задания с UpdatedDate >= now - LastHours.
func (h *GetUpdatedTasksHandler) Handle(ctx context.Context, query GetUpdatedTasksQuery) ([]course.CourseTask, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	since := timeutil.HoursAgo(h.clock.Now(), query.LastHours)
	tasks, err := h.tasks.FindUpdatedSince(ctx, query.CourseID, since)
	if err != nil {
		return nil, fmt.Errorf("find tasks updated since %s: %w", since, err)
	}
	return tasks, nil
}
