package query

import (
	"context"
	"fmt"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TASKS PENDING DEADLINE QUERY
// Открытые задания, дедлайн которых наступит в ближайшие N часов.
// Используется API и фоновым заданием рассылки напоминаний.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultDeadlineWithinHours - окно поиска по умолчанию.
const DefaultDeadlineWithinHours = 24

// GetPendingDeadlineQuery содержит параметры запроса.
type GetPendingDeadlineQuery struct {
	CourseID int64

	// DeadlineWithinHours - размер окна; 0 означает значение по умолчанию.
	DeadlineWithinHours int
}

// Validate проверяет параметры и подставляет значения по умолчанию.
func (q *GetPendingDeadlineQuery) Validate() error {
	if q.CourseID <= 0 {
		return shared.ErrInvalidCourseID
	}
	if q.DeadlineWithinHours < 0 {
		return shared.ErrNegativeHours
	}
	if q.DeadlineWithinHours == 0 {
		q.DeadlineWithinHours = DefaultDeadlineWithinHours
	}
	return nil
}

// GetPendingDeadlineHandler обрабатывает запрос.
type GetPendingDeadlineHandler struct {
	tasks course.CourseTaskRepository
	clock timeutil.Clock
}

// NewGetPendingDeadlineHandler создаёт обработчик.
func NewGetPendingDeadlineHandler(tasks course.CourseTaskRepository, clock timeutil.Clock) *GetPendingDeadlineHandler {
	return &GetPendingDeadlineHandler{tasks: tasks, clock: timeutil.OrSystem(clock)}
}

// Handle возвращает задания по возрастанию дедлайна.
func (h *GetPendingDeadlineHandler) Handle(ctx context.Context, query GetPendingDeadlineQuery) ([]course.CourseTask, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	until := timeutil.HoursAhead(now, query.DeadlineWithinHours)

	tasks, err := h.tasks.FindPendingDeadline(ctx, query.CourseID, now, until)
	if err != nil {
		return nil, fmt.Errorf("find tasks pending deadline: %w", err)
	}
	return tasks, nil
}
