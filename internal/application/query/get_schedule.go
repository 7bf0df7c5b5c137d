// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/schedule"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET SCHEDULE QUERY
// Собирает расписание курса из заданий и событий. Если указан студент,
// статусы учитывают его оценки и отправленные решения.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultScheduleCacheTTL - время жизни кеша заданий и событий
// для студенческих запросов.
const DefaultScheduleCacheTTL = 90 * time.Second

// GetScheduleQuery содержит параметры запроса расписания.
type GetScheduleQuery struct {
	// CourseID - курс, для которого строится расписание.
	CourseID int64

	// StudentID - студент; nil означает просмотр сотрудником курса.
	StudentID *int64
}

// Validate проверяет корректность параметров запроса.
func (q GetScheduleQuery) Validate() error {
	if q.CourseID <= 0 {
		return shared.ErrInvalidCourseID
	}
	if q.StudentID != nil && *q.StudentID <= 0 {
		return shared.ErrInvalidStudentID
	}
	return nil
}

// GetScheduleHandler обрабатывает запросы расписания.
type GetScheduleHandler struct {
	tasks    course.CourseTaskRepository
	events   course.CourseEventRepository
	progress course.StudentProgressRepository
	cache    course.ScheduleSourceCache
	cacheTTL time.Duration
	clock    timeutil.Clock
}

// NewGetScheduleHandler создаёт обработчик запроса расписания.
// cache может быть nil - тогда все чтения идут в репозитории.
func NewGetScheduleHandler(
	tasks course.CourseTaskRepository,
	events course.CourseEventRepository,
	progress course.StudentProgressRepository,
	cache course.ScheduleSourceCache,
	cacheTTL time.Duration,
	clock timeutil.Clock,
) *GetScheduleHandler {
	if cacheTTL <= 0 {
		cacheTTL = DefaultScheduleCacheTTL
	}
	return &GetScheduleHandler{
		tasks:    tasks,
		events:   events,
		progress: progress,
		cache:    cache,
		cacheTTL: cacheTTL,
		clock:    timeutil.OrSystem(clock),
	}
}

// Handle выполняет запрос расписания.
func (h *GetScheduleHandler) Handle(ctx context.Context, query GetScheduleQuery) ([]schedule.Item, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var (
		tasks    []course.CourseTask
		events   []course.CourseEvent
		progress *course.StudentProgress
	)

	// Все чтения независимы и выполняются параллельно
	g, gctx := errgroup.WithContext(ctx)
	cached := query.StudentID != nil

	g.Go(func() error {
		var err error
		tasks, err = h.loadTasks(gctx, query.CourseID, cached)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = h.loadEvents(gctx, query.CourseID, cached)
		return err
	})

	if query.StudentID != nil {
		progress = &course.StudentProgress{}
		h.loadProgress(gctx, g, *query.StudentID, progress)
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load schedule sources for course %d: %w", query.CourseID, err)
	}

	return schedule.Build(tasks, events, h.clock.Now(), progress), nil
}

// loadTasks читает активные задания курса, при cached - через кеш.
func (h *GetScheduleHandler) loadTasks(ctx context.Context, courseID int64, cached bool) ([]course.CourseTask, error) {
	if cached && h.cache != nil {
		if tasks, ok := h.cache.GetTasks(ctx, courseID); ok {
			return tasks, nil
		}
	}

	tasks, err := h.tasks.FindActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("find course tasks: %w", err)
	}

	if cached && h.cache != nil {
		h.cache.SetTasks(ctx, courseID, tasks, h.cacheTTL)
	}
	return tasks, nil
}

// loadEvents читает события курса, при cached - через кеш.
func (h *GetScheduleHandler) loadEvents(ctx context.Context, courseID int64, cached bool) ([]course.CourseEvent, error) {
	if cached && h.cache != nil {
		if events, ok := h.cache.GetEvents(ctx, courseID); ok {
			return events, nil
		}
	}

	events, err := h.events.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("find course events: %w", err)
	}

	if cached && h.cache != nil {
		h.cache.SetEvents(ctx, courseID, events, h.cacheTTL)
	}
	return events, nil
}

// loadProgress добавляет в группу пять чтений прогресса студента.
// Каждая горутина пишет только в своё поле progress.
func (h *GetScheduleHandler) loadProgress(ctx context.Context, g *errgroup.Group, studentID int64, progress *course.StudentProgress) {
	g.Go(func() error {
		var err error
		progress.TaskResults, err = h.progress.FindTaskResults(ctx, studentID)
		if err != nil {
			return fmt.Errorf("find task results: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		progress.InterviewResults, err = h.progress.FindInterviewResults(ctx, studentID)
		if err != nil {
			return fmt.Errorf("find interview results: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		progress.StageInterviews, err = h.progress.FindCompletedStageInterviews(ctx, studentID)
		if err != nil {
			return fmt.Errorf("find stage interviews: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		progress.Solutions, err = h.progress.FindTaskSolutions(ctx, studentID)
		if err != nil {
			return fmt.Errorf("find task solutions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		progress.Checkers, err = h.progress.FindTaskCheckers(ctx, studentID)
		if err != nil {
			return fmt.Errorf("find task checkers: %w", err)
		}
		return nil
	})
}
