package course

import (
	"context"
	"sort"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORIES
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository - чтение курсов.
type CourseRepository interface {
	// GetByID возвращает курс или shared.ErrCourseNotFound.
	GetByID(ctx context.Context, id int64) (*Course, error)
}

// CourseTaskRepository - хранилище заданий курса.
// Все выборки возвращают задания вместе с шаблоном Task и владельцем.
type CourseTaskRepository interface {
	// FindActiveByCourse возвращает незаблокированные задания курса.
	FindActiveByCourse(ctx context.Context, courseID int64) ([]CourseTask, error)

	// FindAllByCourse возвращает все задания курса, включая отключённые.
	FindAllByCourse(ctx context.Context, courseID int64) ([]CourseTask, error)

	// List возвращает задания курса, отсортированные по StudentEndDate,
	// затем по названию задания.
	List(ctx context.Context, filter TaskListFilter) ([]CourseTask, error)

	// FindUpdatedSince возвращает задания курса с UpdatedDate >= since.
	FindUpdatedSince(ctx context.Context, courseID int64, since time.Time) ([]CourseTask, error)

	// FindPendingDeadline возвращает активные открытые задания, дедлайн которых
	// попадает в [now, until], по возрастанию дедлайна.
	FindPendingDeadline(ctx context.Context, courseID int64, now, until time.Time) ([]CourseTask, error)

	// GetByID возвращает задание или shared.ErrCourseTaskNotFound.
	GetByID(ctx context.Context, id int64) (*CourseTask, error)

	// FindByOwner возвращает задания с проверкой владельцем,
	// где владелец имеет указанный GitHub-логин.
	FindByOwner(ctx context.Context, githubID string) ([]CourseTask, error)

	// Create сохраняет новое задание и заполняет ID и метки времени.
	Create(ctx context.Context, ct *CourseTask) error

	// Update перезаписывает изменяемые поля задания.
	Update(ctx context.Context, ct *CourseTask) error

	// Disable выставляет флаг Disabled. Повторный вызов не ошибка.
	Disable(ctx context.Context, id int64) error
}

// CourseEventRepository - хранилище событий курса.
type CourseEventRepository interface {
	// FindByCourse возвращает события курса с шаблоном и организатором.
	FindByCourse(ctx context.Context, courseID int64) ([]CourseEvent, error)

	// Create сохраняет новое событие и заполняет ID.
	Create(ctx context.Context, ce *CourseEvent) error
}

// StudentProgressRepository - чтение источников прогресса студента.
type StudentProgressRepository interface {
	FindTaskResults(ctx context.Context, studentID int64) ([]TaskResult, error)
	FindInterviewResults(ctx context.Context, studentID int64) ([]TaskInterviewResult, error)
	// FindCompletedStageInterviews возвращает только завершённые интервью с отзывами.
	FindCompletedStageInterviews(ctx context.Context, studentID int64) ([]StageInterview, error)
	FindTaskSolutions(ctx context.Context, studentID int64) ([]TaskSolution, error)
	FindTaskCheckers(ctx context.Context, studentID int64) ([]TaskChecker, error)
}

// StudentRepository - чтение студентов курса.
type StudentRepository interface {
	// FindByIDs возвращает студентов с указанными идентификаторами
	// вместе с пользователем и курсом.
	FindByIDs(ctx context.Context, ids []int64) ([]Student, error)

	// FindCertifiable возвращает не отчисленных и не проваливших курс студентов.
	FindCertifiable(ctx context.Context, courseID int64) ([]Student, error)
}

// ScheduleSourceCache - кратковременный кеш заданий и событий курса
// для студенческих запросов расписания. Промах и ошибка кеша неотличимы
// для вызывающего: данные просто читаются из репозитория.
type ScheduleSourceCache interface {
	GetTasks(ctx context.Context, courseID int64) ([]CourseTask, bool)
	SetTasks(ctx context.Context, courseID int64, tasks []CourseTask, ttl time.Duration)
	GetEvents(ctx context.Context, courseID int64) ([]CourseEvent, bool)
	SetEvents(ctx context.Context, courseID int64, events []CourseEvent, ttl time.Duration)
	// Invalidate сбрасывает закешированные данные курса.
	Invalidate(ctx context.Context, courseID int64) error
}

// SortByStudentDeadline упорядочивает задания по StudentEndDate (пустые в конце),
// при равенстве по названию шаблона.
func SortByStudentDeadline(tasks []CourseTask) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].StudentEndDate, tasks[j].StudentEndDate
		switch {
		case a == nil && b == nil:
		case a == nil:
			return false
		case b == nil:
			return true
		case !a.Equal(*b):
			return a.Before(*b)
		}
		return tasks[i].Name() < tasks[j].Name()
	})
}
