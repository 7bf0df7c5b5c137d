package course

import (
	"strings"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// TaskStatusFilter отбирает задания курса по положению окна сдачи
// относительно текущего момента.
type TaskStatusFilter string

const (
	// TaskStatusAny - без фильтрации.
	TaskStatusAny TaskStatusFilter = ""
	// TaskStatusStarted - окно уже открылось: start <= now.
	TaskStatusStarted TaskStatusFilter = "started"
	// TaskStatusInProgress - окно открыто: start <= now < end.
	TaskStatusInProgress TaskStatusFilter = "inprogress"
	// TaskStatusFinished - окно закрылось: end < now.
	TaskStatusFinished TaskStatusFilter = "finished"
)

// ParseTaskStatusFilter разбирает значение параметра status.
func ParseTaskStatusFilter(raw string) (TaskStatusFilter, error) {
	switch f := TaskStatusFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case TaskStatusAny, TaskStatusStarted, TaskStatusInProgress, TaskStatusFinished:
		return f, nil
	}
	return TaskStatusAny, shared.ErrInvalidTaskStatus
}

// Matches проверяет задание против фильтра на момент now.
// Задание без нужной границы окна под фильтр не попадает.
func (f TaskStatusFilter) Matches(ct CourseTask, now time.Time) bool {
	switch f {
	case TaskStatusStarted:
		return ct.StudentStartDate != nil && !ct.StudentStartDate.After(now)
	case TaskStatusInProgress:
		return ct.StudentStartDate != nil && ct.StudentEndDate != nil &&
			!ct.StudentStartDate.After(now) && ct.StudentEndDate.After(now)
	case TaskStatusFinished:
		return ct.StudentEndDate != nil && ct.StudentEndDate.Before(now)
	}
	return true
}

// TaskListFilter - параметры выборки заданий курса.
type TaskListFilter struct {
	CourseID int64
	Status   TaskStatusFilter
	Now      time.Time
}
