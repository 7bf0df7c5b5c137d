package query

import (
	"context"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// GetCourseTaskHandler возвращает задание курса по идентификатору.
type GetCourseTaskHandler struct {
	tasks course.CourseTaskRepository
}

// NewGetCourseTaskHandler создаёт обработчик.
func NewGetCourseTaskHandler(tasks course.CourseTaskRepository) *GetCourseTaskHandler {
	return &GetCourseTaskHandler{tasks: tasks}
}

// Handle возвращает задание или ошибку NotFound.
func (h *GetCourseTaskHandler) Handle(ctx context.Context, id int64) (*course.CourseTask, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidCourseTaskID
	}
	return h.tasks.GetByID(ctx, id)
}

// GetTasksByOwnerHandler возвращает задания, проверяемые их владельцем.
type GetTasksByOwnerHandler struct {
	tasks course.CourseTaskRepository
}

// NewGetTasksByOwnerHandler создаёт обработчик.
func NewGetTasksByOwnerHandler(tasks course.CourseTaskRepository) *GetTasksByOwnerHandler {
	return &GetTasksByOwnerHandler{tasks: tasks}
}

// Handle ищет задания по GitHub-логину владельца.
func (h *GetTasksByOwnerHandler) Handle(ctx context.Context, githubID string) ([]course.CourseTask, error) {
	login := shared.GithubID(githubID).Normalize()
	if !login.IsValid() {
		return nil, shared.NewDomainError("course_task", "FindByOwner", shared.ErrInvalidInput, "github id is required")
	}
	return h.tasks.FindByOwner(ctx, login.String())
}
