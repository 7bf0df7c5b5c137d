package command

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE / UPDATE COURSE TASK COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// CourseTaskInput carries the mutable fields of a course task.
type CourseTaskInput struct {
	CourseID int64  `validate:"required,gt=0"`
	TaskID   int64  `validate:"required,gt=0"`
	Type     string `validate:"omitempty,max=64"`
	Checker  string `validate:"omitempty,oneof=auto-test mentor assigned taskOwner crossCheck"`

	StudentStartDate  *time.Time
	StudentEndDate    *time.Time
	MentorStartDate   *time.Time
	MentorEndDate     *time.Time
	CrossCheckEndDate *time.Time

	MaxScore    *int     `validate:"omitempty,gte=0"`
	ScoreWeight *float64 `validate:"omitempty,gte=0"`
	PairsCount  *int     `validate:"omitempty,gte=0"`
	TaskOwnerID *int64   `validate:"omitempty,gt=0"`
}

func (in CourseTaskInput) apply(ct *course.CourseTask) {
	ct.CourseID = in.CourseID
	ct.TaskID = in.TaskID
	ct.Type = in.Type
	ct.Checker = course.Checker(in.Checker)
	ct.StudentStartDate = in.StudentStartDate
	ct.StudentEndDate = in.StudentEndDate
	ct.MentorStartDate = in.MentorStartDate
	ct.MentorEndDate = in.MentorEndDate
	ct.CrossCheckEndDate = in.CrossCheckEndDate
	ct.MaxScore = in.MaxScore
	ct.ScoreWeight = in.ScoreWeight
	ct.PairsCount = in.PairsCount
	ct.TaskOwnerID = in.TaskOwnerID
}

// SaveCourseTaskHandler creates and updates course tasks.
type SaveCourseTaskHandler struct {
	tasks    course.CourseTaskRepository
	cache    course.ScheduleSourceCache
	validate *validator.Validate
}

// NewSaveCourseTaskHandler creates a new handler. cache may be nil.
func NewSaveCourseTaskHandler(tasks course.CourseTaskRepository, cache course.ScheduleSourceCache) *SaveCourseTaskHandler {
	return &SaveCourseTaskHandler{
		tasks:    tasks,
		cache:    cache,
		validate: validator.New(),
	}
}

func (h *SaveCourseTaskHandler) check(op string, in CourseTaskInput) error {
	if err := h.validate.Struct(in); err != nil {
		return shared.WrapError("course_task", op, shared.ErrValidation, "invalid course task input", err)
	}
	return nil
}

// Create stores a new course task and returns it with its assigned id.
func (h *SaveCourseTaskHandler) Create(ctx context.Context, in CourseTaskInput) (*course.CourseTask, error) {
	if err := h.check("Create", in); err != nil {
		return nil, err
	}

	ct := &course.CourseTask{CrossCheckStatus: course.CrossCheckStatusInitial}
	in.apply(ct)
	if err := ct.Validate(); err != nil {
		return nil, err
	}

	if err := h.tasks.Create(ctx, ct); err != nil {
		return nil, fmt.Errorf("create course task: %w", err)
	}
	h.invalidate(ctx, ct.CourseID)
	return ct, nil
}

// Update replaces the mutable fields of an existing course task.
func (h *SaveCourseTaskHandler) Update(ctx context.Context, id int64, in CourseTaskInput) (*course.CourseTask, error) {
	if id <= 0 {
		return nil, shared.ErrInvalidCourseTaskID
	}
	if err := h.check("Update", in); err != nil {
		return nil, err
	}

	ct, err := h.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previousCourse := ct.CourseID

	in.apply(ct)
	if err := ct.Validate(); err != nil {
		return nil, err
	}
	if err := h.tasks.Update(ctx, ct); err != nil {
		return nil, fmt.Errorf("update course task %d: %w", id, err)
	}

	h.invalidate(ctx, previousCourse)
	if previousCourse != ct.CourseID {
		h.invalidate(ctx, ct.CourseID)
	}
	return ct, nil
}

func (h *SaveCourseTaskHandler) invalidate(ctx context.Context, courseID int64) {
	if h.cache != nil {
		_ = h.cache.Invalidate(ctx, courseID)
	}
}
