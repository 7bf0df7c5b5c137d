package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/schedule"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

type fixture struct {
	tasks    *memory.CourseTaskRepository
	events   *memory.CourseEventRepository
	progress *memory.ProgressRepository
	cache    *memory.ScheduleCache
	clock    *timeutil.FixedClock
}

func newFixture() *fixture {
	clock := timeutil.NewFixedClock(now)
	f := &fixture{
		tasks:    memory.NewCourseTaskRepository(clock),
		events:   memory.NewCourseEventRepository(clock),
		progress: memory.NewProgressRepository(),
		cache:    memory.NewScheduleCache(time.Minute, time.Minute),
		clock:    clock,
	}

	f.tasks.Seed(course.CourseTask{
		ID: 1, CourseID: 1, TaskID: 1,
		Task:             &course.Task{ID: 1, Name: "Closed task", Type: "jstask"},
		StudentStartDate: at(-72 * time.Hour),
		StudentEndDate:   at(-24 * time.Hour),
	})
	f.tasks.Seed(course.CourseTask{
		ID: 2, CourseID: 1, TaskID: 2,
		Task:             &course.Task{ID: 2, Name: "Open task", Type: "test"},
		StudentStartDate: at(-time.Hour),
		StudentEndDate:   at(48 * time.Hour),
	})
	f.tasks.Seed(course.CourseTask{
		ID: 3, CourseID: 1, TaskID: 3, Disabled: true,
		Task:             &course.Task{ID: 3, Name: "Disabled"},
		StudentStartDate: at(-time.Hour),
		StudentEndDate:   at(time.Hour),
	})
	f.events.Seed(course.CourseEvent{
		ID: 10, CourseID: 1, EventID: 1,
		Event:    &course.Event{Name: "Lecture", Type: "lecture_online"},
		DateTime: now.Add(-30 * time.Minute),
	})
	return f
}

func (f *fixture) handler() *GetScheduleHandler {
	return NewGetScheduleHandler(f.tasks, f.events, f.progress, f.cache, 0, f.clock)
}

func TestGetSchedule_StaffView(t *testing.T) {
	f := newFixture()

	items, err := f.handler().Handle(context.Background(), GetScheduleQuery{CourseID: 1})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, schedule.StatusArchived, items[0].Status)
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, schedule.StatusAvailable, items[1].Status)
	assert.Equal(t, schedule.TagTest, items[1].Tag)
	assert.Equal(t, int64(10), items[2].ID)
	assert.Equal(t, schedule.StatusAvailable, items[2].Status)
	for _, item := range items {
		assert.Nil(t, item.Score)
	}
}

func TestGetSchedule_StudentView(t *testing.T) {
	f := newFixture()
	f.progress.Set(5, course.StudentProgress{
		TaskResults: []course.TaskResult{{StudentID: 5, CourseTaskID: 2, Score: 10}},
	})
	studentID := int64(5)

	items, err := f.handler().Handle(context.Background(), GetScheduleQuery{CourseID: 1, StudentID: &studentID})
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, schedule.StatusMissed, items[0].Status)
	assert.Equal(t, schedule.StatusDone, items[1].Status)
	require.NotNil(t, items[1].Score)
	assert.Equal(t, 10.0, *items[1].Score)
}

func TestGetSchedule_CacheOnlyForStudents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	studentID := int64(5)
	h := f.handler()

	_, err := h.Handle(ctx, GetScheduleQuery{CourseID: 1, StudentID: &studentID})
	require.NoError(t, err)

	f.tasks.Seed(course.CourseTask{
		ID: 4, CourseID: 1, TaskID: 4,
		Task:             &course.Task{ID: 4, Name: "New task"},
		StudentStartDate: at(time.Hour),
		StudentEndDate:   at(2 * time.Hour),
	})

	studentItems, err := h.Handle(ctx, GetScheduleQuery{CourseID: 1, StudentID: &studentID})
	require.NoError(t, err)
	assert.Len(t, studentItems, 3, "student view is served from cache")

	staffItems, err := h.Handle(ctx, GetScheduleQuery{CourseID: 1})
	require.NoError(t, err)
	assert.Len(t, staffItems, 4, "staff view is always live")

	require.NoError(t, f.cache.Invalidate(ctx, 1))
	studentItems, err = h.Handle(ctx, GetScheduleQuery{CourseID: 1, StudentID: &studentID})
	require.NoError(t, err)
	assert.Len(t, studentItems, 4)
}

type failingEvents struct{}

func (failingEvents) FindByCourse(context.Context, int64) ([]course.CourseEvent, error) {
	return nil, errors.New("connection reset")
}

func (failingEvents) Create(context.Context, *course.CourseEvent) error { return nil }

func TestGetSchedule_PropagatesReadErrors(t *testing.T) {
	f := newFixture()
	h := NewGetScheduleHandler(f.tasks, failingEvents{}, f.progress, nil, 0, f.clock)

	_, err := h.Handle(context.Background(), GetScheduleQuery{CourseID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetSchedule_Validation(t *testing.T) {
	f := newFixture()
	bad := int64(-1)

	_, err := f.handler().Handle(context.Background(), GetScheduleQuery{CourseID: 0})
	assert.True(t, shared.IsValidation(err))

	_, err = f.handler().Handle(context.Background(), GetScheduleQuery{CourseID: 1, StudentID: &bad})
	assert.True(t, shared.IsValidation(err))
}
