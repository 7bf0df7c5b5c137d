package command

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

var (
	now         = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// ─────────────────────────────────────────────────────────────────────────────
// Copy schedule
// ─────────────────────────────────────────────────────────────────────────────

type copyFixture struct {
	courses *memory.CourseRepository
	tasks   *memory.CourseTaskRepository
	events  *memory.CourseEventRepository
}

func newCopyFixture() *copyFixture {
	clock := timeutil.NewFixedClock(now)
	f := &copyFixture{
		courses: memory.NewCourseRepository(),
		tasks:   memory.NewCourseTaskRepository(clock),
		events:  memory.NewCourseEventRepository(clock),
	}
	f.courses.Add(course.Course{ID: 1, StartDate: *date(2023, time.January, 1)})
	f.courses.Add(course.Course{ID: 2, StartDate: *date(2023, time.June, 1)})

	f.tasks.Seed(course.CourseTask{
		ID: 10, CourseID: 1, TaskID: 1,
		StudentStartDate: date(2023, time.January, 5),
		StudentEndDate:   date(2023, time.January, 15),
		CrossCheckStatus: course.CrossCheckStatusCompleted,
		Checker:          course.CheckerCrossCheck,
	})
	f.tasks.Seed(course.CourseTask{ID: 11, CourseID: 1, TaskID: 2, Disabled: true})

	dateStr, timeStr := "2023-01-03", "18:00"
	f.events.Seed(course.CourseEvent{
		ID: 20, CourseID: 1, EventID: 1,
		DateTime: *date(2023, time.January, 3),
		Date:     &dateStr,
		Time:     &timeStr,
	})
	return f
}

func (f *copyFixture) handler() *CopyScheduleHandler {
	return NewCopyScheduleHandler(f.courses, f.tasks, f.events, nil, quietLogger)
}

func TestCopySchedule_ShiftsDates(t *testing.T) {
	f := newCopyFixture()
	ctx := context.Background()

	result, err := f.handler().Handle(ctx, CopyScheduleCommand{FromCourseID: 1, ToCourseID: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TasksCopied)
	assert.Equal(t, 1, result.EventsCopied)

	copied, err := f.tasks.FindAllByCourse(ctx, 2)
	require.NoError(t, err)
	require.Len(t, copied, 2)

	first := copied[0]
	assert.Equal(t, *date(2023, time.June, 15), *first.StudentEndDate)
	assert.Equal(t, *date(2023, time.June, 5), *first.StudentStartDate)
	assert.Nil(t, first.CrossCheckEndDate)
	assert.Equal(t, course.CrossCheckStatusInitial, first.CrossCheckStatus)
	assert.Equal(t, course.CheckerCrossCheck, first.Checker)
	assert.NotEqual(t, int64(10), first.ID)
	assert.True(t, copied[1].Disabled, "disabled flag is copied")

	events, err := f.events.FindByCourse(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, *date(2023, time.June, 3), events[0].DateTime)
	assert.Nil(t, events[0].Date)
	assert.Nil(t, events[0].Time)

	source, err := f.tasks.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, *date(2023, time.January, 15), *source.StudentEndDate)
}

func TestCopySchedule_NegativeShift(t *testing.T) {
	f := newCopyFixture()
	ctx := context.Background()

	_, err := f.handler().Handle(ctx, CopyScheduleCommand{FromCourseID: 2, ToCourseID: 1})
	require.NoError(t, err)

	// course 2 has no tasks of its own, so nothing lands in course 1
	tasks, err := f.tasks.FindAllByCourse(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCopySchedule_MissingCourseWritesNothing(t *testing.T) {
	f := newCopyFixture()
	ctx := context.Background()

	_, err := f.handler().Handle(ctx, CopyScheduleCommand{FromCourseID: 1, ToCourseID: 99})
	assert.True(t, shared.IsNotFound(err))

	_, err = f.handler().Handle(ctx, CopyScheduleCommand{FromCourseID: 99, ToCourseID: 2})
	assert.True(t, shared.IsNotFound(err))

	tasks, err := f.tasks.FindAllByCourse(ctx, 99)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	tasks, err = f.tasks.FindAllByCourse(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestCopySchedule_RejectsSameCourse(t *testing.T) {
	f := newCopyFixture()
	_, err := f.handler().Handle(context.Background(), CopyScheduleCommand{FromCourseID: 1, ToCourseID: 1})
	assert.True(t, shared.IsValidation(err))
}

type failingEventWriter struct {
	*memory.CourseEventRepository
}

func (failingEventWriter) Create(context.Context, *course.CourseEvent) error {
	return errors.New("disk full")
}

func TestCopySchedule_PartialFailureKeepsWrittenTasks(t *testing.T) {
	f := newCopyFixture()
	ctx := context.Background()
	h := NewCopyScheduleHandler(f.courses, f.tasks, failingEventWriter{f.events}, nil, quietLogger)

	result, err := h.Handle(ctx, CopyScheduleCommand{FromCourseID: 1, ToCourseID: 2})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.TasksCopied)
	assert.Equal(t, 0, result.EventsCopied)

	tasks, err := f.tasks.FindAllByCourse(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
}

func TestCopySchedule_PartialFailureInvalidatesCache(t *testing.T) {
	f := newCopyFixture()
	ctx := context.Background()
	cache := memory.NewScheduleCache(time.Minute, time.Minute)
	cache.SetTasks(ctx, 2, []course.CourseTask{}, time.Minute)

	h := NewCopyScheduleHandler(f.courses, f.tasks, failingEventWriter{f.events}, cache, quietLogger)
	_, err := h.Handle(ctx, CopyScheduleCommand{FromCourseID: 1, ToCourseID: 2})
	require.Error(t, err)

	_, ok := cache.GetTasks(ctx, 2)
	assert.False(t, ok)
}

// ─────────────────────────────────────────────────────────────────────────────
// Disable / save course task
// ─────────────────────────────────────────────────────────────────────────────

func TestDisableCourseTask_Idempotent(t *testing.T) {
	f := newCopyFixture()
	ctx := context.Background()
	cache := memory.NewScheduleCache(time.Minute, time.Minute)
	cache.SetTasks(ctx, 1, []course.CourseTask{{ID: 10}}, time.Minute)
	h := NewDisableCourseTaskHandler(f.tasks, cache)

	require.NoError(t, h.Handle(ctx, 10))
	require.NoError(t, h.Handle(ctx, 10))

	ct, err := f.tasks.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.True(t, ct.Disabled)

	_, ok := cache.GetTasks(ctx, 1)
	assert.False(t, ok, "course cache is dropped")

	assert.True(t, shared.IsNotFound(h.Handle(ctx, 404)))
}

func TestSaveCourseTask_CreateAndUpdate(t *testing.T) {
	f := newCopyFixture()
	ctx := context.Background()
	h := NewSaveCourseTaskHandler(f.tasks, nil)
	maxScore := 100

	created, err := h.Create(ctx, CourseTaskInput{
		CourseID:         1,
		TaskID:           3,
		Checker:          "mentor",
		StudentStartDate: date(2024, time.March, 1),
		StudentEndDate:   date(2024, time.March, 8),
		MaxScore:         &maxScore,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, now, created.CreatedDate)

	updated, err := h.Update(ctx, created.ID, CourseTaskInput{
		CourseID: 1,
		TaskID:   3,
		Checker:  "taskOwner",
	})
	require.NoError(t, err)
	assert.Equal(t, course.CheckerTaskOwner, updated.Checker)
	assert.Nil(t, updated.StudentEndDate)

	_, err = h.Update(ctx, 999, CourseTaskInput{CourseID: 1, TaskID: 3})
	assert.True(t, shared.IsNotFound(err))
}

func TestSaveCourseTask_Validation(t *testing.T) {
	f := newCopyFixture()
	h := NewSaveCourseTaskHandler(f.tasks, nil)
	ctx := context.Background()
	negative := -5

	tests := []struct {
		name string
		in   CourseTaskInput
	}{
		{"missing course", CourseTaskInput{TaskID: 1}},
		{"missing task", CourseTaskInput{CourseID: 1}},
		{"unknown checker", CourseTaskInput{CourseID: 1, TaskID: 1, Checker: "robot"}},
		{"negative max score", CourseTaskInput{CourseID: 1, TaskID: 1, MaxScore: &negative}},
		{"inverted window", CourseTaskInput{
			CourseID: 1, TaskID: 1,
			StudentStartDate: date(2024, time.March, 8),
			StudentEndDate:   date(2024, time.March, 1),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Create(ctx, tt.in)
			assert.True(t, shared.IsValidation(err), "got %v", err)
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Certificates
// ─────────────────────────────────────────────────────────────────────────────

type recordingIssuer struct {
	got []course.Certificate
	err error
}

func (r *recordingIssuer) Issue(_ context.Context, certs []course.Certificate) error {
	r.got = certs
	return r.err
}

type recordingArchive struct {
	courseID int64
	err      error
}

func (r *recordingArchive) Store(_ context.Context, courseID int64, _ []course.Certificate) (string, error) {
	r.courseID = courseID
	if r.err != nil {
		return "", r.err
	}
	return "certificates/1/batch.json", nil
}

func newStudents() *memory.StudentRepository {
	repo := memory.NewStudentRepository()
	c := course.Course{ID: 1, Name: "JS 2024Q1", PrimarySkillName: "JavaScript"}
	repo.Add(course.Student{ID: 1, CourseID: 1, Course: c, User: course.Person{FirstName: "Ada", LastName: "Lovelace"}})
	repo.Add(course.Student{ID: 2, CourseID: 1, Course: c, IsExpelled: true, User: course.Person{FirstName: "Bob", LastName: "Dropped"}})
	repo.Add(course.Student{ID: 3, CourseID: 1, Course: c, User: course.Person{FirstName: "Grace", LastName: "Hopper"}})
	return repo
}

func TestGenerateCertificates_DefaultSelection(t *testing.T) {
	issuer := &recordingIssuer{}
	archive := &recordingArchive{}
	h := NewGenerateCertificatesHandler(newStudents(), issuer, archive, timeutil.NewFixedClock(now), quietLogger)

	result, err := h.Handle(context.Background(), GenerateCertificatesCommand{CourseID: 1})
	require.NoError(t, err)
	require.Len(t, result.Certificates, 2)
	assert.Equal(t, course.Certificate{
		StudentID: 1,
		Course:    "JS 2024Q1 (JavaScript)",
		Name:      "Ada Lovelace",
		Date:      now.UnixMilli(),
	}, result.Certificates[0])
	assert.Equal(t, result.Certificates, issuer.got)
	assert.Equal(t, "certificates/1/batch.json", result.ArchiveKey)
	assert.Equal(t, int64(1), archive.courseID)
}

func TestGenerateCertificates_ExplicitStudents(t *testing.T) {
	issuer := &recordingIssuer{}
	h := NewGenerateCertificatesHandler(newStudents(), issuer, nil, timeutil.NewFixedClock(now), quietLogger)

	result, err := h.Handle(context.Background(), GenerateCertificatesCommand{CourseID: 1, StudentIDs: []int64{2}})
	require.NoError(t, err)
	require.Len(t, result.Certificates, 1)
	assert.Equal(t, "Bob Dropped", result.Certificates[0].Name)
	assert.Empty(t, result.ArchiveKey)
}

func TestGenerateCertificates_ArchiveFailureIsNotFatal(t *testing.T) {
	issuer := &recordingIssuer{}
	archive := &recordingArchive{err: errors.New("bucket missing")}
	h := NewGenerateCertificatesHandler(newStudents(), issuer, archive, timeutil.NewFixedClock(now), quietLogger)

	result, err := h.Handle(context.Background(), GenerateCertificatesCommand{CourseID: 1})
	require.NoError(t, err)
	assert.Len(t, result.Certificates, 2)
	assert.Empty(t, result.ArchiveKey)
}

func TestGenerateCertificates_Errors(t *testing.T) {
	issuer := &recordingIssuer{err: shared.ErrCertificateAPIUnavailable}
	h := NewGenerateCertificatesHandler(newStudents(), issuer, nil, timeutil.NewFixedClock(now), quietLogger)
	ctx := context.Background()

	_, err := h.Handle(ctx, GenerateCertificatesCommand{CourseID: 1})
	assert.True(t, shared.IsExternalService(err))

	_, err = h.Handle(ctx, GenerateCertificatesCommand{CourseID: 7})
	assert.True(t, shared.IsNotFound(err))

	_, err = h.Handle(ctx, GenerateCertificatesCommand{CourseID: 1, StudentIDs: []int64{0}})
	assert.True(t, shared.IsValidation(err))
}
