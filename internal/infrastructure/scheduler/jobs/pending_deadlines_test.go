package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/application/query"
	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/schedule"
	"github.com/alem-hub/course-schedule/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

type recordingNotifier struct {
	digests []schedule.DeadlineDigest
	err     error
}

func (n *recordingNotifier) NotifyDeadlines(_ context.Context, d schedule.DeadlineDigest) error {
	n.digests = append(n.digests, d)
	return n.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFinder(clock timeutil.Clock) *query.GetPendingDeadlineHandler {
	tasks := memory.NewCourseTaskRepository(clock)
	tasks.AddTemplate(course.Task{ID: 1, Name: "Songbird"})
	tasks.AddTemplate(course.Task{ID: 2, Name: "Shelter"})
	tasks.Seed(course.CourseTask{ID: 10, CourseID: 1, TaskID: 1, StudentStartDate: at(-48 * time.Hour), StudentEndDate: at(5 * time.Hour)})
	tasks.Seed(course.CourseTask{ID: 11, CourseID: 1, TaskID: 2, StudentStartDate: at(-48 * time.Hour), StudentEndDate: at(2 * time.Hour)})
	tasks.Seed(course.CourseTask{ID: 12, CourseID: 1, TaskID: 2, StudentStartDate: at(-48 * time.Hour), StudentEndDate: at(72 * time.Hour)})
	return query.NewGetPendingDeadlineHandler(tasks, clock)
}

func TestPendingDeadlinesJob_Run(t *testing.T) {
	clock := timeutil.NewFixedClock(now)
	rec := &recordingNotifier{}
	job := NewPendingDeadlinesJob(newFinder(clock), []schedule.DeadlineNotifier{rec}, clock, discardLogger(),
		PendingDeadlinesConfig{CourseIDs: []int64{1, 2}})

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, rec.digests, 1)
	d := rec.digests[0]
	assert.Equal(t, int64(1), d.CourseID)
	assert.Equal(t, now, d.GeneratedAt)
	require.Len(t, d.Tasks, 2)
	assert.Equal(t, int64(11), d.Tasks[0].ID)
	assert.Equal(t, "Shelter", d.Tasks[0].Name)
	assert.Equal(t, int64(10), d.Tasks[1].ID)

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.CoursesChecked)
	assert.Equal(t, 1, stats.DigestsSent)
	assert.Equal(t, 1, stats.DigestsEmpty)
}

func TestPendingDeadlinesJob_NotifierFailureDoesNotStopOthers(t *testing.T) {
	clock := timeutil.NewFixedClock(now)
	boom := errors.New("smtp down")
	failing := &recordingNotifier{err: boom}
	ok := &recordingNotifier{}
	job := NewPendingDeadlinesJob(newFinder(clock), []schedule.DeadlineNotifier{failing, ok}, clock, discardLogger(),
		PendingDeadlinesConfig{CourseIDs: []int64{1}})

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.digests, 1)
	assert.Equal(t, 1, job.LastRunStats().Failures)
}

func TestPendingDeadlinesJob_InvalidCourse(t *testing.T) {
	clock := timeutil.NewFixedClock(now)
	job := NewPendingDeadlinesJob(newFinder(clock), nil, clock, discardLogger(),
		PendingDeadlinesConfig{CourseIDs: []int64{0, 1}})

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course 0")
	assert.Equal(t, 1, job.LastRunStats().DigestsSent)
}
