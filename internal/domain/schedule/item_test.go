package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

func TestBuild_SortsStableByStart(t *testing.T) {
	shared := now.Add(time.Hour)
	tasks := []course.CourseTask{
		{ID: 1, Task: &course.Task{Name: "late"}, StudentStartDate: at(3 * time.Hour), StudentEndDate: at(4 * time.Hour)},
		{ID: 2, Task: &course.Task{Name: "tie task"}, StudentStartDate: &shared, StudentEndDate: at(5 * time.Hour)},
	}
	events := []course.CourseEvent{
		{ID: 10, Event: &course.Event{Name: "tie event"}, DateTime: shared},
		{ID: 11, Event: &course.Event{Name: "early"}, DateTime: now.Add(-time.Hour)},
	}

	items := Build(tasks, events, now, nil)

	require.Len(t, items, 4)
	assert.Equal(t, int64(11), items[0].ID)
	assert.Equal(t, SourceCourseTask, items[1].Source, "task keeps its place before an event with the same start")
	assert.Equal(t, int64(2), items[1].ID)
	assert.Equal(t, int64(10), items[2].ID)
	assert.Equal(t, int64(1), items[3].ID)
}

func TestNewTaskItem_StaffView(t *testing.T) {
	maxScore := 100
	ct := course.CourseTask{
		ID:               5,
		CourseID:         1,
		Task:             &course.Task{Name: "Songbird", DescriptionURL: "https://example.org/songbird"},
		StudentStartDate: at(-48 * time.Hour),
		StudentEndDate:   at(-time.Hour),
		MaxScore:         &maxScore,
		TaskOwner:        &course.Person{ID: 3, FirstName: "Ada", LastName: "Lovelace", GithubID: "ada"},
	}

	item := NewTaskItem(ct, now, nil)

	assert.Equal(t, "Songbird", item.Name)
	assert.Equal(t, StatusArchived, item.Status)
	assert.Equal(t, TagCoding, item.Tag)
	assert.Nil(t, item.Score)
	assert.Equal(t, &maxScore, item.MaxScore)
	require.NotNil(t, item.Organizer)
	assert.Equal(t, "Ada Lovelace", item.Organizer.Name)
}

func TestNewTaskItem_StudentView(t *testing.T) {
	closed := course.CourseTask{ID: 5, StudentStartDate: at(-48 * time.Hour), StudentEndDate: at(-time.Hour)}

	progress := &course.StudentProgress{TaskResults: []course.TaskResult{{CourseTaskID: 5, Score: 80}}}
	item := NewTaskItem(closed, now, progress)
	assert.Equal(t, StatusDone, item.Status)
	require.NotNil(t, item.Score)
	assert.Equal(t, 80.0, *item.Score)

	item = NewTaskItem(closed, now, &course.StudentProgress{})
	assert.Equal(t, StatusMissed, item.Status)
	assert.Nil(t, item.Score)

	item = NewTaskItem(closed, now, &course.StudentProgress{Checkers: []course.TaskChecker{{CourseTaskID: 5}}})
	assert.Equal(t, StatusReview, item.Status)
}

func TestNewEventItem(t *testing.T) {
	ce := course.CourseEvent{
		ID:       4,
		CourseID: 1,
		Event:    &course.Event{Name: "Kickoff", Type: course.EventTypeSelfStudy},
		DateTime: now.Add(time.Hour),
	}

	item := NewEventItem(ce, now)

	assert.Equal(t, SourceCourseEvent, item.Source)
	assert.Equal(t, *item.StartDate, *item.EndDate)
	assert.Equal(t, StatusFuture, item.Status)
	assert.Equal(t, TagSelfStudy, item.Tag)
	assert.Nil(t, item.Organizer)
	assert.Nil(t, item.Score)
}

func TestNewDeadlineDigest(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	end := now.Add(5 * time.Hour)
	tasks := []course.CourseTask{
		{ID: 4, Task: &course.Task{Name: "Arrays"}, StudentEndDate: &end},
		{ID: 9, Task: &course.Task{Name: "Closures"}},
	}

	d := NewDeadlineDigest(12, tasks, now)

	assert.Equal(t, int64(12), d.CourseID)
	assert.Equal(t, now, d.GeneratedAt)
	assert.False(t, d.Empty())
	assert.Equal(t, []DigestTask{
		{ID: 4, Name: "Arrays", EndDate: &end},
		{ID: 9, Name: "Closures"},
	}, d.Tasks)

	assert.True(t, NewDeadlineDigest(12, nil, now).Empty())
}
