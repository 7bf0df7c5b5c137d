package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) *time.Time {
	t := now.Add(d)
	return &t
}

func score(v float64) *float64 { return &v }

func TestCourseTaskStatus(t *testing.T) {
	open := course.CourseTask{StudentStartDate: at(-time.Hour), StudentEndDate: at(time.Hour)}
	closed := course.CourseTask{StudentStartDate: at(-48 * time.Hour), StudentEndDate: at(-time.Hour)}
	future := course.CourseTask{StudentStartDate: at(time.Hour), StudentEndDate: at(48 * time.Hour)}
	endsNow := course.CourseTask{StudentStartDate: at(-time.Hour), StudentEndDate: at(0)}

	tests := []struct {
		name  string
		task  course.CourseTask
		state *StudentTaskState
		want  Status
	}{
		{"no window", course.CourseTask{}, &StudentTaskState{Score: score(10), Submitted: true}, StatusArchived},
		{"no end date", course.CourseTask{StudentStartDate: at(-time.Hour)}, nil, StatusArchived},
		{"future wins over score", future, &StudentTaskState{Score: score(10)}, StatusFuture},
		{"future for staff", future, nil, StatusFuture},
		{"done", closed, &StudentTaskState{Score: score(0)}, StatusDone},
		{"done beats submitted", open, &StudentTaskState{Score: score(3), Submitted: true}, StatusDone},
		{"review", closed, &StudentTaskState{Submitted: true}, StatusReview},
		{"available", open, &StudentTaskState{}, StatusAvailable},
		{"available at end instant", endsNow, &StudentTaskState{}, StatusAvailable},
		{"available for staff", open, nil, StatusAvailable},
		{"missed for student", closed, &StudentTaskState{}, StatusMissed},
		{"archived for staff", closed, nil, StatusArchived},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CourseTaskStatus(tt.task, now, tt.state))
		})
	}
}

func TestCourseEventStatus(t *testing.T) {
	sixty := 60

	tests := []struct {
		name  string
		event course.CourseEvent
		want  Status
	}{
		{"ended", course.CourseEvent{DateTime: now.Add(-90 * time.Minute), Duration: &sixty}, StatusArchived},
		{"running", course.CourseEvent{DateTime: now.Add(-30 * time.Minute), Duration: &sixty}, StatusAvailable},
		{"upcoming", course.CourseEvent{DateTime: now.Add(30 * time.Minute)}, StatusFuture},
		{"default duration running", course.CourseEvent{DateTime: now.Add(-59 * time.Minute)}, StatusAvailable},
		{"default duration ended", course.CourseEvent{DateTime: now.Add(-61 * time.Minute)}, StatusArchived},
		{"starts now", course.CourseEvent{DateTime: now}, StatusFuture},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CourseEventStatus(tt.event, now))
		})
	}
}

func TestCourseTaskTag(t *testing.T) {
	tests := []struct {
		name string
		task course.CourseTask
		want Tag
	}{
		{"cross-check overrides type", course.CourseTask{Checker: course.CheckerCrossCheck, Type: "test"}, TagCrossCheck},
		{"test", course.CourseTask{Task: &course.Task{Type: "test"}}, TagTest},
		{"selfeducation", course.CourseTask{Task: &course.Task{Type: "selfeducation"}}, TagTest},
		{"interview", course.CourseTask{Task: &course.Task{Type: "interview"}}, TagInterview},
		{"stage interview override", course.CourseTask{Type: "stage-interview", Task: &course.Task{Type: "jstask"}}, TagInterview},
		{"coding fallback", course.CourseTask{Task: &course.Task{Type: "jstask"}}, TagCoding},
		{"no template", course.CourseTask{Checker: course.CheckerMentor}, TagCoding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CourseTaskTag(tt.task))
		})
	}
}

func TestCourseEventTag(t *testing.T) {
	assert.Equal(t, TagSelfStudy, CourseEventTag(course.CourseEvent{Event: &course.Event{Type: course.EventTypeSelfStudy}}))
	assert.Equal(t, TagLecture, CourseEventTag(course.CourseEvent{Event: &course.Event{Type: "lecture_online"}}))
	assert.Equal(t, TagLecture, CourseEventTag(course.CourseEvent{}))
}
