package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

func TestStatusCondition(t *testing.T) {
	tests := []struct {
		name   string
		status course.TaskStatusFilter
		want   string
	}{
		{"any", course.TaskStatusAny, ""},
		{"started", course.TaskStatusStarted, "ct.student_start_date <= $2"},
		{"in progress", course.TaskStatusInProgress, "ct.student_start_date <= $2 AND ct.student_end_date > $2"},
		{"finished", course.TaskStatusFinished, "ct.student_end_date < $2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusCondition(tt.status, "$2"))
		})
	}
}

func TestScanPerson(t *testing.T) {
	assert.Nil(t, scanPerson(nil, nil, nil, nil))

	id := int64(7)
	first, github := "Ann", "ann-gh"
	p := scanPerson(&id, &first, nil, &github)
	assert.Equal(t, &course.Person{ID: 7, FirstName: "Ann", GithubID: "ann-gh"}, p)
}
