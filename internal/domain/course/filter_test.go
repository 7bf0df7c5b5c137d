package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

func ptr(t time.Time) *time.Time { return &t }

func TestParseTaskStatusFilter(t *testing.T) {
	tests := []struct {
		raw     string
		want    TaskStatusFilter
		wantErr bool
	}{
		{"", TaskStatusAny, false},
		{"started", TaskStatusStarted, false},
		{" InProgress ", TaskStatusInProgress, false},
		{"finished", TaskStatusFinished, false},
		{"later", TaskStatusAny, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseTaskStatusFilter(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskStatusFilter_Matches(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	open := CourseTask{StudentStartDate: ptr(now.Add(-time.Hour)), StudentEndDate: ptr(now.Add(time.Hour))}
	closed := CourseTask{StudentStartDate: ptr(now.Add(-2 * time.Hour)), StudentEndDate: ptr(now.Add(-time.Hour))}
	future := CourseTask{StudentStartDate: ptr(now.Add(time.Hour)), StudentEndDate: ptr(now.Add(2 * time.Hour))}
	endsNow := CourseTask{StudentStartDate: ptr(now.Add(-time.Hour)), StudentEndDate: ptr(now)}
	noWindow := CourseTask{}

	assert.True(t, TaskStatusStarted.Matches(open, now))
	assert.True(t, TaskStatusStarted.Matches(closed, now))
	assert.False(t, TaskStatusStarted.Matches(future, now))
	assert.False(t, TaskStatusStarted.Matches(noWindow, now))

	assert.True(t, TaskStatusInProgress.Matches(open, now))
	assert.False(t, TaskStatusInProgress.Matches(closed, now))
	assert.False(t, TaskStatusInProgress.Matches(endsNow, now), "end is exclusive")

	assert.True(t, TaskStatusFinished.Matches(closed, now))
	assert.False(t, TaskStatusFinished.Matches(endsNow, now))
	assert.False(t, TaskStatusFinished.Matches(open, now))

	assert.True(t, TaskStatusAny.Matches(noWindow, now))
}

func TestSortByStudentDeadline(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tasks := []CourseTask{
		{ID: 1, Task: &Task{Name: "zeta"}},
		{ID: 2, Task: &Task{Name: "beta"}, StudentEndDate: ptr(base.Add(48 * time.Hour))},
		{ID: 3, Task: &Task{Name: "alpha"}, StudentEndDate: ptr(base.Add(48 * time.Hour))},
		{ID: 4, Task: &Task{Name: "omega"}, StudentEndDate: ptr(base)},
	}

	SortByStudentDeadline(tasks)

	ids := make([]int64, 0, len(tasks))
	for _, ct := range tasks {
		ids = append(ids, ct.ID)
	}
	assert.Equal(t, []int64{4, 3, 2, 1}, ids)
}
