package schedule

import (
	"context"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEADLINE DIGEST
// ══════════════════════════════════════════════════════════════════════════════

// DigestTask - задание с приближающимся дедлайном.
type DigestTask struct {
	ID      int64      `json:"id"`
	Name    string     `json:"name"`
	EndDate *time.Time `json:"endDate"`
}

// DeadlineDigest - сводка заданий курса, дедлайн которых скоро наступит.
type DeadlineDigest struct {
	CourseID    int64        `json:"courseId"`
	Tasks       []DigestTask `json:"tasks"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// Empty сообщает, что в сводке нет заданий.
func (d DeadlineDigest) Empty() bool {
	return len(d.Tasks) == 0
}

// NewDeadlineDigest собирает сводку, сохраняя порядок заданий.
func NewDeadlineDigest(courseID int64, tasks []course.CourseTask, generatedAt time.Time) DeadlineDigest {
	d := DeadlineDigest{
		CourseID:    courseID,
		Tasks:       make([]DigestTask, 0, len(tasks)),
		GeneratedAt: generatedAt,
	}
	for _, ct := range tasks {
		d.Tasks = append(d.Tasks, DigestTask{ID: ct.ID, Name: ct.Name(), EndDate: ct.StudentEndDate})
	}
	return d
}

// DeadlineNotifier доставляет сводку получателям (pub/sub, почта, лог).
type DeadlineNotifier interface {
	NotifyDeadlines(ctx context.Context, digest DeadlineDigest) error
}
