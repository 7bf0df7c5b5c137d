package schedule

import (
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS
// ══════════════════════════════════════════════════════════════════════════════

// CourseTaskStatus вычисляет статус задания на момент now.
// Проверки выполняются строго в указанном порядке:
//
//  1. нет окна сдачи - Archived
//  2. окно ещё не открылось - Future
//  3. есть оценка - Done
//  4. решение отправлено - Review
//  5. окно открыто - Available
//  6. иначе Missed для студента и Archived для сотрудника (state == nil)
func CourseTaskStatus(ct course.CourseTask, now time.Time, state *StudentTaskState) Status {
	if !ct.HasStudentWindow() {
		return StatusArchived
	}
	start, end := *ct.StudentStartDate, *ct.StudentEndDate

	if start.After(now) {
		return StatusFuture
	}
	if state != nil && state.Score != nil {
		return StatusDone
	}
	if state != nil && state.Submitted {
		return StatusReview
	}
	if !end.Before(now) {
		return StatusAvailable
	}
	if state != nil {
		return StatusMissed
	}
	return StatusArchived
}

// CourseEventStatus вычисляет статус события с учётом длительности.
func CourseEventStatus(ce course.CourseEvent, now time.Time) Status {
	start := ce.DateTime
	end := ce.End()

	switch {
	case end.Before(now):
		return StatusArchived
	case start.Before(now):
		return StatusAvailable
	default:
		return StatusFuture
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// TAG
// ══════════════════════════════════════════════════════════════════════════════

// CourseTaskTag определяет категорию задания. Кросс-проверка важнее типа.
func CourseTaskTag(ct course.CourseTask) Tag {
	if ct.Checker == course.CheckerCrossCheck {
		return TagCrossCheck
	}
	switch ct.EffectiveType() {
	case "selfeducation", "test":
		return TagTest
	case "interview", "stage-interview":
		return TagInterview
	default:
		return TagCoding
	}
}

// CourseEventTag определяет категорию события.
func CourseEventTag(ce course.CourseEvent) Tag {
	if ce.Type() == course.EventTypeSelfStudy {
		return TagSelfStudy
	}
	return TagLecture
}
