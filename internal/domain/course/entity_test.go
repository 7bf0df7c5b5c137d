package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

func TestCourseTask_CopyTo(t *testing.T) {
	start := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)
	owner := int64(9)
	src := CourseTask{
		ID:               11,
		CourseID:         1,
		TaskID:           5,
		Checker:          CheckerCrossCheck,
		StudentStartDate: &start,
		StudentEndDate:   &end,
		CrossCheckStatus: CrossCheckStatusCompleted,
		TaskOwnerID:      &owner,
		CreatedDate:      start,
		UpdatedDate:      start,
	}
	delta := 30 * 24 * time.Hour

	cp := src.CopyTo(2, delta)

	assert.Zero(t, cp.ID)
	assert.Equal(t, int64(2), cp.CourseID)
	assert.Equal(t, int64(5), cp.TaskID)
	assert.Equal(t, start.Add(delta), *cp.StudentStartDate)
	assert.Equal(t, end.Add(delta), *cp.StudentEndDate)
	assert.Nil(t, cp.MentorStartDate)
	assert.Nil(t, cp.MentorEndDate)
	assert.Nil(t, cp.CrossCheckEndDate)
	assert.Equal(t, CrossCheckStatusInitial, cp.CrossCheckStatus)
	assert.True(t, cp.CreatedDate.IsZero())
	assert.Equal(t, &owner, cp.TaskOwnerID)

	// источник не изменён
	assert.Equal(t, start, *src.StudentStartDate)
	assert.Equal(t, CrossCheckStatusCompleted, src.CrossCheckStatus)
}

func TestCourseEvent_CopyTo(t *testing.T) {
	at := time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC)
	date, tm := "2024-02-01", "18:00"
	src := CourseEvent{ID: 3, CourseID: 1, EventID: 7, DateTime: at, Date: &date, Time: &tm}

	cp := src.CopyTo(4, -24*time.Hour)

	assert.Zero(t, cp.ID)
	assert.Equal(t, int64(4), cp.CourseID)
	assert.Equal(t, at.Add(-24*time.Hour), cp.DateTime)
	assert.Nil(t, cp.Date)
	assert.Nil(t, cp.Time)
}

func TestCourseEvent_EffectiveDuration(t *testing.T) {
	ninety := 90
	assert.Equal(t, DefaultEventDuration, CourseEvent{}.EffectiveDuration())
	assert.Equal(t, 90*time.Minute, CourseEvent{Duration: &ninety}.EffectiveDuration())
}

func TestCourseTask_EffectiveType(t *testing.T) {
	ct := CourseTask{Task: &Task{Type: "jstask"}}
	assert.Equal(t, "jstask", ct.EffectiveType())

	ct.Type = "interview"
	assert.Equal(t, "interview", ct.EffectiveType())

	assert.Equal(t, "", CourseTask{}.EffectiveType())
}

func TestCourseTask_Validate(t *testing.T) {
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	before := start.Add(-time.Hour)
	negative := -1

	valid := CourseTask{CourseID: 1, TaskID: 2, Checker: CheckerMentor}
	assert.NoError(t, valid.Validate())

	noCourse := valid
	noCourse.CourseID = 0
	assert.ErrorIs(t, noCourse.Validate(), shared.ErrInvalidID)

	badChecker := valid
	badChecker.Checker = "robot"
	assert.ErrorIs(t, badChecker.Validate(), shared.ErrInvalidInput)

	badWindow := valid
	badWindow.StudentStartDate = &start
	badWindow.StudentEndDate = &before
	assert.ErrorIs(t, badWindow.Validate(), shared.ErrValueOutOfRange)

	badScore := valid
	badScore.MaxScore = &negative
	assert.True(t, shared.IsValidation(badScore.Validate()))
}

func TestPerson_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", Person{FirstName: "Ada", LastName: "Lovelace"}.FullName())
	assert.Equal(t, "Ada", Person{FirstName: "Ada"}.FullName())
}

func TestCourse_CertificateTitle(t *testing.T) {
	c := Course{Name: "JS 2024Q1", PrimarySkillName: "JavaScript"}
	assert.Equal(t, "JS 2024Q1 (JavaScript)", c.CertificateTitle())
}

func TestStudentProgress_Submitted(t *testing.T) {
	var nilProgress *StudentProgress
	assert.False(t, nilProgress.Submitted(1))

	p := &StudentProgress{
		Solutions: []TaskSolution{{CourseTaskID: 1}},
		Checkers:  []TaskChecker{{CourseTaskID: 2}},
	}
	assert.True(t, p.Submitted(1))
	assert.True(t, p.Submitted(2))
	assert.False(t, p.Submitted(3))
}

func TestNewCertificate(t *testing.T) {
	issued := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s := Student{
		ID:     42,
		User:   Person{FirstName: "Grace", LastName: "Hopper"},
		Course: Course{Name: "Go 2024", PrimarySkillName: "Go"},
	}

	cert := NewCertificate(s, issued)

	assert.Equal(t, int64(42), cert.StudentID)
	assert.Equal(t, "Go 2024 (Go)", cert.Course)
	assert.Equal(t, "Grace Hopper", cert.Name)
	assert.Equal(t, issued.UnixMilli(), cert.Date)
	assert.True(t, s.Certifiable())
	assert.False(t, Student{IsFailed: true}.Certifiable())
}
