package course

import (
	"strings"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE
// ══════════════════════════════════════════════════════════════════════════════

// Course - учебный курс (поток). StartDate служит точкой отсчёта
// при копировании расписания между потоками.
type Course struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Alias            string    `json:"alias"`
	PrimarySkillName string    `json:"primarySkillName"`
	StartDate        time.Time `json:"startDate"`
	EndDate          time.Time `json:"endDate"`
}

// CertificateTitle возвращает название курса в формате сертификата:
// "<название> (<основной навык>)".
func (c Course) CertificateTitle() string {
	return c.Name + " (" + c.PrimarySkillName + ")"
}

// ══════════════════════════════════════════════════════════════════════════════
// PERSON
// ══════════════════════════════════════════════════════════════════════════════

// Person - пользователь платформы в роли владельца задачи или организатора.
type Person struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	GithubID  string `json:"githubId"`
}

// FullName возвращает "Имя Фамилия" без лишних пробелов.
func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ══════════════════════════════════════════════════════════════════════════════
// TASK TEMPLATE & COURSE TASK
// ══════════════════════════════════════════════════════════════════════════════

// Task - шаблон задания, общий для всех курсов.
type Task struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	DescriptionURL string `json:"descriptionUrl,omitempty"`
}

// Checker - способ проверки задания.
type Checker string

const (
	CheckerAutoTest   Checker = "auto-test"
	CheckerMentor     Checker = "mentor"
	CheckerAssigned   Checker = "assigned"
	CheckerTaskOwner  Checker = "taskOwner"
	CheckerCrossCheck Checker = "crossCheck"
)

// IsValid проверяет, что способ проверки известен.
func (c Checker) IsValid() bool {
	switch c {
	case CheckerAutoTest, CheckerMentor, CheckerAssigned, CheckerTaskOwner, CheckerCrossCheck:
		return true
	}
	return false
}

// CrossCheckStatus - стадия кросс-проверки задания.
type CrossCheckStatus string

const (
	CrossCheckStatusInitial     CrossCheckStatus = "initial"
	CrossCheckStatusDistributed CrossCheckStatus = "distributed"
	CrossCheckStatusCompleted   CrossCheckStatus = "completed"
)

// CourseTask - задание, назначенное в рамках курса.
type CourseTask struct {
	ID       int64 `json:"id"`
	CourseID int64 `json:"courseId"`
	TaskID   int64 `json:"taskId"`
	Task     *Task `json:"task,omitempty"`

	// Type переопределяет тип шаблона, если задан.
	Type    string  `json:"type,omitempty"`
	Checker Checker `json:"checker"`

	StudentStartDate  *time.Time `json:"studentStartDate"`
	StudentEndDate    *time.Time `json:"studentEndDate"`
	MentorStartDate   *time.Time `json:"mentorStartDate"`
	MentorEndDate     *time.Time `json:"mentorEndDate"`
	CrossCheckEndDate *time.Time `json:"crossCheckEndDate"`

	CrossCheckStatus CrossCheckStatus `json:"crossCheckStatus"`

	MaxScore    *int     `json:"maxScore"`
	ScoreWeight *float64 `json:"scoreWeight"`
	PairsCount  *int     `json:"pairsCount"`

	TaskOwnerID *int64  `json:"taskOwnerId"`
	TaskOwner   *Person `json:"taskOwner,omitempty"`

	Disabled    bool      `json:"disabled"`
	CreatedDate time.Time `json:"createdDate"`
	UpdatedDate time.Time `json:"updatedDate"`
}

// Name возвращает название шаблона или пустую строку, если шаблон не загружен.
func (ct CourseTask) Name() string {
	if ct.Task == nil {
		return ""
	}
	return ct.Task.Name
}

// DescriptionURL возвращает ссылку на описание из шаблона.
func (ct CourseTask) DescriptionURL() string {
	if ct.Task == nil {
		return ""
	}
	return ct.Task.DescriptionURL
}

// EffectiveType возвращает тип задания: собственный, иначе тип шаблона.
func (ct CourseTask) EffectiveType() string {
	if ct.Type != "" {
		return ct.Type
	}
	if ct.Task != nil {
		return ct.Task.Type
	}
	return ""
}

// HasStudentWindow сообщает, заданы ли обе границы окна сдачи для студентов.
func (ct CourseTask) HasStudentWindow() bool {
	return ct.StudentStartDate != nil && ct.StudentEndDate != nil
}

// CopyTo возвращает копию задания для другого курса: все даты сдвинуты
// на delta (nil остаётся nil), идентификатор и служебные метки времени
// сброшены, статус кросс-проверки возвращён в начальный.
func (ct CourseTask) CopyTo(courseID int64, delta time.Duration) CourseTask {
	cp := ct
	cp.ID = 0
	cp.CourseID = courseID
	cp.CreatedDate = time.Time{}
	cp.UpdatedDate = time.Time{}
	cp.CrossCheckStatus = CrossCheckStatusInitial
	cp.CrossCheckEndDate = timeutil.ShiftPtr(ct.CrossCheckEndDate, delta)
	cp.StudentStartDate = timeutil.ShiftPtr(ct.StudentStartDate, delta)
	cp.StudentEndDate = timeutil.ShiftPtr(ct.StudentEndDate, delta)
	cp.MentorStartDate = timeutil.ShiftPtr(ct.MentorStartDate, delta)
	cp.MentorEndDate = timeutil.ShiftPtr(ct.MentorEndDate, delta)
	return cp
}

// Validate проверяет инварианты задания перед сохранением.
func (ct CourseTask) Validate() error {
	if ct.CourseID <= 0 {
		return shared.ErrInvalidCourseID
	}
	if ct.TaskID <= 0 {
		return shared.NewDomainError("course_task", "Validate", shared.ErrInvalidID, "invalid task ID")
	}
	if ct.Checker != "" && !ct.Checker.IsValid() {
		return shared.ErrInvalidChecker
	}
	if ct.HasStudentWindow() && ct.StudentEndDate.Before(*ct.StudentStartDate) {
		return shared.ErrInvalidTaskWindow
	}
	if ct.MaxScore != nil && *ct.MaxScore < 0 {
		return shared.NewDomainError("course_task", "Validate", shared.ErrNegativeValue, "max score cannot be negative")
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENT TEMPLATE & COURSE EVENT
// ══════════════════════════════════════════════════════════════════════════════

// EventTypeSelfStudy - тип события самостоятельного изучения.
const EventTypeSelfStudy = "self-study"

// DefaultEventDuration применяется, когда длительность события не указана.
const DefaultEventDuration = 60 * time.Minute

// Event - шаблон события (лекция, вебинар, самостоятельное изучение).
type Event struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	DescriptionURL string `json:"descriptionUrl,omitempty"`
}

// CourseEvent - событие, запланированное в курсе на конкретный момент.
type CourseEvent struct {
	ID       int64  `json:"id"`
	CourseID int64  `json:"courseId"`
	EventID  int64  `json:"eventId"`
	Event    *Event `json:"event,omitempty"`

	DateTime time.Time `json:"dateTime"`
	// Date и Time - устаревшие поля отображения, производные от DateTime.
	Date *string `json:"date"`
	Time *string `json:"time"`

	// Duration в минутах.
	Duration *int   `json:"duration"`
	Place    string `json:"place,omitempty"`
	Comment  string `json:"comment,omitempty"`

	OrganizerID *int64  `json:"organizerId"`
	Organizer   *Person `json:"organizer,omitempty"`

	CreatedDate time.Time `json:"createdDate"`
	UpdatedDate time.Time `json:"updatedDate"`
}

// Name возвращает название шаблона события.
func (ce CourseEvent) Name() string {
	if ce.Event == nil {
		return ""
	}
	return ce.Event.Name
}

// Type возвращает тип шаблона события.
func (ce CourseEvent) Type() string {
	if ce.Event == nil {
		return ""
	}
	return ce.Event.Type
}

// DescriptionURL возвращает ссылку на описание из шаблона.
func (ce CourseEvent) DescriptionURL() string {
	if ce.Event == nil {
		return ""
	}
	return ce.Event.DescriptionURL
}

// EffectiveDuration возвращает длительность события, по умолчанию 60 минут.
func (ce CourseEvent) EffectiveDuration() time.Duration {
	if ce.Duration == nil {
		return DefaultEventDuration
	}
	return time.Duration(*ce.Duration) * time.Minute
}

// End возвращает момент окончания события.
func (ce CourseEvent) End() time.Time {
	return ce.DateTime.Add(ce.EffectiveDuration())
}

// CopyTo возвращает копию события для другого курса. DateTime сдвигается
// на delta, а поля отображения Date/Time обнуляются.
func (ce CourseEvent) CopyTo(courseID int64, delta time.Duration) CourseEvent {
	cp := ce
	cp.ID = 0
	cp.CourseID = courseID
	cp.CreatedDate = time.Time{}
	cp.UpdatedDate = time.Time{}
	cp.DateTime = ce.DateTime.Add(delta)
	cp.Date = nil
	cp.Time = nil
	return cp
}
