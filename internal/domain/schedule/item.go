// Package schedule строит единую ленту расписания курса из заданий и событий.
//
// Все функции пакета чистые: текущее время передаётся параметром,
// прогресс студента загружается заранее слоем приложения.
package schedule

import (
	"sort"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// Status - вычисленное состояние элемента расписания.
type Status string

const (
	StatusDone      Status = "done"
	StatusAvailable Status = "available"
	StatusArchived  Status = "archived"
	StatusFuture    Status = "future"
	StatusMissed    Status = "missed"
	StatusReview    Status = "review"
)

// Tag - категория элемента расписания.
type Tag string

const (
	TagLecture    Tag = "lecture"
	TagCoding     Tag = "coding"
	TagSelfStudy  Tag = "self-study"
	TagInterview  Tag = "interview"
	TagCrossCheck Tag = "cross-check"
	TagTest       Tag = "test"
)

// Source указывает, из какой сущности построен элемент.
type Source string

const (
	SourceCourseTask  Source = "courseTask"
	SourceCourseEvent Source = "courseEvent"
)

// Organizer - краткое представление владельца задания или организатора события.
type Organizer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	GithubID string `json:"githubId"`
}

// Item - элемент расписания. Строится заново на каждый запрос и не хранится.
type Item struct {
	ID             int64      `json:"id"`
	CourseID       int64      `json:"courseId"`
	Source         Source     `json:"source"`
	Name           string     `json:"name"`
	StartDate      *time.Time `json:"startDate"`
	EndDate        *time.Time `json:"endDate"`
	MaxScore       *int       `json:"maxScore,omitempty"`
	ScoreWeight    *float64   `json:"scoreWeight,omitempty"`
	Score          *float64   `json:"score"`
	Status         Status     `json:"status"`
	Tag            Tag        `json:"tag"`
	DescriptionURL string     `json:"descriptionUrl,omitempty"`
	Organizer      *Organizer `json:"organizer"`
}

// StudentTaskState - то, что известно о задании со стороны студента.
// Отсутствие состояния (nil) означает просмотр расписания сотрудником курса.
type StudentTaskState struct {
	Score     *float64
	Submitted bool
}

// NewTaskItem строит элемент расписания по заданию курса.
// progress == nil означает расписание без привязки к студенту.
func NewTaskItem(ct course.CourseTask, now time.Time, progress *course.StudentProgress) Item {
	var state *StudentTaskState
	if progress != nil {
		state = &StudentTaskState{
			Score:     ResolveScore(ct.ID, progress.TaskResults, progress.InterviewResults, progress.StageInterviews),
			Submitted: progress.Submitted(ct.ID),
		}
	}

	item := Item{
		ID:             ct.ID,
		CourseID:       ct.CourseID,
		Source:         SourceCourseTask,
		Name:           ct.Name(),
		StartDate:      ct.StudentStartDate,
		EndDate:        ct.StudentEndDate,
		MaxScore:       ct.MaxScore,
		ScoreWeight:    ct.ScoreWeight,
		Status:         CourseTaskStatus(ct, now, state),
		Tag:            CourseTaskTag(ct),
		DescriptionURL: ct.DescriptionURL(),
		Organizer:      newOrganizer(ct.TaskOwner),
	}
	if state != nil {
		item.Score = state.Score
	}
	return item
}

// NewEventItem строит элемент расписания по событию курса.
// Событие - момент времени: начало и конец элемента совпадают с DateTime.
func NewEventItem(ce course.CourseEvent, now time.Time) Item {
	at := ce.DateTime
	return Item{
		ID:             ce.ID,
		CourseID:       ce.CourseID,
		Source:         SourceCourseEvent,
		Name:           ce.Name(),
		StartDate:      &at,
		EndDate:        &at,
		Status:         CourseEventStatus(ce, now),
		Tag:            CourseEventTag(ce),
		DescriptionURL: ce.DescriptionURL(),
		Organizer:      newOrganizer(ce.Organizer),
	}
}

// Build объединяет задания и события в одну ленту, отсортированную по началу.
func Build(tasks []course.CourseTask, events []course.CourseEvent, now time.Time, progress *course.StudentProgress) []Item {
	items := make([]Item, 0, len(tasks)+len(events))
	for _, ct := range tasks {
		items = append(items, NewTaskItem(ct, now, progress))
	}
	for _, ce := range events {
		items = append(items, NewEventItem(ce, now))
	}
	SortByStart(items)
	return items
}

// SortByStart стабильно сортирует элементы по началу. Элементы без даты
// начала идут первыми, порядок равных сохраняется.
func SortByStart(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return startOf(items[i]).Before(startOf(items[j]))
	})
}

func startOf(item Item) time.Time {
	if item.StartDate == nil {
		return time.Time{}
	}
	return *item.StartDate
}

func newOrganizer(p *course.Person) *Organizer {
	if p == nil {
		return nil
	}
	return &Organizer{ID: p.ID, Name: p.FullName(), GithubID: p.GithubID}
}
