package course

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT PROGRESS SOURCES
// ══════════════════════════════════════════════════════════════════════════════

// TaskResult - оценка студента за задание курса.
type TaskResult struct {
	ID           int64   `json:"id"`
	StudentID    int64   `json:"studentId"`
	CourseTaskID int64   `json:"courseTaskId"`
	Score        float64 `json:"score"`
}

// TaskInterviewResult - результат технического интервью по заданию.
// Score может отсутствовать, пока интервьюер не выставил оценку.
type TaskInterviewResult struct {
	ID           int64    `json:"id"`
	StudentID    int64    `json:"studentId"`
	CourseTaskID int64    `json:"courseTaskId"`
	Score        *float64 `json:"score"`
}

// StageInterview - завершённое этапное интервью со списком отзывов.
type StageInterview struct {
	ID           int64                    `json:"id"`
	StudentID    int64                    `json:"studentId"`
	CourseTaskID int64                    `json:"courseTaskId"`
	IsCompleted  bool                     `json:"isCompleted"`
	Feedbacks    []StageInterviewFeedback `json:"feedbacks"`
}

// StageInterviewFeedback хранит отзыв интервьюера как JSON-документ.
// Оценка лежит в поле resume.score.
type StageInterviewFeedback struct {
	ID               int64  `json:"id"`
	StageInterviewID int64  `json:"stageInterviewId"`
	JSON             string `json:"json"`
}

// TaskSolution - факт отправки решения студентом.
type TaskSolution struct {
	ID           int64  `json:"id"`
	StudentID    int64  `json:"studentId"`
	CourseTaskID int64  `json:"courseTaskId"`
	URL          string `json:"url"`
}

// TaskChecker - назначение проверяющего на решение студента.
type TaskChecker struct {
	ID           int64 `json:"id"`
	StudentID    int64 `json:"studentId"`
	CourseTaskID int64 `json:"courseTaskId"`
	MentorID     int64 `json:"mentorId"`
}

// StudentProgress - всё, что известно о прогрессе одного студента.
// Загружается одним пакетом перед построением расписания.
type StudentProgress struct {
	TaskResults      []TaskResult
	InterviewResults []TaskInterviewResult
	StageInterviews  []StageInterview
	Solutions        []TaskSolution
	Checkers         []TaskChecker
}

// Submitted сообщает, отправил ли студент решение или ему назначен проверяющий.
func (p *StudentProgress) Submitted(courseTaskID int64) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Solutions {
		if s.CourseTaskID == courseTaskID {
			return true
		}
	}
	for _, c := range p.Checkers {
		if c.CourseTaskID == courseTaskID {
			return true
		}
	}
	return false
}
