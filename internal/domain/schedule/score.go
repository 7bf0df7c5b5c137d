package schedule

import (
	"encoding/json"
	"math"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// FeedbackResume - часть отзыва этапного интервью, содержащая оценку.
// Score равен nil, если поле отсутствует или не является числом.
type FeedbackResume struct {
	Score *float64
}

// ParseFeedbackResume извлекает resume.score из JSON-отзыва.
// Ошибка возвращается только для синтаксически неверного JSON.
func ParseFeedbackResume(raw string) (FeedbackResume, error) {
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return FeedbackResume{}, err
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return FeedbackResume{}, nil
	}
	resume, ok := root["resume"].(map[string]any)
	if !ok {
		return FeedbackResume{}, nil
	}
	score, ok := resume["score"].(float64)
	if !ok {
		return FeedbackResume{}, nil
	}
	return FeedbackResume{Score: &score}, nil
}

// ResolveScore возвращает текущую оценку задания из первого доступного источника:
// прямой результат, затем результат интервью, затем максимум resume.score
// по отзывам первого этапного интервью по этому заданию.
//
// Отзыв без числовой оценки даёт 0, отзыв с неразбираемым JSON пропускается.
// Пустой набор отзывов даёт nil.
func ResolveScore(
	courseTaskID int64,
	taskResults []course.TaskResult,
	interviewResults []course.TaskInterviewResult,
	stageInterviews []course.StageInterview,
) *float64 {
	for _, r := range taskResults {
		if r.CourseTaskID == courseTaskID {
			return finite(r.Score)
		}
	}

	for _, r := range interviewResults {
		if r.CourseTaskID != courseTaskID {
			continue
		}
		if r.Score != nil {
			return finite(*r.Score)
		}
		break
	}

	for _, si := range stageInterviews {
		if si.CourseTaskID != courseTaskID {
			continue
		}
		return maxFeedbackScore(si.Feedbacks)
	}
	return nil
}

func maxFeedbackScore(feedbacks []course.StageInterviewFeedback) *float64 {
	var (
		best  float64
		found bool
	)
	for _, fb := range feedbacks {
		resume, err := ParseFeedbackResume(fb.JSON)
		if err != nil {
			continue
		}
		score := 0.0
		if resume.Score != nil {
			score = *resume.Score
		}
		if !found || score > best {
			best = score
			found = true
		}
	}
	if !found {
		return nil
	}
	return finite(best)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
