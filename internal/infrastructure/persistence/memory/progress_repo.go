package memory

import (
	"context"
	"sync"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// ProgressRepository is an in-memory course.StudentProgressRepository.
type ProgressRepository struct {
	mu       sync.RWMutex
	progress map[int64]course.StudentProgress
}

// NewProgressRepository creates an empty repository.
func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{progress: make(map[int64]course.StudentProgress)}
}

// Set replaces everything known about a student's progress.
func (r *ProgressRepository) Set(studentID int64, p course.StudentProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[studentID] = p
}

func (r *ProgressRepository) get(studentID int64) course.StudentProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.progress[studentID]
}

// FindTaskResults implements course.StudentProgressRepository.
func (r *ProgressRepository) FindTaskResults(_ context.Context, studentID int64) ([]course.TaskResult, error) {
	return append([]course.TaskResult(nil), r.get(studentID).TaskResults...), nil
}

// FindInterviewResults implements course.StudentProgressRepository.
func (r *ProgressRepository) FindInterviewResults(_ context.Context, studentID int64) ([]course.TaskInterviewResult, error) {
	return append([]course.TaskInterviewResult(nil), r.get(studentID).InterviewResults...), nil
}

// FindCompletedStageInterviews implements course.StudentProgressRepository.
func (r *ProgressRepository) FindCompletedStageInterviews(_ context.Context, studentID int64) ([]course.StageInterview, error) {
	var out []course.StageInterview
	for _, si := range r.get(studentID).StageInterviews {
		if si.IsCompleted {
			out = append(out, si)
		}
	}
	return out, nil
}

// FindTaskSolutions implements course.StudentProgressRepository.
func (r *ProgressRepository) FindTaskSolutions(_ context.Context, studentID int64) ([]course.TaskSolution, error) {
	return append([]course.TaskSolution(nil), r.get(studentID).Solutions...), nil
}

// FindTaskCheckers implements course.StudentProgressRepository.
func (r *ProgressRepository) FindTaskCheckers(_ context.Context, studentID int64) ([]course.TaskChecker, error) {
	return append([]course.TaskChecker(nil), r.get(studentID).Checkers...), nil
}

var _ course.StudentProgressRepository = (*ProgressRepository)(nil)
