package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// StudentRepository is an in-memory course.StudentRepository.
type StudentRepository struct {
	mu       sync.RWMutex
	students map[int64]course.Student
}

// NewStudentRepository creates an empty repository.
func NewStudentRepository() *StudentRepository {
	return &StudentRepository{students: make(map[int64]course.Student)}
}

// Add stores or replaces a student.
func (r *StudentRepository) Add(s course.Student) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.students[s.ID] = s
}

// FindByIDs implements course.StudentRepository.
func (r *StudentRepository) FindByIDs(_ context.Context, ids []int64) ([]course.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]course.Student, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// FindCertifiable implements course.StudentRepository.
func (r *StudentRepository) FindCertifiable(_ context.Context, courseID int64) ([]course.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]course.Student, 0)
	for _, s := range r.students {
		if s.CourseID == courseID && s.Certifiable() {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ course.StudentRepository = (*StudentRepository)(nil)
