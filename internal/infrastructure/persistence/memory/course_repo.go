// Package memory provides in-process implementations of the course
// repositories. They back the development profile (no DATABASE_URL) and
// serve as fakes in handler tests. All repositories are safe for
// concurrent use and return deep-enough copies so callers cannot mutate
// stored state through returned values.
package memory

import (
	"context"
	"sync"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
)

// CourseRepository is an in-memory course.CourseRepository.
type CourseRepository struct {
	mu      sync.RWMutex
	courses map[int64]course.Course
}

// NewCourseRepository creates an empty repository.
func NewCourseRepository() *CourseRepository {
	return &CourseRepository{courses: make(map[int64]course.Course)}
}

// Add stores or replaces a course.
func (r *CourseRepository) Add(c course.Course) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[c.ID] = c
}

// GetByID implements course.CourseRepository.
func (r *CourseRepository) GetByID(_ context.Context, id int64) (*course.Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return &c, nil
}

var _ course.CourseRepository = (*CourseRepository)(nil)
