package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// CourseEventRepository is an in-memory course.CourseEventRepository.
type CourseEventRepository struct {
	mu     sync.RWMutex
	clock  timeutil.Clock
	nextID int64
	events map[int64]course.CourseEvent
}

// NewCourseEventRepository creates an empty repository.
func NewCourseEventRepository(clock timeutil.Clock) *CourseEventRepository {
	return &CourseEventRepository{
		clock:  timeutil.OrSystem(clock),
		events: make(map[int64]course.CourseEvent),
	}
}

// Seed stores an event as-is.
func (r *CourseEventRepository) Seed(ce course.CourseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ce.ID == 0 {
		r.nextID++
		ce.ID = r.nextID
	} else if ce.ID > r.nextID {
		r.nextID = ce.ID
	}
	r.events[ce.ID] = ce
}

// FindByCourse implements course.CourseEventRepository.
func (r *CourseEventRepository) FindByCourse(_ context.Context, courseID int64) ([]course.CourseEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]course.CourseEvent, 0)
	for _, ce := range r.events {
		if ce.CourseID == courseID {
			out = append(out, ce)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create implements course.CourseEventRepository.
func (r *CourseEventRepository) Create(_ context.Context, ce *course.CourseEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.nextID++
	ce.ID = r.nextID
	ce.CreatedDate = now
	ce.UpdatedDate = now
	r.events[ce.ID] = *ce
	return nil
}

var _ course.CourseEventRepository = (*CourseEventRepository)(nil)
