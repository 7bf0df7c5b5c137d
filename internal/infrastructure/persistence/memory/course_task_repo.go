package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// CourseTaskRepository is an in-memory course.CourseTaskRepository.
// Templates and owners are resolved from the registered Task and Person sets,
// mirroring the joins the Postgres repository performs.
type CourseTaskRepository struct {
	mu     sync.RWMutex
	clock  timeutil.Clock
	nextID int64
	tasks  map[int64]course.CourseTask
	tmpl   map[int64]course.Task
	people map[int64]course.Person
}

// NewCourseTaskRepository creates an empty repository. A nil clock means
// the system clock.
func NewCourseTaskRepository(clock timeutil.Clock) *CourseTaskRepository {
	return &CourseTaskRepository{
		clock:  timeutil.OrSystem(clock),
		tasks:  make(map[int64]course.CourseTask),
		tmpl:   make(map[int64]course.Task),
		people: make(map[int64]course.Person),
	}
}

// AddTemplate registers a task template.
func (r *CourseTaskRepository) AddTemplate(t course.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tmpl[t.ID] = t
}

// AddPerson registers a user that may own tasks.
func (r *CourseTaskRepository) AddPerson(p course.Person) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.people[p.ID] = p
}

// Seed stores a course task as-is, keeping its ID and timestamps.
func (r *CourseTaskRepository) Seed(ct course.CourseTask) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ct.ID == 0 {
		r.nextID++
		ct.ID = r.nextID
	} else if ct.ID > r.nextID {
		r.nextID = ct.ID
	}
	if ct.Task != nil {
		r.tmpl[ct.TaskID] = *ct.Task
	}
	if ct.TaskOwner != nil && ct.TaskOwnerID != nil {
		r.people[*ct.TaskOwnerID] = *ct.TaskOwner
	}
	r.tasks[ct.ID] = strip(ct)
}

// FindActiveByCourse implements course.CourseTaskRepository.
func (r *CourseTaskRepository) FindActiveByCourse(_ context.Context, courseID int64) ([]course.CourseTask, error) {
	return r.collect(func(ct course.CourseTask) bool {
		return ct.CourseID == courseID && !ct.Disabled
	}), nil
}

// FindAllByCourse implements course.CourseTaskRepository.
func (r *CourseTaskRepository) FindAllByCourse(_ context.Context, courseID int64) ([]course.CourseTask, error) {
	return r.collect(func(ct course.CourseTask) bool {
		return ct.CourseID == courseID
	}), nil
}

// List implements course.CourseTaskRepository.
func (r *CourseTaskRepository) List(_ context.Context, filter course.TaskListFilter) ([]course.CourseTask, error) {
	out := r.collect(func(ct course.CourseTask) bool {
		return ct.CourseID == filter.CourseID && !ct.Disabled && filter.Status.Matches(ct, filter.Now)
	})
	course.SortByStudentDeadline(out)
	return out, nil
}

// FindUpdatedSince implements course.CourseTaskRepository.
func (r *CourseTaskRepository) FindUpdatedSince(_ context.Context, courseID int64, since time.Time) ([]course.CourseTask, error) {
	return r.collect(func(ct course.CourseTask) bool {
		return ct.CourseID == courseID && !ct.UpdatedDate.Before(since)
	}), nil
}

// FindPendingDeadline implements course.CourseTaskRepository.
func (r *CourseTaskRepository) FindPendingDeadline(_ context.Context, courseID int64, now, until time.Time) ([]course.CourseTask, error) {
	out := r.collect(func(ct course.CourseTask) bool {
		if ct.CourseID != courseID || ct.Disabled || !ct.HasStudentWindow() {
			return false
		}
		end := *ct.StudentEndDate
		return !ct.StudentStartDate.After(now) && !end.Before(now) && !end.After(until)
	})
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StudentEndDate.Before(*out[j].StudentEndDate)
	})
	return out, nil
}

// GetByID implements course.CourseTaskRepository.
func (r *CourseTaskRepository) GetByID(_ context.Context, id int64) (*course.CourseTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ct, ok := r.tasks[id]
	if !ok {
		return nil, shared.ErrCourseTaskNotFound
	}
	ct = r.expand(ct)
	return &ct, nil
}

// FindByOwner implements course.CourseTaskRepository.
func (r *CourseTaskRepository) FindByOwner(_ context.Context, githubID string) ([]course.CourseTask, error) {
	return r.collect(func(ct course.CourseTask) bool {
		return ct.Checker == course.CheckerTaskOwner &&
			ct.TaskOwner != nil && ct.TaskOwner.GithubID == githubID
	}), nil
}

// Create implements course.CourseTaskRepository.
func (r *CourseTaskRepository) Create(_ context.Context, ct *course.CourseTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	r.nextID++
	ct.ID = r.nextID
	ct.CreatedDate = now
	ct.UpdatedDate = now
	if ct.CrossCheckStatus == "" {
		ct.CrossCheckStatus = course.CrossCheckStatusInitial
	}
	r.tasks[ct.ID] = strip(*ct)
	return nil
}

// Update implements course.CourseTaskRepository.
func (r *CourseTaskRepository) Update(_ context.Context, ct *course.CourseTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.tasks[ct.ID]
	if !ok {
		return shared.ErrCourseTaskNotFound
	}
	ct.CreatedDate = existing.CreatedDate
	ct.UpdatedDate = r.clock.Now()
	r.tasks[ct.ID] = strip(*ct)
	return nil
}

// Disable implements course.CourseTaskRepository.
func (r *CourseTaskRepository) Disable(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ct, ok := r.tasks[id]
	if !ok {
		return shared.ErrCourseTaskNotFound
	}
	ct.Disabled = true
	ct.UpdatedDate = r.clock.Now()
	r.tasks[id] = ct
	return nil
}

func (r *CourseTaskRepository) collect(keep func(course.CourseTask) bool) []course.CourseTask {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]course.CourseTask, 0)
	for _, ct := range r.tasks {
		ct = r.expand(ct)
		if keep(ct) {
			out = append(out, ct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// expand attaches template and owner. Caller holds the lock.
func (r *CourseTaskRepository) expand(ct course.CourseTask) course.CourseTask {
	if t, ok := r.tmpl[ct.TaskID]; ok {
		ct.Task = &t
	}
	if ct.TaskOwnerID != nil {
		if p, ok := r.people[*ct.TaskOwnerID]; ok {
			ct.TaskOwner = &p
		}
	}
	return ct
}

func strip(ct course.CourseTask) course.CourseTask {
	ct.Task = nil
	ct.TaskOwner = nil
	return ct
}

var _ course.CourseTaskRepository = (*CourseTaskRepository)(nil)
