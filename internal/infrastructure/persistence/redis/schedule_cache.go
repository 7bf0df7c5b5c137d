package redis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// ScheduleCache implements course.ScheduleSourceCache in Redis.
// Misses and Redis failures both read as a miss; failures are logged.
type ScheduleCache struct {
	cache  *Cache
	logger *slog.Logger
}

// NewScheduleCache creates a new ScheduleCache.
func NewScheduleCache(cache *Cache, logger *slog.Logger) *ScheduleCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleCache{
		cache:  cache,
		logger: logger.With("component", "schedule_cache"),
	}
}

// GetTasks returns cached course tasks.
func (s *ScheduleCache) GetTasks(ctx context.Context, courseID int64) ([]course.CourseTask, bool) {
	var tasks []course.CourseTask
	if !s.get(ctx, ScheduleTasksKey(courseID), &tasks) {
		return nil, false
	}
	return tasks, true
}

// SetTasks caches course tasks for ttl.
func (s *ScheduleCache) SetTasks(ctx context.Context, courseID int64, tasks []course.CourseTask, ttl time.Duration) {
	s.set(ctx, ScheduleTasksKey(courseID), tasks, ttl)
}

// GetEvents returns cached course events.
func (s *ScheduleCache) GetEvents(ctx context.Context, courseID int64) ([]course.CourseEvent, bool) {
	var events []course.CourseEvent
	if !s.get(ctx, ScheduleEventsKey(courseID), &events) {
		return nil, false
	}
	return events, true
}

// SetEvents caches course events for ttl.
func (s *ScheduleCache) SetEvents(ctx context.Context, courseID int64, events []course.CourseEvent, ttl time.Duration) {
	s.set(ctx, ScheduleEventsKey(courseID), events, ttl)
}

// Invalidate removes every cached source of the course.
func (s *ScheduleCache) Invalidate(ctx context.Context, courseID int64) error {
	return s.cache.del(ctx, ScheduleTasksKey(courseID), ScheduleEventsKey(courseID))
}

func (s *ScheduleCache) get(ctx context.Context, key string, dest any) bool {
	err := s.cache.getJSON(ctx, key, dest)
	if err == nil {
		return true
	}
	if !errors.Is(err, ErrMiss) {
		s.logger.WarnContext(ctx, "schedule cache read failed", "key", key, "error", err)
	}
	return false
}

func (s *ScheduleCache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if ttl <= 0 {
		ttl = TTLScheduleSources
	}
	if err := s.cache.setJSON(ctx, key, value, ttl); err != nil {
		s.logger.WarnContext(ctx, "schedule cache write failed", "key", key, "error", err)
	}
}

var _ course.ScheduleSourceCache = (*ScheduleCache)(nil)
