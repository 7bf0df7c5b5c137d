package memory

import (
	"context"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/alem-hub/course-schedule/internal/domain/course"
)

// ScheduleCache is an in-process course.ScheduleSourceCache backed by go-cache.
type ScheduleCache struct {
	cache *cache.Cache
}

// NewScheduleCache creates a cache with the given default TTL and janitor interval.
func NewScheduleCache(defaultExpiration, cleanupInterval time.Duration) *ScheduleCache {
	return &ScheduleCache{cache: cache.New(defaultExpiration, cleanupInterval)}
}

func tasksKey(courseID int64) string  { return "tasks:" + strconv.FormatInt(courseID, 10) }
func eventsKey(courseID int64) string { return "events:" + strconv.FormatInt(courseID, 10) }

// GetTasks implements course.ScheduleSourceCache.
func (c *ScheduleCache) GetTasks(_ context.Context, courseID int64) ([]course.CourseTask, bool) {
	v, ok := c.cache.Get(tasksKey(courseID))
	if !ok {
		return nil, false
	}
	tasks, ok := v.([]course.CourseTask)
	if !ok {
		return nil, false
	}
	return append([]course.CourseTask(nil), tasks...), true
}

// SetTasks implements course.ScheduleSourceCache.
func (c *ScheduleCache) SetTasks(_ context.Context, courseID int64, tasks []course.CourseTask, ttl time.Duration) {
	c.cache.Set(tasksKey(courseID), append([]course.CourseTask(nil), tasks...), ttl)
}

// GetEvents implements course.ScheduleSourceCache.
func (c *ScheduleCache) GetEvents(_ context.Context, courseID int64) ([]course.CourseEvent, bool) {
	v, ok := c.cache.Get(eventsKey(courseID))
	if !ok {
		return nil, false
	}
	events, ok := v.([]course.CourseEvent)
	if !ok {
		return nil, false
	}
	return append([]course.CourseEvent(nil), events...), true
}

// SetEvents implements course.ScheduleSourceCache.
func (c *ScheduleCache) SetEvents(_ context.Context, courseID int64, events []course.CourseEvent, ttl time.Duration) {
	c.cache.Set(eventsKey(courseID), append([]course.CourseEvent(nil), events...), ttl)
}

// Invalidate implements course.ScheduleSourceCache.
func (c *ScheduleCache) Invalidate(_ context.Context, courseID int64) error {
	c.cache.Delete(tasksKey(courseID))
	c.cache.Delete(eventsKey(courseID))
	return nil
}

// Flush drops every entry.
func (c *ScheduleCache) Flush() {
	c.cache.Flush()
}

var _ course.ScheduleSourceCache = (*ScheduleCache)(nil)
