package redis

import (
	"context"
	"fmt"

	"github.com/alem-hub/course-schedule/internal/domain/schedule"
)

// DeadlineNotifier publishes deadline digests to a Redis channel.
type DeadlineNotifier struct {
	cache   *Cache
	channel string
}

// NewDeadlineNotifier creates a notifier. An empty channel means ChannelDeadlines.
func NewDeadlineNotifier(cache *Cache, channel string) *DeadlineNotifier {
	if channel == "" {
		channel = ChannelDeadlines
	}
	return &DeadlineNotifier{cache: cache, channel: channel}
}

// Channel returns the channel digests are published to.
func (n *DeadlineNotifier) Channel() string {
	return n.channel
}

// NotifyDeadlines publishes the digest as JSON.
func (n *DeadlineNotifier) NotifyDeadlines(ctx context.Context, digest schedule.DeadlineDigest) error {
	if err := n.cache.publishJSON(ctx, n.channel, digest); err != nil {
		return fmt.Errorf("publish deadline digest for course %d: %w", digest.CourseID, err)
	}
	return nil
}

var _ schedule.DeadlineNotifier = (*DeadlineNotifier)(nil)
