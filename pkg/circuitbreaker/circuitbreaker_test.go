package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

var errDown = errors.New("down")

func fail(context.Context) error { return errDown }
func ok(context.Context) error   { return nil }

func newBreaker(clock timeutil.Clock, transitions *[]string) *Breaker {
	return New(Settings{
		Name:        "test",
		MaxFailures: 2,
		CoolDown:    time.Minute,
		Clock:       clock,
		OnStateChange: func(_ string, from, to State) {
			*transitions = append(*transitions, from.String()+"->"+to.String())
		},
	})
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	b := newBreaker(timeutil.NewFixedClock(time.Unix(0, 0)), &transitions)
	ctx := context.Background()

	assert.ErrorIs(t, b.Do(ctx, fail), errDown)
	assert.NoError(t, b.Do(ctx, ok))
	assert.ErrorIs(t, b.Do(ctx, fail), errDown)
	assert.Equal(t, Closed, b.State())

	assert.ErrorIs(t, b.Do(ctx, fail), errDown)
	assert.Equal(t, Open, b.State())

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreaker_ProbeAfterCoolDown(t *testing.T) {
	var transitions []string
	clock := timeutil.NewFixedClock(time.Unix(0, 0))
	b := newBreaker(clock, &transitions)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	_ = b.Do(ctx, fail)
	clock.Advance(time.Minute)
	assert.Equal(t, HalfOpen, b.State())

	assert.ErrorIs(t, b.Do(ctx, fail), errDown)
	assert.Equal(t, Open, b.State())

	clock.Advance(time.Minute)
	assert.NoError(t, b.Do(ctx, ok))
	assert.Equal(t, Closed, b.State())

	assert.Equal(t, []string{
		"closed->open", "open->half-open", "half-open->open",
		"open->half-open", "half-open->closed",
	}, transitions)
}

func TestBreaker_SingleProbeInHalfOpen(t *testing.T) {
	var transitions []string
	clock := timeutil.NewFixedClock(time.Unix(0, 0))
	b := newBreaker(clock, &transitions)
	ctx := context.Background()

	_ = b.Do(ctx, fail)
	_ = b.Do(ctx, fail)
	clock.Advance(2 * time.Minute)

	err := b.Do(ctx, func(ctx context.Context) error {
		return b.Do(ctx, ok)
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestBreaker_CountsFilter(t *testing.T) {
	errRejected := errors.New("rejected")
	b := CertificateAPI(func(err error) bool { return !errors.Is(err, errRejected) }, nil)
	assert.Equal(t, "certificate-api", b.Name())

	for i := 0; i < 10; i++ {
		_ = b.Do(context.Background(), func(context.Context) error { return errRejected })
	}
	assert.Equal(t, Closed, b.State())
}
