// Package circuitbreaker stops calling a collaborator that keeps failing and
// lets a single probe through once a cool-down has passed.
package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/alem-hub/course-schedule/pkg/timeutil"
)

// ErrOpen is returned without calling the protected function.
var ErrOpen = errors.New("circuit breaker is open")

// State of a Breaker.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Settings configure a Breaker.
type Settings struct {
	Name string

	// MaxFailures is the number of consecutive counted failures that opens
	// the breaker.
	MaxFailures int

	// CoolDown is how long the breaker stays open before a probe.
	CoolDown time.Duration

	// Counts decides whether an error is a failure of the collaborator.
	// Nil counts every error.
	Counts func(error) bool

	OnStateChange func(name string, from, to State)

	Clock timeutil.Clock
}

// Breaker guards calls to a single collaborator.
type Breaker struct {
	settings Settings
	clock    timeutil.Clock

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
}

// New returns a closed breaker.
func New(s Settings) *Breaker {
	if s.MaxFailures < 1 {
		s.MaxFailures = 1
	}
	return &Breaker{settings: s, clock: timeutil.OrSystem(s.Clock)}
}

// Name returns Settings.Name.
func (b *Breaker) Name() string { return b.settings.Name }

// State returns the current state, moving an expired open breaker to
// half-open.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.expire()
	return b.state
}

// Do runs fn unless the breaker is open. In half-open state only one call
// runs at a time; the rest get ErrOpen.
func (b *Breaker) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.admit(); err != nil {
		return err
	}
	err := fn(ctx)
	b.record(err)
	return err
}

func (b *Breaker) admit() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.expire()
	switch b.state {
	case Open:
		return ErrOpen
	case HalfOpen:
		if b.probing {
			return ErrOpen
		}
		b.probing = true
	}
	return nil
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := err != nil && (b.settings.Counts == nil || b.settings.Counts(err))

	if b.state == HalfOpen {
		b.probing = false
		if failed {
			b.trip()
		} else {
			b.failures = 0
			b.setState(Closed)
		}
		return
	}

	if !failed {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.settings.MaxFailures {
		b.trip()
	}
}

func (b *Breaker) trip() {
	b.openedAt = b.clock.Now()
	b.setState(Open)
}

func (b *Breaker) expire() {
	if b.state == Open && !b.clock.Now().Before(b.openedAt.Add(b.settings.CoolDown)) {
		b.setState(HalfOpen)
	}
}

func (b *Breaker) setState(to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	if to == Closed {
		b.failures = 0
	}
	if b.settings.OnStateChange != nil {
		b.settings.OnStateChange(b.settings.Name, from, to)
	}
}

// CertificateAPI guards the certificate service. Errors rejected by counts
// (for example 4xx responses) do not move the breaker.
func CertificateAPI(counts func(error) bool, onStateChange func(name string, from, to State)) *Breaker {
	return New(Settings{
		Name:          "certificate-api",
		MaxFailures:   5,
		CoolDown:      30 * time.Second,
		Counts:        counts,
		OnStateChange: onStateChange,
	})
}
