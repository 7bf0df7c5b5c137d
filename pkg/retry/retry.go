// Package retry re-runs calls to flaky collaborators with capped exponential
// backoff. Errors are opted in with Retryable (or every error with
// Policy.RetryAll) and opted out with Permanent.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MARKERS
// ══════════════════════════════════════════════════════════════════════════════

type marked struct {
	err   error
	retry bool
}

func (m *marked) Error() string { return m.err.Error() }
func (m *marked) Unwrap() error { return m.err }

// Retryable marks err as worth another attempt.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &marked{err: err, retry: true}
}

// Permanent marks err as final even under Policy.RetryAll.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &marked{err: err}
}

// IsRetryable reports whether err carries a Retryable mark.
func IsRetryable(err error) bool {
	var m *marked
	return errors.As(err, &m) && m.retry
}

// IsPermanent reports whether err carries a Permanent mark.
func IsPermanent(err error) bool {
	var m *marked
	return errors.As(err, &m) && !m.retry
}

// strip removes a top-level mark so callers see the original error.
func strip(err error) error {
	if m, ok := err.(*marked); ok {
		return m.err
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// POLICY
// ══════════════════════════════════════════════════════════════════════════════

// Policy describes how often and how patiently a call is repeated.
type Policy struct {
	// Attempts includes the first call. Values below 1 mean one attempt.
	Attempts int

	// BaseDelay is the wait before the second attempt; it doubles after
	// every retry up to MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Jitter spreads each wait by ±Jitter of its value (0 to 1).
	Jitter float64

	// RetryAll retries every error that is not Permanent.
	RetryAll bool

	OnRetry func(attempt int, err error, wait time.Duration)
}

// Backoff returns the wait after the given failed attempt, without jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	wait := p.BaseDelay
	for i := 1; i < attempt; i++ {
		wait *= 2
		if p.MaxDelay > 0 && wait >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && wait > p.MaxDelay {
		return p.MaxDelay
	}
	return wait
}

func (p Policy) wait(attempt int) time.Duration {
	d := p.Backoff(attempt)
	if p.Jitter > 0 && d > 0 {
		d += time.Duration(float64(d) * p.Jitter * (rand.Float64()*2 - 1))
	}
	if d < 0 {
		return 0
	}
	return d
}

func (p Policy) shouldRetry(err error) bool {
	if IsPermanent(err) {
		return false
	}
	return p.RetryAll || IsRetryable(err)
}

// Do calls fn until it succeeds, returns a non-retryable error, runs out of
// attempts or ctx is done. The last error is returned without its mark.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := max(p.Attempts, 1)

	var lastErr error
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return strip(lastErr)
			}
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt >= attempts || !p.shouldRetry(err) {
			return strip(err)
		}

		wait := p.wait(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return strip(lastErr)
		case <-timer.C:
		}
	}
}

// Value is Do for calls that produce a result.
func Value[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESETS
// ══════════════════════════════════════════════════════════════════════════════

// CertificateAPI retries only errors the certificate client marks as
// Retryable (transport failures and 5xx responses).
func CertificateAPI(onRetry func(attempt int, err error, wait time.Duration)) Policy {
	return Policy{
		Attempts:  3,
		BaseDelay: 300 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Jitter:    0.2,
		OnRetry:   onRetry,
	}
}

// DatabaseConnect retries every error while the database comes up.
func DatabaseConnect(onRetry func(attempt int, err error, wait time.Duration)) Policy {
	return Policy{
		Attempts:  5,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  5 * time.Second,
		Jitter:    0.1,
		RetryAll:  true,
		OnRetry:   onRetry,
	}
}
