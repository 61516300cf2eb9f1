// Package throttle enforces a minimum delay between the starts of
// consecutive completion calls.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"codeberg.org/snonux/lughat/internal/logging"
	"codeberg.org/snonux/lughat/internal/metrics"
)

// DefaultMinInterval is the minimum gap between two completion calls
const DefaultMinInterval = 2 * time.Second

// RateLimiter gates completion calls. One instance is shared by everything
// in the process that talks to the completion service.
//
// The underlying limiter has burst 1, so the first call passes immediately
// and every later call is scheduled MinInterval after the previous slot.
// Slots are reserved before waiting, which makes concurrent callers queue
// up in reservation order.
type RateLimiter struct {
	limiter  *rate.Limiter
	interval time.Duration
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	metrics  *metrics.Recorder
}

// Option configures a RateLimiter
type Option func(*RateLimiter)

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(l *RateLimiter) { l.now = now }
}

// WithSleep replaces the timer-based wait, for tests
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *RateLimiter) { l.sleep = sleep }
}

// WithMetrics records wait durations
func WithMetrics(m *metrics.Recorder) Option {
	return func(l *RateLimiter) { l.metrics = m }
}

// New creates a RateLimiter; a non-positive interval means DefaultMinInterval
func New(interval time.Duration, opts ...Option) *RateLimiter {
	if interval <= 0 {
		interval = DefaultMinInterval
	}

	l := &RateLimiter{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Interval returns the configured minimum gap
func (l *RateLimiter) Interval() time.Duration {
	return l.interval
}

// Acquire blocks until the caller may start a completion call. If ctx is
// done while waiting, the reserved slot is released and ctx.Err() returned.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := l.now()
	reservation := l.limiter.ReserveN(now, 1)
	delay := reservation.DelayFrom(now)

	if delay > 0 {
		logging.NewLogger(ctx).Debugf("throttle: waiting %s before next completion call", delay)
		if err := l.sleep(ctx, delay); err != nil {
			reservation.CancelAt(l.now())
			return err
		}
	}

	l.metrics.ObserveThrottleWait(delay)
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
