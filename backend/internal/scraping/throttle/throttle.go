// Package throttle spaces out requests to the origin site.
package throttle

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter blocks until the next request may go out. *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Delay sleeps a fixed duration before every request. It keeps no state, so
// it only throttles a single sequential caller.
type Delay time.Duration

func (d Delay) Wait(ctx context.Context) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(d))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// NewShared returns a token limiter allowing one request per interval. One
// instance must be shared by every caller that hits the same origin.
func NewShared(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

type noop struct{}

func (noop) Wait(ctx context.Context) error { return ctx.Err() }

// Noop never waits. Used by tests.
var Noop Limiter = noop{}
