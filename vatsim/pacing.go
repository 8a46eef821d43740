/*
pacing.go - Blocking minimum-interval gate for external requests

PURPOSE:
  The network API allows 10 requests per minute. Every outbound request,
  for any member and for either of the two role-specific endpoints, passes
  through one shared Pacer that blocks until the configured minimum interval
  has elapsed since the previous request was released.

  This is a correctness requirement, not an optimization: exceeding the
  quota makes the source reject requests. The wait applies uniformly whether
  the previous call succeeded or failed.
*/
package vatsim

import (
	"context"
	"sync"
	"time"
)

// DefaultPaceInterval keeps the client under the documented 10 req/min
// quota with margin.
const DefaultPaceInterval = 7 * time.Second

// Pacer releases at most one request per interval. Safe for concurrent use,
// though the engine issues requests sequentially anyway.
type Pacer struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	// now/sleep are injectable for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{
		interval: interval,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until the minimum interval since the last release has passed,
// then records this release. Returns early only on context cancellation.
// The first call never waits.
func (p *Pacer) Wait(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.last.IsZero() {
		if wait := p.interval - p.now().Sub(p.last); wait > 0 {
			if err := p.sleep(ctx, wait); err != nil {
				return err
			}
		}
	}
	p.last = p.now()
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
