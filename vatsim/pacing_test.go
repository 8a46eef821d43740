package vatsim

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pacerClock drives a Pacer without real sleeping.
type pacerClock struct {
	now    time.Time
	slept  []time.Duration
	cancel bool
}

func newTestPacer(interval time.Duration) (*Pacer, *pacerClock) {
	clock := &pacerClock{now: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)}
	p := NewPacer(interval)
	p.now = func() time.Time { return clock.now }
	p.sleep = func(ctx context.Context, d time.Duration) error {
		clock.slept = append(clock.slept, d)
		clock.now = clock.now.Add(d)
		if clock.cancel {
			return context.Canceled
		}
		return nil
	}
	return p, clock
}

func TestPacer_FirstCallDoesNotWait(t *testing.T) {
	p, clock := newTestPacer(7 * time.Second)
	require.NoError(t, p.Wait(context.Background()))
	assert.Empty(t, clock.slept)
}

func TestPacer_EnforcesMinimumInterval(t *testing.T) {
	// GIVEN: a release just happened
	// WHEN:  the next request arrives 2s later
	// THEN:  it blocks for the remaining 5s
	p, clock := newTestPacer(7 * time.Second)
	require.NoError(t, p.Wait(context.Background()))

	clock.now = clock.now.Add(2 * time.Second)
	require.NoError(t, p.Wait(context.Background()))
	require.Len(t, clock.slept, 1)
	assert.Equal(t, 5*time.Second, clock.slept[0])
}

func TestPacer_NoWaitAfterIntervalElapsed(t *testing.T) {
	p, clock := newTestPacer(7 * time.Second)
	require.NoError(t, p.Wait(context.Background()))

	clock.now = clock.now.Add(10 * time.Second)
	require.NoError(t, p.Wait(context.Background()))
	assert.Empty(t, clock.slept)
}

func TestPacer_WaitAppliesAfterFailuresToo(t *testing.T) {
	// The gate records the release, not the outcome: back-to-back calls
	// each pay the full interval even if earlier requests failed.
	p, clock := newTestPacer(7 * time.Second)
	require.NoError(t, p.Wait(context.Background()))
	require.NoError(t, p.Wait(context.Background()))
	require.NoError(t, p.Wait(context.Background()))
	require.Len(t, clock.slept, 2)
	assert.Equal(t, 7*time.Second, clock.slept[0])
	assert.Equal(t, 7*time.Second, clock.slept[1])
}

func TestPacer_Cancellation(t *testing.T) {
	p, clock := newTestPacer(7 * time.Second)
	require.NoError(t, p.Wait(context.Background()))

	clock.cancel = true
	err := p.Wait(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
}
