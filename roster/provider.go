/*
provider.go - The hours-fetching capability

PURPOSE:
  One polymorphic capability with two variants, selected by configuration:

  Windowed:  the source returns raw session history; the provider applies
             OverlapHours against the caller's window. Pilot hours come from
             flight sessions, other hours from controlling sessions.

  Snapshot:  the source returns one lifetime cumulative record; the window
             argument is ignored and the CALLER diffs against its stored
             baseline to get a windowed figure.

  The window-engine logic is variant-agnostic: it hands a window to the
  provider and diffs the result against the stored baseline either way.

FAILURE CONTRACT:
  A failed or non-success fetch returns an error wrapping
  ErrHoursUnavailable. Implementations must never substitute zero.
*/
package roster

import (
	"context"

	"github.com/shopspring/decimal"
)

// Strategy selects which hours-fetch variant a provider implements.
type Strategy string

const (
	// StrategyWindowed aggregates raw session history over a window.
	StrategyWindowed Strategy = "windowed"
	// StrategySnapshot fetches one cumulative lifetime record.
	StrategySnapshot Strategy = "snapshot"
)

// Valid reports whether s names a known strategy.
func (s Strategy) Valid() bool {
	return s == StrategyWindowed || s == StrategySnapshot
}

// HoursResult is a successful fetch: pilot hours plus the aggregate of all
// non-pilot (controller/instructor/admin) hours.
type HoursResult struct {
	Pilot decimal.Decimal
	Other decimal.Decimal
}

// HoursProvider fetches a member's accrued hours from the external source.
//
// Under the windowed strategy the result covers exactly w. Under the
// snapshot strategy w is ignored and the result is a lifetime total.
// Implementations own request pacing: a call may block to honor the
// external quota.
type HoursProvider interface {
	Hours(ctx context.Context, cid CID, w Window) (HoursResult, error)

	// Strategy reports which variant this provider implements, so callers
	// know whether results are window-scoped or lifetime totals.
	Strategy() Strategy
}
