/*
overlap.go - Session/window overlap accounting

PURPOSE:
  Sums how much of a set of sessions falls inside a query window. This is
  the arithmetic core of windowed hour accounting: a session fully inside
  the window counts fully, fully outside counts zero, and a straddling
  session counts only its intersected portion.

PRECISION:
  Seconds accumulate exactly (int64 from time.Sub); conversion to decimal
  hours happens once at the end. Rounding to two decimal places is NOT done
  here - it belongs to the reporting boundary, so rounding error never
  compounds across sessions.
*/
package roster

import (
	"time"

	"github.com/shopspring/decimal"
)

// Window is a closed query interval [Start, End].
type Window struct {
	Start time.Time
	End   time.Time
}

// AllTime is the window used to gap-fill a member's lifetime hours under
// the windowed strategy. Matches the deployed system's fetch range.
func AllTime() Window {
	return Window{
		Start: time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2100, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Contains reports whether t lies in [Start, End].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// OverlapHours returns the total duration, in decimal hours, that sessions
// overlap the window. Sessions disjoint from the window contribute zero;
// zero-value (malformed) endpoints are skipped, not errors.
func OverlapHours(w Window, sessions []Session) decimal.Decimal {
	var totalSeconds int64
	for _, s := range sessions {
		if s.Start.IsZero() || s.End.IsZero() {
			continue
		}
		if s.End.Before(w.Start) || s.Start.After(w.End) {
			continue
		}
		start := s.Start
		if start.Before(w.Start) {
			start = w.Start
		}
		end := s.End
		if end.After(w.End) {
			end = w.End
		}
		totalSeconds += int64(end.Sub(start) / time.Second)
	}
	return HoursFromSeconds(decimal.NewFromInt(totalSeconds))
}
