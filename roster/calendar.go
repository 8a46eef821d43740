/*
calendar.go - First-of-month arithmetic and join-date parsing

PURPOSE:
  All date math for the activity window lives here. The engine only ever
  deals in "first of month" anchors, so every function either lands on or
  reasons about day 1 of some month, in UTC.

KEY FUNCTIONS:
  FirstOfMonth:         clamp a timestamp to day 1 of its month
  FirstOfNextMonth:     clamp, add 32 days, clamp again
  MonthsAgoFirstOfMonth: subtract N months with explicit year rollover
  ParseJoinDate:        accepts the three join-date formats the feed emits

WHY CLAMP-ADD-CLAMP?
  Clamping to day 1 before adding 32 days removes any sensitivity to month
  length (28-31 days): day 1 plus 32 days always lands in the following
  month, including December -> January with the year incremented.

SEE ALSO:
  - activity.go: uses these anchors to drive the window state machine
*/
package roster

import (
	"fmt"
	"time"
)

// DateLayout is the persisted form of check_start_date columns.
const DateLayout = "2006-01-02"

// FirstOfMonth returns midnight UTC on day 1 of t's month.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FirstOfNextMonth returns midnight UTC on day 1 of the month after t's.
// Works for every month length and rolls December into January.
func FirstOfNextMonth(t time.Time) time.Time {
	return FirstOfMonth(FirstOfMonth(t).AddDate(0, 0, 32))
}

// MonthsAgoFirstOfMonth returns midnight UTC on day 1 of the month n months
// before t's, decrementing the year when the subtraction crosses January.
// MonthsAgoFirstOfMonth(2024-03-10, 3) is 2023-12-01.
func MonthsAgoFirstOfMonth(t time.Time, n int) time.Time {
	year := t.Year()
	month := int(t.Month()) - n
	for month <= 0 {
		month += 12
		year--
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfPreviousMonth returns the last instant (second granularity) before
// day 1 of t's month. This is the closing edge of an activity window.
func EndOfPreviousMonth(t time.Time) time.Time {
	return FirstOfMonth(t).Add(-time.Second)
}

// joinDateLayouts are the formats the roster feed has been observed to emit,
// in priority order. The day-first form is what the deployed feed writes.
var joinDateLayouts = []string{
	"02/01/2006 15:04:05",
	time.RFC3339,
	DateLayout,
}

// ParseJoinDate parses a roster join date. A date that matches none of the
// known feed formats is a data-shape error for that record: the caller
// reports it per CID and skips the record, it is never defaulted.
func ParseJoinDate(s string) (time.Time, error) {
	for _, layout := range joinDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedJoinDate, s)
}
