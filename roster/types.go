/*
Package roster is the core engine for the P1 waitlist roster.

PURPOSE:
  This package contains the algorithmic heart of the system: reconciling an
  authoritative member roster against persisted state, accounting accrued
  activity hours from raw session data, and advancing each member's rolling
  three-month activity window.

KEY CONCEPTS IN THIS FILE (types.go):
  - Member: A persisted waitlist row, keyed by CID
  - RosterEntry: One line of the authoritative roster snapshot
  - Session: A raw (start, end) connection record from the network
  - Hours: Nullable decimal hour totals (null = not yet computed)

DESIGN PRINCIPLES:
  1. Precision: hour totals use decimal.Decimal, never float arithmetic
  2. Null is meaningful: a nil hour total means "not yet computed" and is
     skipped by every policy check, never coerced to zero
  3. One writer: only the orchestrator's current stage mutates the store

SEE ALSO:
  - calendar.go: first-of-month math and join-date parsing
  - overlap.go: session/window overlap accounting
  - activity.go: the rolling-window state machine
*/
package roster

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// CID is the unique member identifier on the network.
// Always normalized (trimmed) before comparison; see NormalizeCID.
type CID string

// NormalizeCID trims surrounding whitespace. Every CID comparison in this
// package goes through this first; the roster feed and the database must
// never be diffed on raw strings.
func NormalizeCID(s string) CID {
	return CID(strings.TrimSpace(s))
}

// =============================================================================
// MEMBER - Persisted waitlist row
// =============================================================================

// Member is a persisted waitlist record.
//
// ListJoinDate is kept as the raw feed string; it is parsed only when the
// check-start date is initialized, so a malformed date is reported per CID
// at that point instead of corrupting the row on ingest.
//
// PilotHours and ATCHours are nil until first computed. CheckStart is nil
// until initialized; once set it is always the first day of a month and only
// ever advances.
type Member struct {
	CID          CID
	ListJoinDate string
	PilotHours   *decimal.Decimal
	ATCHours     *decimal.Decimal
	CheckStart   *time.Time
}

// HoursKnown reports whether both hour totals have been computed.
// Members with unknown hours are excluded from compliance and activity
// evaluation entirely.
func (m Member) HoursKnown() bool {
	return m.PilotHours != nil && m.ATCHours != nil
}

// =============================================================================
// ROSTER ENTRY - One line of the authoritative snapshot
// =============================================================================

// RosterEntry is a single record of the authoritative roster feed.
// Entries are transient: only their effect on Member rows persists.
type RosterEntry struct {
	CID      CID
	JoinDate string
}

// =============================================================================
// SESSION - Raw connection record
// =============================================================================

// Session is a single timestamped connection (flight or control) as returned
// by the external source. Never persisted.
type Session struct {
	Start time.Time
	End   time.Time
}

// =============================================================================
// HOURS HELPERS
// =============================================================================

var secondsPerHour = decimal.NewFromInt(3600)

// HoursFromSeconds converts a duration in seconds to decimal hours without
// rounding. Rounding to two decimal places happens only at the reporting
// boundary; see RoundHours.
func HoursFromSeconds(seconds decimal.Decimal) decimal.Decimal {
	return seconds.Div(secondsPerHour)
}

// RoundHours rounds an hour total to two decimal places for reporting.
func RoundHours(h decimal.Decimal) decimal.Decimal {
	return h.Round(2)
}

// HoursPtr returns a pointer to a decimal built from a float. Test and store
// boundary helper; core code passes decimals around directly.
func HoursPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
