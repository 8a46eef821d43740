/*
errors.go - Centralized error types for the roster engine

PURPOSE:
  All error types in one place. Two rules drive the taxonomy:

  1. A single member's failure is isolated. An unavailable hours fetch or a
     malformed join date skips that member for the cycle and lands in the
     report; it never aborts the run and is NEVER coerced to zero hours.
     A false zero would manufacture a policy violation or an inactivity
     verdict out of a transport hiccup.

  2. Store failures are fatal. If the database cannot be read or written the
     whole run stops.

USAGE:
    if errors.Is(err, roster.ErrHoursUnavailable) {
        // skip this member for the cycle
    }
*/
package roster

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrHoursUnavailable means the external source could not supply hours
	// for a member this cycle. The member's stored hours and window stay
	// untouched; the fetch is not retried until the next run.
	ErrHoursUnavailable = errors.New("hours unavailable")

	// ErrMalformedJoinDate means a roster join date matched none of the
	// known feed formats. Fatal for that record's initialization only.
	ErrMalformedJoinDate = errors.New("malformed join date")

	// ErrMemberNotFound is returned by stores for a missing CID.
	ErrMemberNotFound = errors.New("member not found")

	// ErrDuplicateMember is returned when creating a CID that already exists.
	ErrDuplicateMember = errors.New("member already exists")
)

// =============================================================================
// STRUCTURED ERRORS - Carry per-member context
// =============================================================================

// UnavailableError reports which member's fetch failed and why.
type UnavailableError struct {
	CID   CID
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("hours unavailable for %s: %v", e.CID, e.Cause)
}

func (e *UnavailableError) Unwrap() error { return ErrHoursUnavailable }

// MemberError ties any per-member failure to its CID for reporting.
type MemberError struct {
	CID CID
	Err error
}

func (e *MemberError) Error() string {
	return fmt.Sprintf("%s: %v", e.CID, e.Err)
}

func (e *MemberError) Unwrap() error { return e.Err }
