/*
store.go - Persistence interface for Member rows

PURPOSE:
  Defines the boundary between the engine and the database. The store owns
  the Member lifecycle exclusively: create on roster add, delete on roster
  remove, mutate on hour and window updates. Sessions and roster entries are
  never persisted.

MUTATION DISCIPLINE:
  Writes come in exactly three shapes, one per engine stage:
  - Create/Delete:   reconciliation
  - SetHours:        null-hour gap fill
  - SetCheckStart:   window initialization
  - AdvanceWindow:   an Active verdict (new baseline + advanced start date)
  There is no generic Update. CheckStart only ever moves forward, and only
  to a first-of-month date; AdvanceWindow implementations do not enforce
  this - the engine guarantees it.

TRANSACTIONS:
  TxMemberStore wraps a whole logical stage (all of a reconciliation's adds
  and removes, or one full activity pass) in a single database transaction,
  so a mid-stage failure rolls back instead of leaving half-applied state.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - roster/store: in-memory store for tests and dev
*/
package roster

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MemberStore handles persistence of Member rows.
type MemberStore interface {
	// Member returns one row. ErrMemberNotFound if the CID is absent.
	Member(ctx context.Context, cid CID) (Member, error)

	// Members returns every row, ordered by CID.
	Members(ctx context.Context) ([]Member, error)

	// CIDs returns every persisted CID, normalized.
	CIDs(ctx context.Context) ([]CID, error)

	// MembersWithUnknownHours returns rows where either hour total is null.
	MembersWithUnknownHours(ctx context.Context) ([]Member, error)

	// MembersWithoutCheckStart returns rows where check_start_date is null.
	MembersWithoutCheckStart(ctx context.Context) ([]Member, error)

	// MembersDue returns rows whose check_start_date equals target.
	MembersDue(ctx context.Context, target time.Time) ([]Member, error)

	// Create inserts a new row. ErrDuplicateMember if the CID exists.
	Create(ctx context.Context, m Member) error

	// Delete removes a row. Deleting an absent CID is not an error.
	Delete(ctx context.Context, cid CID) error

	// SetHours overwrites both hour totals.
	SetHours(ctx context.Context, cid CID, pilot, atc decimal.Decimal) error

	// SetCheckStart sets the window start date.
	SetCheckStart(ctx context.Context, cid CID, start time.Time) error

	// AdvanceWindow atomically stores a new hours baseline and window start.
	AdvanceWindow(ctx context.Context, cid CID, pilot, atc decimal.Decimal, start time.Time) error
}

// TxMemberStore adds stage-level transaction support.
type TxMemberStore interface {
	MemberStore

	// WithTx executes fn within one transaction. If fn returns an error the
	// transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(MemberStore) error) error
}
