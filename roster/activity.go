/*
activity.go - The rolling three-month activity window

PURPOSE:
  Drives the per-member window state machine:

    Uninitialized  check_start_date is null. The initialization pass sets it
                   to the first of the month after the join date.
    Pending        check_start_date is set but is not this cycle's target.
                   Untouched.
    Due            check_start_date equals first-of-month three months ago.
                   Hours are fetched and diffed against the stored baseline.
    Active         delta >= MinDelta. The fetched totals become the new
                   baseline and check_start_date advances to the first of
                   the current month.
    Inactive       delta < MinDelta. NO mutation: the member stays Due on
                   every subsequent cycle until the window is satisfied.
                   Failing the window never silently reschedules it forward.
    Unavailable    the fetch failed this cycle. NO mutation, reported
                   separately from both Active and Inactive.

TRANSACTION SHAPE:
  External fetches are slow (each one waits on the pacing gate), so the pass
  evaluates first and then applies every resulting mutation in one store
  transaction. A mid-pass store failure rolls the whole pass back; the
  database transaction is never held open across network calls.
*/
package roster

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ActivityVerdict is the outcome of one Due evaluation.
type ActivityVerdict string

const (
	VerdictActive      ActivityVerdict = "active"
	VerdictInactive    ActivityVerdict = "inactive"
	VerdictUnavailable ActivityVerdict = "unavailable"
)

// ActivityOutcome records one member's evaluation this cycle.
type ActivityOutcome struct {
	CID     CID
	Verdict ActivityVerdict
	Delta   decimal.Decimal // meaningless when Unavailable
}

// ActivityEngine evaluates Due members and advances their windows.
type ActivityEngine struct {
	Store    TxMemberStore
	Provider HoursProvider
	Log      *zap.SugaredLogger

	// MinDelta is the pilot-hour delta required to stay Active. 10 by default.
	MinDelta decimal.Decimal
	// WindowMonths is the rolling window length. 3 by default.
	WindowMonths int
}

func NewActivityEngine(store TxMemberStore, provider HoursProvider, log *zap.SugaredLogger) *ActivityEngine {
	return &ActivityEngine{
		Store:        store,
		Provider:     provider,
		Log:          log,
		MinDelta:     decimal.NewFromInt(10),
		WindowMonths: 3,
	}
}

// =============================================================================
// INITIALIZATION PASS - Uninitialized -> Pending
// =============================================================================

// InitializeCheckStarts sets check_start_date for every member that has none,
// to the first of the month following their join date. Members whose join
// date does not parse are skipped and returned as per-CID errors; their rows
// are untouched. All updates commit in one transaction.
func (e *ActivityEngine) InitializeCheckStarts(ctx context.Context) ([]CID, []*MemberError, error) {
	members, err := e.Store.MembersWithoutCheckStart(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading uninitialized members: %w", err)
	}

	type update struct {
		cid   CID
		start time.Time
	}
	var (
		updates []update
		skipped []*MemberError
	)
	for _, m := range members {
		joined, err := ParseJoinDate(m.ListJoinDate)
		if err != nil {
			e.Log.Warnw("skipping member with malformed join date", "cid", m.CID, "join_date", m.ListJoinDate)
			skipped = append(skipped, &MemberError{CID: m.CID, Err: err})
			continue
		}
		updates = append(updates, update{cid: m.CID, start: FirstOfNextMonth(joined)})
	}

	if len(updates) > 0 {
		err = e.Store.WithTx(ctx, func(s MemberStore) error {
			for _, u := range updates {
				if err := s.SetCheckStart(ctx, u.cid, u.start); err != nil {
					return fmt.Errorf("initializing %s: %w", u.cid, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, nil, err
		}
	}

	initialized := make([]CID, 0, len(updates))
	for _, u := range updates {
		e.Log.Infow("check window initialized", "cid", u.cid, "check_start", u.start.Format(DateLayout))
		initialized = append(initialized, u.cid)
	}
	return initialized, skipped, nil
}

// =============================================================================
// EVALUATION PASS - Due -> Active | Inactive | Unavailable
// =============================================================================

// EvaluateDue runs one activity pass as of today. Only members whose
// check_start_date equals the first of the month WindowMonths ago are Due;
// everyone else is untouched this cycle.
func (e *ActivityEngine) EvaluateDue(ctx context.Context, today time.Time) ([]ActivityOutcome, error) {
	target := MonthsAgoFirstOfMonth(today, e.WindowMonths)
	due, err := e.Store.MembersDue(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("loading due members: %w", err)
	}
	if len(due) == 0 {
		return nil, nil
	}

	window := Window{Start: target, End: EndOfPreviousMonth(today)}
	newStart := FirstOfMonth(today)

	type advance struct {
		cid        CID
		pilot, atc decimal.Decimal
	}
	var (
		outcomes []ActivityOutcome
		advances []advance
	)

	for _, m := range due {
		if !m.HoursKnown() {
			// Baseline never computed (its gap-fill fetch failed); there is
			// nothing to diff against, so the member is not evaluable.
			e.Log.Warnw("due member has no hours baseline", "cid", m.CID)
			outcomes = append(outcomes, ActivityOutcome{CID: m.CID, Verdict: VerdictUnavailable})
			continue
		}

		res, err := e.Provider.Hours(ctx, m.CID, window)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.Log.Warnw("hours fetch failed, skipping member this cycle", "cid", m.CID, "err", err)
			outcomes = append(outcomes, ActivityOutcome{CID: m.CID, Verdict: VerdictUnavailable})
			continue
		}

		delta := res.Pilot.Sub(*m.PilotHours)
		if delta.GreaterThanOrEqual(e.MinDelta) {
			outcomes = append(outcomes, ActivityOutcome{CID: m.CID, Verdict: VerdictActive, Delta: delta})
			advances = append(advances, advance{cid: m.CID, pilot: res.Pilot, atc: res.Other})
		} else {
			// Inactive: no mutation. check_start_date stays put, so the
			// member is Due again next cycle.
			outcomes = append(outcomes, ActivityOutcome{CID: m.CID, Verdict: VerdictInactive, Delta: delta})
		}
	}

	if len(advances) > 0 {
		err = e.Store.WithTx(ctx, func(s MemberStore) error {
			for _, a := range advances {
				if err := s.AdvanceWindow(ctx, a.cid, a.pilot, a.atc, newStart); err != nil {
					return fmt.Errorf("advancing window for %s: %w", a.cid, err)
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	for _, o := range outcomes {
		e.Log.Infow("activity evaluated",
			"cid", o.CID,
			"verdict", o.Verdict,
			"delta", o.Delta.StringFixed(2),
			"window_start", window.Start.Format(DateLayout),
		)
	}
	return outcomes, nil
}
