/*
orchestrator.go - One full reconciliation run

PURPOSE:
  Sequences the stages of a run, in order, each durable before the next:

    1. Reconcile the roster snapshot (adds + removes, one transaction)
    2. Gap-fill null hour totals via the provider
    3. Initialize null check-start dates
    4. Evaluate every Due member and advance satisfied windows
    5. Evaluate the minimum-hour policy

  There is no cross-stage rollback: a run that dies after stage 2 leaves
  stages 1-2 applied. Stage 2 commits per member on purpose - each fetch
  costs a pacing delay, and hours already fetched should survive a crash.

REPORT:
  The run's observable output is a Report: who was added and removed, who
  fails the minimum-hour policy, and who was active, inactive, or
  unavailable this cycle. Rendering is textual, matching the operator
  console sections the tool has always printed.
*/
package roster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// Orchestrator wires the stages of a run together.
type Orchestrator struct {
	Store      TxMemberStore
	Provider   HoursProvider
	Reconciler *Reconciler
	Activity   *ActivityEngine
	Compliance *ComplianceChecker
	Log        *zap.SugaredLogger

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewOrchestrator(store TxMemberStore, provider HoursProvider, log *zap.SugaredLogger) *Orchestrator {
	return &Orchestrator{
		Store:      store,
		Provider:   provider,
		Reconciler: NewReconciler(store, log),
		Activity:   NewActivityEngine(store, provider, log),
		Compliance: NewComplianceChecker(),
		Log:        log,
		Now:        time.Now,
	}
}

// Run executes one full pass against the given roster snapshot.
// Per-member failures are isolated into the report; the returned error is
// reserved for store failures, which abort the run.
func (o *Orchestrator) Run(ctx context.Context, entries []RosterEntry) (*Report, error) {
	today := o.Now().UTC()
	report := &Report{RanAt: today}

	o.Log.Infow("run starting", "roster_entries", len(entries), "date", today.Format(DateLayout))

	diff, err := o.Reconciler.Reconcile(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("reconcile stage: %w", err)
	}
	for _, e := range diff.ToAdd {
		report.Added = append(report.Added, e.CID)
	}
	report.Removed = diff.ToRemove

	if err := o.fillUnknownHours(ctx, report); err != nil {
		return nil, fmt.Errorf("hour fill stage: %w", err)
	}

	_, skipped, err := o.Activity.InitializeCheckStarts(ctx)
	if err != nil {
		return nil, fmt.Errorf("window init stage: %w", err)
	}
	report.InitSkipped = skipped

	outcomes, err := o.Activity.EvaluateDue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("activity stage: %w", err)
	}
	for _, out := range outcomes {
		switch out.Verdict {
		case VerdictActive:
			report.Active = append(report.Active, out.CID)
		case VerdictInactive:
			report.Inactive = append(report.Inactive, out.CID)
		case VerdictUnavailable:
			report.Unavailable = append(report.Unavailable, out.CID)
		}
	}

	members, err := o.Store.Members(ctx)
	if err != nil {
		return nil, fmt.Errorf("compliance stage: %w", err)
	}
	report.Violators = o.Compliance.Violators(members)

	o.Log.Infow("run finished",
		"added", len(report.Added),
		"removed", len(report.Removed),
		"violators", len(report.Violators),
		"active", len(report.Active),
		"inactive", len(report.Inactive),
		"unavailable", len(report.Unavailable),
	)
	return report, nil
}

// fillUnknownHours populates hour totals for members that have none yet,
// using an all-time window (windowed strategy) or a fresh cumulative fetch
// (snapshot strategy). Commits per member; an unavailable fetch leaves the
// member null and reported, to be retried next run.
func (o *Orchestrator) fillUnknownHours(ctx context.Context, report *Report) error {
	members, err := o.Store.MembersWithUnknownHours(ctx)
	if err != nil {
		return fmt.Errorf("loading members with unknown hours: %w", err)
	}

	for _, m := range members {
		res, err := o.Provider.Hours(ctx, m.CID, AllTime())
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, ErrHoursUnavailable) {
				o.Log.Warnw("hours unavailable during gap fill", "cid", m.CID, "err", err)
				report.Unavailable = append(report.Unavailable, m.CID)
				continue
			}
			o.Log.Warnw("hours fetch failed during gap fill", "cid", m.CID, "err", err)
			report.Unavailable = append(report.Unavailable, m.CID)
			continue
		}
		if err := o.Store.SetHours(ctx, m.CID, res.Pilot, res.Other); err != nil {
			return fmt.Errorf("storing hours for %s: %w", m.CID, err)
		}
		o.Log.Infow("hours filled",
			"cid", m.CID,
			"pilot", RoundHours(res.Pilot).String(),
			"atc", RoundHours(res.Other).String(),
		)
	}
	return nil
}

// =============================================================================
// REPORT
// =============================================================================

// Report is the observable outcome of one run.
type Report struct {
	RanAt       time.Time
	Added       []CID
	Removed     []CID
	Violators   []CID
	Active      []CID
	Inactive    []CID
	Unavailable []CID
	InitSkipped []*MemberError
}

// Render writes the operator-facing textual report.
func (r *Report) Render(w io.Writer) {
	fmt.Fprintln(w, "========= Roster Sync =========")
	fmt.Fprintf(w, "%d member(s) removed:\n", len(r.Removed))
	writeCIDs(w, r.Removed)
	fmt.Fprintf(w, "%d member(s) added:\n", len(r.Added))
	writeCIDs(w, r.Added)

	if len(r.InitSkipped) > 0 {
		fmt.Fprintf(w, "%d record(s) with malformed join dates skipped:\n", len(r.InitSkipped))
		for _, e := range r.InitSkipped {
			fmt.Fprintf(w, " - %s: %v\n", e.CID, e.Err)
		}
	}

	fmt.Fprintln(w, "\n========= Minimum hour checks =========")
	fmt.Fprintln(w, "CIDs which do NOT meet the minimum hour requirements:")
	writeCIDs(w, r.Violators)

	fmt.Fprintln(w, "\n========= Activity checks =========")
	fmt.Fprintf(w, "%d active member(s), hours updated:\n", len(r.Active))
	writeCIDs(w, r.Active)
	fmt.Fprintf(w, "%d inactive member(s):\n", len(r.Inactive))
	writeCIDs(w, r.Inactive)
	fmt.Fprintf(w, "%d member(s) unavailable this cycle:\n", len(r.Unavailable))
	writeCIDs(w, r.Unavailable)
}

func writeCIDs(w io.Writer, cids []CID) {
	for _, cid := range cids {
		fmt.Fprintf(w, " - %s\n", cid)
	}
}
