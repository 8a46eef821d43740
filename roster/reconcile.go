/*
reconcile.go - Roster snapshot vs persisted state

PURPOSE:
  Diffs the authoritative roster feed against the persisted member table and
  applies the difference: create rows for new CIDs, delete rows for CIDs no
  longer on the roster.

NORMALIZATION:
  Both sides are normalized with NormalizeCID before matching. A mismatch
  here is the single highest-risk reconciliation bug: the same member would
  land in both the add and the remove set and be deleted then re-created
  with null state. DiffRoster therefore only ever sees normalized CIDs.

IDEMPOTENCE:
  Reconciling twice against an unchanged snapshot yields an empty diff and
  no mutation the second time.
*/
package roster

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Diff is the outcome of comparing a roster snapshot with persisted CIDs.
type Diff struct {
	ToAdd    []RosterEntry
	ToRemove []CID
}

// Empty reports whether the diff carries no work.
func (d Diff) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// DiffRoster computes the add/remove sets. Pure: no store access.
// Entries and existing CIDs are normalized before matching; duplicate roster
// entries for the same CID collapse to the first occurrence.
func DiffRoster(entries []RosterEntry, existing []CID) Diff {
	onRoster := make(map[CID]bool, len(entries))
	var diff Diff

	persisted := make(map[CID]bool, len(existing))
	for _, cid := range existing {
		persisted[NormalizeCID(string(cid))] = true
	}

	for _, e := range entries {
		cid := NormalizeCID(string(e.CID))
		if cid == "" || onRoster[cid] {
			continue
		}
		onRoster[cid] = true
		if !persisted[cid] {
			diff.ToAdd = append(diff.ToAdd, RosterEntry{CID: cid, JoinDate: e.JoinDate})
		}
	}

	for cid := range persisted {
		if !onRoster[cid] {
			diff.ToRemove = append(diff.ToRemove, cid)
		}
	}
	sort.Slice(diff.ToRemove, func(i, j int) bool { return diff.ToRemove[i] < diff.ToRemove[j] })

	return diff
}

// Reconciler applies roster diffs to the store.
type Reconciler struct {
	Store TxMemberStore
	Log   *zap.SugaredLogger
}

func NewReconciler(store TxMemberStore, log *zap.SugaredLogger) *Reconciler {
	return &Reconciler{Store: store, Log: log}
}

// Reconcile diffs the snapshot against the store and applies the whole diff
// in one transaction. New members are created with null hours and a null
// check-start date; their join date is taken verbatim from the feed.
func (r *Reconciler) Reconcile(ctx context.Context, entries []RosterEntry) (Diff, error) {
	existing, err := r.Store.CIDs(ctx)
	if err != nil {
		return Diff{}, fmt.Errorf("loading persisted cids: %w", err)
	}

	diff := DiffRoster(entries, existing)
	if diff.Empty() {
		r.Log.Infow("roster unchanged", "members", len(existing))
		return diff, nil
	}

	err = r.Store.WithTx(ctx, func(s MemberStore) error {
		for _, cid := range diff.ToRemove {
			r.Log.Infow("removing member", "cid", cid)
			if err := s.Delete(ctx, cid); err != nil {
				return fmt.Errorf("deleting %s: %w", cid, err)
			}
		}
		for _, e := range diff.ToAdd {
			r.Log.Infow("adding member", "cid", e.CID, "join_date", e.JoinDate)
			m := Member{CID: e.CID, ListJoinDate: e.JoinDate}
			if err := s.Create(ctx, m); err != nil {
				return fmt.Errorf("creating %s: %w", e.CID, err)
			}
		}
		return nil
	})
	if err != nil {
		return Diff{}, err
	}

	r.Log.Infow("roster reconciled",
		"added", len(diff.ToAdd),
		"removed", len(diff.ToRemove),
	)
	return diff, nil
}
