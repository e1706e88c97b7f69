package lifecycle

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
)

// PurgeResult reports what a purge removed and what, if anything, survived.
type PurgeResult struct {
	// Before is the per-entity baseline snapshot taken before deletion.
	Before Counts
	// Deleted is the per-entity count of rows the deletion transaction
	// reported removing.
	Deleted Counts
	// Remaining is the post-commit snapshot. All zeros on a clean purge.
	Remaining Counts
}

// purge removes every tenant row inside one transaction, walking entities in
// dependency order so no delete ever strands a referencing row. The loyalty
// member id set is resolved once, before any deletion touches the loyalty
// tables, and reused for every member-scoped child table.
func purge(ctx context.Context, store Store, plan *Plan, tenantID string, log zerolog.Logger) (*PurgeResult, error) {
	before, err := Snapshot(ctx, store, tenantID)
	if err != nil {
		return nil, err
	}

	deleted := make(Counts, entityCount)
	for _, e := range AllEntities() {
		deleted[e] = 0
	}

	err = store.WithinTx(ctx, func(ctx context.Context) error {
		memberIDs, err := store.MemberIDs(ctx, tenantID)
		if err != nil {
			return classify("purge", EntityLoyaltyMembers.Key(), err)
		}

		for _, e := range plan.DeletionOrder() {
			var n int64
			var err error
			if e.DeletedByMemberSet() {
				n, err = store.DeleteByMembers(ctx, e, memberIDs)
			} else {
				n, err = store.DeleteByTenant(ctx, e, tenantID)
			}
			if err != nil {
				return classify("purge", e.Key(), err)
			}
			deleted[e] = n

			log.Debug().
				Str("tenant", tenantID).
				Str("entity", e.Key()).
				Int64("deleted", n).
				Msg("entity purged")
		}
		return nil
	})
	if err != nil {
		var engineErr *Error
		if !errors.As(err, &engineErr) {
			err = classify("purge", "", err)
		}
		return nil, err
	}

	remaining, err := Snapshot(ctx, store, tenantID)
	if err != nil {
		return nil, err
	}
	reportResidue(log, tenantID, remaining)

	return &PurgeResult{Before: before, Deleted: deleted, Remaining: remaining}, nil
}
