package lifecycle

import (
	"context"

	"github.com/rs/zerolog"
)

// Counts maps each entity type to a row count for one tenant.
type Counts map[EntityType]int64

// Diff returns c - other per entity type. Used both ways: before-minus-after
// for purges and after-minus-before for seeds.
func (c Counts) Diff(other Counts) Counts {
	out := make(Counts, len(c))
	for _, e := range AllEntities() {
		out[e] = c[e] - other[e]
	}
	return out
}

// Total sums all entity counts.
func (c Counts) Total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}

// Zero reports whether every entity count is zero.
func (c Counts) Zero() bool {
	for _, v := range c {
		if v != 0 {
			return false
		}
	}
	return true
}

// JSONMap renders the counts keyed by entity payload key, with every entity
// type present so clients see explicit zeros.
func (c Counts) JSONMap() map[string]int64 {
	out := make(map[string]int64, entityCount)
	for _, e := range AllEntities() {
		out[e.Key()] = c[e]
	}
	return out
}

// Snapshot reads the current per-entity row counts for the tenant. It never
// mutates data. Taken immediately before a purge (baseline), immediately
// after (residue detection), and after a seed's inserts (read-back
// verification, since chunked inserts can under-insert on partial failure).
func Snapshot(ctx context.Context, store Store, tenantID string) (Counts, error) {
	counts, err := store.Counts(ctx, tenantID)
	if err != nil {
		return nil, classify("snapshot", "", err)
	}
	return counts, nil
}

// reportResidue logs a warning for every entity type whose post-purge count
// is nonzero. Residue is a warning-level signal, not a hard failure: the
// deletion transaction already committed and the caller sees the counts in
// the response.
func reportResidue(log zerolog.Logger, tenantID string, remaining Counts) {
	for _, e := range AllEntities() {
		if remaining[e] != 0 {
			log.Warn().
				Str("tenant", tenantID).
				Str("entity", e.Key()).
				Int64("remaining", remaining[e]).
				Msg("rows remain after purge")
		}
	}
}
