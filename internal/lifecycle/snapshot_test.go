package lifecycle

import (
	"context"
	"testing"
)

func TestCountsDiff(t *testing.T) {
	before := make(Counts)
	after := make(Counts)
	before[EntityStaff] = 5
	before[EntityPatients] = 12
	after[EntityStaff] = 0
	after[EntityPatients] = 2

	diff := before.Diff(after)
	if diff[EntityStaff] != 5 {
		t.Errorf("staff diff = %d, want 5", diff[EntityStaff])
	}
	if diff[EntityPatients] != 10 {
		t.Errorf("patients diff = %d, want 10", diff[EntityPatients])
	}
	if diff[EntityQuotes] != 0 {
		t.Errorf("quotes diff = %d, want 0", diff[EntityQuotes])
	}
}

func TestCountsTotalAndZero(t *testing.T) {
	c := make(Counts)
	if !c.Zero() {
		t.Error("empty counts should be zero")
	}
	c[EntityStaff] = 3
	c[EntityPatients] = 4
	if c.Zero() {
		t.Error("nonzero counts reported zero")
	}
	if c.Total() != 7 {
		t.Errorf("total = %d, want 7", c.Total())
	}
}

func TestCountsJSONMapIncludesExplicitZeros(t *testing.T) {
	c := make(Counts)
	c[EntityStaff] = 5

	m := c.JSONMap()
	if len(m) != int(entityCount) {
		t.Fatalf("map has %d keys, want %d", len(m), entityCount)
	}
	if m["staff"] != 5 {
		t.Errorf("staff = %d, want 5", m["staff"])
	}
	if v, ok := m["loyaltyRewards"]; !ok || v != 0 {
		t.Errorf("loyaltyRewards = %d (present=%v), want explicit 0", v, ok)
	}
}

func TestSnapshotUsesStoreCounts(t *testing.T) {
	store := newFakeStore()
	seedFake(t, store, "clinic-a")

	counts, err := Snapshot(context.Background(), store, "clinic-a")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if counts[EntityStaff] != 5 {
		t.Errorf("staff = %d, want 5", counts[EntityStaff])
	}
	if counts[EntityPatients] != 12 {
		t.Errorf("patients = %d, want 12", counts[EntityPatients])
	}
}
