package lifecycle

import "testing"

func TestNewPlanCoversAllEntities(t *testing.T) {
	plan, err := NewPlan()
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	del := plan.DeletionOrder()
	if len(del) != int(entityCount) {
		t.Fatalf("deletion order has %d entities, want %d", len(del), entityCount)
	}
	seen := make(map[EntityType]bool, len(del))
	for _, e := range del {
		if seen[e] {
			t.Errorf("%s appears twice in deletion order", e)
		}
		seen[e] = true
	}
}

func TestDeletionOrderIsSafe(t *testing.T) {
	plan, err := NewPlan()
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	pos := make(map[EntityType]int, entityCount)
	for i, e := range plan.DeletionOrder() {
		pos[e] = i
	}

	// Every dependent is deleted before the entity it references.
	for child, parents := range dependencies {
		for _, parent := range parents {
			if pos[child] > pos[parent] {
				t.Errorf("%s ordered after its parent %s", child, parent)
			}
		}
	}
}

func TestInsertionOrderIsReverseOfDeletion(t *testing.T) {
	plan, err := NewPlan()
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	del := plan.DeletionOrder()
	ins := plan.InsertionOrder()
	for i := range del {
		if del[i] != ins[len(ins)-1-i] {
			t.Fatalf("insertion order is not the reverse of deletion order")
		}
	}
}

func TestPlanOrdersAreDeterministic(t *testing.T) {
	a, err := NewPlan()
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	b, err := NewPlan()
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	for i, e := range a.DeletionOrder() {
		if b.DeletionOrder()[i] != e {
			t.Fatalf("two plans disagree at position %d", i)
		}
	}
}

func TestTopoSortDetectsCycle(t *testing.T) {
	// Inject a patients -> appointments edge, closing a cycle with the
	// existing appointments -> patients dependency.
	dependencies[EntityPatients] = []EntityType{EntityAppointments}
	defer delete(dependencies, EntityPatients)

	if _, err := topoSort(); err == nil {
		t.Fatal("expected cycle detection to fail the sort")
	}
}

func TestPlanOrdersAreCopies(t *testing.T) {
	plan, err := NewPlan()
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	order := plan.DeletionOrder()
	order[0], order[1] = order[1], order[0]
	if plan.DeletionOrder()[0] == order[0] && plan.DeletionOrder()[1] == order[1] {
		t.Error("mutating the returned slice changed the plan")
	}
}
