package lifecycle

import "fmt"

// dependencies lists, for each entity type, the parent entity types its rows
// reference. An entity may only be deleted once every entity that references
// it has been deleted, so the planner orders dependents strictly before
// their parents. The schema's foreign keys are NO ACTION: a delete issued
// out of order fails with a foreign-key violation instead of silently
// cascading, which keeps the reported per-entity counts exact.
var dependencies = map[EntityType][]EntityType{
	EntityAppointments:         {EntityPatients, EntityStaff},
	EntityTransactions:         {EntityPatients, EntityStaff},
	EntityQuotes:               {EntityPatients},
	EntityPrescriptions:        {EntityPatients},
	EntityInventoryProducts:    {EntityCategories},
	EntityStockMovements:       {EntityInventoryProducts, EntityStaff},
	EntityProductProcedures:    {EntityInventoryProducts},
	EntityStockAlerts:          {EntityInventoryProducts},
	EntityChatMessages:         {EntityChatThreads},
	EntityLoyaltyMembers:       {EntityPatients},
	EntityLoyaltyPointsHistory: {EntityLoyaltyMembers},
	EntityLoyaltyRedemptions:   {EntityLoyaltyMembers, EntityLoyaltyRewards},
	EntityLoyaltyReferrals:     {EntityLoyaltyMembers},
}

// Plan is an immutable, topologically sorted view of the entity dependency
// graph. Built once at startup; construction fails if the graph has a cycle.
type Plan struct {
	deletion  []EntityType
	insertion []EntityType
}

// NewPlan derives the deletion and insertion orders from the dependency
// graph. Deletion runs children before parents; insertion is the reverse.
func NewPlan() (*Plan, error) {
	order, err := topoSort()
	if err != nil {
		return nil, err
	}

	insertion := make([]EntityType, len(order))
	for i, e := range order {
		insertion[len(order)-1-i] = e
	}

	return &Plan{deletion: order, insertion: insertion}, nil
}

// DeletionOrder returns the entity types in a safe deletion order: every
// entity appears before each of its parents.
func (p *Plan) DeletionOrder() []EntityType {
	out := make([]EntityType, len(p.deletion))
	copy(out, p.deletion)
	return out
}

// InsertionOrder returns the entity types in a safe insertion order: every
// entity appears after each of its parents.
func (p *Plan) InsertionOrder() []EntityType {
	out := make([]EntityType, len(p.insertion))
	copy(out, p.insertion)
	return out
}

// topoSort runs Kahn's algorithm over the dependency graph. An entity is
// ready for deletion once no remaining entity references it; ties break in
// declaration order so the result is deterministic.
func topoSort() ([]EntityType, error) {
	// blockers[p] = number of not-yet-deleted entities referencing p.
	var blockers [entityCount]int
	for child, parents := range dependencies {
		if !child.valid() {
			return nil, fmt.Errorf("dependency graph references unknown entity %d", int(child))
		}
		for _, p := range parents {
			if !p.valid() {
				return nil, fmt.Errorf("entity %s references unknown parent %d", child, int(p))
			}
			blockers[p]++
		}
	}

	var order []EntityType
	done := [entityCount]bool{}

	for len(order) < int(entityCount) {
		progressed := false
		for i := EntityType(0); i < entityCount; i++ {
			if done[i] || blockers[i] > 0 {
				continue
			}
			done[i] = true
			order = append(order, i)
			for _, p := range dependencies[i] {
				blockers[p]--
			}
			progressed = true
		}
		if !progressed {
			return nil, fmt.Errorf("entity dependency graph contains a cycle")
		}
	}

	return order, nil
}
