// Package lifecycle implements the tenant data lifecycle engine: the
// all-or-nothing purge of a tenant's rows across every entity type, and the
// regeneration of a referentially consistent synthetic dataset for demos and
// testing. Deletion order, counting, and insertion all run off a single
// enumerated entity registry so the dependency graph is checkable rather
// than conventional.
package lifecycle

import "fmt"

// EntityType enumerates every tenant-scoped entity the engine manages.
type EntityType int

const (
	EntityStaff EntityType = iota
	EntityPatients
	EntityCategories
	EntityAppointments
	EntityTransactions
	EntityQuotes
	EntityPrescriptions
	EntityMonthlyTargets
	EntityInventoryProducts
	EntityStockMovements
	EntityProductProcedures
	EntityStockAlerts
	EntityChatThreads
	EntityChatMessages
	EntityLoyaltyRewards
	EntityLoyaltyMembers
	EntityLoyaltyPointsHistory
	EntityLoyaltyRedemptions
	EntityLoyaltyReferrals

	entityCount // sentinel, keep last
)

// descriptor holds the static persistence metadata for one entity type.
type descriptor struct {
	// key is the stable identifier used in API payloads ("deleted", "created",
	// "remaining" maps) and log fields.
	key   string
	table string
	// columns in insert order; rows produced by the generator match this.
	columns []string
	// byMemberSet marks entities that reference loyalty members rather than
	// carrying a usable direct tenant filter for deletion. They are deleted
	// via the member-id set resolved once per purge.
	byMemberSet bool
}

var descriptors = [entityCount]descriptor{
	EntityStaff: {
		key:   "staff",
		table: "staff",
		columns: []string{"id", "tenant_id", "full_name", "role",
			"commission_pct", "active", "created_at"},
	},
	EntityPatients: {
		key:   "patients",
		table: "patients",
		columns: []string{"id", "tenant_id", "full_name", "email", "phone",
			"birth_date", "gender", "created_at"},
	},
	EntityCategories: {
		key:     "categories",
		table:   "categories",
		columns: []string{"id", "tenant_id", "name", "description", "created_at"},
	},
	EntityAppointments: {
		key:   "appointments",
		table: "appointments",
		columns: []string{"id", "tenant_id", "patient_id", "staff_id",
			"procedure_name", "duration_min", "starts_at", "status", "created_at"},
	},
	EntityTransactions: {
		key:   "transactions",
		table: "transactions",
		columns: []string{"id", "tenant_id", "patient_id", "kind", "description",
			"amount_cents", "staff_tag", "occurred_at", "created_at"},
	},
	EntityQuotes: {
		key:   "quotes",
		table: "quotes",
		columns: []string{"id", "tenant_id", "patient_id", "procedure_name",
			"amount_cents", "status", "valid_until", "created_at"},
	},
	EntityPrescriptions: {
		key:   "prescriptions",
		table: "prescriptions",
		columns: []string{"id", "tenant_id", "patient_id", "items", "status",
			"signed_at", "created_at"},
	},
	EntityMonthlyTargets: {
		key:   "monthlyTargets",
		table: "monthly_targets",
		columns: []string{"id", "tenant_id", "month",
			"revenue_target_cents", "created_at"},
	},
	EntityInventoryProducts: {
		key:   "inventoryProducts",
		table: "inventory_products",
		columns: []string{"id", "tenant_id", "category_id", "name", "sku",
			"price_cents", "current_stock", "minimum_stock", "batch_code",
			"expires_at", "created_at"},
	},
	EntityStockMovements: {
		key:   "stockMovements",
		table: "stock_movements",
		columns: []string{"id", "tenant_id", "product_id", "staff_id", "kind",
			"quantity", "occurred_at", "created_at"},
	},
	EntityProductProcedures: {
		key:   "productProcedures",
		table: "product_procedures",
		columns: []string{"id", "tenant_id", "product_id", "procedure_name",
			"units_per_procedure", "created_at"},
	},
	EntityStockAlerts: {
		key:   "stockAlerts",
		table: "stock_alerts",
		columns: []string{"id", "tenant_id", "product_id", "kind", "message",
			"created_at"},
	},
	EntityChatThreads: {
		key:     "chatThreads",
		table:   "chat_threads",
		columns: []string{"id", "tenant_id", "lead_name", "channel", "created_at"},
	},
	EntityChatMessages: {
		key:   "chatMessages",
		table: "chat_messages",
		columns: []string{"id", "tenant_id", "thread_id", "sender", "body",
			"sent_at", "created_at"},
	},
	EntityLoyaltyRewards: {
		key:     "loyaltyRewards",
		table:   "loyalty_rewards",
		columns: []string{"id", "tenant_id", "name", "cost_points", "created_at"},
	},
	EntityLoyaltyMembers: {
		key:   "loyaltyMembers",
		table: "loyalty_members",
		columns: []string{"id", "tenant_id", "patient_id", "referral_code",
			"points_total", "points_available", "tier", "created_at"},
	},
	EntityLoyaltyPointsHistory: {
		key:   "loyaltyPointsHistory",
		table: "loyalty_points_history",
		columns: []string{"id", "tenant_id", "member_id", "event", "points",
			"occurred_at", "created_at"},
		byMemberSet: true,
	},
	EntityLoyaltyRedemptions: {
		key:   "loyaltyRedemptions",
		table: "loyalty_redemptions",
		columns: []string{"id", "tenant_id", "member_id", "reward_id",
			"points_spent", "redeemed_at", "created_at"},
		byMemberSet: true,
	},
	EntityLoyaltyReferrals: {
		key:   "loyaltyReferrals",
		table: "loyalty_referrals",
		columns: []string{"id", "tenant_id", "referrer_member_id",
			"referred_name", "status", "created_at"},
		byMemberSet: true,
	},
}

// AllEntities returns every entity type in declaration order.
func AllEntities() []EntityType {
	out := make([]EntityType, entityCount)
	for i := range out {
		out[i] = EntityType(i)
	}
	return out
}

func (e EntityType) valid() bool {
	return e >= 0 && e < entityCount
}

// Key returns the stable payload/log identifier for the entity type.
func (e EntityType) Key() string {
	if !e.valid() {
		return fmt.Sprintf("entity(%d)", int(e))
	}
	return descriptors[e].key
}

// Table returns the backing table name.
func (e EntityType) Table() string {
	if !e.valid() {
		return ""
	}
	return descriptors[e].table
}

// Columns returns the insert-order column list.
func (e EntityType) Columns() []string {
	if !e.valid() {
		return nil
	}
	return descriptors[e].columns
}

// DeletedByMemberSet reports whether purge deletes this entity via the
// resolved loyalty member id set instead of the direct tenant filter.
func (e EntityType) DeletedByMemberSet() bool {
	return e.valid() && descriptors[e].byMemberSet
}

func (e EntityType) String() string { return e.Key() }
