package lifecycle

import (
	"context"

	"github.com/google/uuid"
)

// Store is the relational persistence boundary the engine runs against.
// Implementations must honor an in-flight transaction carried in the context
// for the delete and member-resolution methods, so a purge executes as one
// atomic unit of work.
type Store interface {
	// Counts returns per-entity row counts for the tenant.
	Counts(ctx context.Context, tenantID string) (Counts, error)

	// MemberIDs resolves the tenant's loyalty member identifiers. Called once
	// per purge; the resulting set is threaded into DeleteByMembers for the
	// multi-hop dependents.
	MemberIDs(ctx context.Context, tenantID string) ([]uuid.UUID, error)

	// DeleteByTenant removes every row of the entity belonging to the tenant
	// and returns the number of rows affected.
	DeleteByTenant(ctx context.Context, e EntityType, tenantID string) (int64, error)

	// DeleteByMembers removes every row of the entity referencing one of the
	// given loyalty member ids and returns the number of rows affected.
	DeleteByMembers(ctx context.Context, e EntityType, memberIDs []uuid.UUID) (int64, error)

	// CopyRows bulk-inserts rows (values in e.Columns() order) and returns
	// the number of rows written.
	CopyRows(ctx context.Context, e EntityType, rows [][]any) (int64, error)

	// WithinTx runs fn inside a single transaction. The context passed to fn
	// carries the transaction; any error from fn rolls everything back.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	// TryLock takes the per-tenant operation lock. ok is false when another
	// purge/seed holds it. release must be called when ok is true.
	TryLock(ctx context.Context, tenantID string) (release func(), ok bool, err error)
}
