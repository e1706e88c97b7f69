package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliniq/cliniq/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type storePG struct{ pool *pgxpool.Pool }

// NewStorePG returns a Store backed by the PostgreSQL pool.
func NewStorePG(pool *pgxpool.Pool) Store {
	return &storePG{pool: pool}
}

func (s *storePG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *storePG) Counts(ctx context.Context, tenantID string) (Counts, error) {
	counts := make(Counts, entityCount)
	for _, e := range AllEntities() {
		var n int64
		q := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE tenant_id = $1`, e.Table())
		if err := s.conn(ctx).QueryRow(ctx, q, tenantID).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", e.Table(), err)
		}
		counts[e] = n
	}
	return counts, nil
}

func (s *storePG) MemberIDs(ctx context.Context, tenantID string) ([]uuid.UUID, error) {
	rows, err := s.conn(ctx).Query(ctx,
		`SELECT id FROM loyalty_members WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("resolve member ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan member id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate member ids: %w", err)
	}
	return ids, nil
}

func (s *storePG) DeleteByTenant(ctx context.Context, e EntityType, tenantID string) (int64, error) {
	q := fmt.Sprintf(`DELETE FROM %s WHERE tenant_id = $1`, e.Table())
	tag, err := s.conn(ctx).Exec(ctx, q, tenantID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// memberColumn names the loyalty-member foreign key per multi-hop entity.
var memberColumn = map[EntityType]string{
	EntityLoyaltyPointsHistory: "member_id",
	EntityLoyaltyRedemptions:   "member_id",
	EntityLoyaltyReferrals:     "referrer_member_id",
}

func (s *storePG) DeleteByMembers(ctx context.Context, e EntityType, memberIDs []uuid.UUID) (int64, error) {
	col, ok := memberColumn[e]
	if !ok {
		return 0, fmt.Errorf("entity %s is not deleted by member set", e)
	}
	if len(memberIDs) == 0 {
		return 0, nil
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE %s = ANY($1)`, e.Table(), col)
	tag, err := s.conn(ctx).Exec(ctx, q, memberIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *storePG) CopyRows(ctx context.Context, e EntityType, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	return s.conn(ctx).CopyFrom(ctx,
		pgx.Identifier{e.Table()}, e.Columns(), pgx.CopyFromRows(rows))
}

func (s *storePG) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx, tx, err := db.WithTx(ctx, s.pool)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(txCtx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *storePG) TryLock(ctx context.Context, tenantID string) (func(), bool, error) {
	return db.TryTenantLock(ctx, s.pool, tenantID)
}
