package db

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TenantLockKey derives a stable 64-bit advisory lock key for a tenant.
func TenantLockKey(tenantID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("lifecycle:"))
	h.Write([]byte(tenantID))
	return int64(h.Sum64())
}

// TryTenantLock attempts to take the session-level advisory lock for the
// tenant. Advisory locks are bound to the session that took them, so the
// lock is held on a dedicated connection that stays acquired until the
// returned release function runs.
//
// The second return value is false when another session already holds the
// lock, i.e. a purge or seed for the same tenant is in progress.
func TryTenantLock(ctx context.Context, pool *pgxpool.Pool, tenantID string) (release func(), acquired bool, err error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection for tenant lock: %w", err)
	}

	key := TenantLockKey(tenantID)

	var got bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&got); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock for tenant %s: %w", tenantID, err)
	}
	if !got {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Unlock on the same session; background context so release works
		// even when the operation's context already expired.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, key)
		conn.Release()
	}
	return release, true, nil
}
