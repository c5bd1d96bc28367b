// Package gamelock serialises a game reset against every other write.
//
// Writers take the shared advisory lock inside their transaction; a reset takes the
// exclusive one. Both are transaction-scoped and released on commit or rollback.
package gamelock

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Key is the advisory lock id shared by all instances of the service.
const Key int64 = 0x74727574687462

// AcquireShared blocks while a reset holds the exclusive lock. A nil db is a no-op.
func AcquireShared(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, "SELECT pg_advisory_xact_lock_shared(?)", Key); err != nil {
		return fmt.Errorf("failed to acquire shared game lock: %w", err)
	}
	return nil
}

// AcquireExclusive waits for in-flight writers to finish and blocks new ones until
// the surrounding transaction ends. A nil db is a no-op.
func AcquireExclusive(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return nil
	}
	if _, err := db.ExecContext(ctx, "SELECT pg_advisory_xact_lock(?)", Key); err != nil {
		return fmt.Errorf("failed to acquire exclusive game lock: %w", err)
	}
	return nil
}
