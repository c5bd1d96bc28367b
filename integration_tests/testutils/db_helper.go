package testutils

import (
	"context"
	"fmt"
	"strings"

	decisionmigrations "github.com/Black-And-White-Club/truthtable/app/modules/decision/infrastructure/repositories/migrations"
	sessionmigrations "github.com/Black-And-White-Club/truthtable/app/modules/session/infrastructure/repositories/migrations"
	statementmigrations "github.com/Black-And-White-Club/truthtable/app/modules/statement/infrastructure/repositories/migrations"
	teammigrations "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// gameTables lists every table the game writes, children first.
var gameTables = []string{
	"decisions",
	"hint_purchases",
	"purchases",
	"teams",
	"statement_recommended_items",
	"statement_evaluations",
	"items",
	"statements",
	"game_config",
}

// RunMigrations applies the river schema and then each module's migrations in
// foreign key order, using the same per-module tables as cmd/bun.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	if err := runRiverMigrations(ctx, dsn); err != nil {
		return err
	}

	ordered := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"session", sessionmigrations.Migrations},
		{"statement", statementmigrations.Migrations},
		{"team", teammigrations.Migrations},
		{"decision", decisionmigrations.Migrations},
	}
	for _, mod := range ordered {
		migrator := migrate.NewMigrator(db, mod.migrations,
			migrate.WithTableName("bun_migrations_"+mod.name),
			migrate.WithLocksTableName("bun_migration_locks_"+mod.name),
		)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", mod.name, err)
		}
		if _, err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.name, err)
		}
	}
	return nil
}

func runRiverMigrations(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{}); err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	return nil
}

// TruncateGameTables empties all game tables in one statement.
func TruncateGameTables(ctx context.Context, db bun.IDB) error {
	_, err := db.ExecContext(ctx, "TRUNCATE TABLE "+strings.Join(gameTables, ", ")+" RESTART IDENTITY CASCADE")
	if err != nil {
		return fmt.Errorf("failed to truncate game tables: %w", err)
	}
	return nil
}

// CleanupRiverJobs deletes all jobs from the River queue.
func CleanupRiverJobs(ctx context.Context, db bun.IDB) error {
	_, err := db.ExecContext(ctx, "DELETE FROM river_job")
	return err
}

// CountRows returns the row count of table.
func CountRows(ctx context.Context, db bun.IDB, table string) (int, error) {
	var n int
	err := db.NewSelect().TableExpr(table).ColumnExpr("count(*)").Scan(ctx, &n)
	return n, err
}
