package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/truthtable/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"

	decisionmigrations "github.com/Black-And-White-Club/truthtable/app/modules/decision/infrastructure/repositories/migrations"
	sessionmigrations "github.com/Black-And-White-Club/truthtable/app/modules/session/infrastructure/repositories/migrations"
	statementmigrations "github.com/Black-And-White-Club/truthtable/app/modules/statement/infrastructure/repositories/migrations"
	teammigrations "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories/migrations"
)

// moduleMigrator pairs a module with its migrator. Order matters: decisions
// reference teams and statements.
type moduleMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	configFile := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pgdb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	db := bun.NewDB(pgdb, pgdialect.New())
	defer db.Close()

	migrators := []moduleMigrator{
		{"session", newMigrator(db, "session", sessionmigrations.Migrations)},
		{"statement", newMigrator(db, "statement", statementmigrations.Migrations)},
		{"team", newMigrator(db, "team", teammigrations.Migrations)},
		{"decision", newMigrator(db, "decision", decisionmigrations.Migrations)},
	}

	cliApp := &cli.App{
		Name: "bun",
		Commands: []*cli.Command{
			newMultiModuleDBCommand(migrators),
			newRiverCommand(cfg.Postgres.DSN),
		},
	}

	if err := cliApp.Run(append([]string{os.Args[0]}, flag.Args()...)); err != nil {
		log.Fatal(err)
	}
}

// newMigrator keeps each module's history in its own table so modules roll
// back independently.
func newMigrator(db *bun.DB, module string, migrations *migrate.Migrations) *migrate.Migrator {
	return migrate.NewMigrator(db, migrations,
		migrate.WithTableName("bun_migrations_"+module),
		migrate.WithLocksTableName("bun_migration_locks_"+module),
	)
}

func lookup(migrators []moduleMigrator, name string) (*migrate.Migrator, error) {
	for _, m := range migrators {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %s", name)
}

func newMultiModuleDBCommand(migrators []moduleMigrator) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						fmt.Printf("Initializing migrations for module: %s\n", m.name)
						if err := m.migrator.Init(c.Context); err != nil {
							return fmt.Errorf("init %s: %w", m.name, err)
						}
					}
					return nil
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						if err := m.migrator.Lock(c.Context); err != nil {
							return fmt.Errorf("lock %s: %w", m.name, err)
						}
						group, err := m.migrator.Migrate(c.Context)
						_ = m.migrator.Unlock(c.Context)
						if err != nil {
							return fmt.Errorf("migrate %s: %w", m.name, err)
						}
						if group.IsZero() {
							fmt.Printf("No new migrations to run for module: %s\n", m.name)
						} else {
							fmt.Printf("Migrated module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group, newest module first",
				Action: func(c *cli.Context) error {
					for i := len(migrators) - 1; i >= 0; i-- {
						m := migrators[i]
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return fmt.Errorf("rollback %s: %w", m.name, err)
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:  "create_go",
				Usage: "create Go migration: create_go <module> <name...>",
				Action: func(c *cli.Context) error {
					migrator, err := lookup(migrators, c.Args().First())
					if err != nil {
						return err
					}
					mf, err := migrator.CreateGoMigration(c.Context, strings.Join(c.Args().Tail(), "_"))
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for _, m := range migrators {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", m.name)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}

// newRiverCommand installs river's job tables.
func newRiverCommand(dsn string) *cli.Command {
	return &cli.Command{
		Name:  "river",
		Usage: "river job queue schema",
		Subcommands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "apply river migrations",
				Action: func(c *cli.Context) error {
					pool, err := pgxpool.New(c.Context, dsn)
					if err != nil {
						return fmt.Errorf("failed to create pgx pool: %w", err)
					}
					defer pool.Close()

					migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
					if err != nil {
						return fmt.Errorf("failed to create river migrator: %w", err)
					}
					res, err := migrator.Migrate(c.Context, rivermigrate.DirectionUp, nil)
					if err != nil {
						return fmt.Errorf("river migrate: %w", err)
					}
					for _, v := range res.Versions {
						fmt.Printf("Applied river migration %d\n", v.Version)
					}
					return nil
				},
			},
		},
	}
}
