// Package testutils starts the Postgres and NATS containers the integration
// suites run against.
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/eventbus"
	"github.com/Black-And-White-Club/truthtable/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

// TestEnvironment holds the shared containers and connections.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	DSN           string
	NATSURL       string
	EventBus      eventbus.EventBus
	Logger        *slog.Logger
}

// NewTestEnvironment starts both containers, runs every migration and
// connects the event bus to NATS.
func NewTestEnvironment() (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(context.Background())
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := env.setup(ctx); err != nil {
		env.Cleanup()
		return nil, err
	}
	return env, nil
}

func (env *TestEnvironment) setup(ctx context.Context) error {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer, env.DSN = pgContainer, dsn

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer, env.NATSURL = natsContainer, natsURL

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sql DB connection: %w", err)
	}
	env.DB = bun.NewDB(sqlDB, pgdialect.New())

	if err := RunMigrations(ctx, env.DB, dsn); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	env.EventBus, err = eventbus.NewEventBus(eventbus.Config{NATSURL: natsURL, QueueGroup: "truthtable-it"}, env.Logger)
	if err != nil {
		return fmt.Errorf("failed to create event bus: %w", err)
	}
	return nil
}

// Reset empties the game tables and the job queue between tests.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	if err := TruncateGameTables(ctx, env.DB); err != nil {
		return err
	}
	return CleanupRiverJobs(ctx, env.DB)
}

// Cleanup tears down every resource, tolerating a partial setup.
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if closer, ok := env.EventBus.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.DB != nil {
		_ = env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
}
