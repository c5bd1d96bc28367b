package teamqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

const serviceName = "river"

// Enqueuer schedules score reconciliation for a team.
type Enqueuer interface {
	EnqueueReconcile(ctx context.Context, teamID uuid.UUID) error
}

var _ Enqueuer = (*Service)(nil)

// Service owns the river client that runs the team jobs.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics metrics.OperationMetrics
}

// NewService opens a pgx pool for river, registers the reconcile workers and
// schedules the sweep every sweepInterval. A non-positive interval disables
// the sweep.
func NewService(ctx context.Context, dsn string, reconciler Reconciler, logger *slog.Logger, m metrics.OperationMetrics, sweepInterval time.Duration) (*Service, error) {
	ctxLogger := logger.With(
		attr.String("component", "river_queue"),
		attr.String("queue", QueueTeam),
	)
	start := time.Now()
	m.RecordOperationAttempt(ctx, "initialize_service", serviceName)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		m.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReconcileTeamScoreWorker(reconciler, ctxLogger))
	river.AddWorker(workers, NewReconcileAllScoresWorker(reconciler, ctxLogger))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Logger: ctxLogger,
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 5},
			QueueTeam:          {MaxWorkers: 10},
		},
		Workers:      workers,
		PeriodicJobs: periodicJobs(sweepInterval),
	})
	if err != nil {
		pool.Close()
		m.RecordOperationFailure(ctx, "initialize_service", serviceName)
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	m.RecordOperationSuccess(ctx, "initialize_service", serviceName)
	m.RecordOperationDuration(ctx, "initialize_service", serviceName, time.Since(start))
	ctxLogger.InfoContext(ctx, "Team queue service initialized",
		attr.Duration("sweep_interval", sweepInterval),
	)
	return &Service{client: client, pool: pool, logger: ctxLogger, metrics: m}, nil
}

func periodicJobs(interval time.Duration) []*river.PeriodicJob {
	if interval <= 0 {
		return nil
	}
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(interval),
			func() (river.JobArgs, *river.InsertOpts) {
				return ReconcileAllScoresArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}

func (s *Service) Start(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "start_service", serviceName)
	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_service", serviceName)
		return fmt.Errorf("failed to start River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "start_service", serviceName)
	s.logger.InfoContext(ctx, "Team queue service started")
	return nil
}

// Stop waits for running jobs and closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	s.metrics.RecordOperationAttempt(ctx, "stop_service", serviceName)
	defer s.pool.Close()
	if err := s.client.Stop(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "stop_service", serviceName)
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.metrics.RecordOperationSuccess(ctx, "stop_service", serviceName)
	s.logger.InfoContext(ctx, "Team queue service stopped")
	return nil
}

// EnqueueReconcile inserts a reconcile job. A pending job for the same team
// absorbs the insert.
func (s *Service) EnqueueReconcile(ctx context.Context, teamID uuid.UUID) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "enqueue_reconcile", serviceName)

	res, err := s.client.Insert(ctx, ReconcileTeamScoreArgs{TeamID: teamID.String()}, nil)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "enqueue_reconcile", serviceName)
		return fmt.Errorf("failed to enqueue reconcile for team %s: %w", teamID, err)
	}

	s.metrics.RecordOperationSuccess(ctx, "enqueue_reconcile", serviceName)
	s.metrics.RecordOperationDuration(ctx, "enqueue_reconcile", serviceName, time.Since(start))
	s.logger.DebugContext(ctx, "Reconcile job enqueued",
		attr.ExtractCorrelationID(ctx),
		attr.String("team_id", teamID.String()),
		attr.Int64("job_id", res.Job.ID),
		attr.Bool("duplicate", res.UniqueSkippedAsDuplicate),
	)
	return nil
}

// HealthCheck pings the river pool.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("river client is nil")
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("queue service health check failed: %w", err)
	}
	return nil
}
