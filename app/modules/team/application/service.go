package teamservice

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/modules/rotation"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/gamelock"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

const maxNicknameLength = 40

// TeamService implements the Service interface.
type TeamService struct {
	repo       teamdb.Repository
	catalog    Catalog
	config     ConfigStore
	publisher  message.Publisher
	logger     *slog.Logger
	metrics    metrics.OperationMetrics
	runner     *operation.Runner
	rng        rotation.Source
	newBackOff func() backoff.BackOff
}

func NewTeamService(
	repo teamdb.Repository,
	catalog Catalog,
	config ConfigStore,
	publisher message.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *TeamService {
	runner := operation.NewRunner("TeamService", logger, m, tracer, db)
	return &TeamService{
		repo:       repo,
		catalog:    catalog,
		config:     config,
		publisher:  publisher,
		logger:     runner.Logger,
		metrics:    runner.Metrics,
		runner:     runner,
		newBackOff: exponentialBackOff(resetAttempts),
	}
}

func exponentialBackOff(attempts int) func() backoff.BackOff {
	return func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 100 * time.Millisecond
		b.MaxElapsedTime = 5 * time.Second
		return backoff.WithMaxRetries(b, uint64(attempts-1))
	}
}

// SetResetAttempts changes how many times a conflicting reset transaction runs.
func (s *TeamService) SetResetAttempts(attempts int) {
	if attempts < 1 {
		attempts = 1
	}
	s.newBackOff = exponentialBackOff(attempts)
}

// GetTeam creates the team on first use. Any positive number is accepted;
// max_teams only bounds what ResetGame seeds.
func (s *TeamService) GetTeam(ctx context.Context, teamNumber int) (*teamdomain.Team, error) {
	if teamNumber < teamdomain.MinTeams {
		return nil, gameerrors.Validation("team number must be positive, got %d", teamNumber)
	}

	return operation.Execute(s.runner, ctx, "GetTeam", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[*teamdomain.Team, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		if err := s.repo.EnsureTeam(ctx, db, teamNumber, teamdomain.StartingBudget); err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		row, err := s.repo.GetTeamByNumber(ctx, db, teamNumber)
		if err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		if _, err := s.heal(ctx, db, row); err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		t := toDomainTeam(*row)
		return results.SuccessResult[*teamdomain.Team, error](&t), nil
	})
}

func (s *TeamService) ListTeams(ctx context.Context) ([]teamdomain.Team, error) {
	return operation.Execute(s.runner, ctx, "ListTeams", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]teamdomain.Team, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[[]teamdomain.Team, error]{}, err
		}
		rows, err := s.repo.ListTeams(ctx, db)
		if err != nil {
			return results.OperationResult[[]teamdomain.Team, error]{}, err
		}
		out := make([]teamdomain.Team, len(rows))
		for i := range rows {
			if _, err := s.heal(ctx, db, &rows[i]); err != nil {
				return results.OperationResult[[]teamdomain.Team, error]{}, err
			}
			out[i] = toDomainTeam(rows[i])
		}
		return results.SuccessResult[[]teamdomain.Team, error](out), nil
	})
}

func (s *TeamService) ReconcileScore(ctx context.Context, teamID uuid.UUID) (*teamdomain.Team, error) {
	return operation.Execute(s.runner, ctx, "ReconcileScore", teamID.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*teamdomain.Team, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		row, err := s.repo.GetTeamByID(ctx, db, teamID)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[*teamdomain.Team, error](gameerrors.NotFound("team", teamID)), nil
			}
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		if _, err := s.heal(ctx, db, row); err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		t := toDomainTeam(*row)
		return results.SuccessResult[*teamdomain.Team, error](&t), nil
	})
}

func (s *TeamService) ReconcileAllScores(ctx context.Context) (int, error) {
	return operation.Execute(s.runner, ctx, "ReconcileAllScores", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[int, error]{}, err
		}
		rows, err := s.repo.ListTeams(ctx, db)
		if err != nil {
			return results.OperationResult[int, error]{}, err
		}
		corrected := 0
		for i := range rows {
			changed, err := s.heal(ctx, db, &rows[i])
			if err != nil {
				return results.OperationResult[int, error]{}, err
			}
			if changed {
				corrected++
			}
		}
		return results.SuccessResult[int, error](corrected), nil
	})
}

// heal recomputes score and completed count from the decision history and
// writes them back when the stored values drifted. row is updated in place.
// The first comparison is lock-free; a drift is confirmed against the row
// re-read under its lock before anything is written.
func (s *TeamService) heal(ctx context.Context, db bun.IDB, row *teamdb.Team) (bool, error) {
	totals, err := s.repo.SumDecisions(ctx, db, row.ID)
	if err != nil {
		return false, err
	}
	if totals.Score == row.Score && totals.Completed == row.CompletedStatements {
		return false, nil
	}

	locked, err := s.repo.LockTeam(ctx, db, row.ID)
	if err != nil {
		return false, err
	}
	*row = *locked
	totals, err = s.repo.SumDecisions(ctx, db, row.ID)
	if err != nil {
		return false, err
	}
	if totals.Score == row.Score && totals.Completed == row.CompletedStatements {
		return false, nil
	}

	s.logger.WarnContext(ctx, "Team totals drifted from decision history, correcting",
		attr.ExtractCorrelationID(ctx),
		attr.TeamNumber(row.TeamNumber),
		attr.Int("stored_score", row.Score),
		attr.Int("derived_score", totals.Score),
		attr.Int("stored_completed", row.CompletedStatements),
		attr.Int("derived_completed", totals.Completed),
	)
	if err := s.repo.CorrectTotals(ctx, db, row.ID, totals); err != nil {
		return false, err
	}
	row.Score = totals.Score
	row.CompletedStatements = totals.Completed
	return true, nil
}

// loadTeam maps a missing team onto a NotFound failure.
func (s *TeamService) loadTeam(ctx context.Context, db bun.IDB, teamNumber int) (*teamdb.Team, error, error) {
	row, err := s.repo.GetTeamByNumber(ctx, db, teamNumber)
	if err != nil {
		if errors.Is(err, teamdb.ErrNotFound) {
			return nil, gameerrors.NotFound("team", teamNumber), nil
		}
		return nil, nil, err
	}
	return row, nil, nil
}

func teamKey(n int) string {
	return "team-" + strconv.Itoa(n)
}

func toDomainTeam(r teamdb.Team) teamdomain.Team {
	members := r.Members
	if members == nil {
		members = []string{}
	}
	return teamdomain.Team{
		ID:                  r.ID,
		TeamNumber:          r.TeamNumber,
		Name:                r.Name,
		Nickname:            r.Nickname,
		Budget:              r.Budget,
		Score:               r.Score,
		Members:             members,
		CompletedStatements: r.CompletedStatements,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}

func toDomainPurchase(r teamdb.Purchase) teamdomain.Purchase {
	return teamdomain.Purchase{
		ID:          r.ID,
		TeamID:      r.TeamID,
		ItemID:      r.ItemID,
		StatementID: r.StatementID,
		Cost:        r.Cost,
		PurchasedAt: r.PurchasedAt,
	}
}

func toDomainHint(r teamdb.HintPurchase) teamdomain.Hint {
	return teamdomain.Hint{
		ID:          r.ID,
		TeamID:      r.TeamID,
		StatementID: r.StatementID,
		Cost:        r.Cost,
		PurchasedAt: r.PurchasedAt,
	}
}

var _ Service = (*TeamService)(nil)
