package decisionservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/truthtable/app/eventbus"
	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
	decisiondb "github.com/Black-And-White-Club/truthtable/app/modules/decision/infrastructure/repositories"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/gamelock"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// DecisionService implements the Service interface.
type DecisionService struct {
	repo       decisiondb.Repository
	teams      TeamLedger
	statements ScoringSource
	publisher  message.Publisher
	scoring    statementdomain.ScoringConfig
	logger     *slog.Logger
	metrics    metrics.OperationMetrics
	runner     *operation.Runner
}

func NewDecisionService(
	repo decisiondb.Repository,
	teams TeamLedger,
	statements ScoringSource,
	publisher message.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *DecisionService {
	runner := operation.NewRunner("DecisionService", logger, m, tracer, db)
	return &DecisionService{
		repo:       repo,
		teams:      teams,
		statements: statements,
		publisher:  publisher,
		scoring:    statementdomain.DefaultScoring,
		logger:     runner.Logger,
		metrics:    runner.Metrics,
		runner:     runner,
	}
}

// SubmitDecision validates, scores and records a team's answer. The decision
// insert and the score increment share one transaction.
func (s *DecisionService) SubmitDecision(ctx context.Context, req decisiondomain.SubmitRequest) (*decisiondomain.Decision, error) {
	in, err := req.Normalize()
	if err != nil {
		return nil, gameerrors.Wrap(gameerrors.KindValidation, err, "%s", err.Error())
	}

	// The scoring snapshot is read before the game lock and outside the submit
	// transaction. Reset never touches statements or evaluations.
	sc, err := s.statements.LoadForScoring(ctx, in.StatementID)
	if err != nil {
		return nil, err
	}

	var teamID uuid.UUID
	identifier := fmt.Sprintf("team-%d/%s", in.TeamNumber, in.StatementID)
	decision, err := operation.Execute(s.runner, ctx, "SubmitDecision", identifier, func(ctx context.Context, db bun.IDB) (results.OperationResult[*decisiondomain.Decision, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[*decisiondomain.Decision, error]{}, err
		}

		team, err := s.teams.GetTeamByNumber(ctx, db, in.TeamNumber)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[*decisiondomain.Decision, error](gameerrors.NotFound("team", in.TeamNumber)), nil
			}
			return results.OperationResult[*decisiondomain.Decision, error]{}, err
		}
		teamID = team.ID

		if _, err := s.repo.GetDecision(ctx, db, team.ID, in.StatementID); err == nil {
			return results.FailureResult[*decisiondomain.Decision, error](duplicateDecision(in)), nil
		} else if !errors.Is(err, decisiondb.ErrNotFound) {
			return results.OperationResult[*decisiondomain.Decision, error]{}, err
		}

		scored := decisiondomain.Evaluate(decisiondomain.Input{
			Table:       sc.Table,
			TruthLabel:  sc.Statement.TruthLabel,
			Recommended: sc.Recommended,
			Choice:      in.Choice,
			Confidence:  in.Confidence,
			Evidence:    in.EvidenceItemIDs,
		}, s.scoring)

		row := &decisiondb.Decision{
			ID:              uuid.New(),
			TeamID:          team.ID,
			StatementID:     in.StatementID,
			Choice:          string(in.Choice),
			Confidence:      in.Confidence,
			Rationale:       in.Rationale,
			DeciderName:     in.DeciderName,
			EvidenceItemIDs: in.EvidenceItemIDs,
			IsCorrect:       scored.IsCorrect,
			PointsEarned:    scored.Points,
			Feedback:        scored.Feedback,
		}
		if err := s.repo.InsertDecision(ctx, db, row); err != nil {
			if errors.Is(err, decisiondb.ErrDuplicate) {
				return results.FailureResult[*decisiondomain.Decision, error](
					gameerrors.Wrap(gameerrors.KindConcurrencyConflict, err, "another submission for this statement won the race"),
				), nil
			}
			return results.OperationResult[*decisiondomain.Decision, error]{}, err
		}

		if err := s.teams.ApplyDecisionScore(ctx, db, team.ID, scored.Points); err != nil {
			return results.OperationResult[*decisiondomain.Decision, error]{}, err
		}

		d := toDomain(*row, in.TeamNumber)
		return results.SuccessResult[*decisiondomain.Decision, error](&d), nil
	})
	if err != nil {
		if gameerrors.KindOf(err) == gameerrors.KindConcurrencyConflict {
			return nil, s.recheckAfterConflict(ctx, in, teamID, err)
		}
		return nil, err
	}

	s.metrics.RecordPointsAwarded(ctx, decision.PointsEarned)
	s.publishSubmitted(ctx, decision)
	return decision, nil
}

// recheckAfterConflict runs the duplicate check once more outside the aborted
// transaction. A decision that now exists is reported as a duplicate.
func (s *DecisionService) recheckAfterConflict(ctx context.Context, in decisiondomain.Normalized, teamID uuid.UUID, conflict error) error {
	if teamID == uuid.Nil {
		return conflict
	}
	_, err := s.repo.GetDecision(ctx, nil, teamID, in.StatementID)
	switch {
	case err == nil:
		s.logger.InfoContext(ctx, "Concurrent submission resolved as duplicate",
			attr.ExtractCorrelationID(ctx),
			attr.TeamNumber(in.TeamNumber),
			attr.StatementID(in.StatementID),
		)
		return duplicateDecision(in)
	case errors.Is(err, decisiondb.ErrNotFound):
		return conflict
	default:
		return fmt.Errorf("SubmitDecision recheck: %w", err)
	}
}

func duplicateDecision(in decisiondomain.Normalized) error {
	return gameerrors.New(gameerrors.KindDuplicateDecision,
		"team %d has already answered statement %s", in.TeamNumber, in.StatementID)
}

func (s *DecisionService) publishSubmitted(ctx context.Context, d *decisiondomain.Decision) {
	err := eventbus.PublishJSON(ctx, s.publisher, eventbus.TopicDecisionSubmitted, eventbus.DecisionSubmittedPayload{
		DecisionID:   d.ID.String(),
		TeamID:       d.TeamID.String(),
		TeamNumber:   d.TeamNumber,
		StatementID:  d.StatementID,
		Choice:       string(d.Choice),
		IsCorrect:    d.IsCorrect,
		PointsEarned: d.PointsEarned,
		SubmittedAt:  d.SubmittedAt,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish decision event",
			attr.ExtractCorrelationID(ctx),
			attr.TeamNumber(d.TeamNumber),
			attr.StatementID(d.StatementID),
			attr.Error(err),
		)
	}
}

func (s *DecisionService) ListTeamDecisions(ctx context.Context, teamNumber int) ([]decisiondomain.Decision, error) {
	return operation.Execute(s.runner, ctx, "ListTeamDecisions", fmt.Sprintf("team-%d", teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]decisiondomain.Decision, error], error) {
		team, err := s.teams.GetTeamByNumber(ctx, db, teamNumber)
		if err != nil {
			if errors.Is(err, teamdb.ErrNotFound) {
				return results.FailureResult[[]decisiondomain.Decision, error](gameerrors.NotFound("team", teamNumber)), nil
			}
			return results.OperationResult[[]decisiondomain.Decision, error]{}, err
		}
		rows, err := s.repo.ListByTeam(ctx, db, team.ID)
		if err != nil {
			return results.OperationResult[[]decisiondomain.Decision, error]{}, err
		}
		out := make([]decisiondomain.Decision, len(rows))
		for i, r := range rows {
			out[i] = toDomain(r, teamNumber)
		}
		return results.SuccessResult[[]decisiondomain.Decision, error](out), nil
	})
}

func (s *DecisionService) ListStatementDecisions(ctx context.Context, statementID string) ([]decisiondomain.Decision, error) {
	return operation.Execute(s.runner, ctx, "ListStatementDecisions", statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]decisiondomain.Decision, error], error) {
		rows, err := s.repo.ListByStatement(ctx, db, statementID)
		if err != nil {
			return results.OperationResult[[]decisiondomain.Decision, error]{}, err
		}
		out, err := s.withTeamNumbers(ctx, db, rows)
		if err != nil {
			return results.OperationResult[[]decisiondomain.Decision, error]{}, err
		}
		return results.SuccessResult[[]decisiondomain.Decision, error](out), nil
	})
}

func (s *DecisionService) ListAllDecisions(ctx context.Context) ([]decisiondomain.Decision, error) {
	return operation.Execute(s.runner, ctx, "ListAllDecisions", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]decisiondomain.Decision, error], error) {
		rows, err := s.repo.ListAll(ctx, db)
		if err != nil {
			return results.OperationResult[[]decisiondomain.Decision, error]{}, err
		}
		out, err := s.withTeamNumbers(ctx, db, rows)
		if err != nil {
			return results.OperationResult[[]decisiondomain.Decision, error]{}, err
		}
		return results.SuccessResult[[]decisiondomain.Decision, error](out), nil
	})
}

func (s *DecisionService) withTeamNumbers(ctx context.Context, db bun.IDB, rows []decisiondb.Decision) ([]decisiondomain.Decision, error) {
	teams, err := s.teams.ListTeams(ctx, db)
	if err != nil {
		return nil, err
	}
	numbers := make(map[uuid.UUID]int, len(teams))
	for _, t := range teams {
		numbers[t.ID] = t.TeamNumber
	}
	out := make([]decisiondomain.Decision, len(rows))
	for i, r := range rows {
		out[i] = toDomain(r, numbers[r.TeamID])
	}
	return out, nil
}

func toDomain(r decisiondb.Decision, teamNumber int) decisiondomain.Decision {
	return decisiondomain.Decision{
		ID:              r.ID,
		TeamID:          r.TeamID,
		TeamNumber:      teamNumber,
		StatementID:     r.StatementID,
		Choice:          statementdomain.Choice(r.Choice),
		Confidence:      r.Confidence,
		Rationale:       r.Rationale,
		DeciderName:     r.DeciderName,
		EvidenceItemIDs: r.EvidenceItemIDs,
		IsCorrect:       r.IsCorrect,
		PointsEarned:    r.PointsEarned,
		Feedback:        r.Feedback,
		SubmittedAt:     r.SubmittedAt,
	}
}

var _ Service = (*DecisionService)(nil)
