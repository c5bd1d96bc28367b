package analyticsservice

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	analyticsdomain "github.com/Black-And-White-Club/truthtable/app/modules/analytics/domain"
	analyticsexport "github.com/Black-And-White-Club/truthtable/app/modules/analytics/infrastructure/export"
	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

// AnalyticsService aggregates the other modules' read models. It owns no tables.
type AnalyticsService struct {
	teams      TeamSource
	decisions  DecisionSource
	statements StatementSource
	scoring    statementdomain.ScoringConfig
	logger     *slog.Logger
	runner     *operation.Runner
}

func NewAnalyticsService(
	teams TeamSource,
	decisions DecisionSource,
	statements StatementSource,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
) *AnalyticsService {
	runner := operation.NewRunner("AnalyticsService", logger, m, tracer, nil)
	return &AnalyticsService{
		teams:      teams,
		decisions:  decisions,
		statements: statements,
		scoring:    statementdomain.DefaultScoring,
		logger:     runner.Logger,
		runner:     runner,
	}
}

// read runs a read-only aggregation. Errors from the source services already
// carry their kinds, so they pass through as failures.
func read[S any](s *AnalyticsService, ctx context.Context, op, identifier string, fn func(ctx context.Context) (S, error)) (S, error) {
	return operation.Unwrap(operation.WithTelemetry(s.runner, ctx, op, identifier, func(ctx context.Context) (results.OperationResult[S, error], error) {
		v, err := fn(ctx)
		if err != nil {
			return results.FailureResult[S, error](err), nil
		}
		return results.SuccessResult[S, error](v), nil
	}))
}

func (s *AnalyticsService) GetLeaderboard(ctx context.Context) ([]analyticsdomain.LeaderboardEntry, error) {
	return read(s, ctx, "GetLeaderboard", "all", s.leaderboard)
}

func (s *AnalyticsService) leaderboard(ctx context.Context) ([]analyticsdomain.LeaderboardEntry, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, err
	}
	return analyticsdomain.RankLeaderboard(teams), nil
}

func (s *AnalyticsService) GetStatementAgreement(ctx context.Context, statementID string) (analyticsdomain.ChoiceCounts, error) {
	return read(s, ctx, "GetStatementAgreement", statementID, func(ctx context.Context) (analyticsdomain.ChoiceCounts, error) {
		decisions, err := s.decisions.ListStatementDecisions(ctx, statementID)
		if err != nil {
			return analyticsdomain.ChoiceCounts{}, err
		}
		return analyticsdomain.Agreement(decisions), nil
	})
}

func (s *AnalyticsService) GetSessionSummary(ctx context.Context) (analyticsdomain.SessionSummary, error) {
	return read(s, ctx, "GetSessionSummary", "all", func(ctx context.Context) (analyticsdomain.SessionSummary, error) {
		teams, decisions, err := s.teamsAndDecisions(ctx)
		if err != nil {
			return analyticsdomain.SessionSummary{}, err
		}
		return analyticsdomain.Summarize(teams, decisions), nil
	})
}

func (s *AnalyticsService) GetTeamPerformance(ctx context.Context) ([]analyticsdomain.TeamPerformance, error) {
	return read(s, ctx, "GetTeamPerformance", "all", func(ctx context.Context) ([]analyticsdomain.TeamPerformance, error) {
		teams, decisions, err := s.teamsAndDecisions(ctx)
		if err != nil {
			return nil, err
		}
		return analyticsdomain.PerformanceByTeam(teams, decisions), nil
	})
}

func (s *AnalyticsService) GetStatementAnalytics(ctx context.Context) ([]analyticsdomain.StatementStats, error) {
	return read(s, ctx, "GetStatementAnalytics", "all", s.statementStats)
}

func (s *AnalyticsService) statementStats(ctx context.Context) ([]analyticsdomain.StatementStats, error) {
	statements, err := s.statements.ListStatements(ctx)
	if err != nil {
		return nil, err
	}
	decisions, err := s.decisions.ListAllDecisions(ctx)
	if err != nil {
		return nil, err
	}
	return analyticsdomain.StatementBreakdown(statements, decisions), nil
}

// GetScoreBreakdown scores a team against every statement in play, counting the
// ones it never answered.
func (s *AnalyticsService) GetScoreBreakdown(ctx context.Context, teamNumber int) (analyticsdomain.ScoreBreakdown, error) {
	return read(s, ctx, "GetScoreBreakdown", strconv.Itoa(teamNumber), func(ctx context.Context) (analyticsdomain.ScoreBreakdown, error) {
		team, err := s.teams.GetTeam(ctx, teamNumber)
		if err != nil {
			return analyticsdomain.ScoreBreakdown{}, err
		}
		decisions, err := s.decisions.ListTeamDecisions(ctx, teamNumber)
		if err != nil {
			return analyticsdomain.ScoreBreakdown{}, err
		}
		statements, err := s.statements.ListStatements(ctx)
		if err != nil {
			return analyticsdomain.ScoreBreakdown{}, err
		}
		return analyticsdomain.TeamScoreBreakdown(decisions, *team, len(statements), s.scoring), nil
	})
}

// ExportLeaderboardXLSX buffers the workbook so a failure leaves w untouched.
func (s *AnalyticsService) ExportLeaderboardXLSX(ctx context.Context, w io.Writer) error {
	buf, err := read(s, ctx, "ExportLeaderboardXLSX", "all", func(ctx context.Context) (*bytes.Buffer, error) {
		entries, err := s.leaderboard(ctx)
		if err != nil {
			return nil, err
		}
		stats, err := s.statementStats(ctx)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		if err := analyticsexport.WriteLeaderboard(&buf, entries, stats); err != nil {
			return nil, err
		}
		return &buf, nil
	})
	if err != nil {
		return err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("ExportLeaderboardXLSX: %w", err)
	}
	return nil
}

func (s *AnalyticsService) teamsAndDecisions(ctx context.Context) ([]teamdomain.Team, []decisiondomain.Decision, error) {
	teams, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, nil, err
	}
	decisions, err := s.decisions.ListAllDecisions(ctx)
	if err != nil {
		return nil, nil, err
	}
	return teams, decisions, nil
}
