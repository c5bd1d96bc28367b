package analyticshandlers

import (
	"context"
	"io"

	analyticsdomain "github.com/Black-And-White-Club/truthtable/app/modules/analytics/domain"
)

// FakeService implements analyticsservice.Service.
type FakeService struct {
	GetLeaderboardFunc        func(ctx context.Context) ([]analyticsdomain.LeaderboardEntry, error)
	GetSessionSummaryFunc     func(ctx context.Context) (analyticsdomain.SessionSummary, error)
	GetTeamPerformanceFunc    func(ctx context.Context) ([]analyticsdomain.TeamPerformance, error)
	GetStatementAnalyticsFunc func(ctx context.Context) ([]analyticsdomain.StatementStats, error)
	GetScoreBreakdownFunc     func(ctx context.Context, teamNumber int) (analyticsdomain.ScoreBreakdown, error)
	ExportLeaderboardFunc     func(ctx context.Context, w io.Writer) error
}

func (f *FakeService) GetLeaderboard(ctx context.Context) ([]analyticsdomain.LeaderboardEntry, error) {
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetStatementAgreement(ctx context.Context, statementID string) (analyticsdomain.ChoiceCounts, error) {
	return analyticsdomain.ChoiceCounts{}, nil
}

func (f *FakeService) GetSessionSummary(ctx context.Context) (analyticsdomain.SessionSummary, error) {
	if f.GetSessionSummaryFunc != nil {
		return f.GetSessionSummaryFunc(ctx)
	}
	return analyticsdomain.SessionSummary{}, nil
}

func (f *FakeService) GetTeamPerformance(ctx context.Context) ([]analyticsdomain.TeamPerformance, error) {
	if f.GetTeamPerformanceFunc != nil {
		return f.GetTeamPerformanceFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetStatementAnalytics(ctx context.Context) ([]analyticsdomain.StatementStats, error) {
	if f.GetStatementAnalyticsFunc != nil {
		return f.GetStatementAnalyticsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) GetScoreBreakdown(ctx context.Context, teamNumber int) (analyticsdomain.ScoreBreakdown, error) {
	if f.GetScoreBreakdownFunc != nil {
		return f.GetScoreBreakdownFunc(ctx, teamNumber)
	}
	return analyticsdomain.ScoreBreakdown{}, nil
}

func (f *FakeService) ExportLeaderboardXLSX(ctx context.Context, w io.Writer) error {
	if f.ExportLeaderboardFunc != nil {
		return f.ExportLeaderboardFunc(ctx, w)
	}
	return nil
}
