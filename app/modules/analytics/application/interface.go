package analyticsservice

import (
	"context"
	"io"

	analyticsdomain "github.com/Black-And-White-Club/truthtable/app/modules/analytics/domain"
	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
)

// Service is the read-only analytics API.
type Service interface {
	GetLeaderboard(ctx context.Context) ([]analyticsdomain.LeaderboardEntry, error)
	GetStatementAgreement(ctx context.Context, statementID string) (analyticsdomain.ChoiceCounts, error)
	GetSessionSummary(ctx context.Context) (analyticsdomain.SessionSummary, error)
	GetTeamPerformance(ctx context.Context) ([]analyticsdomain.TeamPerformance, error)
	GetStatementAnalytics(ctx context.Context) ([]analyticsdomain.StatementStats, error)
	GetScoreBreakdown(ctx context.Context, teamNumber int) (analyticsdomain.ScoreBreakdown, error)
	ExportLeaderboardXLSX(ctx context.Context, w io.Writer) error
}

// TeamSource returns self-healed teams.
type TeamSource interface {
	GetTeam(ctx context.Context, teamNumber int) (*teamdomain.Team, error)
	ListTeams(ctx context.Context) ([]teamdomain.Team, error)
}

type DecisionSource interface {
	ListAllDecisions(ctx context.Context) ([]decisiondomain.Decision, error)
	ListTeamDecisions(ctx context.Context, teamNumber int) ([]decisiondomain.Decision, error)
	ListStatementDecisions(ctx context.Context, statementID string) ([]decisiondomain.Decision, error)
}

type StatementSource interface {
	GetStatement(ctx context.Context, id string) (*statementdomain.Statement, error)
	ListStatements(ctx context.Context) ([]statementdomain.Statement, error)
}
