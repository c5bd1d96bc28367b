package decisionservice

import (
	"context"

	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
	statementservice "github.com/Black-And-White-Club/truthtable/app/modules/statement/application"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service is the decision module API.
type Service interface {
	SubmitDecision(ctx context.Context, req decisiondomain.SubmitRequest) (*decisiondomain.Decision, error)
	ListTeamDecisions(ctx context.Context, teamNumber int) ([]decisiondomain.Decision, error)
	ListStatementDecisions(ctx context.Context, statementID string) ([]decisiondomain.Decision, error)
	ListAllDecisions(ctx context.Context) ([]decisiondomain.Decision, error)
}

// ScoringSource loads a statement's evaluation table and recommended evidence.
type ScoringSource interface {
	LoadForScoring(ctx context.Context, statementID string) (*statementservice.ScoringContext, error)
}

// TeamLedger is the slice of the team repository a submission writes through.
// Calls receive the submission's transaction handle.
type TeamLedger interface {
	GetTeamByNumber(ctx context.Context, db bun.IDB, teamNumber int) (*teamdb.Team, error)
	ListTeams(ctx context.Context, db bun.IDB) ([]teamdb.Team, error)
	ApplyDecisionScore(ctx context.Context, db bun.IDB, teamID uuid.UUID, points int) error
}
