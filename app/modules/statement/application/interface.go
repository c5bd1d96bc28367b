package statementservice

import (
	"context"

	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
)

// Service is the statement module API used by handlers and by other modules.
type Service interface {
	GetStatement(ctx context.Context, id string) (*statementdomain.Statement, error)
	ListStatements(ctx context.Context) ([]statementdomain.Statement, error)
	ImportStatements(ctx context.Context, statements []statementdomain.Statement) error

	GetEvaluationTable(ctx context.Context, statementID string) (statementdomain.Table, error)
	SetEvaluationTable(ctx context.Context, statementID string, entries statementdomain.Table) (statementdomain.Table, error)
	UpsertEvaluation(ctx context.Context, statementID string, entry statementdomain.Evaluation) (statementdomain.Table, error)
	DeleteEvaluation(ctx context.Context, statementID string, choice statementdomain.Choice) (statementdomain.Table, error)

	GetRecommendedItems(ctx context.Context, statementID string) ([]string, error)
	SetRecommendedItems(ctx context.Context, statementID string, itemIDs []string) ([]string, error)

	// LoadForScoring returns everything the decision evaluator needs in one call.
	LoadForScoring(ctx context.Context, statementID string) (*ScoringContext, error)

	GetItem(ctx context.Context, id string) (*statementdomain.Item, error)
	ImportItems(ctx context.Context, items []statementdomain.Item) error
	ListItemsForTeam(ctx context.Context, teamNumber int) ([]statementdomain.Item, error)
}

// ScoringContext bundles a statement with its evaluation table and recommended evidence.
type ScoringContext struct {
	Statement   statementdomain.Statement
	Table       statementdomain.Table
	Recommended []string
}

// TeamProgress reports what a team has already bought and answered. It is
// satisfied by the team module.
type TeamProgress interface {
	PurchasedItemIDs(ctx context.Context, teamNumber int) ([]string, error)
	DecidedStatementIDs(ctx context.Context, teamNumber int) ([]string, error)
}
