package statementdb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for statement, evaluation and item persistence.
type Repository interface {
	GetStatement(ctx context.Context, db bun.IDB, id string) (*Statement, error)
	ListStatements(ctx context.Context, db bun.IDB) ([]Statement, error)
	UpsertStatements(ctx context.Context, db bun.IDB, statements []Statement) error

	// GetEvaluations returns the evaluation table for a statement, possibly empty.
	GetEvaluations(ctx context.Context, db bun.IDB, statementID string) ([]Evaluation, error)
	// UpsertEvaluations replaces entries with the same (statement, choice) key.
	UpsertEvaluations(ctx context.Context, db bun.IDB, evaluations []Evaluation) error
	// DeleteEvaluation returns ErrNotFound when no entry exists for the choice.
	DeleteEvaluation(ctx context.Context, db bun.IDB, statementID, choice string) error

	GetRecommendedItems(ctx context.Context, db bun.IDB, statementID string) ([]string, error)
	// ReplaceRecommendedItems swaps the whole list. Evaluations are untouched.
	ReplaceRecommendedItems(ctx context.Context, db bun.IDB, statementID string, itemIDs []string) error

	GetItem(ctx context.Context, db bun.IDB, id string) (*Item, error)
	ListItems(ctx context.Context, db bun.IDB) ([]Item, error)
	UpsertItems(ctx context.Context, db bun.IDB, items []Item) error
}
