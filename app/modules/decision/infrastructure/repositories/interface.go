package decisiondb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for decision persistence.
type Repository interface {
	// GetDecision returns ErrNotFound when the team has not answered the statement.
	GetDecision(ctx context.Context, db bun.IDB, teamID uuid.UUID, statementID string) (*Decision, error)
	// InsertDecision returns ErrDuplicate when the (team, statement) pair already exists.
	InsertDecision(ctx context.Context, db bun.IDB, d *Decision) error
	ListByTeam(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]Decision, error)
	ListByStatement(ctx context.Context, db bun.IDB, statementID string) ([]Decision, error)
	ListAll(ctx context.Context, db bun.IDB) ([]Decision, error)
}
