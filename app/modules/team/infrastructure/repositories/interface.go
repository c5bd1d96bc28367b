package teamdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for team ledger persistence.
type Repository interface {
	// EnsureTeam inserts the team with default budget and score unless it exists.
	EnsureTeam(ctx context.Context, db bun.IDB, teamNumber int, startingBudget int) error
	GetTeamByNumber(ctx context.Context, db bun.IDB, teamNumber int) (*Team, error)
	GetTeamByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Team, error)
	// LockTeam re-reads the team row and holds it against concurrent score
	// updates until the transaction ends.
	LockTeam(ctx context.Context, db bun.IDB, id uuid.UUID) (*Team, error)
	ListTeams(ctx context.Context, db bun.IDB) ([]Team, error)

	// ApplyDecisionScore atomically adds points and bumps the completed count.
	ApplyDecisionScore(ctx context.Context, db bun.IDB, teamID uuid.UUID, points int) error
	// SumDecisions derives score and completed count from the decisions table.
	SumDecisions(ctx context.Context, db bun.IDB, teamID uuid.UUID) (DecisionTotals, error)
	// CorrectTotals overwrites the stored score and completed count.
	CorrectTotals(ctx context.Context, db bun.IDB, teamID uuid.UUID, totals DecisionTotals) error
	DecidedStatementIDs(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]string, error)

	// DebitBudget subtracts amount only when the budget covers it. It returns
	// ErrInsufficientBudget when no row qualified.
	DebitBudget(ctx context.Context, db bun.IDB, teamID uuid.UUID, amount int) (int, error)

	GetPurchase(ctx context.Context, db bun.IDB, teamID uuid.UUID, itemID string) (*Purchase, error)
	InsertPurchase(ctx context.Context, db bun.IDB, p *Purchase) error
	DeletePurchase(ctx context.Context, db bun.IDB, id uuid.UUID) error
	ListPurchases(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]Purchase, error)

	GetHint(ctx context.Context, db bun.IDB, teamID uuid.UUID, statementID string) (*HintPurchase, error)
	InsertHint(ctx context.Context, db bun.IDB, h *HintPurchase) error
	DeleteHint(ctx context.Context, db bun.IDB, id uuid.UUID) error
	ListHints(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]HintPurchase, error)

	// AppendMember returns ErrDuplicate when the exact name is already on the roster.
	AppendMember(ctx context.Context, db bun.IDB, teamID uuid.UUID, name string) ([]string, error)
	ReplaceMembers(ctx context.Context, db bun.IDB, teamID uuid.UUID, members []string) error
	SetNickname(ctx context.Context, db bun.IDB, teamID uuid.UUID, nickname *string) error
	// SearchByMember matches roster entries case-insensitively by substring.
	SearchByMember(ctx context.Context, db bun.IDB, fragment string) ([]Team, error)

	CountGameRows(ctx context.Context, db bun.IDB) (GameCounts, error)
	// ClearGame deletes hints, purchases, decisions and teams, in that order.
	ClearGame(ctx context.Context, db bun.IDB) error
	CreateTeams(ctx context.Context, db bun.IDB, count int, startingBudget int) error
}
