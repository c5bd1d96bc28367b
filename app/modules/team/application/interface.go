package teamservice

import (
	"context"
	"encoding/json"

	"github.com/Black-And-White-Club/truthtable/app/modules/rotation"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Service is the team ledger API.
type Service interface {
	// GetTeam creates the team on first access and repairs a drifted score.
	GetTeam(ctx context.Context, teamNumber int) (*teamdomain.Team, error)
	ListTeams(ctx context.Context) ([]teamdomain.Team, error)
	ReconcileScore(ctx context.Context, teamID uuid.UUID) (*teamdomain.Team, error)
	// ReconcileAllScores returns how many teams needed a correction.
	ReconcileAllScores(ctx context.Context) (int, error)

	PurchaseItem(ctx context.Context, teamNumber int, itemID string, statementID *string) (*teamdomain.PurchaseReceipt, error)
	PurchaseHint(ctx context.Context, teamNumber int, statementID string) (*teamdomain.PurchaseReceipt, error)
	ListPurchases(ctx context.Context, teamNumber int) ([]teamdomain.Purchase, error)
	ListHints(ctx context.Context, teamNumber int) ([]teamdomain.Hint, error)

	AddMember(ctx context.Context, teamNumber int, name string) ([]string, error)
	SetMembers(ctx context.Context, teamNumber int, names []string, shuffle bool) ([]string, error)
	SetNickname(ctx context.Context, teamNumber int, nickname string) (*teamdomain.Team, error)
	SearchPlayers(ctx context.Context, name string) ([]teamdomain.PlayerMatch, error)
	GetDecider(ctx context.Context, teamNumber int, statementIndex int) (rotation.Assignment, error)

	ResetGame(ctx context.Context, maxTeams int) (*teamdomain.ResetResult, error)

	PurchasedItemIDs(ctx context.Context, teamNumber int) ([]string, error)
	DecidedStatementIDs(ctx context.Context, teamNumber int) ([]string, error)
}

// Catalog resolves the items and statements a team can buy against.
type Catalog interface {
	GetItem(ctx context.Context, id string) (*statementdomain.Item, error)
	GetStatement(ctx context.Context, id string) (*statementdomain.Statement, error)
}

// ConfigStore writes session configuration inside the reset transaction.
type ConfigStore interface {
	UpsertConfig(ctx context.Context, db bun.IDB, key string, value json.RawMessage) error
}
