package teamdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Team is the persisted team row. Budget is guarded by a CHECK (budget >= 0).
type Team struct {
	bun.BaseModel `bun:"table:teams,alias:t"`

	ID                  uuid.UUID `bun:"id,pk,type:uuid"`
	TeamNumber          int       `bun:"team_number,notnull,unique"`
	Name                string    `bun:"name,notnull"`
	Nickname            *string   `bun:"nickname"`
	Budget              int       `bun:"budget,notnull,default:1000"`
	Score               int       `bun:"score,notnull,default:0"`
	Members             []string  `bun:"members,array,notnull,default:'{}'"`
	CompletedStatements int       `bun:"completed_statements,notnull,default:0"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Purchase records an item bought by a team. (team_id, item_id) is unique.
type Purchase struct {
	bun.BaseModel `bun:"table:purchases,alias:p"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	TeamID      uuid.UUID `bun:"team_id,type:uuid,notnull,unique:uq_purchases_team_item"`
	ItemID      string    `bun:"item_id,notnull,unique:uq_purchases_team_item"`
	StatementID *string   `bun:"statement_id"`
	Cost        int       `bun:"cost,notnull"`
	PurchasedAt time.Time `bun:"purchased_at,nullzero,notnull,default:current_timestamp"`
}

// HintPurchase records a hint bought for a statement. (team_id, statement_id) is unique.
type HintPurchase struct {
	bun.BaseModel `bun:"table:hint_purchases,alias:h"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	TeamID      uuid.UUID `bun:"team_id,type:uuid,notnull,unique:uq_hint_purchases_team_statement"`
	StatementID string    `bun:"statement_id,notnull,unique:uq_hint_purchases_team_statement"`
	Cost        int       `bun:"cost,notnull"`
	PurchasedAt time.Time `bun:"purchased_at,nullzero,notnull,default:current_timestamp"`
}

// DecisionTotals is the score and completed count derived from decision history.
type DecisionTotals struct {
	Score     int `bun:"score"`
	Completed int `bun:"completed"`
}

// GameCounts is a snapshot of the per-game row counts.
type GameCounts struct {
	Teams     int
	Decisions int
	Purchases int
	Hints     int
}
