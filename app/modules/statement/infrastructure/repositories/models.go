package statementdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Statement is the persisted statement row.
type Statement struct {
	bun.BaseModel `bun:"table:statements,alias:st"`

	ID         string    `bun:"id,pk"`
	Text       string    `bun:"text,notnull"`
	Topic      string    `bun:"topic,notnull,default:''"`
	TruthLabel string    `bun:"truth_label,notnull"`
	Position   int       `bun:"position,notnull,default:0"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// Evaluation is one entry of a statement's evaluation table, keyed by (statement, choice).
type Evaluation struct {
	bun.BaseModel `bun:"table:statement_evaluations,alias:ev"`

	StatementID string    `bun:"statement_id,pk"`
	Choice      string    `bun:"choice,pk"`
	IsCorrect   bool      `bun:"is_correct,notnull"`
	Points      int       `bun:"points,notnull"`
	Feedback    string    `bun:"feedback,notnull,default:''"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// RecommendedItem links a statement to an item recommended as evidence.
type RecommendedItem struct {
	bun.BaseModel `bun:"table:statement_recommended_items,alias:ri"`

	StatementID string `bun:"statement_id,pk"`
	ItemID      string `bun:"item_id,pk"`
	Position    int    `bun:"position,notnull,default:0"`
}

// Item is a purchasable evidence item.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:it"`

	ID                      string    `bun:"id,pk"`
	Name                    string    `bun:"name,notnull"`
	Description             string    `bun:"description,notnull,default:''"`
	Cost                    int       `bun:"cost,notnull"`
	PrerequisiteItemID      *string   `bun:"prerequisite_item_id"`
	PrerequisiteStatementID *string   `bun:"prerequisite_statement_id"`
	CreatedAt               time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
