package decisiondb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Decision is the persisted decision row. (team_id, statement_id) is unique.
type Decision struct {
	bun.BaseModel `bun:"table:decisions,alias:d"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	TeamID          uuid.UUID `bun:"team_id,type:uuid,notnull,unique:uq_decisions_team_statement"`
	StatementID     string    `bun:"statement_id,notnull,unique:uq_decisions_team_statement"`
	Choice          string    `bun:"choice,notnull"`
	Confidence      int       `bun:"confidence,notnull"`
	Rationale       string    `bun:"rationale,notnull"`
	DeciderName     string    `bun:"decider_name,notnull"`
	EvidenceItemIDs []string  `bun:"evidence_items,array,notnull,default:'{}'"`
	IsCorrect       bool      `bun:"is_correct,notnull"`
	PointsEarned    int       `bun:"points_earned,notnull"`
	Feedback        string    `bun:"feedback,notnull,default:''"`
	SubmittedAt     time.Time `bun:"submitted_at,nullzero,notnull,default:current_timestamp"`
}
