package eventbus

import "time"

// Topics published by the game engine.
const (
	TopicDecisionSubmitted  = "truthtable.decision.submitted.v1"
	TopicPurchaseCompleted  = "truthtable.purchase.completed.v1"
	TopicHintPurchased      = "truthtable.hint.purchased.v1"
	TopicGameReset          = "truthtable.game.reset.v1"
	TopicEvaluationsUpdated = "truthtable.statement.evaluations.updated.v1"
)

type DecisionSubmittedPayload struct {
	DecisionID   string    `json:"decision_id"`
	TeamID       string    `json:"team_id"`
	TeamNumber   int       `json:"team_number"`
	StatementID  string    `json:"statement_id"`
	Choice       string    `json:"choice"`
	IsCorrect    bool      `json:"is_correct"`
	PointsEarned int       `json:"points_earned"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type PurchaseCompletedPayload struct {
	PurchaseID  string  `json:"purchase_id"`
	TeamID      string  `json:"team_id"`
	TeamNumber  int     `json:"team_number"`
	ItemID      string  `json:"item_id"`
	StatementID *string `json:"statement_id,omitempty"`
	Cost        int     `json:"cost"`
	NewBudget   int     `json:"new_budget"`
}

type HintPurchasedPayload struct {
	HintID      string `json:"hint_id"`
	TeamID      string `json:"team_id"`
	TeamNumber  int    `json:"team_number"`
	StatementID string `json:"statement_id"`
	Cost        int    `json:"cost"`
	NewBudget   int    `json:"new_budget"`
}

type GameResetPayload struct {
	MaxTeams     int       `json:"max_teams"`
	TeamsCreated int       `json:"teams_created"`
	ResetAt      time.Time `json:"reset_at"`
}

type EvaluationsUpdatedPayload struct {
	StatementID string   `json:"statement_id"`
	Choices     []string `json:"choices"`
}
