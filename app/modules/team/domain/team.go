package teamdomain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	StartingBudget = 1000
	HintCost       = 10
	MinTeams       = 1
	MaxTeams       = 20
)

// Team is the ledger view of one team.
type Team struct {
	ID                  uuid.UUID `json:"id"`
	TeamNumber          int       `json:"teamNumber"`
	Name                string    `json:"name"`
	Nickname            *string   `json:"nickname,omitempty"`
	Budget              int       `json:"budget"`
	Score               int       `json:"score"`
	Members             []string  `json:"members"`
	CompletedStatements int       `json:"completedStatements"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// DisplayName prefers the nickname.
func (t Team) DisplayName() string {
	if t.Nickname != nil && strings.TrimSpace(*t.Nickname) != "" {
		return *t.Nickname
	}
	return t.Name
}

// BudgetSpent is how much of the starting budget is gone.
func (t Team) BudgetSpent() int {
	return StartingBudget - t.Budget
}

type Purchase struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"teamId"`
	ItemID      string    `json:"itemId"`
	StatementID *string   `json:"statementId,omitempty"`
	Cost        int       `json:"cost"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

type Hint struct {
	ID          uuid.UUID `json:"id"`
	TeamID      uuid.UUID `json:"teamId"`
	StatementID string    `json:"statementId"`
	Cost        int       `json:"cost"`
	PurchasedAt time.Time `json:"purchasedAt"`
}

// PurchaseReceipt is returned by item and hint purchases.
type PurchaseReceipt struct {
	PurchaseID uuid.UUID `json:"purchaseId"`
	Cost       int       `json:"cost"`
	NewBudget  int       `json:"newBudget"`
}

// ResetResult reports the outcome of a game reset.
type ResetResult struct {
	TeamsCreated int `json:"teamsCreated"`
}

// PlayerMatch is one roster entry found by a player search.
type PlayerMatch struct {
	TeamNumber int    `json:"teamNumber"`
	TeamName   string `json:"teamName"`
	Member     string `json:"member"`
}
