package decisiondomain

import (
	"strings"
	"time"

	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	"github.com/google/uuid"
)

// Decision is a team's scored answer to one statement.
type Decision struct {
	ID              uuid.UUID              `json:"id"`
	TeamID          uuid.UUID              `json:"teamId"`
	TeamNumber      int                    `json:"teamNumber"`
	StatementID     string                 `json:"statementId"`
	Choice          statementdomain.Choice `json:"choice"`
	Confidence      int                    `json:"confidence"`
	Rationale       string                 `json:"rationale"`
	DeciderName     string                 `json:"deciderName"`
	EvidenceItemIDs []string               `json:"evidenceItemIds"`
	IsCorrect       bool                   `json:"isCorrect"`
	PointsEarned    int                    `json:"pointsEarned"`
	Feedback        string                 `json:"feedback"`
	SubmittedAt     time.Time              `json:"submittedAt"`
}

// SubmitRequest is the raw submission before validation.
type SubmitRequest struct {
	TeamNumber      int      `json:"-"`
	StatementID     string   `json:"statementId"`
	Choice          string   `json:"choice"`
	Confidence      int      `json:"confidence"`
	Rationale       string   `json:"rationale"`
	EvidenceItemIDs []string `json:"evidenceItemIds"`
	DeciderName     string   `json:"deciderName"`
}

// Normalized is a validated SubmitRequest.
type Normalized struct {
	TeamNumber      int
	StatementID     string
	Choice          statementdomain.Choice
	Confidence      int
	Rationale       string
	EvidenceItemIDs []string
	DeciderName     string
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Reason }

// Normalize validates the request, lower-cases the choice, clamps the
// confidence and defaults the decider name.
func (r SubmitRequest) Normalize() (Normalized, error) {
	if r.TeamNumber <= 0 {
		return Normalized{}, &ValidationError{Field: "teamNumber", Reason: "must be positive"}
	}
	statementID := strings.TrimSpace(r.StatementID)
	if statementID == "" {
		return Normalized{}, &ValidationError{Field: "statementId", Reason: "is required"}
	}
	rationale := strings.TrimSpace(r.Rationale)
	if rationale == "" {
		return Normalized{}, &ValidationError{Field: "rationale", Reason: "is required"}
	}
	choice, err := statementdomain.ParseChoice(r.Choice)
	if err != nil {
		return Normalized{}, &ValidationError{Field: "choice", Reason: err.Error()}
	}
	decider := strings.TrimSpace(r.DeciderName)
	if decider == "" {
		decider = DefaultDeciderName
	}
	evidence := make([]string, 0, len(r.EvidenceItemIDs))
	for _, id := range r.EvidenceItemIDs {
		if id = strings.TrimSpace(id); id != "" {
			evidence = append(evidence, id)
		}
	}
	return Normalized{
		TeamNumber:      r.TeamNumber,
		StatementID:     statementID,
		Choice:          choice,
		Confidence:      ClampConfidence(r.Confidence),
		Rationale:       rationale,
		EvidenceItemIDs: evidence,
		DeciderName:     decider,
	}, nil
}
