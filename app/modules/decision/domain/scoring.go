package decisiondomain

import (
	"strings"

	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
)

const (
	MinConfidence = 0
	MaxConfidence = 100

	// BonusFeedbackSuffix is appended to the feedback when the evidence bonus applied.
	BonusFeedbackSuffix = " (+10% confidence boost for citing recommended evidence)"

	DefaultDeciderName = "Unknown"
)

// ClampConfidence pins c into [0, 100].
func ClampConfidence(c int) int {
	return min(MaxConfidence, max(MinConfidence, c))
}

// EffectiveConfidence adds the bonus to a clamped confidence and caps the sum at 100.
func EffectiveConfidence(confidence, bonus int) int {
	return min(MaxConfidence, ClampConfidence(confidence)+bonus)
}

// ScalePoints returns base*confidence/100 rounded half away from zero.
func ScalePoints(base, confidence int) int {
	n := base * confidence
	if n < 0 {
		return -((-n + 50) / 100)
	}
	return (n + 50) / 100
}

// Input is everything needed to score one submission.
type Input struct {
	Table       statementdomain.Table
	TruthLabel  string
	Recommended []string
	Choice      statementdomain.Choice
	Confidence  int
	Evidence    []string
}

// Result is a scored submission.
type Result struct {
	IsCorrect           bool
	BasePoints          int
	Bonus               int
	EffectiveConfidence int
	Points              int
	Feedback            string
	Source              statementdomain.OutcomeSource
}

// Evaluate resolves the choice, applies the evidence bonus and scales the points.
func Evaluate(in Input, cfg statementdomain.ScoringConfig) Result {
	outcome := statementdomain.Resolve(in.Table, in.TruthLabel, in.Choice, cfg)
	bonus := statementdomain.EvidenceBonus(in.Recommended, in.Evidence)
	effective := EffectiveConfidence(in.Confidence, bonus)

	feedback := outcome.Feedback
	if bonus > 0 {
		feedback = strings.TrimRight(feedback, " ") + BonusFeedbackSuffix
	}

	return Result{
		IsCorrect:           outcome.IsCorrect,
		BasePoints:          outcome.BasePoints,
		Bonus:               bonus,
		EffectiveConfidence: effective,
		Points:              ScalePoints(outcome.BasePoints, effective),
		Feedback:            feedback,
		Source:              outcome.Source,
	}
}
