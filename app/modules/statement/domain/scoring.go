package statementdomain

// ScoringConfig holds the legacy fallback amounts and the session-level penalties.
type ScoringConfig struct {
	CorrectTrueFalse           int
	CorrectUnknown             int
	Incorrect                  int
	NoAnswer                   int
	EfficiencyBonusPerUnused10 int
	MinAttemptsForBonus        int
	MinPercentageForBonus      float64
}

var DefaultScoring = ScoringConfig{
	CorrectTrueFalse:           100,
	CorrectUnknown:             70,
	Incorrect:                  -80,
	NoAnswer:                   -20,
	EfficiencyBonusPerUnused10: 1,
	MinAttemptsForBonus:        12,
	MinPercentageForBonus:      80,
}

const (
	FeedbackCorrect   = "Correct!"
	FeedbackIncorrect = "Incorrect."
)

// OutcomeSource records which resolution path produced an Outcome.
type OutcomeSource string

const (
	SourceTable  OutcomeSource = "table"
	SourceLegacy OutcomeSource = "legacy"
)

// Outcome is the resolved correctness and unscaled points for a choice.
type Outcome struct {
	IsCorrect  bool
	BasePoints int
	Feedback   string
	Source     OutcomeSource
}

// Resolve looks the choice up in the table first and falls back to the legacy
// truth label when the table has no entry for it.
func Resolve(table Table, truthLabel string, choice Choice, cfg ScoringConfig) Outcome {
	if e, ok := table.Lookup(choice); ok {
		return Outcome{
			IsCorrect:  e.IsCorrect,
			BasePoints: e.Points,
			Feedback:   e.Feedback,
			Source:     SourceTable,
		}
	}
	return legacyOutcome(truthLabel, choice, cfg)
}

func legacyOutcome(truthLabel string, choice Choice, cfg ScoringConfig) Outcome {
	correct := choice == NormalizeTruthLabel(truthLabel)
	if !correct {
		return Outcome{BasePoints: cfg.Incorrect, Feedback: FeedbackIncorrect, Source: SourceLegacy}
	}
	points := cfg.CorrectTrueFalse
	if choice == ChoiceUnknown {
		points = cfg.CorrectUnknown
	}
	return Outcome{IsCorrect: true, BasePoints: points, Feedback: FeedbackCorrect, Source: SourceLegacy}
}
