package analyticsdomain

import (
	"cmp"
	"slices"

	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
)

// ChoiceCounts tallies the answers to one statement. AgreementScore is the share
// of the most common choice.
type ChoiceCounts struct {
	True           int     `json:"true"`
	False          int     `json:"false"`
	Unknown        int     `json:"unknown"`
	Total          int     `json:"total"`
	AgreementScore float64 `json:"agreementScore"`
}

func Agreement(decisions []decisiondomain.Decision) ChoiceCounts {
	var c ChoiceCounts
	for _, d := range decisions {
		switch d.Choice {
		case statementdomain.ChoiceTrue:
			c.True++
		case statementdomain.ChoiceFalse:
			c.False++
		case statementdomain.ChoiceUnknown:
			c.Unknown++
		default:
			continue
		}
		c.Total++
	}
	if c.Total > 0 {
		c.AgreementScore = float64(max(c.True, c.False, c.Unknown)) / float64(c.Total)
	}
	return c
}

type LeaderboardEntry struct {
	Rank                int     `json:"rank"`
	TeamNumber          int     `json:"teamNumber"`
	Name                string  `json:"name"`
	Score               int     `json:"score"`
	CompletedStatements int     `json:"completedStatements"`
	BudgetRemaining     int     `json:"budgetRemaining"`
	Efficiency          float64 `json:"efficiency"`
}

// RankLeaderboard orders teams by score, then completed statements, then budget
// remaining, all descending. Remaining ties keep team-number order.
func RankLeaderboard(teams []teamdomain.Team) []LeaderboardEntry {
	sorted := slices.Clone(teams)
	slices.SortStableFunc(sorted, func(a, b teamdomain.Team) int {
		return cmp.Or(
			cmp.Compare(b.Score, a.Score),
			cmp.Compare(b.CompletedStatements, a.CompletedStatements),
			cmp.Compare(b.Budget, a.Budget),
			cmp.Compare(a.TeamNumber, b.TeamNumber),
		)
	})
	out := make([]LeaderboardEntry, len(sorted))
	for i, t := range sorted {
		out[i] = LeaderboardEntry{
			Rank:                i + 1,
			TeamNumber:          t.TeamNumber,
			Name:                t.DisplayName(),
			Score:               t.Score,
			CompletedStatements: t.CompletedStatements,
			BudgetRemaining:     t.Budget,
			Efficiency:          Efficiency(t.Score, t.Budget),
		}
	}
	return out
}

// Efficiency is points per unit of budget spent, with spend floored at 1.
func Efficiency(score, budgetRemaining int) float64 {
	spent := max(1, teamdomain.StartingBudget-budgetRemaining)
	return float64(score) / float64(spent)
}

type SessionSummary struct {
	TeamCount    int     `json:"teamCount"`
	AverageScore float64 `json:"averageScore"`
	// AccuracyPercent is correct over all decisions, scaled to 0..100.
	AccuracyPercent  float64 `json:"accuracyPercent"`
	AverageCompleted float64 `json:"averageCompleted"`
	TotalSpent       int     `json:"totalSpent"`
	TotalDecisions   int     `json:"totalDecisions"`
}

// Summarize aggregates the session.
func Summarize(teams []teamdomain.Team, decisions []decisiondomain.Decision) SessionSummary {
	s := SessionSummary{TeamCount: len(teams), TotalDecisions: len(decisions)}
	var score, completed int
	for _, t := range teams {
		score += t.Score
		completed += t.CompletedStatements
		s.TotalSpent += t.BudgetSpent()
	}
	if len(teams) > 0 {
		s.AverageScore = float64(score) / float64(len(teams))
		s.AverageCompleted = float64(completed) / float64(len(teams))
	}
	s.AccuracyPercent = accuracyPercent(decisions)
	return s
}

// accuracyPercent is correct / total in 0..100, or 0 without decisions.
func accuracyPercent(decisions []decisiondomain.Decision) float64 {
	if len(decisions) == 0 {
		return 0
	}
	correct := 0
	for _, d := range decisions {
		if d.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(decisions)) * 100
}

type TeamPerformance struct {
	TeamNumber int    `json:"teamNumber"`
	Name       string `json:"name"`
	Score      int    `json:"score"`
	Decisions  int    `json:"decisions"`
	// AccuracyPercent is in 0..100.
	AccuracyPercent float64 `json:"accuracyPercent"`
	Throughput      int     `json:"throughput"`
	BudgetSpent     int     `json:"budgetSpent"`
	Efficiency      float64 `json:"efficiency"`
}

// PerformanceByTeam reports one row per team in team-number order.
func PerformanceByTeam(teams []teamdomain.Team, decisions []decisiondomain.Decision) []TeamPerformance {
	byTeam := make(map[int][]decisiondomain.Decision, len(teams))
	for _, d := range decisions {
		byTeam[d.TeamNumber] = append(byTeam[d.TeamNumber], d)
	}
	sorted := slices.Clone(teams)
	slices.SortFunc(sorted, func(a, b teamdomain.Team) int { return cmp.Compare(a.TeamNumber, b.TeamNumber) })

	out := make([]TeamPerformance, len(sorted))
	for i, t := range sorted {
		ds := byTeam[t.TeamNumber]
		out[i] = TeamPerformance{
			TeamNumber:      t.TeamNumber,
			Name:            t.DisplayName(),
			Score:           t.Score,
			Decisions:       len(ds),
			AccuracyPercent: accuracyPercent(ds),
			Throughput:      t.CompletedStatements,
			BudgetSpent:     t.BudgetSpent(),
			Efficiency:      Efficiency(t.Score, t.Budget),
		}
	}
	return out
}

type StatementStats struct {
	StatementID string       `json:"statementId"`
	Text        string       `json:"text"`
	Correct     int          `json:"correct"`
	Incorrect   int          `json:"incorrect"`
	Unknown     int          `json:"unknown"`
	Counts      ChoiceCounts `json:"counts"`
}

// StatementBreakdown judges answers against each statement's normalized truth
// label. Unknown answers are counted apart unless unknown is the right answer.
func StatementBreakdown(statements []statementdomain.Statement, decisions []decisiondomain.Decision) []StatementStats {
	byStatement := make(map[string][]decisiondomain.Decision, len(statements))
	for _, d := range decisions {
		byStatement[d.StatementID] = append(byStatement[d.StatementID], d)
	}
	out := make([]StatementStats, len(statements))
	for i, st := range statements {
		truth := statementdomain.NormalizeTruthLabel(st.TruthLabel)
		ds := byStatement[st.ID]
		stats := StatementStats{StatementID: st.ID, Text: st.Text, Counts: Agreement(ds)}
		for _, d := range ds {
			switch {
			case d.Choice == truth:
				stats.Correct++
			case d.Choice == statementdomain.ChoiceUnknown:
				stats.Unknown++
			default:
				stats.Incorrect++
			}
		}
		out[i] = stats
	}
	return out
}

// ScoreBreakdown is a team's session score with penalties and bonuses applied.
type ScoreBreakdown struct {
	BaseScore       int `json:"baseScore"`
	NoAnswerPenalty int `json:"noAnswerPenalty"`
	EfficiencyBonus int `json:"efficiencyBonus"`
	TotalScore      int `json:"totalScore"`
	Correct         int `json:"correct"`
	Incorrect       int `json:"incorrect"`
	UnknownCorrect  int `json:"unknownCorrect"`
	NoAnswer        int `json:"noAnswer"`
	Attempted       int `json:"attempted"`
}

// TeamScoreBreakdown penalises unanswered statements and grants the unused-budget
// bonus once the team attempted enough statements.
func TeamScoreBreakdown(decisions []decisiondomain.Decision, team teamdomain.Team, totalStatements int, cfg statementdomain.ScoringConfig) ScoreBreakdown {
	var b ScoreBreakdown
	for _, d := range decisions {
		b.BaseScore += d.PointsEarned
		switch {
		case !d.IsCorrect:
			b.Incorrect++
		case d.Choice == statementdomain.ChoiceUnknown:
			b.UnknownCorrect++
		default:
			b.Correct++
		}
	}
	b.Attempted = len(decisions)
	b.NoAnswer = max(0, totalStatements-b.Attempted)
	b.NoAnswerPenalty = b.NoAnswer * cfg.NoAnswer

	attemptedPct := 0.0
	if totalStatements > 0 {
		attemptedPct = float64(b.Attempted) / float64(totalStatements) * 100
	}
	if b.Attempted >= cfg.MinAttemptsForBonus || attemptedPct >= cfg.MinPercentageForBonus {
		b.EfficiencyBonus = (max(0, team.Budget) / 10) * cfg.EfficiencyBonusPerUnused10
	}
	b.TotalScore = b.BaseScore + b.NoAnswerPenalty + b.EfficiencyBonus
	return b
}
