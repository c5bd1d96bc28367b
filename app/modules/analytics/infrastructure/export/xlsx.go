// Package analyticsexport renders analytics as spreadsheets for facilitators.
package analyticsexport

import (
	"fmt"
	"io"

	analyticsdomain "github.com/Black-And-White-Club/truthtable/app/modules/analytics/domain"
	"github.com/xuri/excelize/v2"
)

const (
	LeaderboardSheet = "Leaderboard"
	StatementsSheet  = "Statements"
)

var (
	leaderboardHeader = []any{"Rank", "Team", "Name", "Score", "Completed", "Budget Remaining", "Efficiency"}
	statementsHeader  = []any{"Statement", "Text", "Correct", "Incorrect", "Unknown", "True", "False", "Total", "Agreement"}
)

// WriteLeaderboard writes a two-sheet workbook to w.
func WriteLeaderboard(w io.Writer, entries []analyticsdomain.LeaderboardEntry, stats []analyticsdomain.StatementStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), LeaderboardSheet); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	if _, err := f.NewSheet(StatementsSheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", StatementsSheet, err)
	}

	rows := make([][]any, 0, len(entries)+1)
	rows = append(rows, leaderboardHeader)
	for _, e := range entries {
		rows = append(rows, []any{e.Rank, e.TeamNumber, e.Name, e.Score, e.CompletedStatements, e.BudgetRemaining, e.Efficiency})
	}
	if err := writeRows(f, LeaderboardSheet, rows); err != nil {
		return err
	}

	rows = make([][]any, 0, len(stats)+1)
	rows = append(rows, statementsHeader)
	for _, s := range stats {
		rows = append(rows, []any{
			s.StatementID, s.Text, s.Correct, s.Incorrect, s.Unknown,
			s.Counts.True, s.Counts.False, s.Counts.Total, s.Counts.AgreementScore,
		})
	}
	if err := writeRows(f, StatementsSheet, rows); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for idx, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, idx+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, axis, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", idx+1, sheet, err)
		}
	}
	return nil
}
