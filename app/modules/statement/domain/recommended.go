package statementdomain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// legacyBlob is the shape older deployments packed into the recommended-items list.
type legacyBlob struct {
	Evaluations []Evaluation `json:"evaluations"`
}

func isBookkeeping(entry string) bool {
	trimmed := strings.TrimSpace(entry)
	return trimmed == "" || strings.HasPrefix(trimmed, "{")
}

// FilterRecommended drops bookkeeping entries and duplicates, keeping order.
func FilterRecommended(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		if isBookkeeping(entry) {
			continue
		}
		id := strings.TrimSpace(entry)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SplitLegacyRecommended separates a co-encoded recommended-items list into plain
// item ids and the evaluation table packed alongside them. When several blobs are
// present the last one wins for each choice.
func SplitLegacyRecommended(raw []string) ([]string, Table, error) {
	var table Table
	for _, entry := range raw {
		trimmed := strings.TrimSpace(entry)
		if !strings.HasPrefix(trimmed, "{") {
			continue
		}
		var blob legacyBlob
		if err := json.Unmarshal([]byte(trimmed), &blob); err != nil {
			return nil, nil, fmt.Errorf("failed to decode legacy evaluation blob: %w", err)
		}
		for _, e := range blob.Evaluations {
			c, err := ParseChoice(string(e.Choice))
			if err != nil {
				return nil, nil, err
			}
			e.Choice = c
			table = table.Upsert(e)
		}
	}
	return FilterRecommended(raw), table, nil
}

// EvidenceBonusPercent is the confidence boost for citing recommended evidence.
const EvidenceBonusPercent = 10

// EvidenceBonus returns EvidenceBonusPercent when at least one submitted item is in
// the recommended list, otherwise 0.
func EvidenceBonus(recommended, submitted []string) int {
	rec := FilterRecommended(recommended)
	if len(rec) == 0 || len(submitted) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(rec))
	for _, id := range rec {
		set[id] = struct{}{}
	}
	for _, id := range submitted {
		if _, ok := set[strings.TrimSpace(id)]; ok {
			return EvidenceBonusPercent
		}
	}
	return 0
}
