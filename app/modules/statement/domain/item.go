package statementdomain

import (
	"cmp"
	"slices"
)

// Item is a purchasable piece of evidence.
type Item struct {
	ID                      string  `json:"id"`
	Name                    string  `json:"name"`
	Description             string  `json:"description"`
	Cost                    int     `json:"cost"`
	PrerequisiteItemID      *string `json:"prerequisiteItemId,omitempty"`
	PrerequisiteStatementID *string `json:"prerequisiteStatementId,omitempty"`
}

// Unlocked reports whether both prerequisites, when set, are satisfied.
func (i Item) Unlocked(purchased, decided map[string]bool) bool {
	if i.PrerequisiteItemID != nil && !purchased[*i.PrerequisiteItemID] {
		return false
	}
	if i.PrerequisiteStatementID != nil && !decided[*i.PrerequisiteStatementID] {
		return false
	}
	return true
}

// AvailableItems returns the unlocked items ordered by cost, then id.
func AvailableItems(items []Item, purchased, decided map[string]bool) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Unlocked(purchased, decided) {
			out = append(out, it)
		}
	}
	slices.SortFunc(out, func(a, b Item) int {
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}
