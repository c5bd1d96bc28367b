package statementdomain

import (
	"errors"
	"fmt"
	"strings"
)

// Choice is a team's answer to a statement.
type Choice string

const (
	ChoiceTrue    Choice = "true"
	ChoiceFalse   Choice = "false"
	ChoiceUnknown Choice = "unknown"
)

// labelUnknowable is the legacy truth label for statements that cannot be decided.
const labelUnknowable = "unknowable"

var ErrInvalidChoice = errors.New("choice must be true, false, or unknown")

// AllChoices lists the valid choices in display order.
var AllChoices = []Choice{ChoiceTrue, ChoiceFalse, ChoiceUnknown}

// ParseChoice accepts any casing and surrounding whitespace.
func ParseChoice(s string) (Choice, error) {
	c := Choice(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidChoice, s)
	}
	return c, nil
}

func (c Choice) Valid() bool {
	switch c {
	case ChoiceTrue, ChoiceFalse, ChoiceUnknown:
		return true
	}
	return false
}

// NormalizeTruthLabel maps a stored truth label onto the choice that answers it.
func NormalizeTruthLabel(label string) Choice {
	l := strings.ToLower(strings.TrimSpace(label))
	if l == labelUnknowable {
		return ChoiceUnknown
	}
	return Choice(l)
}

// Evaluation is one row of a statement's evaluation table.
type Evaluation struct {
	Choice    Choice `json:"choice"`
	IsCorrect bool   `json:"isCorrect"`
	Points    int    `json:"points"`
	Feedback  string `json:"feedback"`
}

// Table holds at most one Evaluation per choice.
type Table []Evaluation

// Lookup returns the entry for c, if any.
func (t Table) Lookup(c Choice) (Evaluation, bool) {
	for _, e := range t {
		if e.Choice == c {
			return e, true
		}
	}
	return Evaluation{}, false
}

// Upsert returns a copy of t with e replacing any entry for the same choice, or
// appended when the choice is new.
func (t Table) Upsert(e Evaluation) Table {
	out := make(Table, 0, len(t)+1)
	replaced := false
	for _, existing := range t {
		if existing.Choice == e.Choice {
			out = append(out, e)
			replaced = true
			continue
		}
		out = append(out, existing)
	}
	if !replaced {
		out = append(out, e)
	}
	return out
}

// Delete returns a copy of t without the entry for c.
func (t Table) Delete(c Choice) Table {
	out := make(Table, 0, len(t))
	for _, e := range t {
		if e.Choice != c {
			out = append(out, e)
		}
	}
	return out
}

// Validate rejects invalid choices and more than one entry per choice.
func (t Table) Validate() error {
	seen := make(map[Choice]struct{}, len(t))
	for _, e := range t {
		if !e.Choice.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidChoice, e.Choice)
		}
		if _, dup := seen[e.Choice]; dup {
			return fmt.Errorf("duplicate evaluation for choice %q", e.Choice)
		}
		seen[e.Choice] = struct{}{}
	}
	return nil
}

// Choices returns the choices present in t.
func (t Table) Choices() []string {
	out := make([]string, 0, len(t))
	for _, e := range t {
		out = append(out, string(e.Choice))
	}
	return out
}
