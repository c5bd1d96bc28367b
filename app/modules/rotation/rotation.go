// Package rotation assigns the deciding member for each statement as a pure
// function of the roster and the statement index.
package rotation

import (
	"math/rand/v2"
)

// AssignedDecider returns members[index mod len(members)]. Negative indexes wrap
// from the end. It reports false for an empty roster.
func AssignedDecider(members []string, statementIndex int) (string, bool) {
	n := len(members)
	if n == 0 {
		return "", false
	}
	i := statementIndex % n
	if i < 0 {
		i += n
	}
	return members[i], true
}

// Advance returns the decider for the statement after statementIndex.
func Advance(members []string, statementIndex int) (string, bool) {
	return AssignedDecider(members, statementIndex+1)
}

// Skip passes the decision to the next member. It is the same move as Advance.
func Skip(members []string, statementIndex int) (string, bool) {
	return Advance(members, statementIndex)
}

// NextDecider is the member who decides after the current one.
func NextDecider(members []string, statementIndex int) (string, bool) {
	return Advance(members, statementIndex)
}

// Source is the randomness Shuffle draws from.
type Source interface {
	IntN(n int) int
}

// Shuffle returns a Fisher-Yates permutation of members. A nil rng uses the
// global generator. The input slice is not modified.
func Shuffle(members []string, rng Source) []string {
	out := make([]string, len(members))
	copy(out, members)
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// ValidateDeciderOrder reports whether order is a permutation of members,
// duplicates included.
func ValidateDeciderOrder(members, order []string) bool {
	if len(members) != len(order) {
		return false
	}
	counts := make(map[string]int, len(members))
	for _, m := range members {
		counts[m]++
	}
	for _, o := range order {
		counts[o]--
		if counts[o] < 0 {
			return false
		}
	}
	return true
}

// Assignment is the decider view for one statement.
type Assignment struct {
	StatementIndex int    `json:"statementIndex"`
	Current        string `json:"current"`
	Next           string `json:"next"`
	RosterSize     int    `json:"rosterSize"`
}

// Assign builds the Assignment for statementIndex. Current and Next are empty
// for an empty roster.
func Assign(members []string, statementIndex int) Assignment {
	current, _ := AssignedDecider(members, statementIndex)
	next, _ := NextDecider(members, statementIndex)
	return Assignment{
		StatementIndex: statementIndex,
		Current:        current,
		Next:           next,
		RosterSize:     len(members),
	}
}
