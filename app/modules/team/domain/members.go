package teamdomain

import (
	"errors"
	"strings"
)

var (
	ErrBlankMember     = errors.New("member name must not be blank")
	ErrDuplicateMember = errors.New("member is already on the roster")
)

// NormalizeMember trims a member name and rejects blanks.
func NormalizeMember(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", ErrBlankMember
	}
	return n, nil
}

// HasMember compares case-insensitively.
func HasMember(members []string, name string) bool {
	for _, m := range members {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// NormalizeRoster trims every name and rejects blanks and case-insensitive duplicates.
func NormalizeRoster(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, raw := range names {
		n, err := NormalizeMember(raw)
		if err != nil {
			return nil, err
		}
		if HasMember(out, n) {
			return nil, ErrDuplicateMember
		}
		out = append(out, n)
	}
	return out, nil
}

// MatchesMember reports whether any roster entry contains fragment, ignoring case.
func MatchesMember(members []string, fragment string) bool {
	f := strings.ToLower(strings.TrimSpace(fragment))
	if f == "" {
		return false
	}
	for _, m := range members {
		if strings.Contains(strings.ToLower(m), f) {
			return true
		}
	}
	return false
}
