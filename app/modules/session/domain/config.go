package sessiondomain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Well-known keys. Other keys are stored as opaque JSON.
const (
	KeyMaxTeams   = "max_teams"
	KeyGameActive = "game_active"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

// Entry is one session configuration value.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// ValidateEntry checks the key shape, that value is JSON, and the type of the
// well-known keys. minTeams and maxTeams bound max_teams.
func ValidateEntry(key string, value json.RawMessage, minTeams, maxTeams int) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("key %q must be lower snake case", key)
	}
	if len(value) == 0 || !json.Valid(value) {
		return fmt.Errorf("value for %q must be valid JSON", key)
	}
	switch key {
	case KeyMaxTeams:
		var n int
		if err := json.Unmarshal(value, &n); err != nil {
			return fmt.Errorf("%s must be an integer", key)
		}
		if n < minTeams || n > maxTeams {
			return fmt.Errorf("%s must be between %d and %d", key, minTeams, maxTeams)
		}
	case KeyGameActive:
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return fmt.Errorf("%s must be a boolean", key)
		}
	}
	return nil
}
