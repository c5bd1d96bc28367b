package sessiondomain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEntry(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{name: "max teams in range", key: KeyMaxTeams, value: `12`},
		{name: "max teams too high", key: KeyMaxTeams, value: `21`, wantErr: true},
		{name: "max teams zero", key: KeyMaxTeams, value: `0`, wantErr: true},
		{name: "max teams not a number", key: KeyMaxTeams, value: `"ten"`, wantErr: true},
		{name: "game active bool", key: KeyGameActive, value: `false`},
		{name: "game active string", key: KeyGameActive, value: `"yes"`, wantErr: true},
		{name: "opaque object", key: "round_timer", value: `{"seconds":90}`},
		{name: "invalid json", key: "round_timer", value: `{seconds:90}`, wantErr: true},
		{name: "empty value", key: "round_timer", value: ``, wantErr: true},
		{name: "bad key", key: "Round-Timer", value: `1`, wantErr: true},
		{name: "empty key", key: "", value: `1`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.key, json.RawMessage(tt.value), 1, 20)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
