package sessiondb

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// GameConfig is one key/value row of session configuration.
type GameConfig struct {
	bun.BaseModel `bun:"table:game_config,alias:gc"`

	Key       string          `bun:"key,pk"`
	Value     json.RawMessage `bun:"value,type:jsonb,notnull"`
	UpdatedAt time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
