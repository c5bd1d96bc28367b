package sessiondb

import (
	"context"
	"encoding/json"

	"github.com/uptrace/bun"
)

// Repository persists session configuration.
type Repository interface {
	GetConfig(ctx context.Context, db bun.IDB, key string) (*GameConfig, error)
	ListConfig(ctx context.Context, db bun.IDB) ([]GameConfig, error)
	// UpsertConfig inserts or overwrites the value for key.
	UpsertConfig(ctx context.Context, db bun.IDB, key string, value json.RawMessage) error
}
