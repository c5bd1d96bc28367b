package sessiondb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

var ErrNotFound = errors.New("config key not found")

type Impl struct {
	db bun.IDB
}

func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetConfig(ctx context.Context, db bun.IDB, key string) (*GameConfig, error) {
	db = r.resolveDB(db)
	row := new(GameConfig)
	if err := db.NewSelect().Model(row).Where("key = ?", key).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get config %q: %w", key, err)
	}
	return row, nil
}

func (r *Impl) ListConfig(ctx context.Context, db bun.IDB) ([]GameConfig, error) {
	db = r.resolveDB(db)
	var rows []GameConfig
	if err := db.NewSelect().Model(&rows).Order("key ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list config: %w", err)
	}
	return rows, nil
}

func (r *Impl) UpsertConfig(ctx context.Context, db bun.IDB, key string, value json.RawMessage) error {
	db = r.resolveDB(db)
	row := &GameConfig{Key: key, Value: value}
	_, err := db.NewInsert().
		Model(row).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert config %q: %w", key, err)
	}
	return nil
}
