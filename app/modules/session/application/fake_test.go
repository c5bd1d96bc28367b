package sessionservice

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	sessiondb "github.com/Black-And-White-Club/truthtable/app/modules/session/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// FakeRepo is an in-memory sessiondb.Repository.
type FakeRepo struct {
	mu    sync.Mutex
	rows  map[string]sessiondb.GameConfig
	trace []string

	UpsertErr error
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{rows: make(map[string]sessiondb.GameConfig)}
}

func (f *FakeRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeRepo) GetConfig(ctx context.Context, db bun.IDB, key string) (*sessiondb.GameConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "GetConfig")
	row, ok := f.rows[key]
	if !ok {
		return nil, sessiondb.ErrNotFound
	}
	return &row, nil
}

func (f *FakeRepo) ListConfig(ctx context.Context, db bun.IDB) ([]sessiondb.GameConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "ListConfig")
	out := make([]sessiondb.GameConfig, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b sessiondb.GameConfig) int { return cmp.Compare(a.Key, b.Key) })
	return out, nil
}

func (f *FakeRepo) UpsertConfig(ctx context.Context, db bun.IDB, key string, value json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "UpsertConfig")
	if f.UpsertErr != nil {
		return f.UpsertErr
	}
	f.rows[key] = sessiondb.GameConfig{Key: key, Value: value, UpdatedAt: time.Now()}
	return nil
}
