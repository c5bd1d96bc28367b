package statementservice

import (
	"context"
	"slices"
	"sync"

	statementdb "github.com/Black-And-White-Club/truthtable/app/modules/statement/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Repo
// ------------------------

// FakeRepo is an in-memory statementdb.Repository. Func fields override the
// default map-backed behaviour per test.
type FakeRepo struct {
	mu    sync.Mutex
	trace []string

	statements  map[string]statementdb.Statement
	evaluations map[string]map[string]statementdb.Evaluation
	recommended map[string][]string
	items       map[string]statementdb.Item

	GetStatementFunc            func(ctx context.Context, id string) (*statementdb.Statement, error)
	UpsertEvaluationsFunc       func(ctx context.Context, evaluations []statementdb.Evaluation) error
	ReplaceRecommendedItemsFunc func(ctx context.Context, statementID string, itemIDs []string) error
	ListItemsFunc               func(ctx context.Context) ([]statementdb.Item, error)
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		statements:  map[string]statementdb.Statement{},
		evaluations: map[string]map[string]statementdb.Evaluation{},
		recommended: map[string][]string{},
		items:       map[string]statementdb.Item{},
	}
}

func (f *FakeRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

func (f *FakeRepo) GetStatement(ctx context.Context, db bun.IDB, id string) (*statementdb.Statement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetStatement")
	if f.GetStatementFunc != nil {
		return f.GetStatementFunc(ctx, id)
	}
	st, ok := f.statements[id]
	if !ok {
		return nil, statementdb.ErrNotFound
	}
	return &st, nil
}

func (f *FakeRepo) ListStatements(ctx context.Context, db bun.IDB) ([]statementdb.Statement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListStatements")
	out := make([]statementdb.Statement, 0, len(f.statements))
	for _, st := range f.statements {
		out = append(out, st)
	}
	slices.SortFunc(out, func(a, b statementdb.Statement) int { return a.Position - b.Position })
	return out, nil
}

func (f *FakeRepo) UpsertStatements(ctx context.Context, db bun.IDB, statements []statementdb.Statement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertStatements")
	for _, st := range statements {
		f.statements[st.ID] = st
	}
	return nil
}

func (f *FakeRepo) GetEvaluations(ctx context.Context, db bun.IDB, statementID string) ([]statementdb.Evaluation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetEvaluations")
	var out []statementdb.Evaluation
	for _, c := range []string{"true", "false", "unknown"} {
		if e, ok := f.evaluations[statementID][c]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeRepo) UpsertEvaluations(ctx context.Context, db bun.IDB, evaluations []statementdb.Evaluation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertEvaluations")
	if f.UpsertEvaluationsFunc != nil {
		return f.UpsertEvaluationsFunc(ctx, evaluations)
	}
	for _, e := range evaluations {
		if f.evaluations[e.StatementID] == nil {
			f.evaluations[e.StatementID] = map[string]statementdb.Evaluation{}
		}
		f.evaluations[e.StatementID][e.Choice] = e
	}
	return nil
}

func (f *FakeRepo) DeleteEvaluation(ctx context.Context, db bun.IDB, statementID, choice string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteEvaluation")
	if _, ok := f.evaluations[statementID][choice]; !ok {
		return statementdb.ErrNotFound
	}
	delete(f.evaluations[statementID], choice)
	return nil
}

func (f *FakeRepo) GetRecommendedItems(ctx context.Context, db bun.IDB, statementID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRecommendedItems")
	return slices.Clone(f.recommended[statementID]), nil
}

func (f *FakeRepo) ReplaceRecommendedItems(ctx context.Context, db bun.IDB, statementID string, itemIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReplaceRecommendedItems")
	if f.ReplaceRecommendedItemsFunc != nil {
		return f.ReplaceRecommendedItemsFunc(ctx, statementID, itemIDs)
	}
	f.recommended[statementID] = slices.Clone(itemIDs)
	return nil
}

func (f *FakeRepo) GetItem(ctx context.Context, db bun.IDB, id string) (*statementdb.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetItem")
	it, ok := f.items[id]
	if !ok {
		return nil, statementdb.ErrNotFound
	}
	return &it, nil
}

func (f *FakeRepo) ListItems(ctx context.Context, db bun.IDB) ([]statementdb.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListItems")
	if f.ListItemsFunc != nil {
		return f.ListItemsFunc(ctx)
	}
	out := make([]statementdb.Item, 0, len(f.items))
	for _, it := range f.items {
		out = append(out, it)
	}
	return out, nil
}

func (f *FakeRepo) UpsertItems(ctx context.Context, db bun.IDB, items []statementdb.Item) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpsertItems")
	for _, it := range items {
		f.items[it.ID] = it
	}
	return nil
}

var _ statementdb.Repository = (*FakeRepo)(nil)

// ------------------------
// Fake Team Progress
// ------------------------

type FakeProgress struct {
	Purchased map[int][]string
	Decided   map[int][]string
	Err       error
}

func (f *FakeProgress) PurchasedItemIDs(ctx context.Context, teamNumber int) ([]string, error) {
	return f.Purchased[teamNumber], f.Err
}

func (f *FakeProgress) DecidedStatementIDs(ctx context.Context, teamNumber int) ([]string, error) {
	return f.Decided[teamNumber], f.Err
}

var _ TeamProgress = (*FakeProgress)(nil)
