package statementhandlers

import (
	"context"

	statementservice "github.com/Black-And-White-Club/truthtable/app/modules/statement/application"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
)

// FakeService implements statementservice.Service. Unset funcs return zero values.
type FakeService struct {
	GetStatementFunc        func(ctx context.Context, id string) (*statementdomain.Statement, error)
	ListStatementsFunc      func(ctx context.Context) ([]statementdomain.Statement, error)
	GetEvaluationTableFunc  func(ctx context.Context, id string) (statementdomain.Table, error)
	SetEvaluationTableFunc  func(ctx context.Context, id string, entries statementdomain.Table) (statementdomain.Table, error)
	UpsertEvaluationFunc    func(ctx context.Context, id string, entry statementdomain.Evaluation) (statementdomain.Table, error)
	DeleteEvaluationFunc    func(ctx context.Context, id string, choice statementdomain.Choice) (statementdomain.Table, error)
	GetRecommendedItemsFunc func(ctx context.Context, id string) ([]string, error)
	SetRecommendedItemsFunc func(ctx context.Context, id string, itemIDs []string) ([]string, error)
}

func (f *FakeService) GetStatement(ctx context.Context, id string) (*statementdomain.Statement, error) {
	if f.GetStatementFunc != nil {
		return f.GetStatementFunc(ctx, id)
	}
	return &statementdomain.Statement{ID: id}, nil
}

func (f *FakeService) ListStatements(ctx context.Context) ([]statementdomain.Statement, error) {
	if f.ListStatementsFunc != nil {
		return f.ListStatementsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) ImportStatements(ctx context.Context, statements []statementdomain.Statement) error {
	return nil
}

func (f *FakeService) GetEvaluationTable(ctx context.Context, id string) (statementdomain.Table, error) {
	if f.GetEvaluationTableFunc != nil {
		return f.GetEvaluationTableFunc(ctx, id)
	}
	return statementdomain.Table{}, nil
}

func (f *FakeService) SetEvaluationTable(ctx context.Context, id string, entries statementdomain.Table) (statementdomain.Table, error) {
	if f.SetEvaluationTableFunc != nil {
		return f.SetEvaluationTableFunc(ctx, id, entries)
	}
	return entries, nil
}

func (f *FakeService) UpsertEvaluation(ctx context.Context, id string, entry statementdomain.Evaluation) (statementdomain.Table, error) {
	if f.UpsertEvaluationFunc != nil {
		return f.UpsertEvaluationFunc(ctx, id, entry)
	}
	return statementdomain.Table{entry}, nil
}

func (f *FakeService) DeleteEvaluation(ctx context.Context, id string, choice statementdomain.Choice) (statementdomain.Table, error) {
	if f.DeleteEvaluationFunc != nil {
		return f.DeleteEvaluationFunc(ctx, id, choice)
	}
	return statementdomain.Table{}, nil
}

func (f *FakeService) GetRecommendedItems(ctx context.Context, id string) ([]string, error) {
	if f.GetRecommendedItemsFunc != nil {
		return f.GetRecommendedItemsFunc(ctx, id)
	}
	return []string{}, nil
}

func (f *FakeService) SetRecommendedItems(ctx context.Context, id string, itemIDs []string) ([]string, error) {
	if f.SetRecommendedItemsFunc != nil {
		return f.SetRecommendedItemsFunc(ctx, id, itemIDs)
	}
	return itemIDs, nil
}

func (f *FakeService) LoadForScoring(ctx context.Context, id string) (*statementservice.ScoringContext, error) {
	return &statementservice.ScoringContext{}, nil
}

func (f *FakeService) GetItem(ctx context.Context, id string) (*statementdomain.Item, error) {
	return &statementdomain.Item{ID: id}, nil
}

func (f *FakeService) ImportItems(ctx context.Context, items []statementdomain.Item) error {
	return nil
}

func (f *FakeService) ListItemsForTeam(ctx context.Context, teamNumber int) ([]statementdomain.Item, error) {
	return nil, nil
}

var _ statementservice.Service = (*FakeService)(nil)
