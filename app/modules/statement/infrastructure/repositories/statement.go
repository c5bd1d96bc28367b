package statementdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

var (
	// ErrNotFound is returned when a statement, item or evaluation does not exist.
	ErrNotFound = errors.New("statement record not found")
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new statement repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

func (r *Impl) GetStatement(ctx context.Context, db bun.IDB, id string) (*Statement, error) {
	db = r.resolveDB(db)
	st := new(Statement)
	err := db.NewSelect().Model(st).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	return st, nil
}

func (r *Impl) ListStatements(ctx context.Context, db bun.IDB) ([]Statement, error) {
	db = r.resolveDB(db)
	var out []Statement
	if err := db.NewSelect().Model(&out).Order("position ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	return out, nil
}

func (r *Impl) UpsertStatements(ctx context.Context, db bun.IDB, statements []Statement) error {
	if len(statements) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(&statements).
		On("CONFLICT (id) DO UPDATE").
		Set("text = EXCLUDED.text").
		Set("topic = EXCLUDED.topic").
		Set("truth_label = EXCLUDED.truth_label").
		Set("position = EXCLUDED.position").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert statements: %w", err)
	}
	return nil
}

func (r *Impl) GetEvaluations(ctx context.Context, db bun.IDB, statementID string) ([]Evaluation, error) {
	db = r.resolveDB(db)
	var out []Evaluation
	err := db.NewSelect().
		Model(&out).
		Where("statement_id = ?", statementID).
		OrderExpr("CASE choice WHEN 'true' THEN 0 WHEN 'false' THEN 1 ELSE 2 END").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluations: %w", err)
	}
	return out, nil
}

func (r *Impl) UpsertEvaluations(ctx context.Context, db bun.IDB, evaluations []Evaluation) error {
	if len(evaluations) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	now := time.Now().UTC()
	for i := range evaluations {
		evaluations[i].UpdatedAt = now
	}
	_, err := db.NewInsert().
		Model(&evaluations).
		On("CONFLICT (statement_id, choice) DO UPDATE").
		Set("is_correct = EXCLUDED.is_correct").
		Set("points = EXCLUDED.points").
		Set("feedback = EXCLUDED.feedback").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert evaluations: %w", err)
	}
	return nil
}

func (r *Impl) DeleteEvaluation(ctx context.Context, db bun.IDB, statementID, choice string) error {
	db = r.resolveDB(db)
	res, err := db.NewDelete().
		Model((*Evaluation)(nil)).
		Where("statement_id = ?", statementID).
		Where("choice = ?", choice).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Impl) GetRecommendedItems(ctx context.Context, db bun.IDB, statementID string) ([]string, error) {
	db = r.resolveDB(db)
	var ids []string
	err := db.NewSelect().
		Model((*RecommendedItem)(nil)).
		Column("item_id").
		Where("statement_id = ?", statementID).
		Order("position ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get recommended items: %w", err)
	}
	return ids, nil
}

func (r *Impl) ReplaceRecommendedItems(ctx context.Context, db bun.IDB, statementID string, itemIDs []string) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().
		Model((*RecommendedItem)(nil)).
		Where("statement_id = ?", statementID).
		Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear recommended items: %w", err)
	}
	if len(itemIDs) == 0 {
		return nil
	}
	rows := make([]RecommendedItem, len(itemIDs))
	for i, id := range itemIDs {
		rows[i] = RecommendedItem{StatementID: statementID, ItemID: id, Position: i}
	}
	if _, err := db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert recommended items: %w", err)
	}
	return nil
}

func (r *Impl) GetItem(ctx context.Context, db bun.IDB, id string) (*Item, error) {
	db = r.resolveDB(db)
	it := new(Item)
	if err := db.NewSelect().Model(it).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return it, nil
}

func (r *Impl) ListItems(ctx context.Context, db bun.IDB) ([]Item, error) {
	db = r.resolveDB(db)
	var out []Item
	if err := db.NewSelect().Model(&out).Order("cost ASC", "id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return out, nil
}

func (r *Impl) UpsertItems(ctx context.Context, db bun.IDB, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	_, err := db.NewInsert().
		Model(&items).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("cost = EXCLUDED.cost").
		Set("prerequisite_item_id = EXCLUDED.prerequisite_item_id").
		Set("prerequisite_statement_id = EXCLUDED.prerequisite_statement_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert items: %w", err)
	}
	return nil
}
