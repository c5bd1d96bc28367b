package decisiondb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Black-And-White-Club/truthtable/app/shared/dberr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrNotFound  = errors.New("decision not found")
	ErrDuplicate = errors.New("decision already exists for team and statement")
)

// Impl implements the Repository interface using Bun ORM.
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

func (r *Impl) GetDecision(ctx context.Context, db bun.IDB, teamID uuid.UUID, statementID string) (*Decision, error) {
	db = r.resolveDB(db)
	d := new(Decision)
	err := db.NewSelect().
		Model(d).
		Where("team_id = ?", teamID).
		Where("statement_id = ?", statementID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	return d, nil
}

func (r *Impl) InsertDecision(ctx context.Context, db bun.IDB, d *Decision) error {
	db = r.resolveDB(db)
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.EvidenceItemIDs == nil {
		d.EvidenceItemIDs = []string{}
	}
	if _, err := db.NewInsert().Model(d).Returning("submitted_at").Exec(ctx); err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert decision: %w", err)
	}
	return nil
}

func (r *Impl) ListByTeam(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]Decision, error) {
	db = r.resolveDB(db)
	var out []Decision
	err := db.NewSelect().
		Model(&out).
		Where("team_id = ?", teamID).
		Order("submitted_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list team decisions: %w", err)
	}
	return out, nil
}

func (r *Impl) ListByStatement(ctx context.Context, db bun.IDB, statementID string) ([]Decision, error) {
	db = r.resolveDB(db)
	var out []Decision
	err := db.NewSelect().
		Model(&out).
		Where("statement_id = ?", statementID).
		Order("submitted_at ASC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list statement decisions: %w", err)
	}
	return out, nil
}

func (r *Impl) ListAll(ctx context.Context, db bun.IDB) ([]Decision, error) {
	db = r.resolveDB(db)
	var out []Decision
	if err := db.NewSelect().Model(&out).Order("submitted_at ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list decisions: %w", err)
	}
	return out, nil
}
