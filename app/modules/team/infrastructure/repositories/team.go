package teamdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Black-And-White-Club/truthtable/app/shared/dberr"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

var (
	ErrNotFound           = errors.New("team record not found")
	ErrDuplicate          = errors.New("team record already exists")
	ErrInsufficientBudget = errors.New("budget does not cover the debit")
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

// TeamName is the default display name of team n.
func TeamName(n int) string {
	return fmt.Sprintf("Team %d", n)
}

func (r *Impl) EnsureTeam(ctx context.Context, db bun.IDB, teamNumber int, startingBudget int) error {
	db = r.resolveDB(db)
	team := &Team{
		ID:         uuid.New(),
		TeamNumber: teamNumber,
		Name:       TeamName(teamNumber),
		Budget:     startingBudget,
		Members:    []string{},
	}
	_, err := db.NewInsert().
		Model(team).
		On("CONFLICT (team_number) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to ensure team %d: %w", teamNumber, err)
	}
	return nil
}

func (r *Impl) GetTeamByNumber(ctx context.Context, db bun.IDB, teamNumber int) (*Team, error) {
	db = r.resolveDB(db)
	team := new(Team)
	if err := db.NewSelect().Model(team).Where("team_number = ?", teamNumber).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team %d: %w", teamNumber, err)
	}
	return team, nil
}

func (r *Impl) GetTeamByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*Team, error) {
	db = r.resolveDB(db)
	team := new(Team)
	if err := db.NewSelect().Model(team).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get team %s: %w", id, err)
	}
	return team, nil
}

func (r *Impl) LockTeam(ctx context.Context, db bun.IDB, id uuid.UUID) (*Team, error) {
	db = r.resolveDB(db)
	team := new(Team)
	// NO KEY UPDATE leaves the decisions foreign key check unblocked.
	if err := db.NewSelect().Model(team).Where("id = ?", id).For("NO KEY UPDATE").Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock team %s: %w", id, err)
	}
	return team, nil
}

func (r *Impl) ListTeams(ctx context.Context, db bun.IDB) ([]Team, error) {
	db = r.resolveDB(db)
	var teams []Team
	if err := db.NewSelect().Model(&teams).Order("team_number ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (r *Impl) ApplyDecisionScore(ctx context.Context, db bun.IDB, teamID uuid.UUID, points int) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("score = score + ?", points).
		Set("completed_statements = completed_statements + 1").
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply decision score: %w", err)
	}
	return requireRow(res)
}

func (r *Impl) SumDecisions(ctx context.Context, db bun.IDB, teamID uuid.UUID) (DecisionTotals, error) {
	db = r.resolveDB(db)
	var totals DecisionTotals
	err := db.NewSelect().
		TableExpr("decisions").
		ColumnExpr("COALESCE(SUM(points_earned), 0) AS score").
		ColumnExpr("COUNT(*) AS completed").
		Where("team_id = ?", teamID).
		Scan(ctx, &totals)
	if err != nil {
		return DecisionTotals{}, fmt.Errorf("failed to sum decisions: %w", err)
	}
	return totals, nil
}

func (r *Impl) CorrectTotals(ctx context.Context, db bun.IDB, teamID uuid.UUID, totals DecisionTotals) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("score = ?", totals.Score).
		Set("completed_statements = ?", totals.Completed).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to correct team totals: %w", err)
	}
	return requireRow(res)
}

func (r *Impl) DecidedStatementIDs(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]string, error) {
	db = r.resolveDB(db)
	var ids []string
	err := db.NewSelect().
		TableExpr("decisions").
		Column("statement_id").
		Where("team_id = ?", teamID).
		Scan(ctx, &ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list decided statements: %w", err)
	}
	return ids, nil
}

func (r *Impl) DebitBudget(ctx context.Context, db bun.IDB, teamID uuid.UUID, amount int) (int, error) {
	db = r.resolveDB(db)
	team := new(Team)
	err := db.NewUpdate().
		Model(team).
		Set("budget = budget - ?", amount).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Where("budget >= ?", amount).
		Returning("budget").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dberr.IsCheckViolation(err) {
			return 0, ErrInsufficientBudget
		}
		return 0, fmt.Errorf("failed to debit budget: %w", err)
	}
	return team.Budget, nil
}

func (r *Impl) GetPurchase(ctx context.Context, db bun.IDB, teamID uuid.UUID, itemID string) (*Purchase, error) {
	db = r.resolveDB(db)
	p := new(Purchase)
	err := db.NewSelect().Model(p).Where("team_id = ?", teamID).Where("item_id = ?", itemID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}
	return p, nil
}

func (r *Impl) InsertPurchase(ctx context.Context, db bun.IDB, p *Purchase) error {
	db = r.resolveDB(db)
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(p).Returning("purchased_at").Exec(ctx); err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert purchase: %w", err)
	}
	return nil
}

func (r *Impl) DeletePurchase(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*Purchase)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete purchase: %w", err)
	}
	return nil
}

func (r *Impl) ListPurchases(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]Purchase, error) {
	db = r.resolveDB(db)
	var out []Purchase
	err := db.NewSelect().Model(&out).Where("team_id = ?", teamID).Order("purchased_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return out, nil
}

func (r *Impl) GetHint(ctx context.Context, db bun.IDB, teamID uuid.UUID, statementID string) (*HintPurchase, error) {
	db = r.resolveDB(db)
	h := new(HintPurchase)
	err := db.NewSelect().Model(h).Where("team_id = ?", teamID).Where("statement_id = ?", statementID).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hint: %w", err)
	}
	return h, nil
}

func (r *Impl) InsertHint(ctx context.Context, db bun.IDB, h *HintPurchase) error {
	db = r.resolveDB(db)
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	if _, err := db.NewInsert().Model(h).Returning("purchased_at").Exec(ctx); err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert hint: %w", err)
	}
	return nil
}

func (r *Impl) DeleteHint(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	db = r.resolveDB(db)
	if _, err := db.NewDelete().Model((*HintPurchase)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete hint: %w", err)
	}
	return nil
}

func (r *Impl) ListHints(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]HintPurchase, error) {
	db = r.resolveDB(db)
	var out []HintPurchase
	err := db.NewSelect().Model(&out).Where("team_id = ?", teamID).Order("purchased_at ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hints: %w", err)
	}
	return out, nil
}

func (r *Impl) AppendMember(ctx context.Context, db bun.IDB, teamID uuid.UUID, name string) ([]string, error) {
	db = r.resolveDB(db)
	team := new(Team)
	err := db.NewUpdate().
		Model(team).
		Set("members = array_append(members, ?)", name).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Where("NOT (? = ANY(members))", name).
		Returning("members").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, getErr := r.GetTeamByID(ctx, db, teamID); getErr != nil {
				return nil, getErr
			}
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to append member: %w", err)
	}
	return team.Members, nil
}

func (r *Impl) ReplaceMembers(ctx context.Context, db bun.IDB, teamID uuid.UUID, members []string) error {
	db = r.resolveDB(db)
	if members == nil {
		members = []string{}
	}
	res, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("members = ?", pgdialect.Array(members)).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to replace members: %w", err)
	}
	return requireRow(res)
}

func (r *Impl) SetNickname(ctx context.Context, db bun.IDB, teamID uuid.UUID, nickname *string) error {
	db = r.resolveDB(db)
	res, err := db.NewUpdate().
		Model((*Team)(nil)).
		Set("nickname = ?", nickname).
		Set("updated_at = current_timestamp").
		Where("id = ?", teamID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set nickname: %w", err)
	}
	return requireRow(res)
}

func (r *Impl) SearchByMember(ctx context.Context, db bun.IDB, fragment string) ([]Team, error) {
	db = r.resolveDB(db)
	pattern := "%" + escapeLike(fragment) + "%"
	var teams []Team
	err := db.NewSelect().
		Model(&teams).
		Where("EXISTS (SELECT 1 FROM unnest(t.members) AS m WHERE m ILIKE ?)", pattern).
		Order("team_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search members: %w", err)
	}
	return teams, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (r *Impl) CountGameRows(ctx context.Context, db bun.IDB) (GameCounts, error) {
	db = r.resolveDB(db)
	var c GameCounts
	targets := []struct {
		table string
		dst   *int
	}{
		{"teams", &c.Teams},
		{"decisions", &c.Decisions},
		{"purchases", &c.Purchases},
		{"hint_purchases", &c.Hints},
	}
	for _, t := range targets {
		n, err := db.NewSelect().TableExpr("?", bun.Ident(t.table)).Count(ctx)
		if err != nil {
			return GameCounts{}, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
		*t.dst = n
	}
	return c, nil
}

func (r *Impl) ClearGame(ctx context.Context, db bun.IDB) error {
	db = r.resolveDB(db)
	for _, table := range []string{"hint_purchases", "purchases", "decisions", "teams"} {
		if _, err := db.NewDelete().TableExpr("?", bun.Ident(table)).Where("TRUE").Exec(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func (r *Impl) CreateTeams(ctx context.Context, db bun.IDB, count int, startingBudget int) error {
	if count <= 0 {
		return nil
	}
	db = r.resolveDB(db)
	teams := make([]Team, count)
	for i := range teams {
		n := i + 1
		teams[i] = Team{
			ID:         uuid.New(),
			TeamNumber: n,
			Name:       TeamName(n),
			Budget:     startingBudget,
			Members:    []string{},
		}
	}
	if _, err := db.NewInsert().Model(&teams).Exec(ctx); err != nil {
		if dberr.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create teams: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
