package teamservice

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"sync"

	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// FakeRepo is an in-memory teamdb.Repository. Decision history is modelled by
// Totals and Decided, keyed by team id.
type FakeRepo struct {
	mu        sync.Mutex
	teams     map[int]*teamdb.Team
	purchases []teamdb.Purchase
	hints     []teamdb.HintPurchase
	Totals    map[uuid.UUID]teamdb.DecisionTotals
	Decided   map[uuid.UUID][]string
	trace     []string

	DebitBudgetFunc   func(teamID uuid.UUID, amount int) (int, error)
	ClearGameErrs     []error
	CreateTeamsFunc   func(count int) int
	CountGameRowsFunc func(counts teamdb.GameCounts) teamdb.GameCounts
	// LockTeamFunc runs against the stored row before LockTeam copies it.
	LockTeamFunc func(t *teamdb.Team)
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{
		teams:   make(map[int]*teamdb.Team),
		Totals:  make(map[uuid.UUID]teamdb.DecisionTotals),
		Decided: make(map[uuid.UUID][]string),
	}
}

var _ teamdb.Repository = (*FakeRepo)(nil)

func (f *FakeRepo) record(op string) {
	f.trace = append(f.trace, op)
}

func (f *FakeRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.trace)
}

// Seed stores a team directly, bypassing EnsureTeam.
func (f *FakeRepo) Seed(t teamdb.Team) *teamdb.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Name == "" {
		t.Name = teamdb.TeamName(t.TeamNumber)
	}
	if t.Members == nil {
		t.Members = []string{}
	}
	f.teams[t.TeamNumber] = &t
	return &t
}

// Team returns a copy of the stored team.
func (f *FakeRepo) Team(n int) teamdb.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyTeam(f.teams[n])
}

func (f *FakeRepo) PurchaseCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.purchases)
}

func copyTeam(t *teamdb.Team) teamdb.Team {
	c := *t
	c.Members = slices.Clone(t.Members)
	return c
}

func (f *FakeRepo) byID(id uuid.UUID) *teamdb.Team {
	for _, t := range f.teams {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (f *FakeRepo) EnsureTeam(ctx context.Context, db bun.IDB, teamNumber int, startingBudget int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("EnsureTeam")
	if _, ok := f.teams[teamNumber]; !ok {
		f.teams[teamNumber] = &teamdb.Team{
			ID:         uuid.New(),
			TeamNumber: teamNumber,
			Name:       teamdb.TeamName(teamNumber),
			Budget:     startingBudget,
			Members:    []string{},
		}
	}
	return nil
}

func (f *FakeRepo) GetTeamByNumber(ctx context.Context, db bun.IDB, teamNumber int) (*teamdb.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTeamByNumber")
	t, ok := f.teams[teamNumber]
	if !ok {
		return nil, teamdb.ErrNotFound
	}
	c := copyTeam(t)
	return &c, nil
}

func (f *FakeRepo) GetTeamByID(ctx context.Context, db bun.IDB, id uuid.UUID) (*teamdb.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTeamByID")
	t := f.byID(id)
	if t == nil {
		return nil, teamdb.ErrNotFound
	}
	c := copyTeam(t)
	return &c, nil
}

func (f *FakeRepo) LockTeam(ctx context.Context, db bun.IDB, id uuid.UUID) (*teamdb.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("LockTeam")
	t := f.byID(id)
	if t == nil {
		return nil, teamdb.ErrNotFound
	}
	if f.LockTeamFunc != nil {
		f.LockTeamFunc(t)
	}
	c := copyTeam(t)
	return &c, nil
}

func (f *FakeRepo) ListTeams(ctx context.Context, db bun.IDB) ([]teamdb.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeams")
	out := make([]teamdb.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, copyTeam(t))
	}
	slices.SortFunc(out, func(a, b teamdb.Team) int { return cmp.Compare(a.TeamNumber, b.TeamNumber) })
	return out, nil
}

func (f *FakeRepo) ApplyDecisionScore(ctx context.Context, db bun.IDB, teamID uuid.UUID, points int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ApplyDecisionScore")
	t := f.byID(teamID)
	if t == nil {
		return teamdb.ErrNotFound
	}
	t.Score += points
	t.CompletedStatements++
	return nil
}

func (f *FakeRepo) SumDecisions(ctx context.Context, db bun.IDB, teamID uuid.UUID) (teamdb.DecisionTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SumDecisions")
	return f.Totals[teamID], nil
}

func (f *FakeRepo) CorrectTotals(ctx context.Context, db bun.IDB, teamID uuid.UUID, totals teamdb.DecisionTotals) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CorrectTotals")
	t := f.byID(teamID)
	if t == nil {
		return teamdb.ErrNotFound
	}
	t.Score = totals.Score
	t.CompletedStatements = totals.Completed
	return nil
}

func (f *FakeRepo) DecidedStatementIDs(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DecidedStatementIDs")
	return slices.Clone(f.Decided[teamID]), nil
}

func (f *FakeRepo) DebitBudget(ctx context.Context, db bun.IDB, teamID uuid.UUID, amount int) (int, error) {
	if f.DebitBudgetFunc != nil {
		return f.DebitBudgetFunc(teamID, amount)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DebitBudget")
	t := f.byID(teamID)
	if t == nil || t.Budget < amount {
		return 0, teamdb.ErrInsufficientBudget
	}
	t.Budget -= amount
	return t.Budget, nil
}

func (f *FakeRepo) GetPurchase(ctx context.Context, db bun.IDB, teamID uuid.UUID, itemID string) (*teamdb.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetPurchase")
	for _, p := range f.purchases {
		if p.TeamID == teamID && p.ItemID == itemID {
			return &p, nil
		}
	}
	return nil, teamdb.ErrNotFound
}

func (f *FakeRepo) InsertPurchase(ctx context.Context, db bun.IDB, p *teamdb.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertPurchase")
	for _, existing := range f.purchases {
		if existing.TeamID == p.TeamID && existing.ItemID == p.ItemID {
			return teamdb.ErrDuplicate
		}
	}
	f.purchases = append(f.purchases, *p)
	return nil
}

func (f *FakeRepo) DeletePurchase(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeletePurchase")
	f.purchases = slices.DeleteFunc(f.purchases, func(p teamdb.Purchase) bool { return p.ID == id })
	return nil
}

func (f *FakeRepo) ListPurchases(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]teamdb.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListPurchases")
	var out []teamdb.Purchase
	for _, p := range f.purchases {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeRepo) GetHint(ctx context.Context, db bun.IDB, teamID uuid.UUID, statementID string) (*teamdb.HintPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetHint")
	for _, h := range f.hints {
		if h.TeamID == teamID && h.StatementID == statementID {
			return &h, nil
		}
	}
	return nil, teamdb.ErrNotFound
}

func (f *FakeRepo) InsertHint(ctx context.Context, db bun.IDB, h *teamdb.HintPurchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("InsertHint")
	for _, existing := range f.hints {
		if existing.TeamID == h.TeamID && existing.StatementID == h.StatementID {
			return teamdb.ErrDuplicate
		}
	}
	f.hints = append(f.hints, *h)
	return nil
}

func (f *FakeRepo) DeleteHint(ctx context.Context, db bun.IDB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteHint")
	f.hints = slices.DeleteFunc(f.hints, func(h teamdb.HintPurchase) bool { return h.ID == id })
	return nil
}

func (f *FakeRepo) ListHints(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]teamdb.HintPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListHints")
	var out []teamdb.HintPurchase
	for _, h := range f.hints {
		if h.TeamID == teamID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *FakeRepo) AppendMember(ctx context.Context, db bun.IDB, teamID uuid.UUID, name string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppendMember")
	t := f.byID(teamID)
	if t == nil {
		return nil, teamdb.ErrNotFound
	}
	if slices.Contains(t.Members, name) {
		return nil, teamdb.ErrDuplicate
	}
	t.Members = append(t.Members, name)
	return slices.Clone(t.Members), nil
}

func (f *FakeRepo) ReplaceMembers(ctx context.Context, db bun.IDB, teamID uuid.UUID, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReplaceMembers")
	t := f.byID(teamID)
	if t == nil {
		return teamdb.ErrNotFound
	}
	t.Members = slices.Clone(members)
	return nil
}

func (f *FakeRepo) SetNickname(ctx context.Context, db bun.IDB, teamID uuid.UUID, nickname *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SetNickname")
	t := f.byID(teamID)
	if t == nil {
		return teamdb.ErrNotFound
	}
	t.Nickname = nickname
	return nil
}

func (f *FakeRepo) SearchByMember(ctx context.Context, db bun.IDB, fragment string) ([]teamdb.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SearchByMember")
	var out []teamdb.Team
	for _, t := range f.teams {
		if teamdomain.MatchesMember(t.Members, fragment) {
			out = append(out, copyTeam(t))
		}
	}
	slices.SortFunc(out, func(a, b teamdb.Team) int { return cmp.Compare(a.TeamNumber, b.TeamNumber) })
	return out, nil
}

func (f *FakeRepo) CountGameRows(ctx context.Context, db bun.IDB) (teamdb.GameCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CountGameRows")
	decisions := 0
	for _, ids := range f.Decided {
		decisions += len(ids)
	}
	counts := teamdb.GameCounts{
		Teams:     len(f.teams),
		Decisions: decisions,
		Purchases: len(f.purchases),
		Hints:     len(f.hints),
	}
	if f.CountGameRowsFunc != nil {
		counts = f.CountGameRowsFunc(counts)
	}
	return counts, nil
}

func (f *FakeRepo) ClearGame(ctx context.Context, db bun.IDB) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ClearGame")
	if len(f.ClearGameErrs) > 0 {
		err := f.ClearGameErrs[0]
		f.ClearGameErrs = f.ClearGameErrs[1:]
		return err
	}
	f.teams = make(map[int]*teamdb.Team)
	f.purchases = nil
	f.hints = nil
	f.Totals = make(map[uuid.UUID]teamdb.DecisionTotals)
	f.Decided = make(map[uuid.UUID][]string)
	return nil
}

func (f *FakeRepo) CreateTeams(ctx context.Context, db bun.IDB, count int, startingBudget int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTeams")
	if f.CreateTeamsFunc != nil {
		count = f.CreateTeamsFunc(count)
	}
	for n := 1; n <= count; n++ {
		f.teams[n] = &teamdb.Team{
			ID:         uuid.New(),
			TeamNumber: n,
			Name:       teamdb.TeamName(n),
			Budget:     startingBudget,
			Members:    []string{},
		}
	}
	return nil
}

// FakeCatalog serves items and statements from maps.
type FakeCatalog struct {
	Items      map[string]statementdomain.Item
	Statements map[string]statementdomain.Statement
}

func (c *FakeCatalog) GetItem(ctx context.Context, id string) (*statementdomain.Item, error) {
	it, ok := c.Items[id]
	if !ok {
		return nil, gameerrors.NotFound("item", id)
	}
	return &it, nil
}

func (c *FakeCatalog) GetStatement(ctx context.Context, id string) (*statementdomain.Statement, error) {
	st, ok := c.Statements[id]
	if !ok {
		return nil, gameerrors.NotFound("statement", id)
	}
	return &st, nil
}

// FakeConfig records session config writes.
type FakeConfig struct {
	mu     sync.Mutex
	Values map[string]json.RawMessage
}

func (c *FakeConfig) UpsertConfig(ctx context.Context, db bun.IDB, key string, value json.RawMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Values == nil {
		c.Values = make(map[string]json.RawMessage)
	}
	c.Values[key] = value
	return nil
}

func (c *FakeConfig) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.Values[key]
	return ok
}

// seqSource replays fixed indices for shuffles.
type seqSource struct{ picks []int }

func (s *seqSource) IntN(n int) int {
	v := s.picks[0] % n
	s.picks = s.picks[1:]
	return v
}
