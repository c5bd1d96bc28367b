package decisionservice

import (
	"context"
	"slices"
	"sync"
	"time"

	decisiondb "github.com/Black-And-White-Club/truthtable/app/modules/decision/infrastructure/repositories"
	statementservice "github.com/Black-And-White-Club/truthtable/app/modules/statement/application"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Store
// ------------------------

// FakeStore backs both the decision repository and the team ledger so that
// uniqueness and score updates are observed together under one mutex.
type FakeStore struct {
	mu    sync.Mutex
	trace []string

	teams     map[int]*teamdb.Team
	decisions []decisiondb.Decision

	// BeforeInsert runs outside the lock right before InsertDecision claims it.
	BeforeInsert    func()
	InsertErr       error
	ApplyScoreErr   error
	GetDecisionFunc func(teamID uuid.UUID, statementID string) (*decisiondb.Decision, error)
}

func NewFakeStore(teamNumbers ...int) *FakeStore {
	s := &FakeStore{teams: map[int]*teamdb.Team{}}
	for _, n := range teamNumbers {
		s.teams[n] = &teamdb.Team{ID: uuid.New(), TeamNumber: n, Name: teamdb.TeamName(n), Budget: 1000}
	}
	return s
}

func (s *FakeStore) record(step string) {
	s.trace = append(s.trace, step)
}

func (s *FakeStore) Trace() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.trace)
}

func (s *FakeStore) Team(n int) teamdb.Team {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.teams[n]
}

func (s *FakeStore) DecisionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decisions)
}

func (s *FakeStore) GetDecision(ctx context.Context, db bun.IDB, teamID uuid.UUID, statementID string) (*decisiondb.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetDecision")
	if s.GetDecisionFunc != nil {
		return s.GetDecisionFunc(teamID, statementID)
	}
	for _, d := range s.decisions {
		if d.TeamID == teamID && d.StatementID == statementID {
			d := d
			return &d, nil
		}
	}
	return nil, decisiondb.ErrNotFound
}

func (s *FakeStore) InsertDecision(ctx context.Context, db bun.IDB, d *decisiondb.Decision) error {
	if s.BeforeInsert != nil {
		s.BeforeInsert()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("InsertDecision")
	if s.InsertErr != nil {
		return s.InsertErr
	}
	for _, existing := range s.decisions {
		if existing.TeamID == d.TeamID && existing.StatementID == d.StatementID {
			return decisiondb.ErrDuplicate
		}
	}
	if d.SubmittedAt.IsZero() {
		d.SubmittedAt = time.Now()
	}
	s.decisions = append(s.decisions, *d)
	return nil
}

func (s *FakeStore) ListByTeam(ctx context.Context, db bun.IDB, teamID uuid.UUID) ([]decisiondb.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListByTeam")
	var out []decisiondb.Decision
	for i := len(s.decisions) - 1; i >= 0; i-- {
		if s.decisions[i].TeamID == teamID {
			out = append(out, s.decisions[i])
		}
	}
	return out, nil
}

func (s *FakeStore) ListByStatement(ctx context.Context, db bun.IDB, statementID string) ([]decisiondb.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListByStatement")
	var out []decisiondb.Decision
	for _, d := range s.decisions {
		if d.StatementID == statementID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *FakeStore) ListAll(ctx context.Context, db bun.IDB) ([]decisiondb.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListAll")
	return slices.Clone(s.decisions), nil
}

func (s *FakeStore) GetTeamByNumber(ctx context.Context, db bun.IDB, teamNumber int) (*teamdb.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("GetTeamByNumber")
	t, ok := s.teams[teamNumber]
	if !ok {
		return nil, teamdb.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *FakeStore) ListTeams(ctx context.Context, db bun.IDB) ([]teamdb.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ListTeams")
	out := make([]teamdb.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (s *FakeStore) ApplyDecisionScore(ctx context.Context, db bun.IDB, teamID uuid.UUID, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ApplyDecisionScore")
	if s.ApplyScoreErr != nil {
		return s.ApplyScoreErr
	}
	for _, t := range s.teams {
		if t.ID == teamID {
			t.Score += points
			t.CompletedStatements++
			return nil
		}
	}
	return teamdb.ErrNotFound
}

var (
	_ decisiondb.Repository = (*FakeStore)(nil)
	_ TeamLedger            = (*FakeStore)(nil)
)

// ------------------------
// Fake Scoring Source
// ------------------------

type FakeScoring struct {
	Contexts map[string]*statementservice.ScoringContext
}

func (f *FakeScoring) LoadForScoring(ctx context.Context, statementID string) (*statementservice.ScoringContext, error) {
	sc, ok := f.Contexts[statementID]
	if !ok {
		return nil, gameerrors.NotFound("statement", statementID)
	}
	return sc, nil
}

var _ ScoringSource = (*FakeScoring)(nil)
