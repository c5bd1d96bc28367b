package analyticsservice

import (
	"context"

	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
)

// FakeSources serves fixed teams, decisions and statements.
type FakeSources struct {
	Teams      []teamdomain.Team
	Decisions  []decisiondomain.Decision
	Statements []statementdomain.Statement

	ListTeamsErr error
	trace        []string
}

func (f *FakeSources) Trace() []string { return f.trace }

func (f *FakeSources) GetTeam(ctx context.Context, teamNumber int) (*teamdomain.Team, error) {
	f.trace = append(f.trace, "GetTeam")
	for _, t := range f.Teams {
		if t.TeamNumber == teamNumber {
			return &t, nil
		}
	}
	return nil, gameerrors.NotFound("team", teamNumber)
}

func (f *FakeSources) ListTeams(ctx context.Context) ([]teamdomain.Team, error) {
	f.trace = append(f.trace, "ListTeams")
	if f.ListTeamsErr != nil {
		return nil, f.ListTeamsErr
	}
	return f.Teams, nil
}

func (f *FakeSources) ListAllDecisions(ctx context.Context) ([]decisiondomain.Decision, error) {
	f.trace = append(f.trace, "ListAllDecisions")
	return f.Decisions, nil
}

func (f *FakeSources) ListTeamDecisions(ctx context.Context, teamNumber int) ([]decisiondomain.Decision, error) {
	f.trace = append(f.trace, "ListTeamDecisions")
	var out []decisiondomain.Decision
	for _, d := range f.Decisions {
		if d.TeamNumber == teamNumber {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *FakeSources) ListStatementDecisions(ctx context.Context, statementID string) ([]decisiondomain.Decision, error) {
	f.trace = append(f.trace, "ListStatementDecisions")
	var out []decisiondomain.Decision
	for _, d := range f.Decisions {
		if d.StatementID == statementID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *FakeSources) GetStatement(ctx context.Context, id string) (*statementdomain.Statement, error) {
	f.trace = append(f.trace, "GetStatement")
	for _, s := range f.Statements {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, gameerrors.NotFound("statement", id)
}

func (f *FakeSources) ListStatements(ctx context.Context) ([]statementdomain.Statement, error) {
	f.trace = append(f.trace, "ListStatements")
	return f.Statements, nil
}
