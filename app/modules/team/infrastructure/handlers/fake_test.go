package teamhandlers

import (
	"context"

	"github.com/Black-And-White-Club/truthtable/app/modules/rotation"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/google/uuid"
)

// FakeService implements teamservice.Service. Unset funcs return zero values.
type FakeService struct {
	GetTeamFunc       func(ctx context.Context, teamNumber int) (*teamdomain.Team, error)
	ListTeamsFunc     func(ctx context.Context) ([]teamdomain.Team, error)
	PurchaseItemFunc  func(ctx context.Context, teamNumber int, itemID string, statementID *string) (*teamdomain.PurchaseReceipt, error)
	PurchaseHintFunc  func(ctx context.Context, teamNumber int, statementID string) (*teamdomain.PurchaseReceipt, error)
	ListPurchasesFunc func(ctx context.Context, teamNumber int) ([]teamdomain.Purchase, error)
	ListHintsFunc     func(ctx context.Context, teamNumber int) ([]teamdomain.Hint, error)
	AddMemberFunc     func(ctx context.Context, teamNumber int, name string) ([]string, error)
	SetMembersFunc    func(ctx context.Context, teamNumber int, names []string, shuffle bool) ([]string, error)
	SetNicknameFunc   func(ctx context.Context, teamNumber int, nickname string) (*teamdomain.Team, error)
	SearchPlayersFunc func(ctx context.Context, name string) ([]teamdomain.PlayerMatch, error)
	GetDeciderFunc    func(ctx context.Context, teamNumber int, statementIndex int) (rotation.Assignment, error)
	ResetGameFunc     func(ctx context.Context, maxTeams int) (*teamdomain.ResetResult, error)

	trace []string
}

func (f *FakeService) Trace() []string { return f.trace }

func (f *FakeService) GetTeam(ctx context.Context, teamNumber int) (*teamdomain.Team, error) {
	f.trace = append(f.trace, "GetTeam")
	if f.GetTeamFunc != nil {
		return f.GetTeamFunc(ctx, teamNumber)
	}
	return &teamdomain.Team{TeamNumber: teamNumber}, nil
}

func (f *FakeService) ListTeams(ctx context.Context) ([]teamdomain.Team, error) {
	f.trace = append(f.trace, "ListTeams")
	if f.ListTeamsFunc != nil {
		return f.ListTeamsFunc(ctx)
	}
	return nil, nil
}

func (f *FakeService) ReconcileScore(ctx context.Context, teamID uuid.UUID) (*teamdomain.Team, error) {
	f.trace = append(f.trace, "ReconcileScore")
	return &teamdomain.Team{ID: teamID}, nil
}

func (f *FakeService) ReconcileAllScores(ctx context.Context) (int, error) {
	f.trace = append(f.trace, "ReconcileAllScores")
	return 0, nil
}

func (f *FakeService) PurchaseItem(ctx context.Context, teamNumber int, itemID string, statementID *string) (*teamdomain.PurchaseReceipt, error) {
	f.trace = append(f.trace, "PurchaseItem")
	if f.PurchaseItemFunc != nil {
		return f.PurchaseItemFunc(ctx, teamNumber, itemID, statementID)
	}
	return &teamdomain.PurchaseReceipt{}, nil
}

func (f *FakeService) PurchaseHint(ctx context.Context, teamNumber int, statementID string) (*teamdomain.PurchaseReceipt, error) {
	f.trace = append(f.trace, "PurchaseHint")
	if f.PurchaseHintFunc != nil {
		return f.PurchaseHintFunc(ctx, teamNumber, statementID)
	}
	return &teamdomain.PurchaseReceipt{}, nil
}

func (f *FakeService) ListPurchases(ctx context.Context, teamNumber int) ([]teamdomain.Purchase, error) {
	f.trace = append(f.trace, "ListPurchases")
	if f.ListPurchasesFunc != nil {
		return f.ListPurchasesFunc(ctx, teamNumber)
	}
	return nil, nil
}

func (f *FakeService) ListHints(ctx context.Context, teamNumber int) ([]teamdomain.Hint, error) {
	f.trace = append(f.trace, "ListHints")
	if f.ListHintsFunc != nil {
		return f.ListHintsFunc(ctx, teamNumber)
	}
	return nil, nil
}

func (f *FakeService) AddMember(ctx context.Context, teamNumber int, name string) ([]string, error) {
	f.trace = append(f.trace, "AddMember")
	if f.AddMemberFunc != nil {
		return f.AddMemberFunc(ctx, teamNumber, name)
	}
	return []string{name}, nil
}

func (f *FakeService) SetMembers(ctx context.Context, teamNumber int, names []string, shuffle bool) ([]string, error) {
	f.trace = append(f.trace, "SetMembers")
	if f.SetMembersFunc != nil {
		return f.SetMembersFunc(ctx, teamNumber, names, shuffle)
	}
	return names, nil
}

func (f *FakeService) SetNickname(ctx context.Context, teamNumber int, nickname string) (*teamdomain.Team, error) {
	f.trace = append(f.trace, "SetNickname")
	if f.SetNicknameFunc != nil {
		return f.SetNicknameFunc(ctx, teamNumber, nickname)
	}
	return &teamdomain.Team{TeamNumber: teamNumber}, nil
}

func (f *FakeService) SearchPlayers(ctx context.Context, name string) ([]teamdomain.PlayerMatch, error) {
	f.trace = append(f.trace, "SearchPlayers")
	if f.SearchPlayersFunc != nil {
		return f.SearchPlayersFunc(ctx, name)
	}
	return []teamdomain.PlayerMatch{}, nil
}

func (f *FakeService) GetDecider(ctx context.Context, teamNumber int, statementIndex int) (rotation.Assignment, error) {
	f.trace = append(f.trace, "GetDecider")
	if f.GetDeciderFunc != nil {
		return f.GetDeciderFunc(ctx, teamNumber, statementIndex)
	}
	return rotation.Assignment{StatementIndex: statementIndex}, nil
}

func (f *FakeService) ResetGame(ctx context.Context, maxTeams int) (*teamdomain.ResetResult, error) {
	f.trace = append(f.trace, "ResetGame")
	if f.ResetGameFunc != nil {
		return f.ResetGameFunc(ctx, maxTeams)
	}
	return &teamdomain.ResetResult{TeamsCreated: maxTeams}, nil
}

func (f *FakeService) PurchasedItemIDs(ctx context.Context, teamNumber int) ([]string, error) {
	return nil, nil
}

func (f *FakeService) DecidedStatementIDs(ctx context.Context, teamNumber int) ([]string, error) {
	return nil, nil
}

type itemListerFunc func(ctx context.Context, teamNumber int) ([]statementdomain.Item, error)

func (fn itemListerFunc) ListItemsForTeam(ctx context.Context, teamNumber int) ([]statementdomain.Item, error) {
	return fn(ctx, teamNumber)
}
