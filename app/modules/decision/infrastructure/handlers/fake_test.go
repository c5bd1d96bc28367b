package decisionhandlers

import (
	"context"

	decisiondomain "github.com/Black-And-White-Club/truthtable/app/modules/decision/domain"
)

// FakeService implements decisionservice.Service.
type FakeService struct {
	SubmitDecisionFunc         func(ctx context.Context, req decisiondomain.SubmitRequest) (*decisiondomain.Decision, error)
	ListTeamDecisionsFunc      func(ctx context.Context, teamNumber int) ([]decisiondomain.Decision, error)
	ListStatementDecisionsFunc func(ctx context.Context, statementID string) ([]decisiondomain.Decision, error)
}

func (f *FakeService) SubmitDecision(ctx context.Context, req decisiondomain.SubmitRequest) (*decisiondomain.Decision, error) {
	if f.SubmitDecisionFunc != nil {
		return f.SubmitDecisionFunc(ctx, req)
	}
	return &decisiondomain.Decision{}, nil
}

func (f *FakeService) ListTeamDecisions(ctx context.Context, teamNumber int) ([]decisiondomain.Decision, error) {
	if f.ListTeamDecisionsFunc != nil {
		return f.ListTeamDecisionsFunc(ctx, teamNumber)
	}
	return nil, nil
}

func (f *FakeService) ListStatementDecisions(ctx context.Context, statementID string) ([]decisiondomain.Decision, error) {
	if f.ListStatementDecisionsFunc != nil {
		return f.ListStatementDecisionsFunc(ctx, statementID)
	}
	return nil, nil
}

func (f *FakeService) ListAllDecisions(ctx context.Context) ([]decisiondomain.Decision, error) {
	return nil, nil
}
