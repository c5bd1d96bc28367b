package teamservice

import (
	"context"
	"errors"
	"strings"

	"github.com/Black-And-White-Club/truthtable/app/eventbus"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/gamelock"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	spendItem = "item"
	spendHint = "hint"
)

type purchaseResult struct {
	teamID  uuid.UUID
	receipt teamdomain.PurchaseReceipt
}

// PurchaseItem buys an evidence item. A repeat purchase is rejected before the
// budget is looked at, and neither rejection changes any state.
func (s *TeamService) PurchaseItem(ctx context.Context, teamNumber int, itemID string, statementID *string) (*teamdomain.PurchaseReceipt, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, gameerrors.Validation("itemId is required")
	}
	if statementID != nil && strings.TrimSpace(*statementID) == "" {
		statementID = nil
	}
	item, err := s.catalog.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	res, err := operation.Execute(s.runner, ctx, "PurchaseItem", teamKey(teamNumber)+"/"+itemID, func(ctx context.Context, db bun.IDB) (results.OperationResult[purchaseResult, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[purchaseResult, error]{}, err
		}
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[purchaseResult](failure, err)
		}

		if _, err := s.repo.GetPurchase(ctx, db, team.ID, item.ID); err == nil {
			return results.FailureResult[purchaseResult, error](alreadyPurchased("item %s", item.ID)), nil
		} else if !errors.Is(err, teamdb.ErrNotFound) {
			return results.OperationResult[purchaseResult, error]{}, err
		}
		if team.Budget < item.Cost {
			return results.FailureResult[purchaseResult, error](insufficientBudget(team.Budget, item.Cost)), nil
		}

		p := &teamdb.Purchase{
			ID:          uuid.New(),
			TeamID:      team.ID,
			ItemID:      item.ID,
			StatementID: statementID,
			Cost:        item.Cost,
		}
		if err := s.repo.InsertPurchase(ctx, db, p); err != nil {
			if errors.Is(err, teamdb.ErrDuplicate) {
				return results.FailureResult[purchaseResult, error](alreadyPurchased("item %s", item.ID)), nil
			}
			return results.OperationResult[purchaseResult, error]{}, err
		}

		newBudget, err := s.repo.DebitBudget(ctx, db, team.ID, item.Cost)
		if err != nil {
			s.compensate(ctx, "purchase", p.ID, func(ctx context.Context) error {
				return s.repo.DeletePurchase(ctx, db, p.ID)
			})
			if errors.Is(err, teamdb.ErrInsufficientBudget) {
				return results.FailureResult[purchaseResult, error](insufficientBudget(team.Budget, item.Cost)), nil
			}
			return results.OperationResult[purchaseResult, error]{}, err
		}

		return results.SuccessResult[purchaseResult, error](purchaseResult{
			teamID:  team.ID,
			receipt: teamdomain.PurchaseReceipt{PurchaseID: p.ID, Cost: item.Cost, NewBudget: newBudget},
		}), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBudgetSpent(ctx, spendItem, res.receipt.Cost)
	s.publish(ctx, eventbus.TopicPurchaseCompleted, teamNumber, eventbus.PurchaseCompletedPayload{
		PurchaseID:  res.receipt.PurchaseID.String(),
		TeamID:      res.teamID.String(),
		TeamNumber:  teamNumber,
		ItemID:      item.ID,
		StatementID: statementID,
		Cost:        res.receipt.Cost,
		NewBudget:   res.receipt.NewBudget,
	})
	return &res.receipt, nil
}

// PurchaseHint buys the hint for a statement at the flat hint cost.
func (s *TeamService) PurchaseHint(ctx context.Context, teamNumber int, statementID string) (*teamdomain.PurchaseReceipt, error) {
	statementID = strings.TrimSpace(statementID)
	if statementID == "" {
		return nil, gameerrors.Validation("statementId is required")
	}
	if _, err := s.catalog.GetStatement(ctx, statementID); err != nil {
		return nil, err
	}

	res, err := operation.Execute(s.runner, ctx, "PurchaseHint", teamKey(teamNumber)+"/"+statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[purchaseResult, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[purchaseResult, error]{}, err
		}
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[purchaseResult](failure, err)
		}

		if _, err := s.repo.GetHint(ctx, db, team.ID, statementID); err == nil {
			return results.FailureResult[purchaseResult, error](alreadyPurchased("hint for statement %s", statementID)), nil
		} else if !errors.Is(err, teamdb.ErrNotFound) {
			return results.OperationResult[purchaseResult, error]{}, err
		}
		if team.Budget < teamdomain.HintCost {
			return results.FailureResult[purchaseResult, error](insufficientBudget(team.Budget, teamdomain.HintCost)), nil
		}

		h := &teamdb.HintPurchase{
			ID:          uuid.New(),
			TeamID:      team.ID,
			StatementID: statementID,
			Cost:        teamdomain.HintCost,
		}
		if err := s.repo.InsertHint(ctx, db, h); err != nil {
			if errors.Is(err, teamdb.ErrDuplicate) {
				return results.FailureResult[purchaseResult, error](alreadyPurchased("hint for statement %s", statementID)), nil
			}
			return results.OperationResult[purchaseResult, error]{}, err
		}

		newBudget, err := s.repo.DebitBudget(ctx, db, team.ID, teamdomain.HintCost)
		if err != nil {
			s.compensate(ctx, "hint", h.ID, func(ctx context.Context) error {
				return s.repo.DeleteHint(ctx, db, h.ID)
			})
			if errors.Is(err, teamdb.ErrInsufficientBudget) {
				return results.FailureResult[purchaseResult, error](insufficientBudget(team.Budget, teamdomain.HintCost)), nil
			}
			return results.OperationResult[purchaseResult, error]{}, err
		}

		return results.SuccessResult[purchaseResult, error](purchaseResult{
			teamID:  team.ID,
			receipt: teamdomain.PurchaseReceipt{PurchaseID: h.ID, Cost: teamdomain.HintCost, NewBudget: newBudget},
		}), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordBudgetSpent(ctx, spendHint, res.receipt.Cost)
	s.publish(ctx, eventbus.TopicHintPurchased, teamNumber, eventbus.HintPurchasedPayload{
		HintID:      res.receipt.PurchaseID.String(),
		TeamID:      res.teamID.String(),
		TeamNumber:  teamNumber,
		StatementID: statementID,
		Cost:        res.receipt.Cost,
		NewBudget:   res.receipt.NewBudget,
	})
	return &res.receipt, nil
}

func (s *TeamService) ListPurchases(ctx context.Context, teamNumber int) ([]teamdomain.Purchase, error) {
	return operation.Execute(s.runner, ctx, "ListPurchases", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]teamdomain.Purchase, error], error) {
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[[]teamdomain.Purchase](failure, err)
		}
		rows, err := s.repo.ListPurchases(ctx, db, team.ID)
		if err != nil {
			return results.OperationResult[[]teamdomain.Purchase, error]{}, err
		}
		out := make([]teamdomain.Purchase, len(rows))
		for i, r := range rows {
			out[i] = toDomainPurchase(r)
		}
		return results.SuccessResult[[]teamdomain.Purchase, error](out), nil
	})
}

func (s *TeamService) ListHints(ctx context.Context, teamNumber int) ([]teamdomain.Hint, error) {
	return operation.Execute(s.runner, ctx, "ListHints", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]teamdomain.Hint, error], error) {
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[[]teamdomain.Hint](failure, err)
		}
		rows, err := s.repo.ListHints(ctx, db, team.ID)
		if err != nil {
			return results.OperationResult[[]teamdomain.Hint, error]{}, err
		}
		out := make([]teamdomain.Hint, len(rows))
		for i, r := range rows {
			out[i] = toDomainHint(r)
		}
		return results.SuccessResult[[]teamdomain.Hint, error](out), nil
	})
}

// compensate undoes a recorded purchase whose debit did not go through. On
// Postgres the enclosing rollback also discards it.
func (s *TeamService) compensate(ctx context.Context, kind string, id uuid.UUID, undo func(ctx context.Context) error) {
	if err := undo(ctx); err != nil {
		s.logger.WarnContext(ctx, "Compensating delete failed",
			attr.ExtractCorrelationID(ctx),
			attr.String("kind", kind),
			attr.String("id", id.String()),
			attr.Error(err),
		)
	}
}

func (s *TeamService) publish(ctx context.Context, topic string, teamNumber int, payload any) {
	if err := eventbus.PublishJSON(ctx, s.publisher, topic, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish team event",
			attr.ExtractCorrelationID(ctx),
			attr.String("topic", topic),
			attr.TeamNumber(teamNumber),
			attr.Error(err),
		)
	}
}

// failed turns loadTeam's outputs into an operation result.
func failed[S any](failure, err error) (results.OperationResult[S, error], error) {
	if err != nil {
		return results.OperationResult[S, error]{}, err
	}
	return results.FailureResult[S, error](failure), nil
}

func alreadyPurchased(format string, args ...any) error {
	return gameerrors.New(gameerrors.KindAlreadyPurchased, "already purchased: "+format, args...)
}

func insufficientBudget(budget, cost int) error {
	e := gameerrors.New(gameerrors.KindInsufficientBudget, "budget %d does not cover cost %d", budget, cost)
	e.Details = map[string]int{"budget": budget, "cost": cost}
	return e
}
