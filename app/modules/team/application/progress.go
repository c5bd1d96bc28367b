package teamservice

import (
	"context"

	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/uptrace/bun"
)

// PurchasedItemIDs and DecidedStatementIDs feed the item unlock rules.

func (s *TeamService) PurchasedItemIDs(ctx context.Context, teamNumber int) ([]string, error) {
	return operation.Execute(s.runner, ctx, "PurchasedItemIDs", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[[]string](failure, err)
		}
		rows, err := s.repo.ListPurchases(ctx, db, team.ID)
		if err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		ids := make([]string, len(rows))
		for i, p := range rows {
			ids[i] = p.ItemID
		}
		return results.SuccessResult[[]string, error](ids), nil
	})
}

func (s *TeamService) DecidedStatementIDs(ctx context.Context, teamNumber int) ([]string, error) {
	return operation.Execute(s.runner, ctx, "DecidedStatementIDs", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[[]string](failure, err)
		}
		ids, err := s.repo.DecidedStatementIDs(ctx, db, team.ID)
		if err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		return results.SuccessResult[[]string, error](ids), nil
	})
}
