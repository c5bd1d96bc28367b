package teamservice

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/eventbus"
	sessiondomain "github.com/Black-And-White-Club/truthtable/app/modules/session/domain"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/dberr"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/gamelock"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/cenkalti/backoff/v4"
	"github.com/uptrace/bun"
)

const resetAttempts = 3

// resetCounts are the row counts taken inside the reset transaction.
type resetCounts struct {
	before teamdb.GameCounts
	after  teamdb.GameCounts
}

// ResetGame wipes the session and seeds teams 1..maxTeams. The wipe runs under
// the exclusive game lock and is retried on serialization failures. The result
// is verified before the lock is released; a mismatch rolls the reset back.
func (s *TeamService) ResetGame(ctx context.Context, maxTeams int) (*teamdomain.ResetResult, error) {
	if maxTeams < teamdomain.MinTeams || maxTeams > teamdomain.MaxTeams {
		return nil, gameerrors.Validation("maxTeams must be between %d and %d, got %d", teamdomain.MinTeams, teamdomain.MaxTeams, maxTeams)
	}

	result, err := operation.Unwrap(operation.WithTelemetry(s.runner, ctx, "ResetGame", strconv.Itoa(maxTeams), func(ctx context.Context) (results.OperationResult[*teamdomain.ResetResult, error], error) {
		var outcome results.OperationResult[resetCounts, error]
		attempt := 0
		op := func() error {
			attempt++
			res, err := operation.RunInTx(s.runner, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[resetCounts, error], error) {
				return s.resetInTx(ctx, db, maxTeams)
			})
			if err == nil {
				outcome = res
				return nil
			}
			if dberr.IsRetryable(err) {
				s.logger.WarnContext(ctx, "Reset transaction conflicted, retrying",
					attr.ExtractCorrelationID(ctx),
					attr.Int("attempt", attempt),
					attr.Error(err),
				)
				return err
			}
			return backoff.Permanent(err)
		}
		if err := backoff.Retry(op, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
			return results.OperationResult[*teamdomain.ResetResult, error]{}, err
		}
		if outcome.IsFailure() {
			return results.FailureResult[*teamdomain.ResetResult, error](*outcome.Failure), nil
		}

		counts := *outcome.Success
		s.logger.InfoContext(ctx, "Game reset",
			attr.ExtractCorrelationID(ctx),
			attr.Int("max_teams", maxTeams),
			attr.Int("teams_removed", counts.before.Teams),
			attr.Int("decisions_removed", counts.before.Decisions),
			attr.Int("attempts", attempt),
		)
		return results.SuccessResult[*teamdomain.ResetResult, error](&teamdomain.ResetResult{TeamsCreated: counts.after.Teams}), nil
	}))
	if err != nil {
		return nil, err
	}

	s.publish(ctx, eventbus.TopicGameReset, 0, eventbus.GameResetPayload{
		MaxTeams:     maxTeams,
		TeamsCreated: result.TeamsCreated,
		ResetAt:      time.Now().UTC(),
	})
	return result, nil
}

func (s *TeamService) resetInTx(ctx context.Context, db bun.IDB, maxTeams int) (results.OperationResult[resetCounts, error], error) {
	if err := gamelock.AcquireExclusive(ctx, db); err != nil {
		return results.OperationResult[resetCounts, error]{}, err
	}
	before, err := s.repo.CountGameRows(ctx, db)
	if err != nil {
		return results.OperationResult[resetCounts, error]{}, err
	}
	if err := s.repo.ClearGame(ctx, db); err != nil {
		return results.OperationResult[resetCounts, error]{}, err
	}
	if err := s.repo.CreateTeams(ctx, db, maxTeams, teamdomain.StartingBudget); err != nil {
		return results.OperationResult[resetCounts, error]{}, err
	}

	// Verified while the exclusive lock still holds writers back.
	after, err := s.repo.CountGameRows(ctx, db)
	if err != nil {
		return results.OperationResult[resetCounts, error]{}, err
	}
	if after.Teams != maxTeams || after.Decisions != 0 || after.Purchases != 0 || after.Hints != 0 {
		return results.FailureResult[resetCounts, error](partialReset(maxTeams, before, after)), nil
	}

	if s.config != nil {
		if err := s.config.UpsertConfig(ctx, db, sessiondomain.KeyMaxTeams, json.RawMessage(strconv.Itoa(maxTeams))); err != nil {
			return results.OperationResult[resetCounts, error]{}, err
		}
		if err := s.config.UpsertConfig(ctx, db, sessiondomain.KeyGameActive, json.RawMessage("true")); err != nil {
			return results.OperationResult[resetCounts, error]{}, err
		}
	}
	return results.SuccessResult[resetCounts, error](resetCounts{before: before, after: after}), nil
}

func partialReset(maxTeams int, before, after teamdb.GameCounts) error {
	e := gameerrors.New(gameerrors.KindPartialFailureDuringReset,
		"reset left %d teams, %d decisions, %d purchases and %d hints", after.Teams, after.Decisions, after.Purchases, after.Hints)
	e.Details = map[string]int{
		"expectedTeams":   maxTeams,
		"teamsBefore":     before.Teams,
		"decisionsBefore": before.Decisions,
		"purchasesBefore": before.Purchases,
		"hintsBefore":     before.Hints,
		"teamsAfter":      after.Teams,
		"decisionsAfter":  after.Decisions,
		"purchasesAfter":  after.Purchases,
		"hintsAfter":      after.Hints,
	}
	return e
}
