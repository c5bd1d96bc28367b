package teamservice

import (
	"context"
	"errors"
	"strings"

	"github.com/Black-And-White-Club/truthtable/app/modules/rotation"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/gamelock"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/uptrace/bun"
)

// AddMember appends a player to the roster. Names are compared case-insensitively.
func (s *TeamService) AddMember(ctx context.Context, teamNumber int, name string) ([]string, error) {
	member, err := teamdomain.NormalizeMember(name)
	if err != nil {
		return nil, gameerrors.Wrap(gameerrors.KindValidation, err, "%s", err.Error())
	}
	return operation.Execute(s.runner, ctx, "AddMember", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[[]string](failure, err)
		}
		if teamdomain.HasMember(team.Members, member) {
			return results.FailureResult[[]string, error](duplicateMember(member)), nil
		}
		members, err := s.repo.AppendMember(ctx, db, team.ID, member)
		if err != nil {
			switch {
			case errors.Is(err, teamdb.ErrDuplicate):
				return results.FailureResult[[]string, error](duplicateMember(member)), nil
			case errors.Is(err, teamdb.ErrNotFound):
				return results.FailureResult[[]string, error](gameerrors.NotFound("team", teamNumber)), nil
			}
			return results.OperationResult[[]string, error]{}, err
		}
		return results.SuccessResult[[]string, error](members), nil
	})
}

// SetMembers replaces the roster. With shuffle the stored order is randomised,
// which fixes the decider rotation for the session.
func (s *TeamService) SetMembers(ctx context.Context, teamNumber int, names []string, shuffle bool) ([]string, error) {
	roster, err := teamdomain.NormalizeRoster(names)
	if err != nil {
		return nil, gameerrors.Wrap(gameerrors.KindValidation, err, "%s", err.Error())
	}
	if shuffle {
		roster = rotation.Shuffle(roster, s.rng)
	}
	return operation.Execute(s.runner, ctx, "SetMembers", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[[]string](failure, err)
		}
		if err := s.repo.ReplaceMembers(ctx, db, team.ID, roster); err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		return results.SuccessResult[[]string, error](roster), nil
	})
}

// SetNickname sets the display name. A blank nickname clears it.
func (s *TeamService) SetNickname(ctx context.Context, teamNumber int, nickname string) (*teamdomain.Team, error) {
	var nick *string
	if trimmed := strings.TrimSpace(nickname); trimmed != "" {
		if len([]rune(trimmed)) > maxNicknameLength {
			return nil, gameerrors.Validation("nickname must be at most %d characters", maxNicknameLength)
		}
		nick = &trimmed
	}
	return operation.Execute(s.runner, ctx, "SetNickname", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[*teamdomain.Team, error], error) {
		if err := gamelock.AcquireShared(ctx, db); err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[*teamdomain.Team](failure, err)
		}
		if err := s.repo.SetNickname(ctx, db, team.ID, nick); err != nil {
			return results.OperationResult[*teamdomain.Team, error]{}, err
		}
		team.Nickname = nick
		t := toDomainTeam(*team)
		return results.SuccessResult[*teamdomain.Team, error](&t), nil
	})
}

// SearchPlayers lists every roster entry containing name, ignoring case.
func (s *TeamService) SearchPlayers(ctx context.Context, name string) ([]teamdomain.PlayerMatch, error) {
	fragment := strings.TrimSpace(name)
	if fragment == "" {
		return nil, gameerrors.Validation("name is required")
	}
	return operation.Execute(s.runner, ctx, "SearchPlayers", fragment, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]teamdomain.PlayerMatch, error], error) {
		teams, err := s.repo.SearchByMember(ctx, db, fragment)
		if err != nil {
			return results.OperationResult[[]teamdomain.PlayerMatch, error]{}, err
		}
		matches := []teamdomain.PlayerMatch{}
		for _, t := range teams {
			display := toDomainTeam(t).DisplayName()
			for _, m := range t.Members {
				if teamdomain.MatchesMember([]string{m}, fragment) {
					matches = append(matches, teamdomain.PlayerMatch{TeamNumber: t.TeamNumber, TeamName: display, Member: m})
				}
			}
		}
		return results.SuccessResult[[]teamdomain.PlayerMatch, error](matches), nil
	})
}

// GetDecider reports who decides the statement at statementIndex and who is next.
func (s *TeamService) GetDecider(ctx context.Context, teamNumber int, statementIndex int) (rotation.Assignment, error) {
	return operation.Execute(s.runner, ctx, "GetDecider", teamKey(teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[rotation.Assignment, error], error) {
		team, failure, err := s.loadTeam(ctx, db, teamNumber)
		if err != nil || failure != nil {
			return failed[rotation.Assignment](failure, err)
		}
		return results.SuccessResult[rotation.Assignment, error](rotation.Assign(team.Members, statementIndex)), nil
	})
}

func duplicateMember(name string) error {
	return gameerrors.Wrap(gameerrors.KindValidation, teamdomain.ErrDuplicateMember, "%s is already on the roster", name)
}
