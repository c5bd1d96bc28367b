package sessionservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sessiondomain "github.com/Black-And-White-Club/truthtable/app/modules/session/domain"
	sessiondb "github.com/Black-And-White-Club/truthtable/app/modules/session/infrastructure/repositories"
	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

type SessionService struct {
	repo            sessiondb.Repository
	logger          *slog.Logger
	runner          *operation.Runner
	defaultMaxTeams int
}

func NewSessionService(repo sessiondb.Repository, logger *slog.Logger, m metrics.OperationMetrics, tracer trace.Tracer, db *bun.DB) *SessionService {
	runner := operation.NewRunner("SessionService", logger, m, tracer, db)
	return &SessionService{repo: repo, logger: runner.Logger, runner: runner, defaultMaxTeams: teamdomain.MaxTeams}
}

// SetDefaultMaxTeams is what MaxTeams reports before any reset has stored a value.
func (s *SessionService) SetDefaultMaxTeams(n int) {
	if n >= teamdomain.MinTeams && n <= teamdomain.MaxTeams {
		s.defaultMaxTeams = n
	}
}

func (s *SessionService) GetConfig(ctx context.Context, key string) (*sessiondomain.Entry, error) {
	return operation.Execute(s.runner, ctx, "GetConfig", key, func(ctx context.Context, db bun.IDB) (results.OperationResult[*sessiondomain.Entry, error], error) {
		row, err := s.repo.GetConfig(ctx, db, key)
		if err != nil {
			if errors.Is(err, sessiondb.ErrNotFound) {
				return results.FailureResult[*sessiondomain.Entry, error](gameerrors.NotFound("config", key)), nil
			}
			return results.OperationResult[*sessiondomain.Entry, error]{}, err
		}
		e := toDomain(*row)
		return results.SuccessResult[*sessiondomain.Entry, error](&e), nil
	})
}

func (s *SessionService) SetConfig(ctx context.Context, key string, value json.RawMessage) (*sessiondomain.Entry, error) {
	return operation.Execute(s.runner, ctx, "SetConfig", key, func(ctx context.Context, db bun.IDB) (results.OperationResult[*sessiondomain.Entry, error], error) {
		if err := sessiondomain.ValidateEntry(key, value, teamdomain.MinTeams, teamdomain.MaxTeams); err != nil {
			return results.FailureResult[*sessiondomain.Entry, error](gameerrors.Wrap(gameerrors.KindValidation, err, "%s", err.Error())), nil
		}
		if err := s.repo.UpsertConfig(ctx, db, key, value); err != nil {
			return results.OperationResult[*sessiondomain.Entry, error]{}, err
		}
		row, err := s.repo.GetConfig(ctx, db, key)
		if err != nil {
			return results.OperationResult[*sessiondomain.Entry, error]{}, err
		}
		e := toDomain(*row)
		return results.SuccessResult[*sessiondomain.Entry, error](&e), nil
	})
}

func (s *SessionService) ListConfig(ctx context.Context) ([]sessiondomain.Entry, error) {
	return operation.Execute(s.runner, ctx, "ListConfig", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]sessiondomain.Entry, error], error) {
		rows, err := s.repo.ListConfig(ctx, db)
		if err != nil {
			return results.OperationResult[[]sessiondomain.Entry, error]{}, err
		}
		out := make([]sessiondomain.Entry, len(rows))
		for i, r := range rows {
			out[i] = toDomain(r)
		}
		return results.SuccessResult[[]sessiondomain.Entry, error](out), nil
	})
}

func (s *SessionService) MaxTeams(ctx context.Context) (int, error) {
	n, found, err := lookup[int](ctx, s, sessiondomain.KeyMaxTeams)
	if err != nil || !found {
		return s.defaultMaxTeams, err
	}
	return n, nil
}

func (s *SessionService) GameActive(ctx context.Context) (bool, error) {
	active, _, err := lookup[bool](ctx, s, sessiondomain.KeyGameActive)
	return active, err
}

// lookup decodes a typed value without the telemetry wrapper; it runs on hot paths.
func lookup[T any](ctx context.Context, s *SessionService, key string) (T, bool, error) {
	var v T
	row, err := s.repo.GetConfig(ctx, nil, key)
	if err != nil {
		if errors.Is(err, sessiondb.ErrNotFound) {
			return v, false, nil
		}
		return v, false, err
	}
	if err := json.Unmarshal(row.Value, &v); err != nil {
		return v, false, fmt.Errorf("config %q holds %s: %w", key, row.Value, err)
	}
	return v, true, nil
}

func toDomain(r sessiondb.GameConfig) sessiondomain.Entry {
	return sessiondomain.Entry{Key: r.Key, Value: r.Value, UpdatedAt: r.UpdatedAt}
}

var _ Service = (*SessionService)(nil)
