package statementservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Black-And-White-Club/truthtable/app/eventbus"
	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	statementdb "github.com/Black-And-White-Club/truthtable/app/modules/statement/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/app/shared/operation"
	"github.com/Black-And-White-Club/truthtable/app/shared/results"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// StatementService implements the Service interface.
type StatementService struct {
	repo      statementdb.Repository
	progress  TeamProgress
	publisher message.Publisher
	logger    *slog.Logger
	runner    *operation.Runner
}

// NewStatementService creates a new StatementService. progress may be set later
// with SetTeamProgress to break the construction cycle with the team module.
func NewStatementService(
	repo statementdb.Repository,
	publisher message.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) *StatementService {
	runner := operation.NewRunner("StatementService", logger, m, tracer, db)
	return &StatementService{
		repo:      repo,
		publisher: publisher,
		logger:    runner.Logger,
		runner:    runner,
	}
}

// SetTeamProgress wires the source used by ListItemsForTeam.
func (s *StatementService) SetTeamProgress(p TeamProgress) {
	s.progress = p
}

func (s *StatementService) GetStatement(ctx context.Context, id string) (*statementdomain.Statement, error) {
	return operation.Execute(s.runner, ctx, "GetStatement", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*statementdomain.Statement, error], error) {
		st, failure, err := s.loadStatement(ctx, db, id)
		if err != nil || failure != nil {
			return results.OperationResult[*statementdomain.Statement, error]{Failure: failure}, err
		}
		return results.SuccessResult[*statementdomain.Statement, error](st), nil
	})
}

// loadStatement returns a NotFound failure rather than an error for unknown ids.
func (s *StatementService) loadStatement(ctx context.Context, db bun.IDB, id string) (*statementdomain.Statement, *error, error) {
	if strings.TrimSpace(id) == "" {
		var failure error = gameerrors.Validation("statement id is required")
		return nil, &failure, nil
	}
	row, err := s.repo.GetStatement(ctx, db, id)
	if err != nil {
		if errors.Is(err, statementdb.ErrNotFound) {
			var failure error = gameerrors.NotFound("statement", id)
			return nil, &failure, nil
		}
		return nil, nil, err
	}
	st := toDomainStatement(*row)
	return &st, nil, nil
}

func (s *StatementService) ListStatements(ctx context.Context) ([]statementdomain.Statement, error) {
	return operation.Execute(s.runner, ctx, "ListStatements", "all", func(ctx context.Context, db bun.IDB) (results.OperationResult[[]statementdomain.Statement, error], error) {
		rows, err := s.repo.ListStatements(ctx, db)
		if err != nil {
			return results.OperationResult[[]statementdomain.Statement, error]{}, err
		}
		out := make([]statementdomain.Statement, len(rows))
		for i, r := range rows {
			out[i] = toDomainStatement(r)
		}
		return results.SuccessResult[[]statementdomain.Statement, error](out), nil
	})
}

// ImportStatements upserts statements by id.
func (s *StatementService) ImportStatements(ctx context.Context, statements []statementdomain.Statement) error {
	_, err := operation.Execute(s.runner, ctx, "ImportStatements", fmt.Sprintf("%d", len(statements)), func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		rows := make([]statementdb.Statement, 0, len(statements))
		for _, st := range statements {
			if strings.TrimSpace(st.ID) == "" || strings.TrimSpace(st.Text) == "" {
				return results.FailureResult[int, error](gameerrors.Validation("statement id and text are required")), nil
			}
			rows = append(rows, statementdb.Statement{
				ID:         st.ID,
				Text:       st.Text,
				Topic:      st.Topic,
				TruthLabel: strings.ToLower(strings.TrimSpace(st.TruthLabel)),
				Position:   st.Position,
			})
		}
		if err := s.repo.UpsertStatements(ctx, db, rows); err != nil {
			return results.OperationResult[int, error]{}, err
		}
		return results.SuccessResult[int, error](len(rows)), nil
	})
	return err
}

func (s *StatementService) GetEvaluationTable(ctx context.Context, statementID string) (statementdomain.Table, error) {
	return operation.Execute(s.runner, ctx, "GetEvaluationTable", statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[statementdomain.Table, error], error) {
		if _, failure, err := s.loadStatement(ctx, db, statementID); err != nil || failure != nil {
			return results.OperationResult[statementdomain.Table, error]{Failure: failure}, err
		}
		table, err := s.loadTable(ctx, db, statementID)
		if err != nil {
			return results.OperationResult[statementdomain.Table, error]{}, err
		}
		return results.SuccessResult[statementdomain.Table, error](table), nil
	})
}

// SetEvaluationTable upserts every entry in one call. Choices not mentioned keep
// their current entry.
func (s *StatementService) SetEvaluationTable(ctx context.Context, statementID string, entries statementdomain.Table) (statementdomain.Table, error) {
	return s.writeEvaluations(ctx, "SetEvaluationTable", statementID, entries)
}

func (s *StatementService) UpsertEvaluation(ctx context.Context, statementID string, entry statementdomain.Evaluation) (statementdomain.Table, error) {
	return s.writeEvaluations(ctx, "UpsertEvaluation", statementID, statementdomain.Table{entry})
}

func (s *StatementService) writeEvaluations(ctx context.Context, op, statementID string, entries statementdomain.Table) (statementdomain.Table, error) {
	table, err := operation.Execute(s.runner, ctx, op, statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[statementdomain.Table, error], error) {
		normalized := make(statementdomain.Table, 0, len(entries))
		for _, e := range entries {
			c, err := statementdomain.ParseChoice(string(e.Choice))
			if err != nil {
				return results.FailureResult[statementdomain.Table, error](gameerrors.Wrap(gameerrors.KindValidation, err, "invalid evaluation choice")), nil
			}
			e.Choice = c
			normalized = append(normalized, e)
		}
		if err := normalized.Validate(); err != nil {
			return results.FailureResult[statementdomain.Table, error](gameerrors.Wrap(gameerrors.KindValidation, err, "invalid evaluation table")), nil
		}
		if len(normalized) == 0 {
			return results.FailureResult[statementdomain.Table, error](gameerrors.Validation("at least one evaluation is required")), nil
		}

		if _, failure, err := s.loadStatement(ctx, db, statementID); err != nil || failure != nil {
			return results.OperationResult[statementdomain.Table, error]{Failure: failure}, err
		}

		rows := make([]statementdb.Evaluation, len(normalized))
		for i, e := range normalized {
			rows[i] = statementdb.Evaluation{
				StatementID: statementID,
				Choice:      string(e.Choice),
				IsCorrect:   e.IsCorrect,
				Points:      e.Points,
				Feedback:    e.Feedback,
			}
		}
		if err := s.repo.UpsertEvaluations(ctx, db, rows); err != nil {
			return results.OperationResult[statementdomain.Table, error]{}, err
		}

		table, err := s.loadTable(ctx, db, statementID)
		if err != nil {
			return results.OperationResult[statementdomain.Table, error]{}, err
		}
		return results.SuccessResult[statementdomain.Table, error](table), nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvaluationsUpdated(ctx, statementID, table)
	return table, nil
}

func (s *StatementService) DeleteEvaluation(ctx context.Context, statementID string, choice statementdomain.Choice) (statementdomain.Table, error) {
	table, err := operation.Execute(s.runner, ctx, "DeleteEvaluation", statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[statementdomain.Table, error], error) {
		c, err := statementdomain.ParseChoice(string(choice))
		if err != nil {
			return results.FailureResult[statementdomain.Table, error](gameerrors.Wrap(gameerrors.KindValidation, err, "invalid evaluation choice")), nil
		}
		if err := s.repo.DeleteEvaluation(ctx, db, statementID, string(c)); err != nil {
			if errors.Is(err, statementdb.ErrNotFound) {
				return results.FailureResult[statementdomain.Table, error](gameerrors.NotFound("evaluation", statementID+"/"+string(c))), nil
			}
			return results.OperationResult[statementdomain.Table, error]{}, err
		}
		table, err := s.loadTable(ctx, db, statementID)
		if err != nil {
			return results.OperationResult[statementdomain.Table, error]{}, err
		}
		return results.SuccessResult[statementdomain.Table, error](table), nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvaluationsUpdated(ctx, statementID, table)
	return table, nil
}

func (s *StatementService) GetRecommendedItems(ctx context.Context, statementID string) ([]string, error) {
	return operation.Execute(s.runner, ctx, "GetRecommendedItems", statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		if _, failure, err := s.loadStatement(ctx, db, statementID); err != nil || failure != nil {
			return results.OperationResult[[]string, error]{Failure: failure}, err
		}
		ids, err := s.repo.GetRecommendedItems(ctx, db, statementID)
		if err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		return results.SuccessResult[[]string, error](statementdomain.FilterRecommended(ids)), nil
	})
}

// SetRecommendedItems replaces the recommended list. A legacy list that still
// carries packed evaluation blobs is split and the blobs are ignored here; the
// evaluation table is only written through the evaluation operations.
func (s *StatementService) SetRecommendedItems(ctx context.Context, statementID string, itemIDs []string) ([]string, error) {
	return operation.Execute(s.runner, ctx, "SetRecommendedItems", statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]string, error], error) {
		if _, failure, err := s.loadStatement(ctx, db, statementID); err != nil || failure != nil {
			return results.OperationResult[[]string, error]{Failure: failure}, err
		}
		ids := statementdomain.FilterRecommended(itemIDs)
		if dropped := len(itemIDs) - len(ids); dropped > 0 {
			s.logger.WarnContext(ctx, "Dropped bookkeeping entries from recommended items",
				attr.StatementID(statementID),
				attr.Int("dropped", dropped),
			)
		}
		if err := s.repo.ReplaceRecommendedItems(ctx, db, statementID, ids); err != nil {
			return results.OperationResult[[]string, error]{}, err
		}
		return results.SuccessResult[[]string, error](ids), nil
	})
}

func (s *StatementService) LoadForScoring(ctx context.Context, statementID string) (*ScoringContext, error) {
	return operation.Execute(s.runner, ctx, "LoadForScoring", statementID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*ScoringContext, error], error) {
		st, failure, err := s.loadStatement(ctx, db, statementID)
		if err != nil || failure != nil {
			return results.OperationResult[*ScoringContext, error]{Failure: failure}, err
		}
		table, err := s.loadTable(ctx, db, statementID)
		if err != nil {
			return results.OperationResult[*ScoringContext, error]{}, err
		}
		recommended, err := s.repo.GetRecommendedItems(ctx, db, statementID)
		if err != nil {
			return results.OperationResult[*ScoringContext, error]{}, err
		}
		return results.SuccessResult[*ScoringContext, error](&ScoringContext{
			Statement:   *st,
			Table:       table,
			Recommended: statementdomain.FilterRecommended(recommended),
		}), nil
	})
}

func (s *StatementService) GetItem(ctx context.Context, id string) (*statementdomain.Item, error) {
	return operation.Execute(s.runner, ctx, "GetItem", id, func(ctx context.Context, db bun.IDB) (results.OperationResult[*statementdomain.Item, error], error) {
		row, err := s.repo.GetItem(ctx, db, id)
		if err != nil {
			if errors.Is(err, statementdb.ErrNotFound) {
				return results.FailureResult[*statementdomain.Item, error](gameerrors.NotFound("item", id)), nil
			}
			return results.OperationResult[*statementdomain.Item, error]{}, err
		}
		it := toDomainItem(*row)
		return results.SuccessResult[*statementdomain.Item, error](&it), nil
	})
}

func (s *StatementService) ImportItems(ctx context.Context, items []statementdomain.Item) error {
	_, err := operation.Execute(s.runner, ctx, "ImportItems", fmt.Sprintf("%d", len(items)), func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		rows := make([]statementdb.Item, 0, len(items))
		for _, it := range items {
			if strings.TrimSpace(it.ID) == "" {
				return results.FailureResult[int, error](gameerrors.Validation("item id is required")), nil
			}
			if it.Cost < 0 {
				return results.FailureResult[int, error](gameerrors.Validation("item %s has negative cost", it.ID)), nil
			}
			rows = append(rows, statementdb.Item{
				ID:                      it.ID,
				Name:                    it.Name,
				Description:             it.Description,
				Cost:                    it.Cost,
				PrerequisiteItemID:      it.PrerequisiteItemID,
				PrerequisiteStatementID: it.PrerequisiteStatementID,
			})
		}
		if err := s.repo.UpsertItems(ctx, db, rows); err != nil {
			return results.OperationResult[int, error]{}, err
		}
		return results.SuccessResult[int, error](len(rows)), nil
	})
	return err
}

// ListItemsForTeam returns the items whose prerequisites the team has met,
// cheapest first.
func (s *StatementService) ListItemsForTeam(ctx context.Context, teamNumber int) ([]statementdomain.Item, error) {
	if s.progress == nil {
		return nil, fmt.Errorf("ListItemsForTeam: team progress source not configured")
	}
	purchased, err := s.progress.PurchasedItemIDs(ctx, teamNumber)
	if err != nil {
		return nil, err
	}
	decided, err := s.progress.DecidedStatementIDs(ctx, teamNumber)
	if err != nil {
		return nil, err
	}

	return operation.Execute(s.runner, ctx, "ListItemsForTeam", fmt.Sprintf("team-%d", teamNumber), func(ctx context.Context, db bun.IDB) (results.OperationResult[[]statementdomain.Item, error], error) {
		rows, err := s.repo.ListItems(ctx, db)
		if err != nil {
			return results.OperationResult[[]statementdomain.Item, error]{}, err
		}
		items := make([]statementdomain.Item, len(rows))
		for i, r := range rows {
			items[i] = toDomainItem(r)
		}
		available := statementdomain.AvailableItems(items, toSet(purchased), toSet(decided))
		return results.SuccessResult[[]statementdomain.Item, error](available), nil
	})
}

func (s *StatementService) loadTable(ctx context.Context, db bun.IDB, statementID string) (statementdomain.Table, error) {
	rows, err := s.repo.GetEvaluations(ctx, db, statementID)
	if err != nil {
		return nil, err
	}
	table := make(statementdomain.Table, 0, len(rows))
	for _, r := range rows {
		table = append(table, statementdomain.Evaluation{
			Choice:    statementdomain.Choice(r.Choice),
			IsCorrect: r.IsCorrect,
			Points:    r.Points,
			Feedback:  r.Feedback,
		})
	}
	return table, nil
}

func (s *StatementService) publishEvaluationsUpdated(ctx context.Context, statementID string, table statementdomain.Table) {
	err := eventbus.PublishJSON(ctx, s.publisher, eventbus.TopicEvaluationsUpdated, eventbus.EvaluationsUpdatedPayload{
		StatementID: statementID,
		Choices:     table.Choices(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to publish evaluations update",
			attr.StatementID(statementID),
			attr.Error(err),
		)
	}
}

func toDomainStatement(r statementdb.Statement) statementdomain.Statement {
	return statementdomain.Statement{
		ID:         r.ID,
		Text:       r.Text,
		Topic:      r.Topic,
		TruthLabel: r.TruthLabel,
		Position:   r.Position,
	}
}

func toDomainItem(r statementdb.Item) statementdomain.Item {
	return statementdomain.Item{
		ID:                      r.ID,
		Name:                    r.Name,
		Description:             r.Description,
		Cost:                    r.Cost,
		PrerequisiteItemID:      r.PrerequisiteItemID,
		PrerequisiteStatementID: r.PrerequisiteStatementID,
	}
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

var _ Service = (*StatementService)(nil)
