package teamqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	teamdomain "github.com/Black-And-White-Club/truthtable/app/modules/team/domain"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/gameerrors"
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// Reconciler is the part of the team service the workers drive.
type Reconciler interface {
	ReconcileScore(ctx context.Context, teamID uuid.UUID) (*teamdomain.Team, error)
	ReconcileAllScores(ctx context.Context) (int, error)
}

type ReconcileTeamScoreWorker struct {
	river.WorkerDefaults[ReconcileTeamScoreArgs]
	reconciler Reconciler
	logger     *slog.Logger
}

func NewReconcileTeamScoreWorker(reconciler Reconciler, logger *slog.Logger) *ReconcileTeamScoreWorker {
	return &ReconcileTeamScoreWorker{reconciler: reconciler, logger: logger}
}

func (w *ReconcileTeamScoreWorker) Work(ctx context.Context, job *river.Job[ReconcileTeamScoreArgs]) error {
	teamID, err := uuid.Parse(job.Args.TeamID)
	if err != nil {
		return river.JobCancel(fmt.Errorf("invalid team id %q: %w", job.Args.TeamID, err))
	}

	team, err := w.reconciler.ReconcileScore(ctx, teamID)
	if err != nil {
		// A reset between enqueue and run removes the team; nothing is left to fix.
		if errors.Is(err, gameerrors.ErrNotFound) {
			w.logger.InfoContext(ctx, "Team gone before reconcile ran",
				attr.String("team_id", job.Args.TeamID),
			)
			return nil
		}
		w.logger.WarnContext(ctx, "Team reconcile failed",
			attr.String("team_id", job.Args.TeamID),
			attr.Int("attempt", job.Attempt),
			attr.Error(err),
		)
		return err
	}

	w.logger.DebugContext(ctx, "Team score reconciled",
		attr.TeamNumber(team.TeamNumber),
		attr.Int("score", team.Score),
	)
	return nil
}

type ReconcileAllScoresWorker struct {
	river.WorkerDefaults[ReconcileAllScoresArgs]
	reconciler Reconciler
	logger     *slog.Logger
}

func NewReconcileAllScoresWorker(reconciler Reconciler, logger *slog.Logger) *ReconcileAllScoresWorker {
	return &ReconcileAllScoresWorker{reconciler: reconciler, logger: logger}
}

func (w *ReconcileAllScoresWorker) Work(ctx context.Context, job *river.Job[ReconcileAllScoresArgs]) error {
	corrected, err := w.reconciler.ReconcileAllScores(ctx)
	if err != nil {
		return fmt.Errorf("reconcile sweep: %w", err)
	}
	if corrected > 0 {
		w.logger.WarnContext(ctx, "Reconcile sweep corrected drifted teams",
			attr.Int("corrected", corrected),
		)
	}
	return nil
}
