package teamqueue

import (
	"github.com/riverqueue/river"
)

const QueueTeam = "team"

// ReconcileTeamScoreArgs asks for one team's stored score to be checked
// against its decision history.
type ReconcileTeamScoreArgs struct {
	TeamID string `json:"team_id"`
}

func (ReconcileTeamScoreArgs) Kind() string { return "reconcile_team_score" }

// InsertOpts collapses bursts of decisions for the same team into one job.
func (ReconcileTeamScoreArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:      QueueTeam,
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	}
}

// ReconcileAllScoresArgs is the periodic sweep over every team.
type ReconcileAllScoresArgs struct{}

func (ReconcileAllScoresArgs) Kind() string { return "reconcile_all_scores" }

func (ReconcileAllScoresArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:      QueueTeam,
		UniqueOpts: river.UniqueOpts{ByArgs: true},
	}
}
