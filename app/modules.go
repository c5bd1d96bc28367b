package app

import (
	"log/slog"

	analyticsservice "github.com/Black-And-White-Club/truthtable/app/modules/analytics/application"
	analyticshandlers "github.com/Black-And-White-Club/truthtable/app/modules/analytics/infrastructure/handlers"
	decisionservice "github.com/Black-And-White-Club/truthtable/app/modules/decision/application"
	decisionhandlers "github.com/Black-And-White-Club/truthtable/app/modules/decision/infrastructure/handlers"
	decisiondb "github.com/Black-And-White-Club/truthtable/app/modules/decision/infrastructure/repositories"
	sessionservice "github.com/Black-And-White-Club/truthtable/app/modules/session/application"
	sessionhandlers "github.com/Black-And-White-Club/truthtable/app/modules/session/infrastructure/handlers"
	sessiondb "github.com/Black-And-White-Club/truthtable/app/modules/session/infrastructure/repositories"
	statementservice "github.com/Black-And-White-Club/truthtable/app/modules/statement/application"
	statementhandlers "github.com/Black-And-White-Club/truthtable/app/modules/statement/infrastructure/handlers"
	statementdb "github.com/Black-And-White-Club/truthtable/app/modules/statement/infrastructure/repositories"
	teamservice "github.com/Black-And-White-Club/truthtable/app/modules/team/application"
	teamhandlers "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/handlers"
	teamdb "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/repositories"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/config"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace"
)

// Modules holds the game services after wiring.
type Modules struct {
	Statements *statementservice.StatementService
	Decisions  *decisionservice.DecisionService
	Teams      *teamservice.TeamService
	Sessions   *sessionservice.SessionService
	Analytics  *analyticsservice.AnalyticsService

	handlers []mounter
}

// NewModules builds the services in dependency order. Statement and
// team depend on each other, so team progress is attached after both exist.
func NewModules(
	cfg config.GameConfig,
	db *bun.DB,
	publisher message.Publisher,
	logger *slog.Logger,
	m metrics.OperationMetrics,
	tp trace.TracerProvider,
) *Modules {
	statementRepo := statementdb.NewRepository(db)
	decisionRepo := decisiondb.NewRepository(db)
	teamRepo := teamdb.NewRepository(db)
	sessionRepo := sessiondb.NewRepository(db)

	sessions := sessionservice.NewSessionService(sessionRepo, logger, m, tp.Tracer("truthtable/session"), db)
	sessions.SetDefaultMaxTeams(cfg.DefaultMaxTeams)

	statements := statementservice.NewStatementService(statementRepo, publisher, logger, m, tp.Tracer("truthtable/statement"), db)

	teams := teamservice.NewTeamService(teamRepo, statements, sessionRepo, publisher, logger, m, tp.Tracer("truthtable/team"), db)
	teams.SetResetAttempts(cfg.ResetAttempts)
	statements.SetTeamProgress(teams)

	decisions := decisionservice.NewDecisionService(decisionRepo, teamRepo, statements, publisher, logger, m, tp.Tracer("truthtable/decision"), db)

	analytics := analyticsservice.NewAnalyticsService(teams, decisions, statements, logger, m, tp.Tracer("truthtable/analytics"))

	return &Modules{
		Statements: statements,
		Decisions:  decisions,
		Teams:      teams,
		Sessions:   sessions,
		Analytics:  analytics,
		handlers: []mounter{
			statementhandlers.NewStatementHandlers(statements, logger),
			decisionhandlers.NewDecisionHandlers(decisions, logger),
			teamhandlers.NewTeamHandlers(teams, statements, logger),
			sessionhandlers.NewSessionHandlers(sessions, logger),
			analyticshandlers.NewAnalyticsHandlers(analytics, logger),
		},
	}
}
