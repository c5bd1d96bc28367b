package teamrouter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/truthtable/app/eventbus"
	teamqueue "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/queue"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

const handlerDecisionSubmitted = "team.reconcile_on_decision"

// TeamRouter feeds decision events into the reconcile queue.
type TeamRouter struct {
	logger     *slog.Logger
	Router     *message.Router
	subscriber message.Subscriber
	enqueuer   teamqueue.Enqueuer

	metricsBuilder *metrics.PrometheusMetricsBuilder
}

// NewTeamRouter attaches to router. A nil registry leaves router metrics off.
func NewTeamRouter(logger *slog.Logger, router *message.Router, subscriber message.Subscriber, enqueuer teamqueue.Enqueuer, registry *prometheus.Registry) *TeamRouter {
	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if registry != nil {
		b := metrics.NewPrometheusMetricsBuilder(registry, "truthtable", "team_router")
		metricsBuilder = &b
	}
	return &TeamRouter{
		logger:         logger,
		Router:         router,
		subscriber:     subscriber,
		enqueuer:       enqueuer,
		metricsBuilder: metricsBuilder,
	}
}

func (r *TeamRouter) Configure(_ context.Context) error {
	if r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}
	r.Router.AddMiddleware(
		middleware.Recoverer,
		middleware.CorrelationID,
	)
	r.Router.AddNoPublisherHandler(
		handlerDecisionSubmitted,
		eventbus.TopicDecisionSubmitted,
		r.subscriber,
		r.HandleDecisionSubmitted,
	)
	return nil
}

// HandleDecisionSubmitted enqueues a reconcile for the deciding team. Payloads
// that cannot be decoded are dropped so they do not redeliver forever.
func (r *TeamRouter) HandleDecisionSubmitted(msg *message.Message) error {
	ctx := attr.WithCorrelationID(msg.Context(), middleware.MessageCorrelationID(msg))

	payload, err := eventbus.DecodeJSON[eventbus.DecisionSubmittedPayload](msg)
	if err != nil {
		r.logger.ErrorContext(ctx, "Dropping undecodable decision event",
			attr.ExtractCorrelationID(ctx),
			attr.String("message_id", msg.UUID),
			attr.Error(err),
		)
		return nil
	}
	teamID, err := uuid.Parse(payload.TeamID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Dropping decision event with bad team id",
			attr.ExtractCorrelationID(ctx),
			attr.String("team_id", payload.TeamID),
			attr.Error(err),
		)
		return nil
	}

	if err := r.enqueuer.EnqueueReconcile(ctx, teamID); err != nil {
		return fmt.Errorf("enqueue reconcile for team %d: %w", payload.TeamNumber, err)
	}
	r.logger.DebugContext(ctx, "Queued score reconcile",
		attr.ExtractCorrelationID(ctx),
		attr.TeamNumber(payload.TeamNumber),
		attr.StatementID(payload.StatementID),
	)
	return nil
}
