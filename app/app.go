// Package app wires the game modules onto Postgres, the event bus, the job
// queue and the HTTP API.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Black-And-White-Club/truthtable/app/eventbus"
	teamqueue "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/queue"
	teamrouter "github.com/Black-And-White-Club/truthtable/app/modules/team/infrastructure/router"
	"github.com/Black-And-White-Club/truthtable/app/shared/attr"
	"github.com/Black-And-White-Club/truthtable/app/shared/metrics"
	"github.com/Black-And-White-Club/truthtable/config"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// App is the running service.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	DB       *bun.DB
	EventBus eventbus.EventBus
	Modules  *Modules

	registry      *prometheus.Registry
	tracer        *sdktrace.TracerProvider
	queue         *teamqueue.Service
	router        *message.Router
	httpServer    *http.Server
	metricsServer *http.Server
}

// NewApp connects every dependency and wires the modules. Nothing is started
// until Run.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := newLogger(cfg.Observability, os.Stdout)
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Logger: logger, registry: newRegistry()}

	if a.tracer, err = newTracerProvider(ctx, cfg.Observability); err != nil {
		return nil, err
	}

	m, err := metrics.NewPrometheus(a.registry, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.DSN)))
	a.DB = bun.NewDB(sqldb, pgdialect.New())
	if err := a.DB.PingContext(ctx); err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if a.EventBus, err = eventbus.NewEventBus(eventbus.Config{
		NATSURL:    cfg.NATS.URL,
		QueueGroup: cfg.NATS.QueueGroup,
	}, logger); err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	a.Modules = NewModules(cfg.Game, a.DB, a.EventBus, logger, m, a.tracer)

	if a.queue, err = teamqueue.NewService(ctx, cfg.Postgres.DSN, a.Modules.Teams, logger, m, cfg.Game.ReconcileInterval); err != nil {
		a.closeQuietly()
		return nil, err
	}

	if a.router, err = message.NewRouter(message.RouterConfig{CloseTimeout: shutdownTimeout}, watermill.NewSlogLogger(logger)); err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("failed to create message router: %w", err)
	}
	teamRouter := teamrouter.NewTeamRouter(logger, a.router, a.EventBus, a.queue, a.registry)
	if err := teamRouter.Configure(ctx); err != nil {
		a.closeQuietly()
		return nil, fmt.Errorf("failed to configure team router: %w", err)
	}

	checks := map[string]healthFunc{
		"postgres": a.DB.PingContext,
		"queue":    a.queue.HealthCheck,
	}
	a.httpServer = &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           otelhttp.NewHandler(newHTTPHandler(*cfg, logger, a.registry, checks, a.Modules.handlers...), "truthtable.http"),
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.Observability.MetricsAddress != "" {
		a.metricsServer = newMetricsServer(cfg.Observability.MetricsAddress, a.registry)
	}

	logger.InfoContext(ctx, "Application initialized",
		attr.String("http_address", cfg.HTTP.Address),
		attr.Bool("nats", cfg.NATS.URL != ""),
		attr.Int("default_max_teams", cfg.Game.DefaultMaxTeams),
	)
	return a, nil
}

// Run serves until ctx is cancelled or a component fails, then shuts the
// listeners down.
func (a *App) Run(ctx context.Context) error {
	// river stops on Stop, not on ctx cancellation of Run.
	if err := a.queue.Start(context.WithoutCancel(ctx)); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.router.Run(ctx)
	})
	g.Go(func() error {
		a.Logger.InfoContext(ctx, "HTTP server listening", attr.String("address", a.httpServer.Addr))
		return listen(a.httpServer)
	})
	if a.metricsServer != nil {
		g.Go(func() error {
			return listen(a.metricsServer)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := a.httpServer.Shutdown(shutdownCtx)
		if a.metricsServer != nil {
			err = errors.Join(err, a.metricsServer.Shutdown(shutdownCtx))
		}
		return err
	})
	return g.Wait()
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server %s: %w", srv.Addr, err)
	}
	return nil
}

// Close releases everything NewApp opened, in reverse order.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.queue != nil {
		errs = append(errs, a.queue.Stop(ctx))
	}
	if a.router != nil {
		errs = append(errs, a.router.Close())
	}
	if closer, ok := a.EventBus.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.tracer != nil {
		errs = append(errs, a.tracer.Shutdown(ctx))
	}

	err := errors.Join(errs...)
	if err != nil {
		a.Logger.Error("Shutdown finished with errors", attr.Error(err))
		return err
	}
	a.Logger.Info("Application shut down")
	return nil
}

func (a *App) closeQuietly() {
	if err := a.Close(); err != nil {
		a.Logger.Warn("Cleanup after failed start", attr.Error(err))
	}
}
