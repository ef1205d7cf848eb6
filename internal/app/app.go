package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Temutjin2k/fleet-ops-system/config"
	docstoreadapter "github.com/Temutjin2k/fleet-ops-system/internal/adapter/docstore"
	"github.com/Temutjin2k/fleet-ops-system/internal/adapter/http/server"
	"github.com/Temutjin2k/fleet-ops-system/internal/adapter/remindersink"
	"github.com/Temutjin2k/fleet-ops-system/internal/reminder"
	"github.com/Temutjin2k/fleet-ops-system/internal/service/auth"
	"github.com/Temutjin2k/fleet-ops-system/internal/service/fleet"
	"github.com/Temutjin2k/fleet-ops-system/internal/service/ops"
	"github.com/Temutjin2k/fleet-ops-system/internal/service/trips"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	"github.com/Temutjin2k/fleet-ops-system/pkg/postgres"
	"github.com/Temutjin2k/fleet-ops-system/pkg/rabbit"
	ws "github.com/Temutjin2k/fleet-ops-system/pkg/wsHub"
)

// App owns every long-lived component of the service and ties their
// lifecycles together.
type App struct {
	postgresDB *postgres.PostgreDB
	rabbitMQ   *rabbit.RabbitMQ
	dispatcher *remindersink.Dispatcher
	opsService *ops.Service
	httpServer *server.API
	hub        *ws.ConnectionHub

	cfg config.Config
	log logger.Logger
}

func NewApplication(ctx context.Context, cfg config.Config, log logger.Logger) (*App, error) {
	postgresDB, err := postgres.New(ctx, cfg.Database)
	if err != nil {
		log.Error(ctx, "failed to setup database", err)
		return nil, err
	}

	rabbitMQ, err := rabbit.New(ctx, cfg.RabbitMQ.GetDSN(), log)
	if err != nil {
		log.Error(ctx, "failed to setup rabbitMQ", err)
		postgresDB.Close()
		return nil, err
	}

	app := &App{
		postgresDB: postgresDB,
		rabbitMQ:   rabbitMQ,
		cfg:        cfg,
		log:        log,
	}

	if err := app.initServices(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}

	return app, nil
}

func (a *App) initServices(ctx context.Context) error {
	store := docstoreadapter.NewPostgres(a.postgresDB.Pool, a.log)
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure document store schema: %w", err)
	}

	producer, err := remindersink.NewProducer(ctx, a.rabbitMQ)
	if err != nil {
		return fmt.Errorf("failed to setup reminder producer: %w", err)
	}

	outbox := remindersink.NewOutbox(a.postgresDB.Pool, producer, a.log)
	if err := outbox.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to ensure reminder outbox schema: %w", err)
	}

	a.dispatcher = remindersink.NewDispatcher(a.postgresDB.Pool, producer, a.cfg.Reminder.DispatchInterval, a.log)

	scheduler := reminder.NewScheduler(outbox, a.log)
	tripService := trips.NewService(store, a.log)
	fleetService := fleet.NewService(store, scheduler, a.log)
	a.opsService = ops.NewService(store, tripService, fleetService, scheduler, a.log)

	a.hub = ws.NewConnHub(a.log)
	tokenVerifier := auth.NewTokenVerifier(a.cfg.Auth.JWTSecret)

	a.httpServer, err = server.New(a.cfg, a.opsService, tokenVerifier, a.hub, a.log)
	if err != nil {
		return fmt.Errorf("failed to setup http server: %w", err)
	}

	return nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	dispatchCtx, cancelDispatch := context.WithCancel(ctx)
	go a.dispatcher.Run(dispatchCtx)

	a.httpServer.Run(ctx, errCh)
	defer func() {
		cancelDispatch()
		a.close(ctx)
		a.log.Info(ctx, "fleet-ops service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	a.log.Info(ctx, "fleet-ops service started")

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		a.log.Info(ctx, "shutting down application", "signal", sig.String())
		return nil
	}
}

func (a *App) close(ctx context.Context) {
	if a.opsService != nil {
		a.opsService.StopStatistics()
	}

	if a.hub != nil {
		a.hub.Close()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Stop(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close http server", "error", err.Error())
		}
	}

	if a.rabbitMQ != nil {
		if err := a.rabbitMQ.Close(ctx); err != nil {
			a.log.Warn(ctx, "failed to gracefully close rabbitMQ connection", "error", err.Error())
		}
	}

	if a.postgresDB != nil {
		a.postgresDB.Close()
	}
}
