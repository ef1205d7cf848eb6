package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/fleet-ops-system/config"
	"github.com/Temutjin2k/fleet-ops-system/internal/adapter/http/handler"
	"github.com/Temutjin2k/fleet-ops-system/internal/adapter/http/middleware"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/fleet-ops-system/pkg/wsHub"
)

const serverIPAddress = "%s:%s"

// OpsService is everything the HTTP surface needs from the operational core.
type OpsService interface {
	handler.TripService
	handler.VehicleService
	handler.DriverService
	handler.StatisticsService
}

type API struct {
	mux    *http.ServeMux
	server *http.Server
	routes *handlers
	m      *middleware.Middleware

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	health     *handler.Health
	trips      *handler.Trips
	vehicles   *handler.Vehicles
	drivers    *handler.Drivers
	statistics *handler.Statistics
}

func New(
	cfg config.Config,
	service OpsService,
	authService middleware.AuthService,
	hub *ws.ConnectionHub,
	log logger.Logger,
) (*API, error) {
	if service == nil {
		return nil, errors.New("ops service is required")
	}
	if authService == nil {
		return nil, errors.New("auth service is required")
	}

	routes := &handlers{
		health:     handler.NewHealth(types.ServiceName, log),
		trips:      handler.NewTrips(service, log),
		vehicles:   handler.NewVehicles(service, log),
		drivers:    handler.NewDrivers(service, log),
		statistics: handler.NewStatistics(service, hub, log),
	}

	api := &API{
		mux:    http.NewServeMux(),
		routes: routes,
		m:      middleware.NewMiddleware(authService, log),
		addr:   fmt.Sprintf(serverIPAddress, cfg.Server.Host, cfg.Server.Port),
		cfg:    cfg,
		log:    log,
	}

	api.server = &http.Server{
		Addr:    api.addr,
		Handler: api.withMiddleware(),
	}

	api.setupRoutes()

	return api, nil
}

func (a *API) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

func (a *API) Run(ctx context.Context, errCh chan<- error) {
	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(a.m.Logging(a.m.Auth(a.mux)))))
}
