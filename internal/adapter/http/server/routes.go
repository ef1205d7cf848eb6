package server

import (
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// setupRoutes - setups http routes
func (a *API) setupRoutes() {
	// System Health
	a.mux.HandleFunc("/health", a.routes.health.HealthCheck)

	a.mux.HandleFunc("/swagger/", httpSwagger.Handler())
	a.mux.Handle("/metrics", promhttp.Handler())

	a.setupTripRoutes()
	a.setupFleetRoutes()
	a.setupStatisticsRoutes()
}

func (a *API) setupTripRoutes() {
	dispatch := []types.UserRole{types.RoleAdmin, types.RoleDispatcher}
	anyStaff := []types.UserRole{types.RoleAdmin, types.RoleDispatcher, types.RoleDriver}

	a.mux.Handle("POST /v1/trips", a.m.RequireRoles(a.routes.trips.Create, dispatch...))                   // Schedule a new trip
	a.mux.Handle("GET /v1/trips", a.m.RequireRoles(a.routes.trips.List, anyStaff...))                      // List company trips
	a.mux.Handle("POST /v1/trips/{trip_id}/assign", a.m.RequireRoles(a.routes.trips.Assign, dispatch...)) // Assign or clear vehicle/driver
	a.mux.Handle("POST /v1/trips/{trip_id}/start", a.m.RequireRoles(a.routes.trips.Start, anyStaff...))   // Start an assigned trip
	a.mux.Handle("POST /v1/trips/{trip_id}/complete", a.m.RequireRoles(a.routes.trips.Complete, anyStaff...))
	a.mux.Handle("POST /v1/trips/{trip_id}/cancel", a.m.RequireRoles(a.routes.trips.Cancel, dispatch...))
}

func (a *API) setupFleetRoutes() {
	dispatch := []types.UserRole{types.RoleAdmin, types.RoleDispatcher}
	anyStaff := []types.UserRole{types.RoleAdmin, types.RoleDispatcher, types.RoleDriver}

	a.mux.Handle("POST /v1/vehicles", a.m.RequireRoles(a.routes.vehicles.Create, dispatch...))
	a.mux.Handle("GET /v1/vehicles", a.m.RequireRoles(a.routes.vehicles.List, anyStaff...))
	a.mux.Handle("PUT /v1/vehicles/{vehicle_id}", a.m.RequireRoles(a.routes.vehicles.Update, dispatch...))
	a.mux.Handle("POST /v1/vehicles/{vehicle_id}/reminders/reschedule", a.m.RequireRoles(a.routes.vehicles.RescheduleReminders, dispatch...))

	a.mux.Handle("POST /v1/drivers", a.m.RequireRoles(a.routes.drivers.Create, dispatch...))
	a.mux.Handle("GET /v1/drivers", a.m.RequireRoles(a.routes.drivers.List, anyStaff...))
	a.mux.Handle("GET /v1/drivers/by-phone", a.m.RequireRoles(a.routes.drivers.FindByPhone, anyStaff...))
}

func (a *API) setupStatisticsRoutes() {
	// Browsers cannot attach an Authorization header to the websocket
	// handshake, so the watch endpoint performs its own company check.
	a.mux.HandleFunc("GET /ws/v1/companies/{company_id}/statistics", a.routes.statistics.Watch)
}
