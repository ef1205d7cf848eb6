package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/fleet-ops-system/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
)

type Trips struct {
	service TripService
	l       logger.Logger
}

type TripService interface {
	CreateTrip(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	ListTrips(ctx context.Context, companyID string) ([]models.Trip, error)
	AssignTrip(ctx context.Context, companyID, tripID, vehicleID, driverID string) (*models.Trip, error)
	StartTrip(ctx context.Context, companyID, tripID string) (*models.Trip, error)
	CompleteTrip(ctx context.Context, companyID, tripID string) (*models.Trip, error)
	CancelTrip(ctx context.Context, companyID, tripID string) (*models.Trip, error)
}

func NewTrips(service TripService, l logger.Logger) *Trips {
	return &Trips{
		service: service,
		l:       l,
	}
}

// Create godoc
// @Summary      Create trip
// @Description  Creates a new SCHEDULED trip for the caller's company
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        request  body  dto.CreateTripRequest  true  "Trip data"
// @Success      201  {object}  map[string]any
// @Router       /v1/trips [post]
func (h *Trips) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_trip")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dto.CreateTripRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		h.l.Warn(ctx, "invalid request data", "err", err.Error())
		errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	trip, err := h.service.CreateTrip(ctx, req.ToModel(identity.CompanyID))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create trip", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"trip": trip}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(wrap.WithTripID(ctx, trip.ID), "trip created", "trip_number", trip.TripNumber)
}

// List godoc
// @Summary      List trips
// @Description  Lists every trip of the caller's company
// @Tags         Trips
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/trips [get]
func (h *Trips) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_trips")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := h.service.ListTrips(ctx, identity.CompanyID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list trips", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"trips": list, "count": len(list)}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// Assign godoc
// @Summary      Assign trip
// @Description  Sets or clears the vehicle/driver pair on a trip
// @Tags         Trips
// @Accept       json
// @Produce      json
// @Param        trip_id  path  string                 true  "Trip ID"
// @Param        request  body  dto.AssignTripRequest  true  "Assignment"
// @Success      200  {object}  map[string]any
// @Router       /v1/trips/{trip_id}/assign [post]
func (h *Trips) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "assign_trip")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	tripID := r.PathValue("trip_id")
	ctx = wrap.WithTripID(ctx, tripID)

	var req dto.AssignTripRequest
	if err := readJSON(w, r, &req); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to read request JSON data", err)
		badRequestResponse(w, err.Error())
		return
	}

	trip, err := h.service.AssignTrip(ctx, identity.CompanyID, tripID, req.VehicleID, req.DriverID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to assign trip", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	h.writeTrip(ctx, w, trip)
	h.l.Info(ctx, "trip assignment updated", "status", trip.Status)
}

// Start godoc
// @Summary      Start trip
// @Description  Moves an ASSIGNED trip to IN_PROGRESS
// @Tags         Trips
// @Produce      json
// @Param        trip_id  path  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Router       /v1/trips/{trip_id}/start [post]
func (h *Trips) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "start_trip", h.service.StartTrip)
}

// Complete godoc
// @Summary      Complete trip
// @Description  Moves an IN_PROGRESS trip to COMPLETED
// @Tags         Trips
// @Produce      json
// @Param        trip_id  path  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Router       /v1/trips/{trip_id}/complete [post]
func (h *Trips) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "complete_trip", h.service.CompleteTrip)
}

// Cancel godoc
// @Summary      Cancel trip
// @Description  Moves a non-terminal trip to CANCELLED
// @Tags         Trips
// @Produce      json
// @Param        trip_id  path  string  true  "Trip ID"
// @Success      200  {object}  map[string]any
// @Router       /v1/trips/{trip_id}/cancel [post]
func (h *Trips) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, "cancel_trip", h.service.CancelTrip)
}

func (h *Trips) transition(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	fn func(ctx context.Context, companyID, tripID string) (*models.Trip, error),
) {
	ctx := wrap.WithAction(r.Context(), action)

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	tripID := r.PathValue("trip_id")
	ctx = wrap.WithTripID(ctx, tripID)

	trip, err := fn(ctx, identity.CompanyID, tripID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "trip transition failed", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	h.writeTrip(ctx, w, trip)
	h.l.Info(ctx, "trip transitioned", "status", trip.Status)
}

func (h *Trips) writeTrip(ctx context.Context, w http.ResponseWriter, trip *models.Trip) {
	if err := writeJSON(w, http.StatusOK, envelope{"trip": trip}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
	}
}
