package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/fleet-ops-system/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
)

type Vehicles struct {
	service VehicleService
	l       logger.Logger
}

type VehicleService interface {
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	UpdateVehicle(ctx context.Context, companyID string, vehicle *models.Vehicle) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, companyID string) ([]models.Vehicle, error)
	RescheduleVehicleReminders(ctx context.Context, companyID, vehicleID string) error
}

func NewVehicles(service VehicleService, l logger.Logger) *Vehicles {
	return &Vehicles{
		service: service,
		l:       l,
	}
}

// Create godoc
// @Summary      Create vehicle
// @Description  Creates a vehicle and schedules its expiry reminders
// @Tags         Vehicles
// @Accept       json
// @Produce      json
// @Param        request  body  dto.VehicleRequest  true  "Vehicle data"
// @Success      201  {object}  map[string]any
// @Router       /v1/vehicles [post]
func (h *Vehicles) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_vehicle")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dto.VehicleRequest
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

	vehicle, err := h.service.CreateVehicle(ctx, req.ToModel(identity.CompanyID))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create vehicle", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"vehicle": vehicle}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "vehicle created", "vehicle_id", vehicle.ID, "plate_number", vehicle.PlateNumber)
}

// Update godoc
// @Summary      Update vehicle
// @Description  Overwrites a vehicle and reschedules its expiry reminders
// @Tags         Vehicles
// @Accept       json
// @Produce      json
// @Param        vehicle_id  path  string              true  "Vehicle ID"
// @Param        request     body  dto.VehicleRequest  true  "Vehicle data"
// @Success      200  {object}  map[string]any
// @Router       /v1/vehicles/{vehicle_id} [put]
func (h *Vehicles) Update(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "update_vehicle")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	vehicleID := r.PathValue("vehicle_id")

	var req dto.VehicleRequest
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

	vehicle := req.ToModel(identity.CompanyID)
	vehicle.ID = vehicleID

	updated, err := h.service.UpdateVehicle(ctx, identity.CompanyID, vehicle)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to update vehicle", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"vehicle": updated}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "vehicle updated", "vehicle_id", vehicleID)
}

// List godoc
// @Summary      List vehicles
// @Description  Lists every vehicle of the caller's company
// @Tags         Vehicles
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/vehicles [get]
func (h *Vehicles) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_vehicles")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := h.service.ListVehicles(ctx, identity.CompanyID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list vehicles", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"vehicles": list, "count": len(list)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// RescheduleReminders godoc
// @Summary      Reschedule vehicle reminders
// @Description  Recomputes and reschedules insurance and inspection expiry reminders
// @Tags         Vehicles
// @Produce      json
// @Param        vehicle_id  path  string  true  "Vehicle ID"
// @Success      202  {object}  map[string]any
// @Router       /v1/vehicles/{vehicle_id}/reminders/reschedule [post]
func (h *Vehicles) RescheduleReminders(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "reschedule_vehicle_reminders")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	vehicleID := r.PathValue("vehicle_id")

	if err := h.service.RescheduleVehicleReminders(ctx, identity.CompanyID, vehicleID); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to reschedule reminders", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	response := envelope{"message": "reminders rescheduled", "vehicle_id": vehicleID}
	if err := writeJSON(w, http.StatusAccepted, response, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "vehicle reminders rescheduled", "vehicle_id", vehicleID)
}
