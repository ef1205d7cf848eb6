package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/fleet-ops-system/internal/adapter/http/handler/dto"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
)

type Drivers struct {
	service DriverService
	l       logger.Logger
}

type DriverService interface {
	CreateDriver(ctx context.Context, driver *models.Driver) (*models.Driver, error)
	ListDrivers(ctx context.Context, companyID string) ([]models.Driver, error)
	FindDriverByPhone(ctx context.Context, companyID, phone string) (*models.Driver, error)
}

func NewDrivers(service DriverService, l logger.Logger) *Drivers {
	return &Drivers{
		service: service,
		l:       l,
	}
}

// Create godoc
// @Summary      Create driver
// @Description  Registers a driver under the caller's company
// @Tags         Drivers
// @Accept       json
// @Produce      json
// @Param        request  body  dto.DriverRequest  true  "Driver data"
// @Success      201  {object}  map[string]any
// @Router       /v1/drivers [post]
func (h *Drivers) Create(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "create_driver")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req dto.DriverRequest
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

	driver, err := h.service.CreateDriver(ctx, req.ToModel(identity.CompanyID))
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to create driver", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusCreated, envelope{"driver": driver}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}

	h.l.Info(ctx, "driver created", "driver_id", driver.ID)
}

// List godoc
// @Summary      List drivers
// @Description  Lists every driver of the caller's company
// @Tags         Drivers
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /v1/drivers [get]
func (h *Drivers) List(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "list_drivers")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := h.service.ListDrivers(ctx, identity.CompanyID)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to list drivers", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"drivers": list, "count": len(list)}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}

// FindByPhone godoc
// @Summary      Find driver by phone
// @Description  Resolves a driver record by phone number
// @Tags         Drivers
// @Produce      json
// @Param        phone  query  string  true  "Phone number"
// @Success      200  {object}  map[string]any
// @Router       /v1/drivers/by-phone [get]
func (h *Drivers) FindByPhone(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "find_driver_by_phone")

	identity := models.IdentityFromContext(ctx)
	if identity == nil || identity.IsAnonymous() {
		errorResponse(w, http.StatusUnauthorized, "authentication required")
		return
	}

	phone := r.URL.Query().Get("phone")
	if phone == "" {
		badRequestResponse(w, "phone query parameter is required")
		return
	}

	driver, err := h.service.FindDriverByPhone(ctx, identity.CompanyID, phone)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to find driver by phone", err)
		errorResponse(w, GetCode(err), err.Error())
		return
	}

	if err := writeJSON(w, http.StatusOK, envelope{"driver": driver}, nil); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to write response", err)
		internalErrorResponse(w, err.Error())
		return
	}
}
