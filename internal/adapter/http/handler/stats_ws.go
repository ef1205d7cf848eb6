package handler

import (
	"context"
	"net/http"

	"github.com/Temutjin2k/fleet-ops-system/internal/domain/models"
	"github.com/Temutjin2k/fleet-ops-system/internal/domain/types"
	"github.com/Temutjin2k/fleet-ops-system/internal/feed"
	"github.com/Temutjin2k/fleet-ops-system/pkg/logger"
	wrap "github.com/Temutjin2k/fleet-ops-system/pkg/logger/wrapper"
	"github.com/Temutjin2k/fleet-ops-system/pkg/uuid"
	ws "github.com/Temutjin2k/fleet-ops-system/pkg/wsHub"
	"github.com/gorilla/websocket"
)

type Statistics struct {
	service StatisticsService
	hub     *ws.ConnectionHub
	l       logger.Logger

	upgrader websocket.Upgrader
}

type StatisticsService interface {
	Watch(ctx context.Context, companyID string, onUpdate func(models.CompanyStatistics)) *feed.Session
}

func NewStatistics(service StatisticsService, hub *ws.ConnectionHub, l logger.Logger) *Statistics {
	return &Statistics{
		service: service,
		hub:     hub,
		l:       l,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Watch godoc
// @Summary      Watch company statistics
// @Description  Upgrades to a websocket and streams the live statistics counters
// @Tags         Statistics
// @Param        company_id  path  string  true  "Company ID"
// @Success      101
// @Router       /ws/v1/companies/{company_id}/statistics [get]
func (h *Statistics) Watch(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "watch_statistics")

	companyID := r.PathValue("company_id")
	if companyID == "" {
		badRequestResponse(w, "company_id is required")
		return
	}
	ctx = wrap.WithCompanyID(ctx, companyID)

	// An authenticated caller may only watch their own company. Admins are
	// exempt; anonymous handshakes are allowed since browsers cannot attach
	// an Authorization header to the upgrade request.
	identity := models.IdentityFromContext(ctx)
	if identity != nil && !identity.IsAnonymous() &&
		identity.Role != types.RoleAdmin && identity.CompanyID != companyID {
		errorResponse(w, http.StatusForbidden, "cannot watch another company's statistics")
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "websocket upgrade failed", err)
		return
	}

	watcherID, err := uuid.New()
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to generate watcher id", err)
		wsConn.Close()
		return
	}

	conn := ws.NewConn(ctx, watcherID.String(), companyID, wsConn)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register watcher", err)
		wsConn.Close()
		return
	}

	session := h.service.Watch(ctx, companyID, func(stats models.CompanyStatistics) {
		if err := conn.Send(statsMessage(stats)); err != nil {
			h.l.Warn(ctx, "failed to push statistics", "watcher_id", watcherID.String(), "err", err.Error())
		}
	})

	defer func() {
		session.Close()
		_ = h.hub.Delete(watcherID.String())
		h.l.Info(ctx, "statistics watch closed", "watcher_id", watcherID.String())
	}()

	h.l.Info(ctx, "statistics watch started", "watcher_id", watcherID.String())

	// Push the current counters immediately so the watcher does not wait
	// for the first change.
	if err := conn.Send(statsMessage(session.Snapshot())); err != nil {
		h.l.Warn(ctx, "failed to push initial statistics", "err", err.Error())
		return
	}

	// Block until the peer goes away. Inbound frames carry no meaning.
	for {
		if _, _, err := wsConn.ReadMessage(); err != nil {
			return
		}
	}
}

func statsMessage(stats models.CompanyStatistics) map[string]any {
	return map[string]any{
		"type":            "statistics",
		"total_vehicles":  stats.TotalVehicles,
		"active_drivers":  stats.ActiveDrivers,
		"todays_trips":    stats.TodaysTrips,
		"completed_trips": stats.CompletedTrips,
	}
}
