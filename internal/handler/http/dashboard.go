package http

import (
	"net/http"

	"github.com/niwaya/kintai-backend/internal/domain/dashboard"
	"github.com/niwaya/kintai-backend/internal/handler/http/response"
)

type DashboardHandler interface {
	// GET /dashboard/stats
	GetStats(w http.ResponseWriter, r *http.Request)

	// GET /admin/stats
	GetAdminStats(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

func (h *dashboardHandlerImpl) GetStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetStats(r.Context(), actor)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, stats)
}

func (h *dashboardHandlerImpl) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.dashboardService.GetAdminStats(r.Context(), actor)
	if err != nil {
		response.HandleError(w, r, err)
		return
	}

	response.Success(w, stats)
}
