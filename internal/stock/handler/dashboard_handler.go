package handler

import (
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler landing-page counters
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats GET /api/v1/dashboard
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context(), GetUserID(c), GetRole(c))
	if err != nil {
		InternalError(c, "Chargement du tableau de bord impossible: "+err.Error())
		return
	}
	Success(c, stats)
}
