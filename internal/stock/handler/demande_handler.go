package handler

import (
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// DemandeHandler requisition endpoints. Demandeurs only ever see their own
// requisitions.
type DemandeHandler struct {
	svc *service.DemandeService
}

func NewDemandeHandler(svc *service.DemandeService) *DemandeHandler {
	return &DemandeHandler{svc: svc}
}

// List GET /api/v1/demandes?statut=xxx
func (h *DemandeHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"statut": c.Query("statut"),
	}
	if GetRole(c) == entity.RoleDemandeur {
		filters["demandeur_id"] = GetUserID(c)
	} else if d := c.Query("demandeur_id"); d != "" {
		filters["demandeur_id"] = d
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Chargement des demandes impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// Get GET /api/v1/demandes/:id
func (h *DemandeHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "Demande introuvable")
		return
	}
	if GetRole(c) == entity.RoleDemandeur && d.DemandeurID != GetUserID(c) {
		Forbidden(c, "Cette demande appartient à un autre utilisateur")
		return
	}
	Success(c, d)
}

// Create POST /api/v1/demandes
func (h *DemandeHandler) Create(c *gin.Context) {
	var req service.CreateDemandeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	d, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, d)
}

// Approuver POST /api/v1/demandes/:id/approuver
func (h *DemandeHandler) Approuver(c *gin.Context) {
	d, err := h.svc.Approuver(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, d)
}

// Rejeter POST /api/v1/demandes/:id/rejeter
func (h *DemandeHandler) Rejeter(c *gin.Context) {
	var req service.RejeterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Une raison de refus est requise")
		return
	}

	d, err := h.svc.Rejeter(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, d)
}

// Prendre POST /api/v1/demandes/:id/prendre
func (h *DemandeHandler) Prendre(c *gin.Context) {
	d, err := h.svc.Prendre(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, d)
}
