package handler

import (
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// DemandeExcHandler exceptional-requisition endpoints
type DemandeExcHandler struct {
	svc *service.DemandeExcService
}

func NewDemandeExcHandler(svc *service.DemandeExcService) *DemandeExcHandler {
	return &DemandeExcHandler{svc: svc}
}

// List GET /api/v1/demandes-exceptionnelles?statut=xxx
func (h *DemandeExcHandler) List(c *gin.Context) {
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
		InternalError(c, "Chargement des demandes exceptionnelles impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// Get GET /api/v1/demandes-exceptionnelles/:id
func (h *DemandeExcHandler) Get(c *gin.Context) {
	d, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "Demande exceptionnelle introuvable")
		return
	}
	if GetRole(c) == entity.RoleDemandeur && d.DemandeurID != GetUserID(c) {
		Forbidden(c, "Cette demande appartient à un autre utilisateur")
		return
	}
	Success(c, d)
}

// Create POST /api/v1/demandes-exceptionnelles
func (h *DemandeExcHandler) Create(c *gin.Context) {
	var req service.CreateDemandeExcRequest
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

// Accepter POST /api/v1/demandes-exceptionnelles/:id/accepter
func (h *DemandeExcHandler) Accepter(c *gin.Context) {
	d, err := h.svc.Accepter(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, d)
}

// Rejeter POST /api/v1/demandes-exceptionnelles/:id/rejeter
func (h *DemandeExcHandler) Rejeter(c *gin.Context) {
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

// Commander POST /api/v1/demandes-exceptionnelles/:id/commander
func (h *DemandeExcHandler) Commander(c *gin.Context) {
	var req service.CommanderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Fournisseur et date prévue requis: "+err.Error())
		return
	}

	d, err := h.svc.Commander(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, d)
}

// Livrer POST /api/v1/demandes-exceptionnelles/:id/livrer
func (h *DemandeExcHandler) Livrer(c *gin.Context) {
	d, err := h.svc.Livrer(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, d)
}

// Prendre POST /api/v1/demandes-exceptionnelles/:id/prendre
func (h *DemandeExcHandler) Prendre(c *gin.Context) {
	d, err := h.svc.Prendre(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, d)
}
