package handler

import (
	"fmt"
	"net/url"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// FournisseurHandler supplier endpoints plus the xlsx export
type FournisseurHandler struct {
	svc       *service.FournisseurService
	exportSvc *service.ExportService
}

func NewFournisseurHandler(svc *service.FournisseurService, exportSvc *service.ExportService) *FournisseurHandler {
	return &FournisseurHandler{svc: svc, exportSvc: exportSvc}
}

// List GET /api/v1/fournisseurs?statut=xxx&search=xxx
func (h *FournisseurHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"statut": c.Query("statut"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Chargement des fournisseurs impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// Get GET /api/v1/fournisseurs/:id
func (h *FournisseurHandler) Get(c *gin.Context) {
	f, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "Fournisseur introuvable")
		return
	}
	Success(c, f)
}

// Commandes GET /api/v1/fournisseurs/:id/commandes
func (h *FournisseurHandler) Commandes(c *gin.Context) {
	items, err := h.svc.Commandes(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, items)
}

// Create POST /api/v1/fournisseurs
func (h *FournisseurHandler) Create(c *gin.Context) {
	var req service.CreateFournisseurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	f, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, f)
}

// Update PUT /api/v1/fournisseurs/:id
func (h *FournisseurHandler) Update(c *gin.Context) {
	var req service.UpdateFournisseurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	f, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, f)
}

// Delete DELETE /api/v1/fournisseurs/:id
func (h *FournisseurHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}

// ExportCommandes GET /api/v1/fournisseurs/:id/commandes/export
func (h *FournisseurHandler) ExportCommandes(c *gin.Context) {
	f, filename, err := h.exportSvc.ExportCommandesFournisseur(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, url.PathEscape(filename)))

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "Écriture du fichier impossible: "+err.Error())
		return
	}
}
