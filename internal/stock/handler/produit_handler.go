package handler

import (
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// ProduitHandler catalog endpoints
type ProduitHandler struct {
	svc *service.ProduitService
}

func NewProduitHandler(svc *service.ProduitService) *ProduitHandler {
	return &ProduitHandler{svc: svc}
}

// List GET /api/v1/produits?categorie_id=xxx&statut=xxx&search=xxx
func (h *ProduitHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"categorie_id": c.Query("categorie_id"),
		"statut":       c.Query("statut"),
		"search":       c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Chargement des produits impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// Get GET /api/v1/produits/:id
func (h *ProduitHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "Produit introuvable")
		return
	}
	Success(c, p)
}

// LowStock GET /api/v1/produits/stock-faible
func (h *ProduitHandler) LowStock(c *gin.Context) {
	items, err := h.svc.LowStock(c.Request.Context())
	if err != nil {
		InternalError(c, "Chargement du stock faible impossible: "+err.Error())
		return
	}
	Success(c, items)
}

// Mouvements GET /api/v1/produits/:id/mouvements
func (h *ProduitHandler) Mouvements(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.Mouvements(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		InternalError(c, "Chargement des mouvements impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// Create POST /api/v1/produits
func (h *ProduitHandler) Create(c *gin.Context) {
	var req service.CreateProduitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	p, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, p)
}

// Update PUT /api/v1/produits/:id
func (h *ProduitHandler) Update(c *gin.Context) {
	var req service.UpdateProduitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, p)
}

// Delete DELETE /api/v1/produits/:id
func (h *ProduitHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}
