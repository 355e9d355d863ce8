package handler

import (
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// CategorieHandler category endpoints
type CategorieHandler struct {
	svc *service.CategorieService
}

func NewCategorieHandler(svc *service.CategorieService) *CategorieHandler {
	return &CategorieHandler{svc: svc}
}

// List GET /api/v1/categories
func (h *CategorieHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		InternalError(c, "Chargement des catégories impossible: "+err.Error())
		return
	}
	Success(c, items)
}

// Get GET /api/v1/categories/:id
func (h *CategorieHandler) Get(c *gin.Context) {
	cat, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "Catégorie introuvable")
		return
	}
	Success(c, cat)
}

// Create POST /api/v1/categories
func (h *CategorieHandler) Create(c *gin.Context) {
	var req service.CategorieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	cat, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, cat)
}

// Update PUT /api/v1/categories/:id
func (h *CategorieHandler) Update(c *gin.Context) {
	var req service.CategorieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	cat, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cat)
}

// Delete DELETE /api/v1/categories/:id
func (h *CategorieHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, nil)
}
