package handler

import (
	"errors"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler login, refresh, user administration
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Unauthorized(c, err.Error())
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, pair)
}

// Refresh POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req service.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	pair, err := h.svc.Refresh(c.Request.Context(), &req)
	if err != nil {
		Unauthorized(c, err.Error())
		return
	}
	Success(c, pair)
}

// Logout POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		InternalError(c, "Déconnexion impossible: "+err.Error())
		return
	}
	Success(c, nil)
}

// ListUtilisateurs GET /api/v1/utilisateurs (admin)
func (h *AuthHandler) ListUtilisateurs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListUtilisateurs(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "Chargement des utilisateurs impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// CreateUtilisateur POST /api/v1/utilisateurs (admin)
func (h *AuthHandler) CreateUtilisateur(c *gin.Context) {
	var req service.CreateUtilisateurRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	u, err := h.svc.CreateUtilisateur(c.Request.Context(), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, u)
}

// SetStatut PATCH /api/v1/utilisateurs/:id/statut (admin)
func (h *AuthHandler) SetStatut(c *gin.Context) {
	var req struct {
		Statut string `json:"statut" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	u, err := h.svc.SetStatut(c.Request.Context(), c.Param("id"), req.Statut)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Utilisateur introuvable")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, u)
}
