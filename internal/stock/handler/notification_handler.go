package handler

import (
	"errors"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// NotificationHandler own-notification endpoints plus the audit registre
type NotificationHandler struct {
	svc          *service.NotificationService
	registreRepo *repository.RegistreRepository
}

func NewNotificationHandler(svc *service.NotificationService, registreRepo *repository.RegistreRepository) *NotificationHandler {
	return &NotificationHandler{svc: svc, registreRepo: registreRepo}
}

// List GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListForUser(c.Request.Context(), GetUserID(c), page, pageSize)
	if err != nil {
		InternalError(c, "Chargement des notifications impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// CountUnread GET /api/v1/notifications/non-lues
func (h *NotificationHandler) CountUnread(c *gin.Context) {
	n, err := h.svc.CountUnread(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "Comptage des notifications impossible: "+err.Error())
		return
	}
	Success(c, gin.H{"non_lues": n})
}

// MarquerLu POST /api/v1/notifications/:id/lu
func (h *NotificationHandler) MarquerLu(c *gin.Context) {
	n, err := h.svc.MarquerLu(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrNotificationForbidden) {
			Forbidden(c, err.Error())
			return
		}
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "Notification introuvable")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, n)
}

// Registre GET /api/v1/registre?entity_type=xxx&entity_id=xxx&acteur_id=xxx
func (h *NotificationHandler) Registre(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"entity_type": c.Query("entity_type"),
		"entity_id":   c.Query("entity_id"),
		"acteur_id":   c.Query("acteur_id"),
	}

	items, total, err := h.registreRepo.FindAll(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Chargement du registre impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}
