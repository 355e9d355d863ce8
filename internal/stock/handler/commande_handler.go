package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// CommandeHandler purchase-order endpoints including the invoice attachment
type CommandeHandler struct {
	svc        *service.CommandeService
	factureSvc *service.FactureService
}

func NewCommandeHandler(svc *service.CommandeService, factureSvc *service.FactureService) *CommandeHandler {
	return &CommandeHandler{svc: svc, factureSvc: factureSvc}
}

// List GET /api/v1/commandes?fournisseur_id=xxx&statut=xxx
func (h *CommandeHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"fournisseur_id": c.Query("fournisseur_id"),
		"statut":         c.Query("statut"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Chargement des commandes impossible: "+err.Error())
		return
	}
	ListOf(c, items, page, pageSize, total)
}

// Get GET /api/v1/commandes/:id
func (h *CommandeHandler) Get(c *gin.Context) {
	cmd, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "Commande introuvable")
		return
	}
	Success(c, cmd)
}

// Create POST /api/v1/commandes
func (h *CommandeHandler) Create(c *gin.Context) {
	var req service.CreateCommandeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Paramètres invalides: "+err.Error())
		return
	}

	cmd, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Created(c, cmd)
}

// Valider POST /api/v1/commandes/:id/valider
func (h *CommandeHandler) Valider(c *gin.Context) {
	cmd, err := h.svc.Valider(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cmd)
}

// Livrer POST /api/v1/commandes/:id/livrer
func (h *CommandeHandler) Livrer(c *gin.Context) {
	var req service.LivrerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			BadRequest(c, "Paramètres invalides: "+err.Error())
			return
		}
	}

	cmd, err := h.svc.Livrer(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cmd)
}

// Retourner POST /api/v1/commandes/:id/retourner
func (h *CommandeHandler) Retourner(c *gin.Context) {
	var req service.RetournerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Une raison de retour est requise")
		return
	}

	cmd, err := h.svc.Retourner(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cmd)
}

// Annuler POST /api/v1/commandes/:id/annuler
func (h *CommandeHandler) Annuler(c *gin.Context) {
	cmd, err := h.svc.Annuler(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cmd)
}

// UploadFacture POST /api/v1/commandes/:id/facture (multipart)
func (h *CommandeHandler) UploadFacture(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "Fichier manquant: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		InternalError(c, "Lecture du fichier impossible: "+err.Error())
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	cmd, err := h.factureSvc.Upload(c.Request.Context(), c.Param("id"), GetUserID(c),
		fileHeader.Filename, contentType, file, fileHeader.Size)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, cmd)
}

// DownloadFacture GET /api/v1/commandes/:id/facture
func (h *CommandeHandler) DownloadFacture(c *gin.Context) {
	object, filename, err := h.factureSvc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		ServiceError(c, err)
		return
	}
	defer object.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/octet-stream")
	if _, err := io.Copy(c.Writer, object); err != nil {
		// headers already sent, nothing left to do but log via gin recovery
		return
	}
}

// FactureURL GET /api/v1/commandes/:id/facture/url
func (h *CommandeHandler) FactureURL(c *gin.Context) {
	u, err := h.factureSvc.PresignedURL(c.Request.Context(), c.Param("id"), 15*time.Minute)
	if err != nil {
		ServiceError(c, err)
		return
	}
	Success(c, gin.H{"url": u})
}
