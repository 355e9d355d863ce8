package handler

import (
	"errors"
	"strconv"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-gonic/gin"
)

// Handlers HTTP surface, one handler per module
type Handlers struct {
	Auth         *AuthHandler
	Produit      *ProduitHandler
	Categorie    *CategorieHandler
	Fournisseur  *FournisseurHandler
	Commande     *CommandeHandler
	Demande      *DemandeHandler
	DemandeExc   *DemandeExcHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
}

func NewHandlers(
	authSvc *service.AuthService,
	produitSvc *service.ProduitService,
	categorieSvc *service.CategorieService,
	fournisseurSvc *service.FournisseurService,
	commandeSvc *service.CommandeService,
	demandeSvc *service.DemandeService,
	demandeExcSvc *service.DemandeExcService,
	notifSvc *service.NotificationService,
	dashboardSvc *service.DashboardService,
	exportSvc *service.ExportService,
	factureSvc *service.FactureService,
	registreRepo *repository.RegistreRepository,
) *Handlers {
	return &Handlers{
		Auth:         NewAuthHandler(authSvc),
		Produit:      NewProduitHandler(produitSvc),
		Categorie:    NewCategorieHandler(categorieSvc),
		Fournisseur:  NewFournisseurHandler(fournisseurSvc, exportSvc),
		Commande:     NewCommandeHandler(commandeSvc, factureSvc),
		Demande:      NewDemandeHandler(demandeSvc),
		DemandeExc:   NewDemandeExcHandler(demandeExcSvc),
		Notification: NewNotificationHandler(notifSvc, registreRepo),
		Dashboard:    NewDashboardHandler(dashboardSvc),
	}
}

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40101, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// ServiceError maps a service failure onto the right status: missing rows
// become 404, everything else is a business rejection.
func ServiceError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		NotFound(c, "Ressource introuvable")
		return
	}
	BadRequest(c, err.Error())
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetRole(c *gin.Context) string {
	role, _ := c.Get("role")
	if r, ok := role.(string); ok {
		return r
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func ListOf(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	})
}
