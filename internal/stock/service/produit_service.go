package service

import (
	"context"
	"fmt"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProduitService product catalog and manual stock adjustments
type ProduitService struct {
	produitRepo   *repository.ProduitRepository
	categorieRepo *repository.CategorieRepository
	registreRepo  *repository.RegistreRepository
	notifSvc      *NotificationService
	logger        *zap.Logger
	db            *gorm.DB
}

func NewProduitService(
	produitRepo *repository.ProduitRepository,
	categorieRepo *repository.CategorieRepository,
	registreRepo *repository.RegistreRepository,
	notifSvc *NotificationService,
	logger *zap.Logger,
	db *gorm.DB,
) *ProduitService {
	return &ProduitService{
		produitRepo:   produitRepo,
		categorieRepo: categorieRepo,
		registreRepo:  registreRepo,
		notifSvc:      notifSvc,
		logger:        logger,
		db:            db,
	}
}

func (s *ProduitService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Produit, int64, error) {
	return s.produitRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *ProduitService) Get(ctx context.Context, id string) (*entity.Produit, error) {
	return s.produitRepo.FindByID(ctx, id)
}

func (s *ProduitService) LowStock(ctx context.Context) ([]entity.Produit, error) {
	return s.produitRepo.FindLowStock(ctx)
}

func (s *ProduitService) Mouvements(ctx context.Context, produitID string, page, pageSize int) ([]entity.MouvementStock, int64, error) {
	return s.produitRepo.ListMouvements(ctx, produitID, page, pageSize)
}

// CreateProduitRequest new catalog entry
type CreateProduitRequest struct {
	Nom              string `json:"nom" binding:"required"`
	Marque           string `json:"marque"`
	Description      string `json:"description"`
	Quantite         int    `json:"quantite" binding:"gte=0"`
	QuantiteMinimale int    `json:"quantite_minimale" binding:"gte=0"`
	CategorieID      string `json:"categorie_id" binding:"required"`
}

func (s *ProduitService) Create(ctx context.Context, req *CreateProduitRequest) (*entity.Produit, error) {
	if _, err := s.categorieRepo.FindByID(ctx, req.CategorieID); err != nil {
		return nil, fmt.Errorf("catégorie introuvable")
	}

	p := &entity.Produit{
		ID:               uuid.New().String()[:32],
		Nom:              req.Nom,
		Marque:           req.Marque,
		Description:      req.Description,
		Quantite:         req.Quantite,
		QuantiteMinimale: req.QuantiteMinimale,
		Statut:           entity.StatutForQuantite(req.Quantite, req.QuantiteMinimale),
		CategorieID:      req.CategorieID,
	}
	if err := s.produitRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("création du produit: %w", err)
	}
	return p, nil
}

// UpdateProduitRequest manual edit; a quantity change goes through the stock
// journal like any other movement
type UpdateProduitRequest struct {
	Nom              *string `json:"nom"`
	Marque           *string `json:"marque"`
	Description      *string `json:"description"`
	Quantite         *int    `json:"quantite"`
	QuantiteMinimale *int    `json:"quantite_minimale"`
	CategorieID      *string `json:"categorie_id"`
}

func (s *ProduitService) Update(ctx context.Context, id, userID string, req *UpdateProduitRequest) (*entity.Produit, error) {
	p, err := s.produitRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nom != nil {
		p.Nom = *req.Nom
	}
	if req.Marque != nil {
		p.Marque = *req.Marque
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CategorieID != nil {
		if _, err := s.categorieRepo.FindByID(ctx, *req.CategorieID); err != nil {
			return nil, fmt.Errorf("catégorie introuvable")
		}
		p.CategorieID = *req.CategorieID
	}
	if req.QuantiteMinimale != nil {
		if *req.QuantiteMinimale < 0 {
			return nil, fmt.Errorf("la quantité minimale ne peut pas être négative")
		}
		p.QuantiteMinimale = *req.QuantiteMinimale
	}

	delta := 0
	if req.Quantite != nil {
		if *req.Quantite < 0 {
			return nil, fmt.Errorf("la quantité ne peut pas être négative")
		}
		delta = *req.Quantite - p.Quantite
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// threshold may have moved, recompute before persisting
		p.Statut = entity.StatutForQuantite(p.Quantite, p.QuantiteMinimale)
		if err := tx.Save(p).Error; err != nil {
			return fmt.Errorf("mise à jour du produit: %w", err)
		}
		if delta != 0 {
			updated, err := applyMouvement(tx, p.ID, delta, "AJUSTEMENT", p.ID, userID)
			if err != nil {
				return err
			}
			*p = *updated
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.AlertIfLow(ctx, p)
	return p, nil
}

func (s *ProduitService) Delete(ctx context.Context, id string) error {
	if _, err := s.produitRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.produitRepo.Delete(ctx, id)
}

// AlertIfLow notifies gestionnaires when a product sits at CRITIQUE or
// RUPTURE after a mutation. Side effect only, never fails the caller.
func (s *ProduitService) AlertIfLow(ctx context.Context, p *entity.Produit) {
	if p.Statut == entity.ProduitStatutNormale {
		return
	}

	typ := entity.NotificationStockCritique
	label := "critique"
	if p.Statut == entity.ProduitStatutRupture {
		typ = entity.NotificationStockRupture
		label = "en rupture"
	}

	message := fmt.Sprintf("Stock %s pour le produit %s (%s): %d restant(s), seuil %d",
		label, p.Nom, p.Marque, p.Quantite, p.QuantiteMinimale)

	s.notifSvc.NotifyRole(ctx, entity.RoleGestionnaire, message, typ, []string{p.ID})
	s.notifSvc.EmailRole(ctx, entity.RoleGestionnaire,
		fmt.Sprintf("Alerte stock: %s", p.Nom),
		fmt.Sprintf("<p>%s</p>", message))

	if err := appendRegistre(ctx, s.registreRepo, "produit", p.ID, p.Nom, "alerte_stock", "", p.Statut, "", entity.JSONB{
		"quantite": p.Quantite,
		"seuil":    p.QuantiteMinimale,
	}); err != nil {
		s.logger.Warn("Registre append failed", zap.String("produit_id", p.ID), zap.Error(err))
	}
}
