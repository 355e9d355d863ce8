package service

import (
	"context"
	"fmt"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
)

// CategorieService category CRUD
type CategorieService struct {
	categorieRepo *repository.CategorieRepository
	produitRepo   *repository.ProduitRepository
}

func NewCategorieService(categorieRepo *repository.CategorieRepository, produitRepo *repository.ProduitRepository) *CategorieService {
	return &CategorieService{categorieRepo: categorieRepo, produitRepo: produitRepo}
}

func (s *CategorieService) List(ctx context.Context) ([]entity.Categorie, error) {
	return s.categorieRepo.FindAll(ctx)
}

func (s *CategorieService) Get(ctx context.Context, id string) (*entity.Categorie, error) {
	return s.categorieRepo.FindByID(ctx, id)
}

// CategorieRequest create/update payload
type CategorieRequest struct {
	Nom         string `json:"nom" binding:"required"`
	Description string `json:"description"`
}

func (s *CategorieService) Create(ctx context.Context, req *CategorieRequest) (*entity.Categorie, error) {
	c := &entity.Categorie{
		ID:          uuid.New().String()[:32],
		Nom:         req.Nom,
		Description: req.Description,
	}
	if err := s.categorieRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("création de la catégorie: %w", err)
	}
	return c, nil
}

func (s *CategorieService) Update(ctx context.Context, id string, req *CategorieRequest) (*entity.Categorie, error) {
	c, err := s.categorieRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Nom = req.Nom
	c.Description = req.Description
	if err := s.categorieRepo.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("mise à jour de la catégorie: %w", err)
	}
	return c, nil
}

// Delete refuses when products still reference the category
func (s *CategorieService) Delete(ctx context.Context, id string) error {
	c, err := s.categorieRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	var count int64
	if err := s.produitRepo.DB().WithContext(ctx).
		Model(&entity.Produit{}).
		Where("categorie_id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("la catégorie %s contient encore %d produit(s)", c.Nom, count)
	}

	return s.categorieRepo.Delete(ctx, id)
}
