package repository

import (
	"context"
	"errors"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// ProduitRepository product catalog access
type ProduitRepository struct {
	db *gorm.DB
}

func NewProduitRepository(db *gorm.DB) *ProduitRepository {
	return &ProduitRepository{db: db}
}

// FindAll paginated product list with optional filters
func (r *ProduitRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Produit, int64, error) {
	var items []entity.Produit
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Produit{})

	if categorieID := filters["categorie_id"]; categorieID != "" {
		query = query.Where("categorie_id = ?", categorieID)
	}
	if statut := filters["statut"]; statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("nom ILIKE ? OR marque ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Categorie").
		Order("nom ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID single product
func (r *ProduitRepository) FindByID(ctx context.Context, id string) (*entity.Produit, error) {
	var p entity.Produit
	err := r.db.WithContext(ctx).Preload("Categorie").Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindLowStock products in CRITIQUE or RUPTURE
func (r *ProduitRepository) FindLowStock(ctx context.Context) ([]entity.Produit, error) {
	var items []entity.Produit
	err := r.db.WithContext(ctx).
		Where("statut IN ?", []string{entity.ProduitStatutCritique, entity.ProduitStatutRupture}).
		Order("quantite ASC").
		Find(&items).Error
	return items, err
}

func (r *ProduitRepository) Create(ctx context.Context, p *entity.Produit) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProduitRepository) Update(ctx context.Context, p *entity.Produit) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProduitRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Produit{}).Error
}

// ListMouvements journal for a product, newest first
func (r *ProduitRepository) ListMouvements(ctx context.Context, produitID string, page, pageSize int) ([]entity.MouvementStock, int64, error) {
	var items []entity.MouvementStock
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.MouvementStock{})
	if produitID != "" {
		query = query.Where("produit_id = ?", produitID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// DB exposes the underlying handle for cross-repository transactions
func (r *ProduitRepository) DB() *gorm.DB {
	return r.db
}
