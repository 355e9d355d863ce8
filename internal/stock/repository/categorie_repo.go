package repository

import (
	"context"
	"errors"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// CategorieRepository category access
type CategorieRepository struct {
	db *gorm.DB
}

func NewCategorieRepository(db *gorm.DB) *CategorieRepository {
	return &CategorieRepository{db: db}
}

func (r *CategorieRepository) FindAll(ctx context.Context) ([]entity.Categorie, error) {
	var items []entity.Categorie
	err := r.db.WithContext(ctx).Order("nom ASC").Find(&items).Error
	return items, err
}

func (r *CategorieRepository) FindByID(ctx context.Context, id string) (*entity.Categorie, error) {
	var c entity.Categorie
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CategorieRepository) Create(ctx context.Context, c *entity.Categorie) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CategorieRepository) Update(ctx context.Context, c *entity.Categorie) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CategorieRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Categorie{}).Error
}
