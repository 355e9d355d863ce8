package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// FournisseurRepository supplier access
type FournisseurRepository struct {
	db *gorm.DB
}

func NewFournisseurRepository(db *gorm.DB) *FournisseurRepository {
	return &FournisseurRepository{db: db}
}

func (r *FournisseurRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Fournisseur, int64, error) {
	var items []entity.Fournisseur
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Fournisseur{})

	if statut := filters["statut"]; statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("nom ILIKE ? OR code ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("nom ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *FournisseurRepository) FindByID(ctx context.Context, id string) (*entity.Fournisseur, error) {
	var f entity.Fournisseur
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FournisseurRepository) Create(ctx context.Context, f *entity.Fournisseur) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FournisseurRepository) Update(ctx context.Context, f *entity.Fournisseur) error {
	return r.db.WithContext(ctx).Save(f).Error
}

func (r *FournisseurRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Fournisseur{}).Error
}

// GenerateCode sequential supplier code FRS-{year}-{4 digits}
func (r *FournisseurRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("FRS-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Fournisseur{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "FRS-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("FRS-%s-%04d", year, seq), nil
}
