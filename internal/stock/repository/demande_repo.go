package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// DemandeRepository requisition access
type DemandeRepository struct {
	db *gorm.DB
}

func NewDemandeRepository(db *gorm.DB) *DemandeRepository {
	return &DemandeRepository{db: db}
}

func (r *DemandeRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Demande, int64, error) {
	var items []entity.Demande
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Demande{})

	if demandeurID := filters["demandeur_id"]; demandeurID != "" {
		query = query.Where("demandeur_id = ?", demandeurID)
	}
	if statut := filters["statut"]; statut != "" {
		query = query.Where("statut = ?", statut)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Lignes").
		Preload("Lignes.Produit").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *DemandeRepository) FindByID(ctx context.Context, id string) (*entity.Demande, error) {
	var d entity.Demande
	err := r.db.WithContext(ctx).
		Preload("Lignes").
		Preload("Lignes.Produit").
		Where("id = ?", id).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *DemandeRepository) Create(ctx context.Context, d *entity.Demande) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DemandeRepository) Update(ctx context.Context, d *entity.Demande) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// GenerateCode sequential requisition code DEM-{year}-{4 digits}
func (r *DemandeRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("DEM-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Demande{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "DEM-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("DEM-%s-%04d", year, seq), nil
}
