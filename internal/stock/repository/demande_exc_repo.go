package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// DemandeExcRepository exceptional-requisition access
type DemandeExcRepository struct {
	db *gorm.DB
}

func NewDemandeExcRepository(db *gorm.DB) *DemandeExcRepository {
	return &DemandeExcRepository{db: db}
}

func (r *DemandeExcRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.DemandeExceptionnelle, int64, error) {
	var items []entity.DemandeExceptionnelle
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DemandeExceptionnelle{})

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
		Preload("Fournisseur").
		Preload("Lignes").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *DemandeExcRepository) FindByID(ctx context.Context, id string) (*entity.DemandeExceptionnelle, error) {
	var d entity.DemandeExceptionnelle
	err := r.db.WithContext(ctx).
		Preload("Fournisseur").
		Preload("Lignes").
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

func (r *DemandeExcRepository) Create(ctx context.Context, d *entity.DemandeExceptionnelle) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DemandeExcRepository) Update(ctx context.Context, d *entity.DemandeExceptionnelle) error {
	return r.db.WithContext(ctx).Save(d).Error
}

// GenerateCode sequential code DEX-{year}-{4 digits}
func (r *DemandeExcRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("DEX-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.DemandeExceptionnelle{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "DEX-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("DEX-%s-%04d", year, seq), nil
}
