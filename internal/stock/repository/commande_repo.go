package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// CommandeRepository purchase-order access
type CommandeRepository struct {
	db *gorm.DB
}

func NewCommandeRepository(db *gorm.DB) *CommandeRepository {
	return &CommandeRepository{db: db}
}

func (r *CommandeRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Commande, int64, error) {
	var items []entity.Commande
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Commande{})

	if fournisseurID := filters["fournisseur_id"]; fournisseurID != "" {
		query = query.Where("fournisseur_id = ?", fournisseurID)
	}
	if statut := filters["statut"]; statut != "" {
		query = query.Where("statut = ?", statut)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Fournisseur").
		Preload("Lignes").
		Preload("Lignes.Produit").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// FindByID order with supplier and lines
func (r *CommandeRepository) FindByID(ctx context.Context, id string) (*entity.Commande, error) {
	var cmd entity.Commande
	err := r.db.WithContext(ctx).
		Preload("Fournisseur").
		Preload("Lignes").
		Preload("Lignes.Produit").
		Where("id = ?", id).
		First(&cmd).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cmd, nil
}

// FindByFournisseur full order history of one supplier, used by the export
func (r *CommandeRepository) FindByFournisseur(ctx context.Context, fournisseurID string) ([]entity.Commande, error) {
	var items []entity.Commande
	err := r.db.WithContext(ctx).
		Preload("Lignes").
		Preload("Lignes.Produit").
		Where("fournisseur_id = ?", fournisseurID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

// Create order and its lines in one transaction
func (r *CommandeRepository) Create(ctx context.Context, cmd *entity.Commande) error {
	return r.db.WithContext(ctx).Create(cmd).Error
}

func (r *CommandeRepository) Update(ctx context.Context, cmd *entity.Commande) error {
	return r.db.WithContext(ctx).Save(cmd).Error
}

// GenerateCode sequential order code CMD-{year}-{4 digits}
func (r *CommandeRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("CMD-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Commande{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "CMD-"+year+"-%04d", &seq)
	}
	seq++
	return fmt.Sprintf("CMD-%s-%04d", year, seq), nil
}
