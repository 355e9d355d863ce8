package repository

import (
	"context"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// RegistreRepository append-only audit trail
type RegistreRepository struct {
	db *gorm.DB
}

func NewRegistreRepository(db *gorm.DB) *RegistreRepository {
	return &RegistreRepository{db: db}
}

func (r *RegistreRepository) Create(ctx context.Context, e *entity.RegistreEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *RegistreRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.RegistreEntry, int64, error) {
	var items []entity.RegistreEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.RegistreEntry{})

	if entityType := filters["entity_type"]; entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID := filters["entity_id"]; entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}
	if acteurID := filters["acteur_id"]; acteurID != "" {
		query = query.Where("acteur_id = ?", acteurID)
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
