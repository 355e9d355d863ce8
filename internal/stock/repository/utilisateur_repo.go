package repository

import (
	"context"
	"errors"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// UtilisateurRepository user access
type UtilisateurRepository struct {
	db *gorm.DB
}

func NewUtilisateurRepository(db *gorm.DB) *UtilisateurRepository {
	return &UtilisateurRepository{db: db}
}

func (r *UtilisateurRepository) FindByID(ctx context.Context, id string) (*entity.Utilisateur, error) {
	var u entity.Utilisateur
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *UtilisateurRepository) FindByEmail(ctx context.Context, email string) (*entity.Utilisateur, error) {
	var u entity.Utilisateur
	err := r.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// FindByRole all active users holding a role, used to fan out notifications
func (r *UtilisateurRepository) FindByRole(ctx context.Context, role string) ([]entity.Utilisateur, error) {
	var items []entity.Utilisateur
	err := r.db.WithContext(ctx).
		Where("role = ? AND statut = ?", role, entity.UtilisateurStatutActif).
		Find(&items).Error
	return items, err
}

func (r *UtilisateurRepository) FindAll(ctx context.Context, page, pageSize int) ([]entity.Utilisateur, int64, error) {
	var items []entity.Utilisateur
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Utilisateur{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

func (r *UtilisateurRepository) Create(ctx context.Context, u *entity.Utilisateur) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UtilisateurRepository) Update(ctx context.Context, u *entity.Utilisateur) error {
	return r.db.WithContext(ctx).Save(u).Error
}
