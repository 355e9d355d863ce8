package service

import (
	"context"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"gorm.io/gorm"
)

// DashboardService aggregate counters for the landing pages. Each role gets
// the slice of numbers its screens show.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// DashboardStats counters, fields filled depend on the caller's role
type DashboardStats struct {
	TotalProduits        int64 `json:"total_produits"`
	ProduitsCritiques    int64 `json:"produits_critiques"`
	ProduitsRupture      int64 `json:"produits_rupture"`
	TotalFournisseurs    int64 `json:"total_fournisseurs,omitempty"`
	CommandesEnCours     int64 `json:"commandes_en_cours,omitempty"`
	CommandesEnRetour    int64 `json:"commandes_en_retour,omitempty"`
	DemandesEnAttente    int64 `json:"demandes_en_attente,omitempty"`
	DemandesApprouvees   int64 `json:"demandes_approuvees,omitempty"`
	DemandesExcEnAttente int64 `json:"demandes_exc_en_attente,omitempty"`
	MesDemandes          int64 `json:"mes_demandes,omitempty"`
	MesDemandesEnAttente int64 `json:"mes_demandes_en_attente,omitempty"`
}

func (s *DashboardService) count(ctx context.Context, model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

// Stats counters for the caller. Gestionnaires see procurement numbers,
// magasiniers see fulfillment queues, demandeurs see their own requisitions.
func (s *DashboardService) Stats(ctx context.Context, userID, role string) (*DashboardStats, error) {
	stats := &DashboardStats{}
	var err error

	if stats.TotalProduits, err = s.count(ctx, &entity.Produit{}, ""); err != nil {
		return nil, err
	}
	if stats.ProduitsCritiques, err = s.count(ctx, &entity.Produit{}, "statut = ?", entity.ProduitStatutCritique); err != nil {
		return nil, err
	}
	if stats.ProduitsRupture, err = s.count(ctx, &entity.Produit{}, "statut = ?", entity.ProduitStatutRupture); err != nil {
		return nil, err
	}

	switch role {
	case entity.RoleAdmin, entity.RoleGestionnaire:
		if stats.TotalFournisseurs, err = s.count(ctx, &entity.Fournisseur{}, ""); err != nil {
			return nil, err
		}
		if stats.CommandesEnCours, err = s.count(ctx, &entity.Commande{}, "statut = ?", entity.CommandeStatutEnCours); err != nil {
			return nil, err
		}
		if stats.CommandesEnRetour, err = s.count(ctx, &entity.Commande{}, "statut = ?", entity.CommandeStatutEnRetour); err != nil {
			return nil, err
		}
		if stats.DemandesEnAttente, err = s.count(ctx, &entity.Demande{}, "statut = ?", entity.DemandeStatutEnAttente); err != nil {
			return nil, err
		}
		if stats.DemandesExcEnAttente, err = s.count(ctx, &entity.DemandeExceptionnelle{}, "statut = ?", entity.DemandeExcStatutEnAttente); err != nil {
			return nil, err
		}
	case entity.RoleMagasinier:
		if stats.DemandesApprouvees, err = s.count(ctx, &entity.Demande{}, "statut = ?", entity.DemandeStatutApprouvee); err != nil {
			return nil, err
		}
		if stats.CommandesEnCours, err = s.count(ctx, &entity.Commande{}, "statut IN ?", []string{entity.CommandeStatutEnCours, entity.CommandeStatutValide}); err != nil {
			return nil, err
		}
	case entity.RoleDemandeur:
		if stats.MesDemandes, err = s.count(ctx, &entity.Demande{}, "demandeur_id = ?", userID); err != nil {
			return nil, err
		}
		if stats.MesDemandesEnAttente, err = s.count(ctx, &entity.Demande{}, "demandeur_id = ? AND statut = ?", userID, entity.DemandeStatutEnAttente); err != nil {
			return nil, err
		}
	}

	return stats, nil
}
