package service

import (
	"context"
	"fmt"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
)

// FournisseurService supplier CRUD. External evaluation scores are stored
// as received, never recomputed here.
type FournisseurService struct {
	fournisseurRepo *repository.FournisseurRepository
	commandeRepo    *repository.CommandeRepository
}

func NewFournisseurService(fournisseurRepo *repository.FournisseurRepository, commandeRepo *repository.CommandeRepository) *FournisseurService {
	return &FournisseurService{fournisseurRepo: fournisseurRepo, commandeRepo: commandeRepo}
}

func (s *FournisseurService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Fournisseur, int64, error) {
	return s.fournisseurRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *FournisseurService) Get(ctx context.Context, id string) (*entity.Fournisseur, error) {
	return s.fournisseurRepo.FindByID(ctx, id)
}

// Commandes order history of one supplier
func (s *FournisseurService) Commandes(ctx context.Context, id string) ([]entity.Commande, error) {
	if _, err := s.fournisseurRepo.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.commandeRepo.FindByFournisseur(ctx, id)
}

// CreateFournisseurRequest new supplier
type CreateFournisseurRequest struct {
	Nom       string `json:"nom" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	Telephone string `json:"telephone"`
	Adresse   string `json:"adresse"`
	Notes     string `json:"notes"`
}

func (s *FournisseurService) Create(ctx context.Context, req *CreateFournisseurRequest) (*entity.Fournisseur, error) {
	code, err := s.fournisseurRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("génération du code fournisseur: %w", err)
	}

	f := &entity.Fournisseur{
		ID:        uuid.New().String()[:32],
		Code:      code,
		Nom:       req.Nom,
		Email:     req.Email,
		Telephone: req.Telephone,
		Adresse:   req.Adresse,
		Notes:     req.Notes,
		Statut:    entity.FournisseurStatutActif,
	}
	if err := s.fournisseurRepo.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("création du fournisseur: %w", err)
	}
	return f, nil
}

// UpdateFournisseurRequest partial edit, scores included when the external
// evaluation pushes them
type UpdateFournisseurRequest struct {
	Nom            *string  `json:"nom"`
	Email          *string  `json:"email"`
	Telephone      *string  `json:"telephone"`
	Adresse        *string  `json:"adresse"`
	Notes          *string  `json:"notes"`
	Statut         *string  `json:"statut"`
	ScoreQualite   *float64 `json:"score_qualite"`
	ScoreLivraison *float64 `json:"score_livraison"`
	ScoreGlobal    *float64 `json:"score_global"`
}

func (s *FournisseurService) Update(ctx context.Context, id string, req *UpdateFournisseurRequest) (*entity.Fournisseur, error) {
	f, err := s.fournisseurRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Nom != nil {
		f.Nom = *req.Nom
	}
	if req.Email != nil {
		f.Email = *req.Email
	}
	if req.Telephone != nil {
		f.Telephone = *req.Telephone
	}
	if req.Adresse != nil {
		f.Adresse = *req.Adresse
	}
	if req.Notes != nil {
		f.Notes = *req.Notes
	}
	if req.Statut != nil {
		if *req.Statut != entity.FournisseurStatutActif && *req.Statut != entity.FournisseurStatutSuspendu {
			return nil, fmt.Errorf("statut fournisseur invalide: %s", *req.Statut)
		}
		f.Statut = *req.Statut
	}
	if req.ScoreQualite != nil {
		f.ScoreQualite = req.ScoreQualite
	}
	if req.ScoreLivraison != nil {
		f.ScoreLivraison = req.ScoreLivraison
	}
	if req.ScoreGlobal != nil {
		f.ScoreGlobal = req.ScoreGlobal
	}

	if err := s.fournisseurRepo.Update(ctx, f); err != nil {
		return nil, fmt.Errorf("mise à jour du fournisseur: %w", err)
	}
	return f, nil
}

// Delete refuses when orders still reference the supplier
func (s *FournisseurService) Delete(ctx context.Context, id string) error {
	f, err := s.fournisseurRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	commandes, err := s.commandeRepo.FindByFournisseur(ctx, id)
	if err != nil {
		return err
	}
	if len(commandes) > 0 {
		return fmt.Errorf("le fournisseur %s a %d commande(s) enregistrée(s)", f.Nom, len(commandes))
	}

	return s.fournisseurRepo.Delete(ctx, id)
}
