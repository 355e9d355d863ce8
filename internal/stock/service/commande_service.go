package service

import (
	"context"
	"fmt"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CommandeService purchase-order lifecycle. Every stock-touching transition
// runs in one transaction with the order's own status update.
type CommandeService struct {
	cmdRepo         *repository.CommandeRepository
	produitRepo     *repository.ProduitRepository
	fournisseurRepo *repository.FournisseurRepository
	registreRepo    *repository.RegistreRepository
	notifSvc        *NotificationService
	produitSvc      *ProduitService
	logger          *zap.Logger
	db              *gorm.DB
}

func NewCommandeService(
	cmdRepo *repository.CommandeRepository,
	produitRepo *repository.ProduitRepository,
	fournisseurRepo *repository.FournisseurRepository,
	registreRepo *repository.RegistreRepository,
	notifSvc *NotificationService,
	produitSvc *ProduitService,
	logger *zap.Logger,
	db *gorm.DB,
) *CommandeService {
	return &CommandeService{
		cmdRepo:         cmdRepo,
		produitRepo:     produitRepo,
		fournisseurRepo: fournisseurRepo,
		registreRepo:    registreRepo,
		notifSvc:        notifSvc,
		produitSvc:      produitSvc,
		logger:          logger,
		db:              db,
	}
}

func (s *CommandeService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Commande, int64, error) {
	return s.cmdRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *CommandeService) Get(ctx context.Context, id string) (*entity.Commande, error) {
	return s.cmdRepo.FindByID(ctx, id)
}

// LigneCommandeRequest one ordered line
type LigneCommandeRequest struct {
	ProduitID string `json:"produit_id" binding:"required"`
	Quantite  int    `json:"quantite" binding:"required,gt=0"`
}

// CreateCommandeRequest new purchase order
type CreateCommandeRequest struct {
	FournisseurID string                 `json:"fournisseur_id" binding:"required"`
	DatePrevue    *time.Time             `json:"date_prevue"`
	Lignes        []LigneCommandeRequest `json:"lignes" binding:"required,min=1,dive"`
}

func (s *CommandeService) Create(ctx context.Context, userID string, req *CreateCommandeRequest) (*entity.Commande, error) {
	if _, err := s.fournisseurRepo.FindByID(ctx, req.FournisseurID); err != nil {
		return nil, fmt.Errorf("fournisseur introuvable")
	}
	for _, l := range req.Lignes {
		if _, err := s.produitRepo.FindByID(ctx, l.ProduitID); err != nil {
			return nil, fmt.Errorf("produit %s introuvable", l.ProduitID)
		}
	}

	code, err := s.cmdRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("génération du code commande: %w", err)
	}

	cmd := &entity.Commande{
		ID:            uuid.New().String()[:32],
		Code:          code,
		FournisseurID: req.FournisseurID,
		Statut:        entity.CommandeStatutEnCours,
		DatePrevue:    req.DatePrevue,
		CreePar:       userID,
	}
	for _, l := range req.Lignes {
		cmd.Lignes = append(cmd.Lignes, entity.LigneCommande{
			ID:        uuid.New().String()[:32],
			ProduitID: l.ProduitID,
			Quantite:  l.Quantite,
		})
	}

	if err := s.cmdRepo.Create(ctx, cmd); err != nil {
		return nil, fmt.Errorf("création de la commande: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "commande", cmd.ID, cmd.Code, "create", "", cmd.Statut, userID, nil); err != nil {
		s.logger.Warn("Registre append failed", zap.String("commande_id", cmd.ID), zap.Error(err))
	}

	return s.cmdRepo.FindByID(ctx, cmd.ID)
}

// checkTransition validates a move against the order state table
func (s *CommandeService) checkTransition(cmd *entity.Commande, to string) error {
	if cmd.Statut == to {
		return fmt.Errorf("la commande %s est déjà au statut %s", cmd.Code, to)
	}
	if !entity.TransitionAllowed(entity.ValidCommandeTransitions, cmd.Statut, to) {
		return fmt.Errorf("transition de %s vers %s non autorisée pour la commande %s", cmd.Statut, to, cmd.Code)
	}
	return nil
}

// Valider EN_COURS → VALIDE, no stock effect
func (s *CommandeService) Valider(ctx context.Context, id, userID string) (*entity.Commande, error) {
	cmd, err := s.cmdRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(cmd, entity.CommandeStatutValide); err != nil {
		return nil, err
	}

	from := cmd.Statut
	cmd.Statut = entity.CommandeStatutValide
	if err := s.cmdRepo.Update(ctx, cmd); err != nil {
		return nil, fmt.Errorf("mise à jour de la commande: %w", err)
	}

	s.afterTransition(ctx, cmd, from, "valider", userID, "")
	return cmd, nil
}

// LivrerRequest delivery payload; the invoice is uploaded separately and
// referenced here by its object key
type LivrerRequest struct {
	FactureID string `json:"facture_id"`
}

// Livrer marks the order delivered and credits every ordered line's product,
// all inside one transaction. EN_RETOUR → LIVREE re-credits stock the same way.
func (s *CommandeService) Livrer(ctx context.Context, id, userID string, req *LivrerRequest) (*entity.Commande, error) {
	cmd, err := s.cmdRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(cmd, entity.CommandeStatutLivree); err != nil {
		return nil, err
	}
	if len(cmd.Lignes) == 0 {
		return nil, fmt.Errorf("la commande %s n'a aucune ligne", cmd.Code)
	}

	from := cmd.Statut
	now := time.Now()

	var touched []entity.Produit
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cmd.Statut = entity.CommandeStatutLivree
		cmd.DateLivraison = &now
		if req != nil && req.FactureID != "" {
			cmd.FactureID = req.FactureID
		}
		if err := tx.Omit("Fournisseur", "Lignes").Save(cmd).Error; err != nil {
			return fmt.Errorf("mise à jour de la commande: %w", err)
		}

		for _, ligne := range cmd.Lignes {
			p, err := applyMouvement(tx, ligne.ProduitID, ligne.Quantite, "COMMANDE", cmd.ID, userID)
			if err != nil {
				return err
			}
			touched = append(touched, *p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterTransition(ctx, cmd, from, "livrer", userID, "")
	for i := range touched {
		s.produitSvc.AlertIfLow(ctx, &touched[i])
	}
	return s.cmdRepo.FindByID(ctx, cmd.ID)
}

// RetournerRequest return payload, reason mandatory
type RetournerRequest struct {
	Raison string `json:"raison" binding:"required"`
}

// Retourner flags the order EN_RETOUR, no stock effect until re-delivery
func (s *CommandeService) Retourner(ctx context.Context, id, userID string, req *RetournerRequest) (*entity.Commande, error) {
	cmd, err := s.cmdRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Raison == "" {
		return nil, fmt.Errorf("une raison de retour est requise")
	}
	if err := s.checkTransition(cmd, entity.CommandeStatutEnRetour); err != nil {
		return nil, err
	}

	from := cmd.Statut
	cmd.Statut = entity.CommandeStatutEnRetour
	cmd.RaisonRetour = req.Raison
	if err := s.cmdRepo.Update(ctx, cmd); err != nil {
		return nil, fmt.Errorf("mise à jour de la commande: %w", err)
	}

	s.afterTransition(ctx, cmd, from, "retourner", userID, req.Raison)
	return cmd, nil
}

// Annuler cancels the order, never touching stock
func (s *CommandeService) Annuler(ctx context.Context, id, userID string) (*entity.Commande, error) {
	cmd, err := s.cmdRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(cmd, entity.CommandeStatutAnnulee); err != nil {
		return nil, err
	}

	from := cmd.Statut
	cmd.Statut = entity.CommandeStatutAnnulee
	if err := s.cmdRepo.Update(ctx, cmd); err != nil {
		return nil, fmt.Errorf("mise à jour de la commande: %w", err)
	}

	s.afterTransition(ctx, cmd, from, "annuler", userID, "")
	return cmd, nil
}

// afterTransition registre + notification side effects, post-commit
func (s *CommandeService) afterTransition(ctx context.Context, cmd *entity.Commande, from, action, userID, raison string) {
	details := entity.JSONB{}
	if raison != "" {
		details["raison"] = raison
	}
	if err := appendRegistre(ctx, s.registreRepo, "commande", cmd.ID, cmd.Code, action, from, cmd.Statut, userID, details); err != nil {
		s.logger.Warn("Registre append failed", zap.String("commande_id", cmd.ID), zap.Error(err))
	}

	if cmd.CreePar == "" || cmd.CreePar == userID {
		return
	}

	var message, typ string
	switch cmd.Statut {
	case entity.CommandeStatutLivree:
		message = fmt.Sprintf("La commande %s a été livrée", cmd.Code)
		typ = entity.NotificationCommandeLivree
	case entity.CommandeStatutEnRetour:
		message = fmt.Sprintf("La commande %s a été retournée: %s", cmd.Code, raison)
		typ = entity.NotificationCommandeRetour
	case entity.CommandeStatutAnnulee:
		message = fmt.Sprintf("La commande %s a été annulée", cmd.Code)
		typ = entity.NotificationCommandeAnnulee
	default:
		return
	}

	if err := s.notifSvc.Notify(ctx, cmd.CreePar, message, typ, nil); err != nil {
		s.logger.Warn("Notification append failed", zap.String("commande_id", cmd.ID), zap.Error(err))
	}
}
