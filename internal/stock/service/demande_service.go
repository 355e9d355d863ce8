package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemandeService requisition lifecycle. Fulfillment verifies every line
// before mutating any product: no partial take.
type DemandeService struct {
	demandeRepo  *repository.DemandeRepository
	produitRepo  *repository.ProduitRepository
	registreRepo *repository.RegistreRepository
	notifSvc     *NotificationService
	produitSvc   *ProduitService
	logger       *zap.Logger
	db           *gorm.DB
}

func NewDemandeService(
	demandeRepo *repository.DemandeRepository,
	produitRepo *repository.ProduitRepository,
	registreRepo *repository.RegistreRepository,
	notifSvc *NotificationService,
	produitSvc *ProduitService,
	logger *zap.Logger,
	db *gorm.DB,
) *DemandeService {
	return &DemandeService{
		demandeRepo:  demandeRepo,
		produitRepo:  produitRepo,
		registreRepo: registreRepo,
		notifSvc:     notifSvc,
		produitSvc:   produitSvc,
		logger:       logger,
		db:           db,
	}
}

func (s *DemandeService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Demande, int64, error) {
	return s.demandeRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *DemandeService) Get(ctx context.Context, id string) (*entity.Demande, error) {
	return s.demandeRepo.FindByID(ctx, id)
}

// LigneDemandeRequest one requested line
type LigneDemandeRequest struct {
	ProduitID string `json:"produit_id" binding:"required"`
	Quantite  int    `json:"quantite" binding:"required,gt=0"`
}

// CreateDemandeRequest new requisition, submitted by a demandeur
type CreateDemandeRequest struct {
	Lignes []LigneDemandeRequest `json:"lignes" binding:"required,min=1,dive"`
}

func (s *DemandeService) Create(ctx context.Context, demandeurID string, req *CreateDemandeRequest) (*entity.Demande, error) {
	for _, l := range req.Lignes {
		if _, err := s.produitRepo.FindByID(ctx, l.ProduitID); err != nil {
			return nil, fmt.Errorf("produit %s introuvable", l.ProduitID)
		}
	}

	code, err := s.demandeRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("génération du code demande: %w", err)
	}

	d := &entity.Demande{
		ID:          uuid.New().String()[:32],
		Code:        code,
		DemandeurID: demandeurID,
		Statut:      entity.DemandeStatutEnAttente,
	}
	for _, l := range req.Lignes {
		d.Lignes = append(d.Lignes, entity.LigneDemande{
			ID:        uuid.New().String()[:32],
			ProduitID: l.ProduitID,
			Quantite:  l.Quantite,
		})
	}

	if err := s.demandeRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("création de la demande: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande", d.ID, d.Code, "create", "", d.Statut, demandeurID, nil); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_id", d.ID), zap.Error(err))
	}

	return s.demandeRepo.FindByID(ctx, d.ID)
}

func (s *DemandeService) checkTransition(d *entity.Demande, to string) error {
	if d.Statut == to {
		return fmt.Errorf("la demande %s est déjà au statut %s", d.Code, to)
	}
	if !entity.TransitionAllowed(entity.ValidDemandeTransitions, d.Statut, to) {
		return fmt.Errorf("transition de %s vers %s non autorisée pour la demande %s", d.Statut, to, d.Code)
	}
	return nil
}

// Approuver EN_ATTENTE → APPROUVEE, stamps the approval date and notifies the
// requester
func (s *DemandeService) Approuver(ctx context.Context, id, userID string) (*entity.Demande, error) {
	d, err := s.demandeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(d, entity.DemandeStatutApprouvee); err != nil {
		return nil, err
	}

	from := d.Statut
	now := time.Now()
	d.Statut = entity.DemandeStatutApprouvee
	d.DateApprobation = &now
	if err := s.demandeRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("mise à jour de la demande: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande", d.ID, d.Code, "approuver", from, d.Statut, userID, nil); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_id", d.ID), zap.Error(err))
	}

	message := fmt.Sprintf("Votre demande %s a été approuvée", d.Code)
	if err := s.notifSvc.Notify(ctx, d.DemandeurID, message, entity.NotificationDemandeApprouvee, nil); err != nil {
		s.logger.Warn("Notification append failed", zap.String("demande_id", d.ID), zap.Error(err))
	}
	s.notifSvc.EmailUser(ctx, d.DemandeurID,
		fmt.Sprintf("Demande %s approuvée", d.Code),
		fmt.Sprintf("<p>%s</p>", message))

	return d, nil
}

// RejeterRequest rejection payload, reason mandatory and persisted verbatim
type RejeterRequest struct {
	Raison string `json:"raison" binding:"required"`
}

// Rejeter EN_ATTENTE → REJETEE with the reason recorded alongside
func (s *DemandeService) Rejeter(ctx context.Context, id, userID string, req *RejeterRequest) (*entity.Demande, error) {
	d, err := s.demandeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Raison == "" {
		return nil, fmt.Errorf("une raison de refus est requise")
	}
	if err := s.checkTransition(d, entity.DemandeStatutRejetee); err != nil {
		return nil, err
	}

	from := d.Statut
	d.Statut = entity.DemandeStatutRejetee
	d.RaisonRefus = req.Raison
	if err := s.demandeRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("mise à jour de la demande: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande", d.ID, d.Code, "rejeter", from, d.Statut, userID, entity.JSONB{"raison": req.Raison}); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_id", d.ID), zap.Error(err))
	}

	message := fmt.Sprintf("Votre demande %s a été rejetée: %s", d.Code, req.Raison)
	if err := s.notifSvc.Notify(ctx, d.DemandeurID, message, entity.NotificationDemandeRejetee, nil); err != nil {
		s.logger.Warn("Notification append failed", zap.String("demande_id", d.ID), zap.Error(err))
	}
	s.notifSvc.EmailUser(ctx, d.DemandeurID,
		fmt.Sprintf("Demande %s rejetée", d.Code),
		fmt.Sprintf("<p>%s</p>", message))

	return d, nil
}

// Prendre APPROUVEE → PRISE. All lines are checked against current stock
// before any decrement; a single short line aborts the whole operation naming
// the product. On success each product is decremented in the same transaction
// as the status change and the requester gets exactly one notification.
func (s *DemandeService) Prendre(ctx context.Context, id, userID string) (*entity.Demande, error) {
	d, err := s.demandeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(d, entity.DemandeStatutPrise); err != nil {
		return nil, err
	}
	if len(d.Lignes) == 0 {
		return nil, fmt.Errorf("la demande %s n'a aucune ligne", d.Code)
	}

	from := d.Statut
	var touched []entity.Produit
	var produitIDs []string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// first pass: verify availability on every line
		for _, ligne := range d.Lignes {
			var p entity.Produit
			if err := tx.Where("id = ?", ligne.ProduitID).First(&p).Error; err != nil {
				return fmt.Errorf("produit %s introuvable", ligne.ProduitID)
			}
			if p.Quantite < ligne.Quantite {
				return fmt.Errorf("stock insuffisant pour le produit %s: demandé %d, disponible %d",
					p.Nom, ligne.Quantite, p.Quantite)
			}
		}

		// second pass: decrement
		for _, ligne := range d.Lignes {
			p, err := applyMouvement(tx, ligne.ProduitID, -ligne.Quantite, "DEMANDE", d.ID, userID)
			if err != nil {
				return err
			}
			touched = append(touched, *p)
			produitIDs = append(produitIDs, p.ID)
		}

		d.Statut = entity.DemandeStatutPrise
		return tx.Omit("Lignes").Save(d).Error
	})
	if err != nil {
		return nil, err
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande", d.ID, d.Code, "prendre", from, d.Statut, userID, nil); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_id", d.ID), zap.Error(err))
	}

	var noms []string
	for _, p := range touched {
		noms = append(noms, p.Nom)
	}
	message := fmt.Sprintf("Votre demande %s a été servie: %s", d.Code, strings.Join(noms, ", "))
	if err := s.notifSvc.Notify(ctx, d.DemandeurID, message, entity.NotificationDemandePrise, produitIDs); err != nil {
		s.logger.Warn("Notification append failed", zap.String("demande_id", d.ID), zap.Error(err))
	}

	for i := range touched {
		s.produitSvc.AlertIfLow(ctx, &touched[i])
	}

	return s.demandeRepo.FindByID(ctx, d.ID)
}
