package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemandeExcService lifecycle of requisitions for products absent from the
// catalog. Delivery materializes missing products under the fallback category;
// fulfillment consumes them.
type DemandeExcService struct {
	demandeExcRepo  *repository.DemandeExcRepository
	produitRepo     *repository.ProduitRepository
	categorieRepo   *repository.CategorieRepository
	fournisseurRepo *repository.FournisseurRepository
	registreRepo    *repository.RegistreRepository
	notifSvc        *NotificationService
	produitSvc      *ProduitService
	logger          *zap.Logger
	db              *gorm.DB
}

func NewDemandeExcService(
	demandeExcRepo *repository.DemandeExcRepository,
	produitRepo *repository.ProduitRepository,
	categorieRepo *repository.CategorieRepository,
	fournisseurRepo *repository.FournisseurRepository,
	registreRepo *repository.RegistreRepository,
	notifSvc *NotificationService,
	produitSvc *ProduitService,
	logger *zap.Logger,
	db *gorm.DB,
) *DemandeExcService {
	return &DemandeExcService{
		demandeExcRepo:  demandeExcRepo,
		produitRepo:     produitRepo,
		categorieRepo:   categorieRepo,
		fournisseurRepo: fournisseurRepo,
		registreRepo:    registreRepo,
		notifSvc:        notifSvc,
		produitSvc:      produitSvc,
		logger:          logger,
		db:              db,
	}
}

func (s *DemandeExcService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.DemandeExceptionnelle, int64, error) {
	return s.demandeExcRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *DemandeExcService) Get(ctx context.Context, id string) (*entity.DemandeExceptionnelle, error) {
	return s.demandeExcRepo.FindByID(ctx, id)
}

// LigneDemandeExcRequest one requested item, free-form
type LigneDemandeExcRequest struct {
	Nom         string `json:"nom" binding:"required"`
	Marque      string `json:"marque"`
	Description string `json:"description"`
	Quantite    int    `json:"quantite" binding:"required,gt=0"`
}

// CreateDemandeExcRequest new exceptional requisition
type CreateDemandeExcRequest struct {
	Lignes []LigneDemandeExcRequest `json:"lignes" binding:"required,min=1,dive"`
}

func (s *DemandeExcService) Create(ctx context.Context, demandeurID string, req *CreateDemandeExcRequest) (*entity.DemandeExceptionnelle, error) {
	code, err := s.demandeExcRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("génération du code demande exceptionnelle: %w", err)
	}

	d := &entity.DemandeExceptionnelle{
		ID:          uuid.New().String()[:32],
		Code:        code,
		DemandeurID: demandeurID,
		Statut:      entity.DemandeExcStatutEnAttente,
	}
	for _, l := range req.Lignes {
		d.Lignes = append(d.Lignes, entity.LigneDemandeExceptionnelle{
			ID:          uuid.New().String()[:32],
			Nom:         l.Nom,
			Marque:      l.Marque,
			Description: l.Description,
			Quantite:    l.Quantite,
		})
	}

	if err := s.demandeExcRepo.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("création de la demande exceptionnelle: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande_exceptionnelle", d.ID, d.Code, "create", "", d.Statut, demandeurID, nil); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_exc_id", d.ID), zap.Error(err))
	}

	return s.demandeExcRepo.FindByID(ctx, d.ID)
}

func (s *DemandeExcService) checkTransition(d *entity.DemandeExceptionnelle, to string) error {
	if d.Statut == to {
		return fmt.Errorf("la demande exceptionnelle %s est déjà au statut %s", d.Code, to)
	}
	if !entity.TransitionAllowed(entity.ValidDemandeExcTransitions, d.Statut, to) {
		return fmt.Errorf("transition de %s vers %s non autorisée pour la demande exceptionnelle %s", d.Statut, to, d.Code)
	}
	return nil
}

func (s *DemandeExcService) notifDemandeur(ctx context.Context, d *entity.DemandeExceptionnelle, message, notifType string, produitIDs []string) {
	if err := s.notifSvc.Notify(ctx, d.DemandeurID, message, notifType, produitIDs); err != nil {
		s.logger.Warn("Notification append failed", zap.String("demande_exc_id", d.ID), zap.Error(err))
	}
}

// Accepter EN_ATTENTE → ACCEPTEE
func (s *DemandeExcService) Accepter(ctx context.Context, id, userID string) (*entity.DemandeExceptionnelle, error) {
	d, err := s.demandeExcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(d, entity.DemandeExcStatutAcceptee); err != nil {
		return nil, err
	}

	from := d.Statut
	d.Statut = entity.DemandeExcStatutAcceptee
	if err := s.demandeExcRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("mise à jour de la demande exceptionnelle: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande_exceptionnelle", d.ID, d.Code, "accepter", from, d.Statut, userID, nil); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_exc_id", d.ID), zap.Error(err))
	}
	s.notifDemandeur(ctx, d, fmt.Sprintf("Votre demande exceptionnelle %s a été acceptée", d.Code), entity.NotificationDemandeApprouvee, nil)

	return d, nil
}

// Rejeter EN_ATTENTE → REJETEE, reason mandatory
func (s *DemandeExcService) Rejeter(ctx context.Context, id, userID string, req *RejeterRequest) (*entity.DemandeExceptionnelle, error) {
	d, err := s.demandeExcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil || req.Raison == "" {
		return nil, fmt.Errorf("une raison de refus est requise")
	}
	if err := s.checkTransition(d, entity.DemandeExcStatutRejetee); err != nil {
		return nil, err
	}

	from := d.Statut
	d.Statut = entity.DemandeExcStatutRejetee
	d.RaisonRefus = req.Raison
	if err := s.demandeExcRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("mise à jour de la demande exceptionnelle: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande_exceptionnelle", d.ID, d.Code, "rejeter", from, d.Statut, userID, entity.JSONB{"raison": req.Raison}); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_exc_id", d.ID), zap.Error(err))
	}
	s.notifDemandeur(ctx, d, fmt.Sprintf("Votre demande exceptionnelle %s a été rejetée: %s", d.Code, req.Raison), entity.NotificationDemandeRejetee, nil)

	return d, nil
}

// CommanderRequest supplier assignment when the requisition is ordered
type CommanderRequest struct {
	FournisseurID string `json:"fournisseur_id" binding:"required"`
	DatePrevue    string `json:"date_prevue" binding:"required"` // 2006-01-02
}

// Commander ACCEPTEE → COMMANDEE, binds a supplier and an expected date
func (s *DemandeExcService) Commander(ctx context.Context, id, userID string, req *CommanderRequest) (*entity.DemandeExceptionnelle, error) {
	d, err := s.demandeExcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(d, entity.DemandeExcStatutCommandee); err != nil {
		return nil, err
	}

	if _, err := s.fournisseurRepo.FindByID(ctx, req.FournisseurID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("fournisseur %s introuvable", req.FournisseurID)
		}
		return nil, err
	}
	datePrevue, err := time.Parse("2006-01-02", req.DatePrevue)
	if err != nil {
		return nil, fmt.Errorf("date prévue invalide: %s", req.DatePrevue)
	}

	from := d.Statut
	d.Statut = entity.DemandeExcStatutCommandee
	d.FournisseurID = &req.FournisseurID
	d.DatePrevue = &datePrevue
	if err := s.demandeExcRepo.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("mise à jour de la demande exceptionnelle: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande_exceptionnelle", d.ID, d.Code, "commander", from, d.Statut, userID,
		entity.JSONB{"fournisseur_id": req.FournisseurID, "date_prevue": req.DatePrevue}); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_exc_id", d.ID), zap.Error(err))
	}
	s.notifDemandeur(ctx, d, fmt.Sprintf("Votre demande exceptionnelle %s a été commandée", d.Code), entity.NotificationDemandeCommandee, nil)

	return s.demandeExcRepo.FindByID(ctx, d.ID)
}

// Livrer COMMANDEE → LIVREE. Each line is matched against the catalog by
// name and brand; missing products are created under the fallback category
// with the requested quantity as initial stock. Lines already in the catalog
// leave stock untouched, the take happens at PRISE.
func (s *DemandeExcService) Livrer(ctx context.Context, id, userID string) (*entity.DemandeExceptionnelle, error) {
	d, err := s.demandeExcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(d, entity.DemandeExcStatutLivree); err != nil {
		return nil, err
	}

	from := d.Statut
	var created []string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cat entity.Categorie
		err := tx.Where("LOWER(nom) = LOWER(?)", entity.CategorieNonCategorisee).First(&cat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cat = entity.Categorie{
				ID:  uuid.New().String()[:32],
				Nom: entity.CategorieNonCategorisee,
			}
			if err := tx.Create(&cat).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		for _, ligne := range d.Lignes {
			var p entity.Produit
			err := tx.Where("LOWER(nom) = LOWER(?) AND LOWER(marque) = LOWER(?)", ligne.Nom, ligne.Marque).First(&p).Error
			if err == nil {
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			p = entity.Produit{
				ID:               uuid.New().String()[:32],
				Nom:              ligne.Nom,
				Marque:           ligne.Marque,
				Description:      ligne.Description,
				Quantite:         ligne.Quantite,
				QuantiteMinimale: 0,
				CategorieID:      cat.ID,
			}
			p.Statut = entity.StatutForQuantite(p.Quantite, p.QuantiteMinimale)
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			mouvement := entity.MouvementStock{
				ID:            uuid.New().String()[:32],
				ProduitID:     p.ID,
				Type:          entity.MouvementEntree,
				Quantite:      ligne.Quantite,
				ReferenceType: "DEMANDE_EXCEPTIONNELLE",
				ReferenceID:   d.ID,
				EffectuePar:   userID,
			}
			if err := tx.Create(&mouvement).Error; err != nil {
				return err
			}
			created = append(created, ligne.Nom)
		}

		now := time.Now()
		d.Statut = entity.DemandeExcStatutLivree
		d.DateLivraison = &now
		return tx.Omit("Lignes", "Fournisseur").Save(d).Error
	})
	if err != nil {
		return nil, err
	}

	details := entity.JSONB{}
	if len(created) > 0 {
		details["produits_crees"] = strings.Join(created, ", ")
	}
	if err := appendRegistre(ctx, s.registreRepo, "demande_exceptionnelle", d.ID, d.Code, "livrer", from, d.Statut, userID, details); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_exc_id", d.ID), zap.Error(err))
	}
	s.notifDemandeur(ctx, d, fmt.Sprintf("Votre demande exceptionnelle %s a été livrée", d.Code), entity.NotificationCommandeLivree, nil)

	return s.demandeExcRepo.FindByID(ctx, d.ID)
}

// Prendre LIVREE → PRISE. Lines found in the catalog are pre-checked for
// availability then decremented. A line whose product vanished between LIVREE
// and PRISE is recreated at the requested quantity and taken down to zero so
// the movement journal stays coherent.
func (s *DemandeExcService) Prendre(ctx context.Context, id, userID string) (*entity.DemandeExceptionnelle, error) {
	d, err := s.demandeExcRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkTransition(d, entity.DemandeExcStatutPrise); err != nil {
		return nil, err
	}

	from := d.Statut
	var touched []entity.Produit
	var produitIDs []string

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		type resolvedLigne struct {
			produitID string
			quantite  int
		}
		var resolved []resolvedLigne

		for _, ligne := range d.Lignes {
			var p entity.Produit
			err := tx.Where("LOWER(nom) = LOWER(?) AND LOWER(marque) = LOWER(?)", ligne.Nom, ligne.Marque).First(&p).Error
			if err == nil {
				if p.Quantite < ligne.Quantite {
					return fmt.Errorf("stock insuffisant pour le produit %s: demandé %d, disponible %d",
						p.Nom, ligne.Quantite, p.Quantite)
				}
				resolved = append(resolved, resolvedLigne{produitID: p.ID, quantite: ligne.Quantite})
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			// product disappeared since delivery: recreate it at the
			// requested quantity so the decrement below lands on zero
			var cat entity.Categorie
			err = tx.Where("LOWER(nom) = LOWER(?)", entity.CategorieNonCategorisee).First(&cat).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				cat = entity.Categorie{ID: uuid.New().String()[:32], Nom: entity.CategorieNonCategorisee}
				if err := tx.Create(&cat).Error; err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			p = entity.Produit{
				ID:          uuid.New().String()[:32],
				Nom:         ligne.Nom,
				Marque:      ligne.Marque,
				Description: ligne.Description,
				Quantite:    ligne.Quantite,
				CategorieID: cat.ID,
			}
			p.Statut = entity.StatutForQuantite(p.Quantite, p.QuantiteMinimale)
			if err := tx.Create(&p).Error; err != nil {
				return err
			}
			resolved = append(resolved, resolvedLigne{produitID: p.ID, quantite: ligne.Quantite})
		}

		for _, rl := range resolved {
			p, err := applyMouvement(tx, rl.produitID, -rl.quantite, "DEMANDE_EXCEPTIONNELLE", d.ID, userID)
			if err != nil {
				return err
			}
			touched = append(touched, *p)
			produitIDs = append(produitIDs, p.ID)
		}

		d.Statut = entity.DemandeExcStatutPrise
		return tx.Omit("Lignes", "Fournisseur").Save(d).Error
	})
	if err != nil {
		return nil, err
	}

	if err := appendRegistre(ctx, s.registreRepo, "demande_exceptionnelle", d.ID, d.Code, "prendre", from, d.Statut, userID, nil); err != nil {
		s.logger.Warn("Registre append failed", zap.String("demande_exc_id", d.ID), zap.Error(err))
	}
	s.notifDemandeur(ctx, d, fmt.Sprintf("Votre demande exceptionnelle %s a été servie", d.Code), entity.NotificationDemandePrise, produitIDs)

	for i := range touched {
		s.produitSvc.AlertIfLow(ctx, &touched[i])
	}

	return s.demandeExcRepo.FindByID(ctx, d.ID)
}
