package service

import (
	"fmt"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// applyMouvement adjusts one product's quantity inside tx, recomputes the
// derived statut and journals the movement. delta > 0 credits stock, delta < 0
// consumes it. Callers are expected to have verified availability beforehand;
// the negative-quantity check here is a last-resort guard.
func applyMouvement(tx *gorm.DB, produitID string, delta int, refType, refID, userID string) (*entity.Produit, error) {
	var p entity.Produit
	if err := tx.Where("id = ?", produitID).First(&p).Error; err != nil {
		return nil, fmt.Errorf("produit %s introuvable: %w", produitID, err)
	}

	newQty := p.Quantite + delta
	if newQty < 0 {
		return nil, fmt.Errorf("stock insuffisant pour le produit %s: demandé %d, disponible %d", p.Nom, -delta, p.Quantite)
	}

	p.Quantite = newQty
	p.Statut = entity.StatutForQuantite(p.Quantite, p.QuantiteMinimale)
	p.UpdatedAt = time.Now()
	if err := tx.Save(&p).Error; err != nil {
		return nil, fmt.Errorf("mise à jour du produit %s: %w", p.Nom, err)
	}

	typ := entity.MouvementEntree
	if delta < 0 {
		typ = entity.MouvementSortie
	}
	if refType == "AJUSTEMENT" {
		typ = entity.MouvementAjustement
	}
	mouvement := &entity.MouvementStock{
		ID:            uuid.New().String()[:32],
		ProduitID:     p.ID,
		Type:          typ,
		Quantite:      delta,
		ReferenceType: refType,
		ReferenceID:   refID,
		EffectuePar:   userID,
	}
	if err := tx.Create(mouvement).Error; err != nil {
		return nil, fmt.Errorf("journal de stock: %w", err)
	}

	return &p, nil
}
