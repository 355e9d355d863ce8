package entity

import "time"

// Statuts demande
const (
	DemandeStatutEnAttente = "EN_ATTENTE"
	DemandeStatutApprouvee = "APPROUVEE"
	DemandeStatutRejetee   = "REJETEE"
	DemandeStatutPrise     = "PRISE"
)

// ValidDemandeTransitions requisition state table. PRISE is the fulfillment
// transition where stock is decremented.
var ValidDemandeTransitions = map[string][]string{
	DemandeStatutEnAttente: {DemandeStatutApprouvee, DemandeStatutRejetee},
	DemandeStatutApprouvee: {DemandeStatutPrise},
}

// Demande internal requisition submitted by a demandeur
type Demande struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	Code          string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	DemandeurID   string     `json:"demandeur_id" gorm:"size:32;not null;index"`
	Statut        string     `json:"statut" gorm:"size:20;not null;default:EN_ATTENTE"`
	DateApprobation *time.Time `json:"date_approbation"`
	RaisonRefus   string     `json:"raison_refus" gorm:"size:500"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Lignes []LigneDemande `json:"lignes,omitempty" gorm:"foreignKey:DemandeID"`
}

func (Demande) TableName() string {
	return "demandes"
}

// LigneDemande requested product line
type LigneDemande struct {
	ID        string    `json:"id" gorm:"primaryKey;size:32"`
	DemandeID string    `json:"demande_id" gorm:"size:32;not null;index"`
	ProduitID string    `json:"produit_id" gorm:"size:32;not null"`
	Quantite  int       `json:"quantite" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	Produit *Produit `json:"produit,omitempty" gorm:"foreignKey:ProduitID"`
}

func (LigneDemande) TableName() string {
	return "lignes_demande"
}
