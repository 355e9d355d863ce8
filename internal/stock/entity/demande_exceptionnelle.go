package entity

import "time"

// Statuts demande exceptionnelle
const (
	DemandeExcStatutEnAttente = "EN_ATTENTE"
	DemandeExcStatutAcceptee  = "ACCEPTEE"
	DemandeExcStatutRejetee   = "REJETEE"
	DemandeExcStatutCommandee = "COMMANDEE"
	DemandeExcStatutLivree    = "LIVREE"
	DemandeExcStatutPrise     = "PRISE"
)

// ValidDemandeExcTransitions exceptional-requisition state table.
// COMMANDEE requires a supplier and expected date; LIVREE materializes
// catalog rows; PRISE consumes them.
var ValidDemandeExcTransitions = map[string][]string{
	DemandeExcStatutEnAttente: {DemandeExcStatutAcceptee, DemandeExcStatutRejetee},
	DemandeExcStatutAcceptee:  {DemandeExcStatutCommandee},
	DemandeExcStatutCommandee: {DemandeExcStatutLivree},
	DemandeExcStatutLivree:    {DemandeExcStatutPrise},
}

// DemandeExceptionnelle requisition for items not yet in the catalog
type DemandeExceptionnelle struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	Code          string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	DemandeurID   string     `json:"demandeur_id" gorm:"size:32;not null;index"`
	Statut        string     `json:"statut" gorm:"size:20;not null;default:EN_ATTENTE"`
	FournisseurID *string    `json:"fournisseur_id" gorm:"size:32"` // assigned when ordered
	DatePrevue    *time.Time `json:"date_prevue"`
	DateLivraison *time.Time `json:"date_livraison"`
	RaisonRefus   string     `json:"raison_refus" gorm:"size:500"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Fournisseur *Fournisseur                  `json:"fournisseur,omitempty" gorm:"foreignKey:FournisseurID"`
	Lignes      []LigneDemandeExceptionnelle  `json:"lignes,omitempty" gorm:"foreignKey:DemandeID"`
}

func (DemandeExceptionnelle) TableName() string {
	return "demandes_exceptionnelles"
}

// LigneDemandeExceptionnelle requested line described by name/brand, not a
// catalog reference
type LigneDemandeExceptionnelle struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	DemandeID   string    `json:"demande_id" gorm:"size:32;not null;index"`
	Nom         string    `json:"nom" gorm:"size:200;not null"`
	Marque      string    `json:"marque" gorm:"size:100"`
	Description string    `json:"description" gorm:"type:text"`
	Quantite    int       `json:"quantite" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (LigneDemandeExceptionnelle) TableName() string {
	return "lignes_demande_exceptionnelle"
}
