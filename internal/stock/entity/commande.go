package entity

import "time"

// Statuts commande
const (
	CommandeStatutEnCours = "EN_COURS"
	CommandeStatutValide  = "VALIDE"
	CommandeStatutLivree  = "LIVREE"
	CommandeStatutEnRetour = "EN_RETOUR"
	CommandeStatutAnnulee = "ANNULEE"
)

// ValidCommandeTransitions authoritative purchase-order state table.
// EN_RETOUR → LIVREE handles return-to-stock: products are credited as if
// newly delivered.
var ValidCommandeTransitions = map[string][]string{
	CommandeStatutEnCours: {CommandeStatutValide, CommandeStatutLivree, CommandeStatutEnRetour, CommandeStatutAnnulee},
	CommandeStatutValide:  {CommandeStatutLivree, CommandeStatutEnRetour, CommandeStatutAnnulee},
	CommandeStatutEnRetour: {CommandeStatutLivree},
}

// TransitionAllowed reports whether a table permits moving from one statut to
// another. A statut absent from the table is terminal.
func TransitionAllowed(table map[string][]string, from, to string) bool {
	for _, s := range table[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Commande purchase order placed with a supplier
type Commande struct {
	ID            string     `json:"id" gorm:"primaryKey;size:32"`
	Code          string     `json:"code" gorm:"size:32;uniqueIndex;not null"`
	FournisseurID string     `json:"fournisseur_id" gorm:"size:32;not null;index"`
	Statut        string     `json:"statut" gorm:"size:20;not null;default:EN_COURS"`
	DatePrevue    *time.Time `json:"date_prevue"`
	DateLivraison *time.Time `json:"date_livraison"`
	RaisonRetour  string     `json:"raison_retour" gorm:"size:500"`
	FactureID     string     `json:"facture_id" gorm:"size:100"` // MinIO object key of the invoice
	CreePar       string     `json:"cree_par" gorm:"size:32"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Fournisseur *Fournisseur   `json:"fournisseur,omitempty" gorm:"foreignKey:FournisseurID"`
	Lignes      []LigneCommande `json:"lignes,omitempty" gorm:"foreignKey:CommandeID"`
}

func (Commande) TableName() string {
	return "commandes"
}

// LigneCommande ordered product line
type LigneCommande struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	CommandeID string    `json:"commande_id" gorm:"size:32;not null;index"`
	ProduitID  string    `json:"produit_id" gorm:"size:32;not null"`
	Quantite   int       `json:"quantite" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`

	Produit *Produit `json:"produit,omitempty" gorm:"foreignKey:ProduitID"`
}

func (LigneCommande) TableName() string {
	return "lignes_commande"
}
