package entity

import "time"

// Statuts produit, derived from quantite vs quantite_minimale, never set directly
const (
	ProduitStatutNormale  = "NORMALE"
	ProduitStatutCritique = "CRITIQUE"
	ProduitStatutRupture  = "RUPTURE"
)

// StatutForQuantite computes the derived stock status for a product.
// quantite <= 0 means out of stock, below or at the minimum threshold means
// critical, anything else is normal.
func StatutForQuantite(quantite, quantiteMinimale int) string {
	switch {
	case quantite <= 0:
		return ProduitStatutRupture
	case quantite <= quantiteMinimale:
		return ProduitStatutCritique
	default:
		return ProduitStatutNormale
	}
}

// Produit catalog entry with quantity on hand and low-stock threshold
type Produit struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	Nom              string    `json:"nom" gorm:"size:200;not null;index:idx_produits_nom_marque"`
	Marque           string    `json:"marque" gorm:"size:100;index:idx_produits_nom_marque"`
	Description      string    `json:"description" gorm:"type:text"`
	Quantite         int       `json:"quantite" gorm:"not null;default:0"`
	QuantiteMinimale int       `json:"quantite_minimale" gorm:"not null;default:0"`
	Statut           string    `json:"statut" gorm:"size:20;not null;default:NORMALE"`
	CategorieID      string    `json:"categorie_id" gorm:"size:32;not null;index"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Categorie *Categorie `json:"categorie,omitempty" gorm:"foreignKey:CategorieID"`
}

func (Produit) TableName() string {
	return "produits"
}

// Categorie product category
type Categorie struct {
	ID          string    `json:"id" gorm:"primaryKey;size:32"`
	Nom         string    `json:"nom" gorm:"size:100;uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Categorie) TableName() string {
	return "categories"
}

// CategorieNonCategorisee is the default category under which exceptional
// requisition lines are materialized when no catalog match exists.
const CategorieNonCategorisee = "Non catégorisé"

// Types de mouvement de stock
const (
	MouvementEntree     = "ENTREE"
	MouvementSortie     = "SORTIE"
	MouvementAjustement = "AJUSTEMENT"
)

// MouvementStock journal row, one per quantity change, written in the same
// transaction as the change itself
type MouvementStock struct {
	ID            string    `json:"id" gorm:"primaryKey;size:32"`
	ProduitID     string    `json:"produit_id" gorm:"size:32;not null;index"`
	Type          string    `json:"type" gorm:"size:20;not null"`
	Quantite      int       `json:"quantite" gorm:"not null"` // positive in, negative out
	ReferenceType string    `json:"reference_type" gorm:"size:50"` // COMMANDE, DEMANDE, DEMANDE_EXCEPTIONNELLE, AJUSTEMENT
	ReferenceID   string    `json:"reference_id" gorm:"size:32"`
	EffectuePar   string    `json:"effectue_par" gorm:"size:32"`
	CreatedAt     time.Time `json:"created_at"`
}

func (MouvementStock) TableName() string {
	return "mouvements_stock"
}
