package entity

import "time"

// Types de notification
const (
	NotificationCommandeLivree  = "COMMANDE_LIVREE"
	NotificationCommandeRetour  = "COMMANDE_RETOUR"
	NotificationCommandeAnnulee = "COMMANDE_ANNULEE"
	NotificationDemandeApprouvee = "DEMANDE_APPROUVEE"
	NotificationDemandeRejetee   = "DEMANDE_REJETEE"
	NotificationDemandeCommandee = "DEMANDE_COMMANDEE"
	NotificationDemandePrise     = "DEMANDE_PRISE"
	NotificationStockCritique    = "STOCK_CRITIQUE"
	NotificationStockRupture     = "STOCK_RUPTURE"
)

// Notification user-facing message, append-only apart from the read toggle
type Notification struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	UserID     string    `json:"user_id" gorm:"size:32;not null;index"`
	Message    string    `json:"message" gorm:"type:text;not null"`
	Type       string    `json:"type" gorm:"size:50;not null"`
	ProduitIDs JSONB     `json:"produit_ids" gorm:"type:jsonb"` // {"ids": [...]}
	Lu         bool      `json:"lu" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

// RegistreEntry append-only audit row, one per lifecycle action
type RegistreEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	EntityType string    `json:"entity_type" gorm:"size:50;not null;index:idx_registre_entity"` // commande/demande/demande_exceptionnelle/produit
	EntityID   string    `json:"entity_id" gorm:"size:32;not null;index:idx_registre_entity"`
	EntityCode string    `json:"entity_code" gorm:"size:50"`
	Action     string    `json:"action" gorm:"size:50;not null"`
	FromStatut string    `json:"from_statut" gorm:"size:20"`
	ToStatut   string    `json:"to_statut" gorm:"size:20"`
	Details    JSONB     `json:"details" gorm:"type:jsonb"`
	ActeurID   string    `json:"acteur_id" gorm:"size:32"`
	CreatedAt  time.Time `json:"created_at"`
}

func (RegistreEntry) TableName() string {
	return "registre"
}
