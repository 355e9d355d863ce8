package entity

import "time"

// Rôles utilisateur
const (
	RoleAdmin        = "ADMIN"
	RoleGestionnaire = "GESTIONNAIRE"
	RoleMagasinier   = "MAGASINIER"
	RoleDemandeur    = "DEMANDEUR"
)

// Statuts utilisateur
const (
	UtilisateurStatutActif   = "ACTIF"
	UtilisateurStatutInactif = "INACTIF"
)

// Utilisateur application user with a single role
type Utilisateur struct {
	ID           string    `json:"id" gorm:"primaryKey;size:32"`
	Email        string    `json:"email" gorm:"size:200;uniqueIndex;not null"`
	Nom          string    `json:"nom" gorm:"size:100;not null"`
	PasswordHash string    `json:"-" gorm:"size:100;not null"`
	Role         string    `json:"role" gorm:"size:20;not null;default:DEMANDEUR"`
	Statut       string    `json:"statut" gorm:"size:20;not null;default:ACTIF"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Utilisateur) TableName() string {
	return "utilisateurs"
}
