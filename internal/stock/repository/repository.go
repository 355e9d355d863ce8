package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories aggregate, one instance per process
type Repositories struct {
	Produit      *ProduitRepository
	Categorie    *CategorieRepository
	Fournisseur  *FournisseurRepository
	Commande     *CommandeRepository
	Demande      *DemandeRepository
	DemandeExc   *DemandeExcRepository
	Notification *NotificationRepository
	Registre     *RegistreRepository
	Utilisateur  *UtilisateurRepository
}

// NewRepositories wires every repository onto the shared gorm handle
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Produit:      NewProduitRepository(db),
		Categorie:    NewCategorieRepository(db),
		Fournisseur:  NewFournisseurRepository(db),
		Commande:     NewCommandeRepository(db),
		Demande:      NewDemandeRepository(db),
		DemandeExc:   NewDemandeExcRepository(db),
		Notification: NewNotificationRepository(db),
		Registre:     NewRegistreRepository(db),
		Utilisateur:  NewUtilisateurRepository(db),
	}
}
