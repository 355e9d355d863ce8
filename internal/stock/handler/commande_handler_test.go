package handler

import (
	"net/http"
	"testing"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupCommandeTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	repos := repository.NewRepositories(db)
	notifSvc := service.NewNotificationService(repos.Notification, repos.Utilisateur, nil, logger)
	produitSvc := service.NewProduitService(repos.Produit, repos.Categorie, repos.Registre, notifSvc, logger, db)
	commandeSvc := service.NewCommandeService(repos.Commande, repos.Produit, repos.Fournisseur, repos.Registre, notifSvc, produitSvc, logger, db)

	cmdHandler := NewCommandeHandler(commandeSvc, nil)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/commandes", cmdHandler.Create)
	api.GET("/commandes/:id", cmdHandler.Get)
	api.POST("/commandes/:id/valider", cmdHandler.Valider)
	api.POST("/commandes/:id/livrer", cmdHandler.Livrer)
	api.POST("/commandes/:id/retourner", cmdHandler.Retourner)
	api.POST("/commandes/:id/annuler", cmdHandler.Annuler)

	return db, router
}

func creerCommande(t *testing.T, router *gin.Engine, token, fournisseurID, produitID string, quantite int) string {
	t.Helper()
	body := map[string]interface{}{
		"fournisseur_id": fournisseurID,
		"lignes": []map[string]interface{}{
			{"produit_id": produitID, "quantite": quantite},
		},
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["statut"] != entity.CommandeStatutEnCours {
		t.Fatalf("expected statut EN_COURS, got %v", data["statut"])
	}
	return data["id"].(string)
}

func TestCommandeLivraisonCrediteLeStock(t *testing.T) {
	db, router := setupCommandeTest(t)
	token := testutil.GenerateTestToken("gest-001", "Gestionnaire Test", "gest@test.fr", entity.RoleGestionnaire)

	cat := testutil.SeedCategorie(t, db, "Informatique")
	p := testutil.SeedProduit(t, db, "Clavier AZERTY", "Logitech", 2, 5, cat.ID)
	f := testutil.SeedFournisseur(t, db, "Bureautique SARL")

	cmdID := creerCommande(t, router, token, f.ID, p.ID, 10)

	// valider puis livrer
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/valider", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("valider: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/livrer", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("livrer: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated entity.Produit
	db.Where("id = ?", p.ID).First(&updated)
	if updated.Quantite != 12 {
		t.Fatalf("expected quantite 12 after delivery, got %d", updated.Quantite)
	}
	if updated.Statut != entity.ProduitStatutNormale {
		t.Fatalf("expected statut NORMALE, got %s", updated.Statut)
	}

	// un mouvement ENTREE journalisé
	var mouvements []entity.MouvementStock
	db.Where("produit_id = ? AND reference_type = ?", p.ID, "COMMANDE").Find(&mouvements)
	if len(mouvements) != 1 {
		t.Fatalf("expected 1 mouvement, got %d", len(mouvements))
	}
	if mouvements[0].Quantite != 10 {
		t.Fatalf("expected mouvement +10, got %d", mouvements[0].Quantite)
	}

	// livrer une commande déjà livrée est refusé
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/livrer", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("re-livrer: expected 400, got %d", w.Code)
	}
}

func TestCommandeAnnulationSansEffetStock(t *testing.T) {
	db, router := setupCommandeTest(t)
	token := testutil.GenerateTestToken("gest-001", "Gestionnaire Test", "gest@test.fr", entity.RoleGestionnaire)

	cat := testutil.SeedCategorie(t, db, "Informatique")
	p := testutil.SeedProduit(t, db, "Souris sans fil", "Logitech", 7, 3, cat.ID)
	f := testutil.SeedFournisseur(t, db, "Bureautique SARL")

	cmdID := creerCommande(t, router, token, f.ID, p.ID, 20)

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/annuler", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("annuler: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated entity.Produit
	db.Where("id = ?", p.ID).First(&updated)
	if updated.Quantite != 7 {
		t.Fatalf("expected quantite unchanged at 7, got %d", updated.Quantite)
	}

	// une commande annulée est terminale
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/livrer", nil, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("livrer après annulation: expected 400, got %d", w.Code)
	}
}

func TestCommandeRetourExigeUneRaison(t *testing.T) {
	db, router := setupCommandeTest(t)
	token := testutil.GenerateTestToken("gest-001", "Gestionnaire Test", "gest@test.fr", entity.RoleGestionnaire)

	cat := testutil.SeedCategorie(t, db, "Informatique")
	p := testutil.SeedProduit(t, db, "Écran 24 pouces", "Dell", 1, 2, cat.ID)
	f := testutil.SeedFournisseur(t, db, "Écrans et Cie")

	cmdID := creerCommande(t, router, token, f.ID, p.ID, 4)

	// sans raison: refus
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/retourner", map[string]interface{}{}, token)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("retour sans raison: expected 400, got %d", w.Code)
	}

	// avec raison: EN_RETOUR, stock intact
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/retourner",
		map[string]interface{}{"raison": "Colis endommagé"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("retour: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["statut"] != entity.CommandeStatutEnRetour {
		t.Fatalf("expected EN_RETOUR, got %v", data["statut"])
	}
	if data["raison_retour"] != "Colis endommagé" {
		t.Fatalf("expected raison persisted, got %v", data["raison_retour"])
	}

	var updated entity.Produit
	db.Where("id = ?", p.ID).First(&updated)
	if updated.Quantite != 1 {
		t.Fatalf("expected quantite unchanged at 1, got %d", updated.Quantite)
	}

	// re-livraison après retour crédite le stock
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/commandes/"+cmdID+"/livrer", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("livrer après retour: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	db.Where("id = ?", p.ID).First(&updated)
	if updated.Quantite != 5 {
		t.Fatalf("expected quantite 5 after re-delivery, got %d", updated.Quantite)
	}
}
