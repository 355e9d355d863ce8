package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/benalimarwa/gestion-stock-sub003/internal/middleware"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/testutil"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDemandeTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	repos := repository.NewRepositories(db)
	notifSvc := service.NewNotificationService(repos.Notification, repos.Utilisateur, nil, logger)
	produitSvc := service.NewProduitService(repos.Produit, repos.Categorie, repos.Registre, notifSvc, logger, db)
	demandeSvc := service.NewDemandeService(repos.Demande, repos.Produit, repos.Registre, notifSvc, produitSvc, logger, db)

	h := NewDemandeHandler(demandeSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/demandes", middleware.RequireRole(entity.RoleDemandeur), h.Create)
	api.GET("/demandes/:id", h.Get)
	api.POST("/demandes/:id/approuver", middleware.RequireRole(entity.RoleGestionnaire), h.Approuver)
	api.POST("/demandes/:id/rejeter", middleware.RequireRole(entity.RoleGestionnaire), h.Rejeter)
	api.POST("/demandes/:id/prendre", middleware.RequireRole(entity.RoleMagasinier), h.Prendre)

	return db, router
}

func creerDemande(t *testing.T, router *gin.Engine, token string, lignes []map[string]interface{}) string {
	t.Helper()
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes",
		map[string]interface{}{"lignes": lignes}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})["id"].(string)
}

func TestDemandePriseDecrementeLeStock(t *testing.T) {
	db, router := setupDemandeTest(t)

	demandeur := testutil.SeedUtilisateur(t, db, "Alice Demandeur", "alice@test.fr", entity.RoleDemandeur)
	tokenDemandeur := testutil.GenerateTestToken(demandeur.ID, demandeur.Nom, demandeur.Email, entity.RoleDemandeur)
	tokenGest := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)
	tokenMag := testutil.GenerateTestToken("mag-001", "Magasinier", "mag@test.fr", entity.RoleMagasinier)

	cat := testutil.SeedCategorie(t, db, "Fournitures")
	p := testutil.SeedProduit(t, db, "Ramette A4", "Clairefontaine", 10, 4, cat.ID)

	demandeID := creerDemande(t, router, tokenDemandeur, []map[string]interface{}{
		{"produit_id": p.ID, "quantite": 7},
	})

	// un demandeur ne peut pas approuver
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/approuver", nil, tokenDemandeur)
	if w.Code != http.StatusForbidden {
		t.Fatalf("approuver par demandeur: expected 403, got %d", w.Code)
	}

	// prendre avant approbation est refusé
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/prendre", nil, tokenMag)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("prendre avant approbation: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/approuver", nil, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("approuver: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["data"].(map[string]interface{})["date_approbation"] == nil {
		t.Fatal("expected date_approbation to be set")
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/prendre", nil, tokenMag)
	if w.Code != http.StatusOK {
		t.Fatalf("prendre: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 10 - 7 = 3, sous le seuil de 4 donc CRITIQUE
	var updated entity.Produit
	db.Where("id = ?", p.ID).First(&updated)
	if updated.Quantite != 3 {
		t.Fatalf("expected quantite 3, got %d", updated.Quantite)
	}
	if updated.Statut != entity.ProduitStatutCritique {
		t.Fatalf("expected statut CRITIQUE, got %s", updated.Statut)
	}

	// exactement une notification pour le demandeur
	var notifs []entity.Notification
	db.Where("user_id = ? AND type = ?", demandeur.ID, entity.NotificationDemandePrise).Find(&notifs)
	if len(notifs) != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", len(notifs))
	}
}

func TestDemandePriseInsuffisanteAnnuleTout(t *testing.T) {
	db, router := setupDemandeTest(t)

	demandeur := testutil.SeedUtilisateur(t, db, "Bob Demandeur", "bob@test.fr", entity.RoleDemandeur)
	tokenDemandeur := testutil.GenerateTestToken(demandeur.ID, demandeur.Nom, demandeur.Email, entity.RoleDemandeur)
	tokenGest := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)
	tokenMag := testutil.GenerateTestToken("mag-001", "Magasinier", "mag@test.fr", entity.RoleMagasinier)

	cat := testutil.SeedCategorie(t, db, "Fournitures")
	abondant := testutil.SeedProduit(t, db, "Stylo bille", "Bic", 50, 10, cat.ID)
	rare := testutil.SeedProduit(t, db, "Cartouche toner", "HP", 2, 1, cat.ID)

	demandeID := creerDemande(t, router, tokenDemandeur, []map[string]interface{}{
		{"produit_id": abondant.ID, "quantite": 5},
		{"produit_id": rare.ID, "quantite": 3},
	})

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/approuver", nil, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("approuver: expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/prendre", nil, tokenMag)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("prendre: expected 400, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	message := resp["message"].(string)
	if want := "Cartouche toner"; !strings.Contains(message, want) {
		t.Fatalf("expected error naming %q, got %q", want, message)
	}

	// aucune ligne n'a été servie, même la ligne suffisante
	var a, r entity.Produit
	db.Where("id = ?", abondant.ID).First(&a)
	db.Where("id = ?", rare.ID).First(&r)
	if a.Quantite != 50 || r.Quantite != 2 {
		t.Fatalf("expected stock untouched (50, 2), got (%d, %d)", a.Quantite, r.Quantite)
	}

	// la demande reste APPROUVEE
	var d entity.Demande
	db.Where("id = ?", demandeID).First(&d)
	if d.Statut != entity.DemandeStatutApprouvee {
		t.Fatalf("expected statut APPROUVEE, got %s", d.Statut)
	}
}

func TestDemandeRejetExigeUneRaison(t *testing.T) {
	db, router := setupDemandeTest(t)

	demandeur := testutil.SeedUtilisateur(t, db, "Chloé Demandeur", "chloe@test.fr", entity.RoleDemandeur)
	tokenDemandeur := testutil.GenerateTestToken(demandeur.ID, demandeur.Nom, demandeur.Email, entity.RoleDemandeur)
	tokenGest := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)

	cat := testutil.SeedCategorie(t, db, "Fournitures")
	p := testutil.SeedProduit(t, db, "Agrafeuse", "Maped", 6, 2, cat.ID)

	demandeID := creerDemande(t, router, tokenDemandeur, []map[string]interface{}{
		{"produit_id": p.ID, "quantite": 1},
	})

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/rejeter", map[string]interface{}{}, tokenGest)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rejet sans raison: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes/"+demandeID+"/rejeter",
		map[string]interface{}{"raison": "Budget épuisé pour ce trimestre"}, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("rejet: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["raison_refus"] != "Budget épuisé pour ce trimestre" {
		t.Fatalf("expected raison persisted verbatim, got %v", data["raison_refus"])
	}
}

func TestDemandeVisibiliteParDemandeur(t *testing.T) {
	db, router := setupDemandeTest(t)

	alice := testutil.SeedUtilisateur(t, db, "Alice", "alice2@test.fr", entity.RoleDemandeur)
	bob := testutil.SeedUtilisateur(t, db, "Bob", "bob2@test.fr", entity.RoleDemandeur)
	tokenAlice := testutil.GenerateTestToken(alice.ID, alice.Nom, alice.Email, entity.RoleDemandeur)
	tokenBob := testutil.GenerateTestToken(bob.ID, bob.Nom, bob.Email, entity.RoleDemandeur)

	cat := testutil.SeedCategorie(t, db, "Fournitures")
	p := testutil.SeedProduit(t, db, "Classeur", "Exacompta", 9, 3, cat.ID)

	demandeID := creerDemande(t, router, tokenAlice, []map[string]interface{}{
		{"produit_id": p.ID, "quantite": 2},
	})

	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/demandes/"+demandeID, nil, tokenBob)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for another demandeur, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/demandes/"+demandeID, nil, tokenAlice)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for owner, got %d", w.Code)
	}
}
