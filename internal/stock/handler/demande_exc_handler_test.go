package handler

import (
	"net/http"
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

func setupDemandeExcTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	repos := repository.NewRepositories(db)
	notifSvc := service.NewNotificationService(repos.Notification, repos.Utilisateur, nil, logger)
	produitSvc := service.NewProduitService(repos.Produit, repos.Categorie, repos.Registre, notifSvc, logger, db)
	svc := service.NewDemandeExcService(repos.DemandeExc, repos.Produit, repos.Categorie, repos.Fournisseur, repos.Registre, notifSvc, produitSvc, logger, db)

	h := NewDemandeExcHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/demandes-exceptionnelles", middleware.RequireRole(entity.RoleDemandeur), h.Create)
	api.GET("/demandes-exceptionnelles/:id", h.Get)
	api.POST("/demandes-exceptionnelles/:id/accepter", middleware.RequireRole(entity.RoleGestionnaire), h.Accepter)
	api.POST("/demandes-exceptionnelles/:id/rejeter", middleware.RequireRole(entity.RoleGestionnaire), h.Rejeter)
	api.POST("/demandes-exceptionnelles/:id/commander", middleware.RequireRole(entity.RoleGestionnaire), h.Commander)
	api.POST("/demandes-exceptionnelles/:id/livrer", middleware.RequireRole(entity.RoleMagasinier), h.Livrer)
	api.POST("/demandes-exceptionnelles/:id/prendre", middleware.RequireRole(entity.RoleMagasinier), h.Prendre)

	return db, router
}

func TestDemandeExceptionnelleCycleComplet(t *testing.T) {
	db, router := setupDemandeExcTest(t)

	demandeur := testutil.SeedUtilisateur(t, db, "Diane Demandeur", "diane@test.fr", entity.RoleDemandeur)
	tokenDemandeur := testutil.GenerateTestToken(demandeur.ID, demandeur.Nom, demandeur.Email, entity.RoleDemandeur)
	tokenGest := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)
	tokenMag := testutil.GenerateTestToken("mag-001", "Magasinier", "mag@test.fr", entity.RoleMagasinier)

	fournisseur := testutil.SeedFournisseur(t, db, "Acme Fournitures")

	// création: produit absent du catalogue
	body := map[string]interface{}{
		"lignes": []map[string]interface{}{
			{"nom": "Widget X", "marque": "Acme", "quantite": 4},
		},
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles", body, tokenDemandeur)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	demandeID := resp["data"].(map[string]interface{})["id"].(string)

	// commander avant acceptation est refusé
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/commander",
		map[string]interface{}{"fournisseur_id": fournisseur.ID, "date_prevue": "2026-09-15"}, tokenGest)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("commander avant acceptation: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/accepter", nil, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("accepter: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// commander sans fournisseur est refusé
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/commander",
		map[string]interface{}{"date_prevue": "2026-09-15"}, tokenGest)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("commander sans fournisseur: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/commander",
		map[string]interface{}{"fournisseur_id": fournisseur.ID, "date_prevue": "2026-09-15"}, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("commander: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// livraison: le produit est matérialisé sous "Non catégorisé"
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/livrer", nil, tokenMag)
	if w.Code != http.StatusOK {
		t.Fatalf("livrer: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var p entity.Produit
	if err := db.Where("nom = ? AND marque = ?", "Widget X", "Acme").First(&p).Error; err != nil {
		t.Fatalf("expected Widget X to be materialized: %v", err)
	}
	if p.Quantite != 4 {
		t.Fatalf("expected quantite 4, got %d", p.Quantite)
	}
	var cat entity.Categorie
	db.Where("id = ?", p.CategorieID).First(&cat)
	if cat.Nom != entity.CategorieNonCategorisee {
		t.Fatalf("expected categorie %q, got %q", entity.CategorieNonCategorisee, cat.Nom)
	}

	// prise: le stock matérialisé est consommé jusqu'à zéro
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/prendre", nil, tokenMag)
	if w.Code != http.StatusOK {
		t.Fatalf("prendre: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	db.Where("id = ?", p.ID).First(&p)
	if p.Quantite != 0 {
		t.Fatalf("expected quantite 0 after take, got %d", p.Quantite)
	}
	if p.Statut != entity.ProduitStatutRupture {
		t.Fatalf("expected statut RUPTURE, got %s", p.Statut)
	}

	// mouvement journal: une entrée puis une sortie
	var mouvements []entity.MouvementStock
	db.Where("produit_id = ?", p.ID).Order("created_at").Find(&mouvements)
	if len(mouvements) != 2 {
		t.Fatalf("expected 2 mouvements, got %d", len(mouvements))
	}
	if mouvements[0].Quantite != 4 || mouvements[1].Quantite != -4 {
		t.Fatalf("expected +4 then -4, got %d then %d", mouvements[0].Quantite, mouvements[1].Quantite)
	}

	var d entity.DemandeExceptionnelle
	db.Where("id = ?", demandeID).First(&d)
	if d.Statut != entity.DemandeExcStatutPrise {
		t.Fatalf("expected statut PRISE, got %s", d.Statut)
	}
}

func TestDemandeExceptionnelleRejetSansRaison(t *testing.T) {
	db, router := setupDemandeExcTest(t)

	demandeur := testutil.SeedUtilisateur(t, db, "Eric Demandeur", "eric@test.fr", entity.RoleDemandeur)
	tokenDemandeur := testutil.GenerateTestToken(demandeur.ID, demandeur.Nom, demandeur.Email, entity.RoleDemandeur)
	tokenGest := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)

	body := map[string]interface{}{
		"lignes": []map[string]interface{}{
			{"nom": "Pièce rare", "marque": "Inconnu", "quantite": 1},
		},
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles", body, tokenDemandeur)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	demandeID := resp["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/rejeter",
		map[string]interface{}{}, tokenGest)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rejet sans raison: expected 400, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/rejeter",
		map[string]interface{}{"raison": "Article non conforme à la politique d'achat"}, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("rejet: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var d entity.DemandeExceptionnelle
	db.Where("id = ?", demandeID).First(&d)
	if d.Statut != entity.DemandeExcStatutRejetee {
		t.Fatalf("expected REJETEE, got %s", d.Statut)
	}
	if d.RaisonRefus != "Article non conforme à la politique d'achat" {
		t.Fatalf("expected raison persisted, got %q", d.RaisonRefus)
	}
}

func TestDemandeExceptionnelleLivraisonProduitExistant(t *testing.T) {
	db, router := setupDemandeExcTest(t)

	demandeur := testutil.SeedUtilisateur(t, db, "Fanny Demandeur", "fanny@test.fr", entity.RoleDemandeur)
	tokenDemandeur := testutil.GenerateTestToken(demandeur.ID, demandeur.Nom, demandeur.Email, entity.RoleDemandeur)
	tokenGest := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)
	tokenMag := testutil.GenerateTestToken("mag-001", "Magasinier", "mag@test.fr", entity.RoleMagasinier)

	fournisseur := testutil.SeedFournisseur(t, db, "Acme Fournitures")
	cat := testutil.SeedCategorie(t, db, "Outillage")
	existant := testutil.SeedProduit(t, db, "Perceuse", "Bosch", 6, 2, cat.ID)

	body := map[string]interface{}{
		"lignes": []map[string]interface{}{
			{"nom": "Perceuse", "marque": "Bosch", "quantite": 2},
		},
	}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles", body, tokenDemandeur)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	demandeID := resp["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/accepter", nil, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("accepter: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/commander",
		map[string]interface{}{"fournisseur_id": fournisseur.ID, "date_prevue": "2026-10-01"}, tokenGest)
	if w.Code != http.StatusOK {
		t.Fatalf("commander: expected 200, got %d", w.Code)
	}

	// la livraison ne touche pas un produit déjà catalogué
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/livrer", nil, tokenMag)
	if w.Code != http.StatusOK {
		t.Fatalf("livrer: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var p entity.Produit
	db.Where("id = ?", existant.ID).First(&p)
	if p.Quantite != 6 {
		t.Fatalf("expected quantite unchanged at 6 after delivery, got %d", p.Quantite)
	}

	// la prise décrémente le stock existant
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/demandes-exceptionnelles/"+demandeID+"/prendre", nil, tokenMag)
	if w.Code != http.StatusOK {
		t.Fatalf("prendre: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	db.Where("id = ?", existant.ID).First(&p)
	if p.Quantite != 4 {
		t.Fatalf("expected quantite 4 after take, got %d", p.Quantite)
	}
}
