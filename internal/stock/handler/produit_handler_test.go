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

func setupProduitTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	repos := repository.NewRepositories(db)
	notifSvc := service.NewNotificationService(repos.Notification, repos.Utilisateur, nil, logger)
	produitSvc := service.NewProduitService(repos.Produit, repos.Categorie, repos.Registre, notifSvc, logger, db)
	h := NewProduitHandler(produitSvc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/produits", h.List)
	api.GET("/produits/stock-faible", h.LowStock)
	api.GET("/produits/:id", h.Get)
	api.GET("/produits/:id/mouvements", h.Mouvements)
	api.POST("/produits", h.Create)
	api.PUT("/produits/:id", h.Update)

	return db, router
}

func TestProduitCreationDeriveLeStatut(t *testing.T) {
	db, router := setupProduitTest(t)
	token := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)

	cat := testutil.SeedCategorie(t, db, "Papeterie")

	cases := []struct {
		nom      string
		quantite int
		minimale int
		want     string
	}{
		{"Cahier petit carreaux", 20, 5, entity.ProduitStatutNormale},
		{"Surligneur jaune", 3, 5, entity.ProduitStatutCritique},
		{"Correcteur liquide", 0, 5, entity.ProduitStatutRupture},
	}

	for _, tc := range cases {
		body := map[string]interface{}{
			"nom":               tc.nom,
			"quantite":          tc.quantite,
			"quantite_minimale": tc.minimale,
			"categorie_id":      cat.ID,
		}
		w := testutil.DoRequest(router, http.MethodPost, "/api/v1/produits", body, token)
		if w.Code != http.StatusCreated {
			t.Fatalf("%s: expected 201, got %d: %s", tc.nom, w.Code, w.Body.String())
		}
		resp := testutil.ParseResponse(w)
		if statut := resp["data"].(map[string]interface{})["statut"]; statut != tc.want {
			t.Fatalf("%s: expected statut %s, got %v", tc.nom, tc.want, statut)
		}
	}

	// le filtre stock faible renvoie critique et rupture
	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/produits/stock-faible", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("stock-faible: expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	low := resp["data"].([]interface{})
	if len(low) != 2 {
		t.Fatalf("expected 2 low-stock products, got %d", len(low))
	}
}

func TestProduitAjustementManuelJournalise(t *testing.T) {
	db, router := setupProduitTest(t)
	token := testutil.GenerateTestToken("gest-001", "Gestionnaire", "gest@test.fr", entity.RoleGestionnaire)

	cat := testutil.SeedCategorie(t, db, "Papeterie")
	p := testutil.SeedProduit(t, db, "Enveloppes C5", "GPV", 10, 3, cat.ID)

	// ajustement à la baisse
	w := testutil.DoRequest(router, http.MethodPut, "/api/v1/produits/"+p.ID,
		map[string]interface{}{"quantite": 2}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["statut"] != entity.ProduitStatutCritique {
		t.Fatalf("expected CRITIQUE at quantite 2, got %v", data["statut"])
	}

	var mouvements []entity.MouvementStock
	db.Where("produit_id = ? AND type = ?", p.ID, entity.MouvementAjustement).Find(&mouvements)
	if len(mouvements) != 1 {
		t.Fatalf("expected 1 adjustment mouvement, got %d", len(mouvements))
	}
	if mouvements[0].Quantite != -8 {
		t.Fatalf("expected mouvement -8, got %d", mouvements[0].Quantite)
	}

	// modification sans changement de quantité: aucun mouvement
	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/produits/"+p.ID,
		map[string]interface{}{"description": "Boîte de 500"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("update description: expected 200, got %d", w.Code)
	}
	db.Where("produit_id = ?", p.ID).Find(&mouvements)
	if len(mouvements) != 1 {
		t.Fatalf("expected still 1 mouvement, got %d", len(mouvements))
	}
}
