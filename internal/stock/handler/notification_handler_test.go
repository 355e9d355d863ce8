package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/testutil"
	"go.uber.org/zap"
)

func TestNotificationAppartientASonDestinataire(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	repos := repository.NewRepositories(db)
	notifSvc := service.NewNotificationService(repos.Notification, repos.Utilisateur, nil, logger)
	h := NewNotificationHandler(notifSvc, repos.Registre)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/notifications", h.List)
	api.GET("/notifications/non-lues", h.CountUnread)
	api.POST("/notifications/:id/lu", h.MarquerLu)

	alice := testutil.SeedUtilisateur(t, db, "Alice", "alice3@test.fr", entity.RoleDemandeur)
	bob := testutil.SeedUtilisateur(t, db, "Bob", "bob3@test.fr", entity.RoleDemandeur)
	tokenAlice := testutil.GenerateTestToken(alice.ID, alice.Nom, alice.Email, entity.RoleDemandeur)
	tokenBob := testutil.GenerateTestToken(bob.ID, bob.Nom, bob.Email, entity.RoleDemandeur)

	if err := notifSvc.Notify(context.Background(), alice.ID, "Votre demande DEM-2026-0001 a été approuvée", entity.NotificationDemandeApprouvee, nil); err != nil {
		t.Fatalf("notify: %v", err)
	}

	// alice voit sa notification, non lue
	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/notifications", nil, tokenAlice)
	if w.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", w.Code)
	}
	resp := testutil.ParseResponse(w)
	items := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(items))
	}
	notifID := items[0].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/notifications/non-lues", nil, tokenAlice)
	resp = testutil.ParseResponse(w)
	if n := resp["data"].(map[string]interface{})["non_lues"].(float64); n != 1 {
		t.Fatalf("expected 1 unread, got %v", n)
	}

	// bob ne voit rien et ne peut pas marquer la notification d'alice
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/notifications", nil, tokenBob)
	resp = testutil.ParseResponse(w)
	if items := resp["data"].(map[string]interface{})["items"]; items != nil {
		if l := items.([]interface{}); len(l) != 0 {
			t.Fatalf("expected no notifications for bob, got %d", len(l))
		}
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/notifications/"+notifID+"/lu", nil, tokenBob)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", w.Code)
	}

	// alice marque comme lue
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/notifications/"+notifID+"/lu", nil, tokenAlice)
	if w.Code != http.StatusOK {
		t.Fatalf("marquer lu: expected 200, got %d", w.Code)
	}

	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/notifications/non-lues", nil, tokenAlice)
	resp = testutil.ParseResponse(w)
	if n := resp["data"].(map[string]interface{})["non_lues"].(float64); n != 0 {
		t.Fatalf("expected 0 unread after read, got %v", n)
	}
}
