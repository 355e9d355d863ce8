package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/middleware"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	TestSchema = "test_stock"
	JWTSecret  = "gestion-stock-test-jwt-secret"
)

// projectRoot returns the project root directory by looking for go.mod
func projectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

func loadEnv() {
	root := projectRoot()
	if root != "" {
		godotenv.Load(filepath.Join(root, ".env"))
	}
}

// SetupTestDB opens a throwaway schema so tests run isolated and clean up
// after themselves.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	loadEnv()

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "stock")
	password := getEnv("DB_PASSWORD", "stock123")
	dbname := getEnv("DB_NAME", "gestion_stock")

	baseDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	schemaName := fmt.Sprintf("%s_%d", TestSchema, time.Now().UnixNano()%1000000)

	setupDB, err := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to database for schema setup: %v", err)
	}
	setupDB.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schemaName))
	sqlSetup, _ := setupDB.DB()
	sqlSetup.Close()

	testDSN := fmt.Sprintf("%s search_path=%s", baseDSN, schemaName)
	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	err = db.AutoMigrate(
		&entity.Utilisateur{},
		&entity.Categorie{},
		&entity.Produit{},
		&entity.MouvementStock{},
		&entity.Fournisseur{},
		&entity.Commande{},
		&entity.LigneCommande{},
		&entity.Demande{},
		&entity.LigneDemande{},
		&entity.DemandeExceptionnelle{},
		&entity.LigneDemandeExceptionnelle{},
		&entity.Notification{},
		&entity.RegistreEntry{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test tables: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		cleanDB, cleanErr := gorm.Open(postgres.Open(baseDSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if cleanErr == nil {
			cleanDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schemaName))
			sqlClean, _ := cleanDB.DB()
			if sqlClean != nil {
				sqlClean.Close()
			}
		}
	})

	return db
}

// SetupRouter creates a gin test router
func SetupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())
	return r
}

// AuthGroup creates an API group guarded by the JWT middleware
func AuthGroup(r *gin.Engine, path string) *gin.RouterGroup {
	return r.Group(path, middleware.JWTAuth(JWTSecret))
}

// GenerateTestToken creates a valid token carrying a role
func GenerateTestToken(userID, nom, email, role string) string {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: userID,
		Nom:    nom,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "gestion-stock-test",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(JWTSecret))
	return tokenString
}

// DoRequest executes an HTTP request against the test router
func DoRequest(r *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ParseResponse parses the JSON response body
func ParseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}

// SeedCategorie creates a category row
func SeedCategorie(t *testing.T, db *gorm.DB, nom string) *entity.Categorie {
	t.Helper()
	c := &entity.Categorie{
		ID:  uuid.New().String()[:32],
		Nom: nom,
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("Failed to seed categorie: %v", err)
	}
	return c
}

// SeedProduit creates a product row with a derived statut
func SeedProduit(t *testing.T, db *gorm.DB, nom, marque string, quantite, quantiteMinimale int, categorieID string) *entity.Produit {
	t.Helper()
	p := &entity.Produit{
		ID:               uuid.New().String()[:32],
		Nom:              nom,
		Marque:           marque,
		Quantite:         quantite,
		QuantiteMinimale: quantiteMinimale,
		Statut:           entity.StatutForQuantite(quantite, quantiteMinimale),
		CategorieID:      categorieID,
	}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("Failed to seed produit: %v", err)
	}
	return p
}

// SeedFournisseur creates a supplier row
func SeedFournisseur(t *testing.T, db *gorm.DB, nom string) *entity.Fournisseur {
	t.Helper()
	f := &entity.Fournisseur{
		ID:     uuid.New().String()[:32],
		Code:   fmt.Sprintf("FRS-TEST-%d", time.Now().UnixNano()%100000),
		Nom:    nom,
		Statut: entity.FournisseurStatutActif,
	}
	if err := db.Create(f).Error; err != nil {
		t.Fatalf("Failed to seed fournisseur: %v", err)
	}
	return f
}

// SeedUtilisateur creates a user row
func SeedUtilisateur(t *testing.T, db *gorm.DB, nom, email, role string) *entity.Utilisateur {
	t.Helper()
	u := &entity.Utilisateur{
		ID:           uuid.New().String()[:32],
		Email:        email,
		Nom:          nom,
		PasswordHash: "x",
		Role:         role,
		Statut:       entity.UtilisateurStatutActif,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("Failed to seed utilisateur: %v", err)
	}
	return u
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
