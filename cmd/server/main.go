package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/benalimarwa/gestion-stock-sub003/internal/config"
	"github.com/benalimarwa/gestion-stock-sub003/internal/middleware"
	"github.com/benalimarwa/gestion-stock-sub003/internal/shared/mailer"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/handler"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting gestion-stock service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := autoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate schema", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			zapLogger.Warn("MinIO unavailable, invoice storage disabled", zap.Error(err))
			minioClient = nil
		}
	}

	mail := mailer.New(cfg.SMTP)

	repos := repository.NewRepositories(db)

	notifSvc := service.NewNotificationService(repos.Notification, repos.Utilisateur, mail, zapLogger)
	produitSvc := service.NewProduitService(repos.Produit, repos.Categorie, repos.Registre, notifSvc, zapLogger, db)
	categorieSvc := service.NewCategorieService(repos.Categorie, repos.Produit)
	fournisseurSvc := service.NewFournisseurService(repos.Fournisseur, repos.Commande)
	commandeSvc := service.NewCommandeService(repos.Commande, repos.Produit, repos.Fournisseur, repos.Registre, notifSvc, produitSvc, zapLogger, db)
	demandeSvc := service.NewDemandeService(repos.Demande, repos.Produit, repos.Registre, notifSvc, produitSvc, zapLogger, db)
	demandeExcSvc := service.NewDemandeExcService(repos.DemandeExc, repos.Produit, repos.Categorie, repos.Fournisseur, repos.Registre, notifSvc, produitSvc, zapLogger, db)
	authSvc := service.NewAuthService(repos.Utilisateur, rdb, cfg.JWT, zapLogger)
	exportSvc := service.NewExportService(repos.Fournisseur, repos.Commande)
	factureSvc := service.NewFactureService(repos.Commande, repos.Registre, minioClient, cfg.MinIO.Bucket, zapLogger)
	dashboardSvc := service.NewDashboardService(db)

	handlers := handler.NewHandlers(
		authSvc, produitSvc, categorieSvc, fournisseurSvc,
		commandeSvc, demandeSvc, demandeExcSvc,
		notifSvc, dashboardSvc, exportSvc, factureSvc,
		repos.Registre,
	)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
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
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authorized.GET("/dashboard", h.Dashboard.Stats)

			// Catalogue
			produits := authorized.Group("/produits")
			{
				produits.GET("", h.Produit.List)
				produits.GET("/stock-faible", h.Produit.LowStock)
				produits.GET("/:id", h.Produit.Get)
				produits.GET("/:id/mouvements", h.Produit.Mouvements)
				produits.POST("", middleware.RequireRole(entity.RoleGestionnaire, entity.RoleMagasinier), h.Produit.Create)
				produits.PUT("/:id", middleware.RequireRole(entity.RoleGestionnaire, entity.RoleMagasinier), h.Produit.Update)
				produits.DELETE("/:id", middleware.RequireRole(entity.RoleGestionnaire), h.Produit.Delete)
			}

			categories := authorized.Group("/categories")
			{
				categories.GET("", h.Categorie.List)
				categories.GET("/:id", h.Categorie.Get)
				categories.POST("", middleware.RequireRole(entity.RoleGestionnaire), h.Categorie.Create)
				categories.PUT("/:id", middleware.RequireRole(entity.RoleGestionnaire), h.Categorie.Update)
				categories.DELETE("/:id", middleware.RequireRole(entity.RoleGestionnaire), h.Categorie.Delete)
			}

			fournisseurs := authorized.Group("/fournisseurs")
			fournisseurs.Use(middleware.RequireRole(entity.RoleGestionnaire))
			{
				fournisseurs.GET("", h.Fournisseur.List)
				fournisseurs.GET("/:id", h.Fournisseur.Get)
				fournisseurs.GET("/:id/commandes", h.Fournisseur.Commandes)
				fournisseurs.GET("/:id/commandes/export", h.Fournisseur.ExportCommandes)
				fournisseurs.POST("", h.Fournisseur.Create)
				fournisseurs.PUT("/:id", h.Fournisseur.Update)
				fournisseurs.DELETE("/:id", h.Fournisseur.Delete)
			}

			// Commandes fournisseur
			commandes := authorized.Group("/commandes")
			{
				commandes.GET("", middleware.RequireRole(entity.RoleGestionnaire, entity.RoleMagasinier), h.Commande.List)
				commandes.GET("/:id", middleware.RequireRole(entity.RoleGestionnaire, entity.RoleMagasinier), h.Commande.Get)
				commandes.POST("", middleware.RequireRole(entity.RoleGestionnaire), h.Commande.Create)
				commandes.POST("/:id/valider", middleware.RequireRole(entity.RoleGestionnaire), h.Commande.Valider)
				commandes.POST("/:id/livrer", middleware.RequireRole(entity.RoleMagasinier, entity.RoleGestionnaire), h.Commande.Livrer)
				commandes.POST("/:id/retourner", middleware.RequireRole(entity.RoleMagasinier, entity.RoleGestionnaire), h.Commande.Retourner)
				commandes.POST("/:id/annuler", middleware.RequireRole(entity.RoleGestionnaire), h.Commande.Annuler)
				commandes.POST("/:id/facture", middleware.RequireRole(entity.RoleGestionnaire), h.Commande.UploadFacture)
				commandes.GET("/:id/facture", middleware.RequireRole(entity.RoleGestionnaire, entity.RoleMagasinier), h.Commande.DownloadFacture)
				commandes.GET("/:id/facture/url", middleware.RequireRole(entity.RoleGestionnaire, entity.RoleMagasinier), h.Commande.FactureURL)
			}

			// Demandes internes
			demandes := authorized.Group("/demandes")
			{
				demandes.GET("", h.Demande.List)
				demandes.GET("/:id", h.Demande.Get)
				demandes.POST("", middleware.RequireRole(entity.RoleDemandeur), h.Demande.Create)
				demandes.POST("/:id/approuver", middleware.RequireRole(entity.RoleGestionnaire), h.Demande.Approuver)
				demandes.POST("/:id/rejeter", middleware.RequireRole(entity.RoleGestionnaire), h.Demande.Rejeter)
				demandes.POST("/:id/prendre", middleware.RequireRole(entity.RoleMagasinier), h.Demande.Prendre)
			}

			// Demandes exceptionnelles
			demandesExc := authorized.Group("/demandes-exceptionnelles")
			{
				demandesExc.GET("", h.DemandeExc.List)
				demandesExc.GET("/:id", h.DemandeExc.Get)
				demandesExc.POST("", middleware.RequireRole(entity.RoleDemandeur), h.DemandeExc.Create)
				demandesExc.POST("/:id/accepter", middleware.RequireRole(entity.RoleGestionnaire), h.DemandeExc.Accepter)
				demandesExc.POST("/:id/rejeter", middleware.RequireRole(entity.RoleGestionnaire), h.DemandeExc.Rejeter)
				demandesExc.POST("/:id/commander", middleware.RequireRole(entity.RoleGestionnaire), h.DemandeExc.Commander)
				demandesExc.POST("/:id/livrer", middleware.RequireRole(entity.RoleMagasinier, entity.RoleGestionnaire), h.DemandeExc.Livrer)
				demandesExc.POST("/:id/prendre", middleware.RequireRole(entity.RoleMagasinier), h.DemandeExc.Prendre)
			}

			// Notifications et registre
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/non-lues", h.Notification.CountUnread)
				notifications.POST("/:id/lu", h.Notification.MarquerLu)
			}
			authorized.GET("/registre", middleware.RequireRole(entity.RoleGestionnaire), h.Notification.Registre)

			// Administration
			utilisateurs := authorized.Group("/utilisateurs")
			utilisateurs.Use(middleware.RequireRole(entity.RoleAdmin))
			{
				utilisateurs.GET("", h.Auth.ListUtilisateurs)
				utilisateurs.POST("", h.Auth.CreateUtilisateur)
				utilisateurs.PATCH("/:id/statut", h.Auth.SetStatut)
			}
		}
	}
}
