package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// FactureService invoice storage for purchase orders, backed by MinIO.
// The commande keeps the object key in FactureID.
type FactureService struct {
	commandeRepo *repository.CommandeRepository
	registreRepo *repository.RegistreRepository
	minioClient  *minio.Client
	bucketName   string
	logger       *zap.Logger
}

func NewFactureService(commandeRepo *repository.CommandeRepository, registreRepo *repository.RegistreRepository, minioClient *minio.Client, bucketName string, logger *zap.Logger) *FactureService {
	return &FactureService{
		commandeRepo: commandeRepo,
		registreRepo: registreRepo,
		minioClient:  minioClient,
		bucketName:   bucketName,
		logger:       logger,
	}
}

// Upload stores the invoice and binds it to the commande
func (s *FactureService) Upload(ctx context.Context, commandeID, userID, fileName, contentType string, reader io.Reader, fileSize int64) (*entity.Commande, error) {
	cmd, err := s.commandeRepo.FindByID(ctx, commandeID)
	if err != nil {
		return nil, err
	}
	if s.minioClient == nil {
		return nil, fmt.Errorf("stockage de fichiers non configuré")
	}

	objectName := fmt.Sprintf("factures/%s/%s%s", cmd.ID, uuid.New().String()[:8], filepath.Ext(fileName))

	_, err = s.minioClient.PutObject(ctx, s.bucketName, objectName, reader, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("téléversement de la facture: %w", err)
	}

	cmd.FactureID = objectName
	if err := s.commandeRepo.Update(ctx, cmd); err != nil {
		return nil, fmt.Errorf("mise à jour de la commande: %w", err)
	}

	if err := appendRegistre(ctx, s.registreRepo, "commande", cmd.ID, cmd.Code, "facture_upload", "", "", userID,
		entity.JSONB{"facture_id": objectName, "nom_fichier": fileName}); err != nil {
		s.logger.Warn("Registre append failed", zap.String("commande_id", cmd.ID), zap.Error(err))
	}

	return cmd, nil
}

// Download streams the invoice bound to a commande
func (s *FactureService) Download(ctx context.Context, commandeID string) (io.ReadCloser, string, error) {
	cmd, err := s.commandeRepo.FindByID(ctx, commandeID)
	if err != nil {
		return nil, "", err
	}
	if cmd.FactureID == "" {
		return nil, "", repository.ErrNotFound
	}
	if s.minioClient == nil {
		return nil, "", fmt.Errorf("stockage de fichiers non configuré")
	}

	if _, err := s.minioClient.StatObject(ctx, s.bucketName, cmd.FactureID, minio.StatObjectOptions{}); err != nil {
		var respErr minio.ErrorResponse
		if errors.As(err, &respErr) && respErr.Code == "NoSuchKey" {
			return nil, "", repository.ErrNotFound
		}
		return nil, "", fmt.Errorf("vérification de la facture: %w", err)
	}

	object, err := s.minioClient.GetObject(ctx, s.bucketName, cmd.FactureID, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("lecture de la facture: %w", err)
	}
	return object, filepath.Base(cmd.FactureID), nil
}

// PresignedURL short-lived direct download link
func (s *FactureService) PresignedURL(ctx context.Context, commandeID string, expiry time.Duration) (string, error) {
	cmd, err := s.commandeRepo.FindByID(ctx, commandeID)
	if err != nil {
		return "", err
	}
	if cmd.FactureID == "" {
		return "", repository.ErrNotFound
	}
	if s.minioClient == nil {
		return "", fmt.Errorf("stockage de fichiers non configuré")
	}

	u, err := s.minioClient.PresignedGetObject(ctx, s.bucketName, cmd.FactureID, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("génération du lien de téléchargement: %w", err)
	}
	return u.String(), nil
}
