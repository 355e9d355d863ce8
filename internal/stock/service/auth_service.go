package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benalimarwa/gestion-stock-sub003/internal/config"
	"github.com/benalimarwa/gestion-stock-sub003/internal/middleware"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials wrong email or password, kept indistinguishable on
// purpose
var ErrInvalidCredentials = errors.New("email ou mot de passe incorrect")

// AuthService login, token issuance and refresh. Refresh tokens live in
// redis keyed by token id so a logout revokes them immediately.
type AuthService struct {
	utilisateurRepo *repository.UtilisateurRepository
	rdb             *redis.Client
	cfg             config.JWTConfig
	logger          *zap.Logger
}

func NewAuthService(utilisateurRepo *repository.UtilisateurRepository, rdb *redis.Client, cfg config.JWTConfig, logger *zap.Logger) *AuthService {
	return &AuthService{utilisateurRepo: utilisateurRepo, rdb: rdb, cfg: cfg, logger: logger}
}

func refreshKey(tokenID string) string {
	return "auth:refresh:" + tokenID
}

// LoginRequest credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPair issued tokens plus the authenticated user
type TokenPair struct {
	AccessToken  string              `json:"access_token"`
	RefreshToken string              `json:"refresh_token"`
	ExpiresIn    int64               `json:"expires_in"`
	Utilisateur  *entity.Utilisateur `json:"utilisateur"`
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*TokenPair, error) {
	u, err := s.utilisateurRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Statut != entity.UtilisateurStatutActif {
		return nil, fmt.Errorf("compte désactivé")
	}
	return s.issueTokens(ctx, u)
}

func (s *AuthService) issueTokens(ctx context.Context, u *entity.Utilisateur) (*TokenPair, error) {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: u.ID,
		Nom:    u.Nom,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenExpire)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("signature du token: %w", err)
	}

	refreshToken := uuid.New().String()
	if err := s.rdb.Set(ctx, refreshKey(refreshToken), u.ID, s.cfg.RefreshTokenExpire).Err(); err != nil {
		return nil, fmt.Errorf("stockage du refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTokenExpire.Seconds()),
		Utilisateur:  u,
	}, nil
}

// RefreshRequest refresh payload
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// Refresh exchanges a live refresh token for a new pair. The old token is
// rotated out.
func (s *AuthService) Refresh(ctx context.Context, req *RefreshRequest) (*TokenPair, error) {
	userID, err := s.rdb.Get(ctx, refreshKey(req.RefreshToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("refresh token invalide ou expiré")
		}
		return nil, err
	}

	u, err := s.utilisateurRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Statut != entity.UtilisateurStatutActif {
		return nil, fmt.Errorf("compte désactivé")
	}

	if err := s.rdb.Del(ctx, refreshKey(req.RefreshToken)).Err(); err != nil {
		s.logger.Warn("Refresh token rotation failed", zap.Error(err))
	}
	return s.issueTokens(ctx, u)
}

// Logout revokes the refresh token. A missing token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.rdb.Del(ctx, refreshKey(refreshToken)).Err()
}

// CreateUtilisateurRequest user creation, admin only
type CreateUtilisateurRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Nom      string `json:"nom" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role" binding:"required,oneof=ADMIN GESTIONNAIRE MAGASINIER DEMANDEUR"`
}

func (s *AuthService) CreateUtilisateur(ctx context.Context, req *CreateUtilisateurRequest) (*entity.Utilisateur, error) {
	if _, err := s.utilisateurRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("un utilisateur avec l'email %s existe déjà", req.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hachage du mot de passe: %w", err)
	}

	u := &entity.Utilisateur{
		ID:           uuid.New().String()[:32],
		Email:        req.Email,
		Nom:          req.Nom,
		PasswordHash: string(hash),
		Role:         req.Role,
		Statut:       entity.UtilisateurStatutActif,
	}
	if err := s.utilisateurRepo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("création de l'utilisateur: %w", err)
	}
	return u, nil
}

// ListUtilisateurs admin listing
func (s *AuthService) ListUtilisateurs(ctx context.Context, page, pageSize int) ([]entity.Utilisateur, int64, error) {
	return s.utilisateurRepo.FindAll(ctx, page, pageSize)
}

// SetStatut activates or deactivates an account
func (s *AuthService) SetStatut(ctx context.Context, id, statut string) (*entity.Utilisateur, error) {
	if statut != entity.UtilisateurStatutActif && statut != entity.UtilisateurStatutInactif {
		return nil, fmt.Errorf("statut utilisateur invalide: %s", statut)
	}
	u, err := s.utilisateurRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Statut = statut
	if err := s.utilisateurRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
