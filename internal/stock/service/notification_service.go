package service

import (
	"context"
	"fmt"

	"github.com/benalimarwa/gestion-stock-sub003/internal/shared/mailer"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/entity"
	"github.com/benalimarwa/gestion-stock-sub003/internal/stock/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotificationForbidden returned when a user touches a notification they
// do not own
var ErrNotificationForbidden = fmt.Errorf("notification d'un autre utilisateur")

// NotificationService append-only notification sink plus best-effort email
// side channel
type NotificationService struct {
	notifRepo *repository.NotificationRepository
	userRepo  *repository.UtilisateurRepository
	mail      *mailer.Mailer
	logger    *zap.Logger
}

func NewNotificationService(
	notifRepo *repository.NotificationRepository,
	userRepo *repository.UtilisateurRepository,
	mail *mailer.Mailer,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		mail:      mail,
		logger:    logger,
	}
}

// Notify appends one notification row for a user
func (s *NotificationService) Notify(ctx context.Context, userID, message, typ string, produitIDs []string) error {
	n := &entity.Notification{
		ID:      uuid.New().String()[:32],
		UserID:  userID,
		Message: message,
		Type:    typ,
	}
	if len(produitIDs) > 0 {
		ids := make([]interface{}, len(produitIDs))
		for i, id := range produitIDs {
			ids[i] = id
		}
		n.ProduitIDs = entity.JSONB{"ids": ids}
	}
	return s.notifRepo.Create(ctx, n)
}

// NotifyRole fans a notification out to every active holder of a role
func (s *NotificationService) NotifyRole(ctx context.Context, role, message, typ string, produitIDs []string) {
	users, err := s.userRepo.FindByRole(ctx, role)
	if err != nil {
		s.logger.Warn("Fan-out notification failed", zap.String("role", role), zap.Error(err))
		return
	}
	for _, u := range users {
		if err := s.Notify(ctx, u.ID, message, typ, produitIDs); err != nil {
			s.logger.Warn("Notification append failed", zap.String("user_id", u.ID), zap.Error(err))
		}
	}
}

// ListForUser own notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, userID string, page, pageSize int) ([]entity.Notification, int64, error) {
	return s.notifRepo.FindByUser(ctx, userID, page, pageSize)
}

// CountUnread unread count for the badge
func (s *NotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}

// MarquerLu toggles the read flag, owner only
func (s *NotificationService) MarquerLu(ctx context.Context, id, userID string) (*entity.Notification, error) {
	n, err := s.notifRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotificationForbidden
	}
	n.Lu = true
	if err := s.notifRepo.Update(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// EmailUser best-effort email to one user. Never fails the caller.
func (s *NotificationService) EmailUser(ctx context.Context, userID, subject, htmlBody string) {
	if s.mail == nil || !s.mail.Enabled() {
		return
	}
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || u.Email == "" {
		return
	}
	res, err := s.mail.Send(ctx, mailer.Message{
		Recipients: []string{u.Email},
		Subject:    subject,
		HTMLBody:   htmlBody,
	})
	if err != nil {
		s.logger.Warn("Email delivery failed",
			zap.String("user_id", userID),
			zap.Strings("rejected", res.Rejected),
			zap.Error(err))
	}
}

// EmailRole best-effort email to every active holder of a role
func (s *NotificationService) EmailRole(ctx context.Context, role, subject, htmlBody string) {
	if s.mail == nil || !s.mail.Enabled() {
		return
	}
	users, err := s.userRepo.FindByRole(ctx, role)
	if err != nil {
		return
	}
	var recipients []string
	for _, u := range users {
		if u.Email != "" {
			recipients = append(recipients, u.Email)
		}
	}
	if len(recipients) == 0 {
		return
	}
	if _, err := s.mail.Send(ctx, mailer.Message{
		Recipients: recipients,
		Subject:    subject,
		HTMLBody:   htmlBody,
	}); err != nil {
		s.logger.Warn("Email fan-out failed", zap.String("role", role), zap.Error(err))
	}
}
