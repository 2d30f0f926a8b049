// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services validate, enforce
// ownership rules, and orchestrate repositories; repositories read and write
// records. Services accept primitives and return models plus apperror
// values — they know nothing about HTTP or the storage format.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// NotificationService owns the per-user notification log: append-only
// entries whose only mutation is the one-way unread → read transition.
type NotificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// Append writes a new unread notification to the log. The repository
// assigns the id and timestamp and prepends, so listings are newest-first.
func (s *NotificationService) Append(ctx context.Context, userID string, typ model.NotificationType, message string, data map[string]any) (*model.Notification, error) {
	if userID == "" {
		return nil, apperror.ValidationFailed("userId", "recipient user ID is required")
	}

	n := &model.Notification{
		UserID:  userID,
		Type:    typ,
		Message: message,
		Data:    data,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to append notification",
			slog.String("userID", userID),
			slog.String("type", string(typ)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("appending notification: %w", err)
	}
	return n, nil
}

// ListForUser returns the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	notifs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notifs, nil
}

// ListUnread returns only the unread entries, newest first. Used by the
// realtime hub to replay missed notifications when a client reconnects.
func (s *NotificationService) ListUnread(ctx context.Context, userID string) ([]model.Notification, error) {
	notifs, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing unread notifications: %w", err)
	}
	unread := make([]model.Notification, 0)
	for _, n := range notifs {
		if !n.Read {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

// UnreadCount returns how many of the user's notifications are unread.
// Always equals the number of read==false entries ListForUser would return.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	unread, err := s.ListUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

// MarkRead transitions one notification to read. Only the recipient may do
// this; anyone else gets ErrForbidden. Marking an already-read notification
// again is harmless.
func (s *NotificationService) MarkRead(ctx context.Context, id, actingUserID string) (*model.Notification, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "notification ID is required")
	}

	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.UserID != actingUserID {
		return nil, apperror.Forbidden("notification belongs to another user")
	}

	if n.Read {
		return n, nil // already terminal, nothing to write
	}

	n.Read = true
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("marking notification %s read: %w", id, err)
	}
	return n, nil
}

// MarkAllRead marks every notification owned by userID as read.
// Idempotent: a second call is a no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("marking all notifications read: %w", err)
	}
	return nil
}
