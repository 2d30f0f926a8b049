package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// ConnectionService drives the request/accept/reject lifecycle between users
// and the notifications each transition produces.
type ConnectionService struct {
	connections repository.ConnectionRepository
	users       repository.UserRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewConnectionService(
	connections repository.ConnectionRepository,
	users repository.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *ConnectionService {
	return &ConnectionService{
		connections: connections,
		users:       users,
		notifier:    notifier,
		logger:      logger,
	}
}

// Request creates a pending connection from requester to target and notifies
// the target.
//
// Order matters: the target is validated and the duplicate check runs BEFORE
// any record is written, so a failed request leaves no trace and sends no
// notification.
func (s *ConnectionService) Request(ctx context.Context, requesterID, targetID string) (*model.Connection, error) {
	if targetID == "" {
		return nil, apperror.ValidationFailed("userId", "target user id is required")
	}
	if targetID == requesterID {
		return nil, apperror.SelfConnection()
	}

	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	if _, err := s.connections.GetByPair(ctx, requesterID, targetID); err == nil {
		return nil, apperror.DuplicateConnection(requesterID, targetID)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking for existing connection: %w", err)
	}

	conn := &model.Connection{
		User1ID:     requesterID,
		User2ID:     targetID,
		RequesterID: requesterID,
		Status:      model.ConnectionPending,
	}
	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("creating connection: %w", err)
	}

	if _, err := s.notifier.Dispatch(ctx, targetID, model.NotificationNewConnection,
		requester.Name+" sent you a connection request",
		map[string]any{
			"connectionId": conn.ID,
			"userId":       requester.ID,
			"userName":     requester.Name,
			"userImage":    requester.ProfileImage,
		},
	); err != nil {
		s.logger.Error("failed to record connection notification",
			slog.String("connectionID", conn.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("connection requested",
		slog.String("connectionID", conn.ID),
		slog.String("requesterID", requesterID),
		slog.String("targetID", targetID),
	)
	return conn, nil
}

// Accept moves a pending connection to accepted and notifies the requester.
// Only the target of the request may accept it.
func (s *ConnectionService) Accept(ctx context.Context, connectionID, actingUserID string) (*model.Connection, error) {
	return s.resolve(ctx, connectionID, actingUserID, model.ConnectionAccepted)
}

// Reject moves a pending connection to rejected and notifies the requester.
func (s *ConnectionService) Reject(ctx context.Context, connectionID, actingUserID string) (*model.Connection, error) {
	return s.resolve(ctx, connectionID, actingUserID, model.ConnectionRejected)
}

func (s *ConnectionService) resolve(ctx context.Context, connectionID, actingUserID string, status model.ConnectionStatus) (*model.Connection, error) {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(actingUserID) {
		return nil, apperror.Forbidden("not a party to this connection")
	}
	if conn.RequesterID == actingUserID {
		return nil, apperror.Forbidden("cannot act on your own request")
	}
	if conn.Status != model.ConnectionPending {
		return nil, apperror.Conflict("connection request already resolved")
	}

	conn.Status = status
	if err := s.connections.Update(ctx, conn); err != nil {
		return nil, fmt.Errorf("updating connection %s: %w", connectionID, err)
	}

	actor, err := s.users.GetByID(ctx, actingUserID)
	if err != nil {
		return nil, err
	}

	typ := model.NotificationConnectionAccepted
	message := actor.Name + " accepted your connection request"
	if status == model.ConnectionRejected {
		typ = model.NotificationConnectionRejected
		message = actor.Name + " declined your connection request"
	}
	if _, err := s.notifier.Dispatch(ctx, conn.RequesterID, typ, message,
		map[string]any{
			"connectionId": conn.ID,
			"userId":       actor.ID,
			"userName":     actor.Name,
			"userImage":    actor.ProfileImage,
		},
	); err != nil {
		s.logger.Error("failed to record connection notification",
			slog.String("connectionID", conn.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("connection resolved",
		slog.String("connectionID", conn.ID),
		slog.String("status", string(status)),
	)
	return conn, nil
}

// Remove deletes a connection the user is a party to. No notification is
// sent for removals.
//
// Two parties removing the same connection at once both pass the ownership
// check, but the store's delete is atomic: one caller wins, the other gets
// NotFound. That is the intended outcome, not an error to retry.
func (s *ConnectionService) Remove(ctx context.Context, connectionID, actingUserID string) error {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if !conn.Involves(actingUserID) {
		return apperror.Forbidden("not a party to this connection")
	}
	if err := s.connections.Delete(ctx, connectionID); err != nil {
		return err
	}

	s.logger.Info("connection removed",
		slog.String("connectionID", connectionID),
		slog.String("userID", actingUserID),
	)
	return nil
}

// ListForUser returns the user's accepted connections, joined against the
// live user records. A connection whose other party no longer resolves is
// skipped rather than failing the whole listing.
func (s *ConnectionService) ListForUser(ctx context.Context, userID string) ([]model.ConnectionView, error) {
	conns, err := s.connections.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing connections for user %s: %w", userID, err)
	}

	views := []model.ConnectionView{}
	for _, c := range conns {
		if c.Status != model.ConnectionAccepted {
			continue
		}
		other, err := s.users.GetByID(ctx, c.OtherUser(userID))
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving connection %s: %w", c.ID, err)
		}
		views = append(views, model.ConnectionView{
			ID:        c.ID,
			User:      other.Summary(),
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

// ListPendingForUser returns incoming requests awaiting the user's decision:
// pending connections where someone else is the requester.
func (s *ConnectionService) ListPendingForUser(ctx context.Context, userID string) ([]model.ConnectionView, error) {
	conns, err := s.connections.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing connections for user %s: %w", userID, err)
	}

	views := []model.ConnectionView{}
	for _, c := range conns {
		if c.Status != model.ConnectionPending || c.RequesterID == userID {
			continue
		}
		requester, err := s.users.GetByID(ctx, c.RequesterID)
		if err != nil {
			if errors.Is(err, apperror.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving connection %s: %w", c.ID, err)
		}
		views = append(views, model.ConnectionView{
			ID:        c.ID,
			User:      requester.Summary(),
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}
