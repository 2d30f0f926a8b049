package service

import (
	"context"
	"log/slog"

	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/realtime"
)

// Pusher delivers a notification over one live session. Implemented by
// realtime.Hub; faked in tests.
type Pusher interface {
	Push(sessionID string, n *model.Notification) error
}

// Notifier is the dispatch entry point the domain services (posts,
// connections) depend on. Implemented by Dispatcher; faked in tests.
type Notifier interface {
	Dispatch(ctx context.Context, userID string, typ model.NotificationType, message string, data map[string]any) (*model.Notification, error)
}

var _ Notifier = (*Dispatcher)(nil)

// Dispatcher turns a domain event into a logged — and, when the recipient is
// connected, immediately delivered — notification.
//
// DELIVERY CONTRACT:
//  1. The log append happens first and is the durable side effect. If it
//     fails, the dispatch fails and nothing is pushed.
//  2. The live push is best-effort, at most once, to exactly the session the
//     presence registry names. A failed push is logged and swallowed: the
//     entry is already in the log, so the recipient catches up via polling
//     or the reconnect replay.
//
// There is no retry and no acknowledgment; "at least once" applies to the
// persisted state, not the socket.
type Dispatcher struct {
	log      *NotificationService
	presence *realtime.Presence
	pusher   Pusher
	logger   *slog.Logger
}

func NewDispatcher(log *NotificationService, presence *realtime.Presence, pusher Pusher, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		log:      log,
		presence: presence,
		pusher:   pusher,
		logger:   logger,
	}
}

// Dispatch appends to the notification log, then attempts immediate
// delivery. The returned notification is the persisted record; its Read
// state is always false.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, typ model.NotificationType, message string, data map[string]any) (*model.Notification, error) {
	n, err := d.log.Append(ctx, userID, typ, message, data)
	if err != nil {
		return nil, err
	}

	sessionID, ok := d.presence.Lookup(userID)
	if !ok {
		// Recipient is offline; they discover the entry on their next poll.
		return n, nil
	}

	if err := d.pusher.Push(sessionID, n); err != nil {
		// Push failure is silent towards the caller — the append already
		// succeeded, which is the only guarantee we make.
		d.logger.Warn("live push failed, recipient will poll",
			slog.String("userID", userID),
			slog.String("sessionID", sessionID),
			slog.String("error", err.Error()),
		)
		return n, nil
	}

	d.logger.Info("notification pushed",
		slog.String("userID", userID),
		slog.String("type", string(typ)),
	)
	return n, nil
}
