package jsonfile

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// compile-time check that *NotificationStore implements repository.NotificationRepository
var _ repository.NotificationRepository = (*NotificationStore)(nil)

// NotificationStore persists the notifications collection. The file holds
// ALL users' notifications in one array, newest first; per-user views are
// filtered at read time.
type NotificationStore struct {
	c *collection
}

// Create prepends the notification, so per-user listings come out newest
// first by construction. The store assigns the ID, the creation timestamp,
// and the initial unread state.
func (s *NotificationStore) Create(ctx context.Context, n *model.Notification) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	notifs, err := load[model.Notification](s.c)
	if err != nil {
		return err
	}

	n.ID = xid.New().String()
	n.Read = false
	n.CreatedAt = time.Now().UTC()
	if n.Data == nil {
		n.Data = map[string]any{}
	}

	notifs = append([]model.Notification{*n}, notifs...)
	return save(s.c, notifs)
}

// GetByID returns the notification with the given ID, or apperror.ErrNotFound.
func (s *NotificationStore) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	notifs, err := load[model.Notification](s.c)
	if err != nil {
		return nil, err
	}
	for i := range notifs {
		if notifs[i].ID == id {
			n := notifs[i]
			return &n, nil
		}
	}
	return nil, apperror.NotFound("notification", id)
}

// ListForUser returns the user's notifications in stored (newest-first) order.
func (s *NotificationStore) ListForUser(ctx context.Context, userID string) ([]model.Notification, error) {
	notifs, err := load[model.Notification](s.c)
	if err != nil {
		return nil, err
	}
	owned := make([]model.Notification, 0)
	for i := range notifs {
		if notifs[i].UserID == userID {
			owned = append(owned, notifs[i])
		}
	}
	return owned, nil
}

// Update replaces the stored record matching n.ID. In practice the only
// field that ever changes is Read.
func (s *NotificationStore) Update(ctx context.Context, n *model.Notification) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	notifs, err := load[model.Notification](s.c)
	if err != nil {
		return err
	}

	for i := range notifs {
		if notifs[i].ID == n.ID {
			notifs[i] = *n
			return save(s.c, notifs)
		}
	}
	return apperror.NotFound("notification", n.ID)
}

// MarkAllRead flips every unread notification owned by userID in one
// read-modify-write cycle. Running it twice is the same as running it once.
func (s *NotificationStore) MarkAllRead(ctx context.Context, userID string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	notifs, err := load[model.Notification](s.c)
	if err != nil {
		return err
	}

	changed := false
	for i := range notifs {
		if notifs[i].UserID == userID && !notifs[i].Read {
			notifs[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil // nothing to write
	}
	return save(s.c, notifs)
}
