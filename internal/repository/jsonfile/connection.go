package jsonfile

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// compile-time check that *ConnectionStore implements repository.ConnectionRepository
var _ repository.ConnectionRepository = (*ConnectionStore)(nil)

// ConnectionStore persists the connections collection.
type ConnectionStore struct {
	c *collection
}

// Create appends a new connection record. The store assigns the ID and
// timestamps; pair uniqueness is enforced by the service before calling.
func (s *ConnectionStore) Create(ctx context.Context, conn *model.Connection) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	conns, err := load[model.Connection](s.c)
	if err != nil {
		return err
	}

	conn.ID = xid.New().String()
	now := time.Now().UTC()
	conn.CreatedAt = now
	conn.UpdatedAt = now

	conns = append(conns, *conn)
	return save(s.c, conns)
}

// GetByID returns the connection with the given ID, or apperror.ErrNotFound.
func (s *ConnectionStore) GetByID(ctx context.Context, id string) (*model.Connection, error) {
	conns, err := load[model.Connection](s.c)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		if conns[i].ID == id {
			c := conns[i]
			return &c, nil
		}
	}
	return nil, apperror.NotFound("connection", id)
}

// GetByPair looks up the record for the unordered user pair, in any status.
func (s *ConnectionStore) GetByPair(ctx context.Context, user1ID, user2ID string) (*model.Connection, error) {
	conns, err := load[model.Connection](s.c)
	if err != nil {
		return nil, err
	}
	for i := range conns {
		c := conns[i]
		if (c.User1ID == user1ID && c.User2ID == user2ID) ||
			(c.User1ID == user2ID && c.User2ID == user1ID) {
			return &c, nil
		}
	}
	return nil, apperror.NotFound("connection", fmt.Sprintf("%s-%s", user1ID, user2ID))
}

// ListForUser returns every connection record involving the user, in any
// status. Filtering to accepted is the service's job.
func (s *ConnectionStore) ListForUser(ctx context.Context, userID string) ([]model.Connection, error) {
	conns, err := load[model.Connection](s.c)
	if err != nil {
		return nil, err
	}
	involved := make([]model.Connection, 0)
	for i := range conns {
		if conns[i].Involves(userID) {
			involved = append(involved, conns[i])
		}
	}
	return involved, nil
}

// Update replaces the stored record matching conn.ID and bumps UpdatedAt.
func (s *ConnectionStore) Update(ctx context.Context, conn *model.Connection) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	conns, err := load[model.Connection](s.c)
	if err != nil {
		return err
	}

	for i := range conns {
		if conns[i].ID == conn.ID {
			conn.UpdatedAt = time.Now().UTC()
			conns[i] = *conn
			return save(s.c, conns)
		}
	}
	return apperror.NotFound("connection", conn.ID)
}

// Delete removes the connection with the given ID.
//
// The not-found check happens under the collection mutex, so of two racing
// deletes for the same ID exactly one succeeds and the other gets
// ErrNotFound — never a double removal.
func (s *ConnectionStore) Delete(ctx context.Context, id string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	conns, err := load[model.Connection](s.c)
	if err != nil {
		return err
	}

	for i := range conns {
		if conns[i].ID == id {
			conns = append(conns[:i], conns[i+1:]...)
			return save(s.c, conns)
		}
	}
	return apperror.NotFound("connection", id)
}
