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

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore persists the users collection.
type UserStore struct {
	c *collection
}

// storedUser is the on-disk shape of a user. model.User tags PasswordHash
// with `json:"-"` so it can never leak into an API response, but the same
// tag would also drop the hash from users.json. The outer field shadows the
// embedded one for encoding/json, so the file keeps the hash while every
// handler that serializes model.User still omits it.
type storedUser struct {
	model.User
	PasswordHash string `json:"passwordHash,omitempty"`
}

func toStored(u model.User) storedUser {
	return storedUser{User: u, PasswordHash: u.PasswordHash}
}

func (su storedUser) toModel() model.User {
	u := su.User
	u.PasswordHash = su.PasswordHash
	return u
}

// Create appends a new user. The store assigns the ID and timestamps;
// uniqueness of username/email is the service layer's responsibility.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	users, err := load[storedUser](s.c)
	if err != nil {
		return err
	}

	user.ID = xid.New().String()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	users = append(users, toStored(*user))
	return save(s.c, users)
}

// GetByID returns the user with the given ID, or apperror.ErrNotFound.
func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	users, err := load[storedUser](s.c)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			u := users[i].toModel()
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", id)
}

// GetByUsername returns the user with the given username, or ErrNotFound.
func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	users, err := load[storedUser](s.c)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			u := users[i].toModel()
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

// GetByEmail returns the user with the given email, or ErrNotFound.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	users, err := load[storedUser](s.c)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Email == email {
			u := users[i].toModel()
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

// GetByGitHubID returns the user created from the given GitHub account,
// or ErrNotFound. Only OAuth-created users carry a GitHub ID.
func (s *UserStore) GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error) {
	users, err := load[storedUser](s.c)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].GitHubID != 0 && users[i].GitHubID == githubID {
			u := users[i].toModel()
			return &u, nil
		}
	}
	return nil, apperror.NotFound("user", fmt.Sprintf("github:%d", githubID))
}

// List returns all users in insertion (registration) order.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	stored, err := load[storedUser](s.c)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, len(stored))
	for i := range stored {
		users[i] = stored[i].toModel()
	}
	return users, nil
}

// Update replaces the stored record matching user.ID.
func (s *UserStore) Update(ctx context.Context, user *model.User) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	users, err := load[storedUser](s.c)
	if err != nil {
		return err
	}

	for i := range users {
		if users[i].ID == user.ID {
			user.UpdatedAt = time.Now().UTC()
			users[i] = toStored(*user)
			return save(s.c, users)
		}
	}
	return apperror.NotFound("user", user.ID)
}
