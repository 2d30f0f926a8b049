// Package repository declares the persistence interfaces consumed by the
// service layer.
//
// Services program against these interfaces, never against a concrete store.
// The default implementation (repository/jsonfile) keeps each collection in a
// single JSON file with whole-file read/replace semantics; a transactional
// database could be swapped in behind the same interfaces without touching
// any component logic.
package repository

import (
	"context"

	"github.com/sakif/devhub/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByGitHubID(ctx context.Context, githubID int64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id string) error
}

type ConnectionRepository interface {
	Create(ctx context.Context, conn *model.Connection) error
	GetByID(ctx context.Context, id string) (*model.Connection, error)
	// GetByPair looks up the record for the unordered {user1, user2} pair,
	// regardless of which side requested it or what status it is in.
	// Returns apperror.ErrNotFound when no record exists.
	GetByPair(ctx context.Context, user1ID, user2ID string) (*model.Connection, error)
	ListForUser(ctx context.Context, userID string) ([]model.Connection, error)
	Update(ctx context.Context, conn *model.Connection) error
	Delete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	// Create prepends the notification so ListForUser returns newest first.
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	ListForUser(ctx context.Context, userID string) ([]model.Notification, error)
	Update(ctx context.Context, n *model.Notification) error
	// MarkAllRead flips every unread notification owned by userID in a single
	// read-modify-write cycle. A no-op (and no error) when there are none.
	MarkAllRead(ctx context.Context, userID string) error
}
