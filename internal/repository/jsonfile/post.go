package jsonfile

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// compile-time check that *PostStore implements repository.PostRepository
var _ repository.PostRepository = (*PostStore)(nil)

// PostStore persists the posts collection, newest first.
type PostStore struct {
	c *collection
}

// Create prepends a new post so List returns the feed newest-first without
// sorting. The store assigns the ID and creation timestamp; the author
// snapshot arrives already filled in by the service.
func (s *PostStore) Create(ctx context.Context, post *model.Post) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	posts, err := load[model.Post](s.c)
	if err != nil {
		return err
	}

	post.ID = xid.New().String()
	post.Timestamp = time.Now().UTC()
	if post.Likes == nil {
		post.Likes = []model.Like{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}

	posts = append([]model.Post{*post}, posts...)
	return save(s.c, posts)
}

// GetByID returns the post with the given ID, or apperror.ErrNotFound.
func (s *PostStore) GetByID(ctx context.Context, id string) (*model.Post, error) {
	posts, err := load[model.Post](s.c)
	if err != nil {
		return nil, err
	}
	for i := range posts {
		if posts[i].ID == id {
			p := posts[i]
			return &p, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

// List returns the whole feed, newest first.
func (s *PostStore) List(ctx context.Context) ([]model.Post, error) {
	return load[model.Post](s.c)
}

// ListByAuthor returns the posts whose author snapshot matches authorID,
// preserving feed order.
func (s *PostStore) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	posts, err := load[model.Post](s.c)
	if err != nil {
		return nil, err
	}
	byAuthor := make([]model.Post, 0)
	for i := range posts {
		if posts[i].Author.ID == authorID {
			byAuthor = append(byAuthor, posts[i])
		}
	}
	return byAuthor, nil
}

// Update replaces the stored record matching post.ID. Used for content edits
// as well as like/comment mutations — the whole post is rewritten either way.
func (s *PostStore) Update(ctx context.Context, post *model.Post) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	posts, err := load[model.Post](s.c)
	if err != nil {
		return err
	}

	for i := range posts {
		if posts[i].ID == post.ID {
			posts[i] = *post
			return save(s.c, posts)
		}
	}
	return apperror.NotFound("post", post.ID)
}

// Delete removes the post with the given ID, or returns ErrNotFound.
func (s *PostStore) Delete(ctx context.Context, id string) error {
	s.c.mu.Lock()
	defer s.c.mu.Unlock()

	posts, err := load[model.Post](s.c)
	if err != nil {
		return err
	}

	for i := range posts {
		if posts[i].ID == id {
			posts = append(posts[:i], posts[i+1:]...)
			return save(s.c, posts)
		}
	}
	return apperror.NotFound("post", id)
}
