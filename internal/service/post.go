package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// previewLength bounds how much post or comment text is echoed into a
// notification message.
const previewLength = 50

// PostService covers the post feed plus the like and comment interactions
// that feed the notification pipeline.
type PostService struct {
	posts    repository.PostRepository
	users    repository.UserRepository
	notifier Notifier
	logger   *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	users repository.UserRepository,
	notifier Notifier,
	logger *slog.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateInput carries a new post's fields. ImageURL is the stored upload
// path, or empty for a text-only post.
type CreateInput struct {
	Content    string
	ImageURL   string
	GitHubRepo string
}

// Create stores a new post with a denormalized snapshot of the author.
func (s *PostService) Create(ctx context.Context, authorID string, in CreateInput) (*model.Post, error) {
	in.Content = strings.TrimSpace(in.Content)
	if in.Content == "" && in.ImageURL == "" {
		return nil, apperror.ValidationFailed("content", "post must have content or an image")
	}

	author, err := s.users.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		Content:    in.Content,
		ImageURL:   in.ImageURL,
		GitHubRepo: strings.TrimSpace(in.GitHubRepo),
		Author:     author.Snapshot(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("postID", post.ID),
		slog.String("authorID", authorID),
	)
	return post, nil
}

func (s *PostService) GetByID(ctx context.Context, id string) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *PostService) List(ctx context.Context) ([]model.Post, error) {
	return s.posts.List(ctx)
}

func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]model.Post, error) {
	return s.posts.ListByAuthor(ctx, authorID)
}

// ToggleLike likes the post if the user hasn't liked it, and removes the
// like if they have. Only a fresh like notifies the author; unliking is
// silent, and so is liking your own post.
func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.LikedBy(userID) {
		likes := post.Likes[:0]
		for _, l := range post.Likes {
			if l.UserID != userID {
				likes = append(likes, l)
			}
		}
		post.Likes = likes
		if err := s.posts.Update(ctx, post); err != nil {
			return nil, fmt.Errorf("removing like from post %s: %w", postID, err)
		}
		return post, nil
	}

	liker, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post.Likes = append(post.Likes, model.Like{
		UserID:    liker.ID,
		Name:      liker.Name,
		Timestamp: time.Now().UTC(),
	})
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("liking post %s: %w", postID, err)
	}

	if post.Author.ID != userID {
		_, err := s.notifier.Dispatch(ctx, post.Author.ID, model.NotificationLike,
			liker.Name+" liked your post",
			map[string]any{
				"postId":      post.ID,
				"likerName":   liker.Name,
				"likerImage":  liker.ProfileImage,
				"postContent": preview(post.Content),
			},
		)
		if err != nil {
			s.logger.Error("failed to record like notification",
				slog.String("postID", postID),
				slog.String("error", err.Error()),
			)
		}
	}

	return post, nil
}

// Comment appends a comment to the post and notifies the author with a
// preview of the comment text. Self-comments don't notify.
func (s *PostService) Comment(ctx context.Context, postID, userID, text string) (*model.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ValidationFailed("text", "comment text is required")
	}

	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	commenter, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	post.Comments = append(post.Comments, model.Comment{
		ID:        xid.New().String(),
		Text:      text,
		Author:    commenter.Snapshot(),
		Timestamp: time.Now().UTC(),
	})
	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("commenting on post %s: %w", postID, err)
	}

	if post.Author.ID != userID {
		message := fmt.Sprintf("%s commented on your post: %q", commenter.Name, preview(text))
		_, err := s.notifier.Dispatch(ctx, post.Author.ID, model.NotificationComment, message,
			map[string]any{
				"postId":         post.ID,
				"commenterName":  commenter.Name,
				"commenterImage": commenter.ProfileImage,
				"commentText":    preview(text),
			},
		)
		if err != nil {
			s.logger.Error("failed to record comment notification",
				slog.String("postID", postID),
				slog.String("error", err.Error()),
			)
		}
	}

	return post, nil
}

// UpdateInput carries the editable post fields. Empty strings leave the
// field unchanged.
type UpdateInput struct {
	Content    string
	ImageURL   string
	GitHubRepo string
}

// Update lets the author edit their own post.
func (s *PostService) Update(ctx context.Context, postID, userID string, in UpdateInput) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.Author.ID != userID {
		return nil, apperror.Forbidden("only the author can edit a post")
	}

	if content := strings.TrimSpace(in.Content); content != "" {
		post.Content = content
	}
	if in.ImageURL != "" {
		post.ImageURL = in.ImageURL
	}
	if repo := strings.TrimSpace(in.GitHubRepo); repo != "" {
		post.GitHubRepo = repo
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("updating post %s: %w", postID, err)
	}
	return post, nil
}

// Delete removes the author's own post.
func (s *PostService) Delete(ctx context.Context, postID, userID string) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.Author.ID != userID {
		return apperror.Forbidden("only the author can delete a post")
	}
	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("deleting post %s: %w", postID, err)
	}

	s.logger.Info("post deleted",
		slog.String("postID", postID),
		slog.String("authorID", userID),
	)
	return nil
}

// preview truncates text for embedding in a notification message.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLength {
		return text
	}
	return string(runes[:previewLength]) + "..."
}
