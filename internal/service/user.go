package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// UserService exposes profile listing, search, and updates.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{users: users, logger: logger}
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user id is required")
	}
	return s.users.GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Search matches the query case-insensitively against user names.
// An empty query returns nothing rather than everything.
func (s *UserService) Search(ctx context.Context, query string) ([]model.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.User{}, nil
	}

	all, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users for search: %w", err)
	}

	needle := strings.ToLower(query)
	matched := []model.User{}
	for _, u := range all {
		if strings.Contains(strings.ToLower(u.Name), needle) {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

// UpdateProfileInput carries the editable profile fields. Empty strings mean
// "leave unchanged" so partial updates from the profile form work.
type UpdateProfileInput struct {
	Name         string
	Username     string
	GitHubURL    string
	LinkedinURL  string
	ProfileImage string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if username := strings.TrimSpace(in.Username); username != "" && username != user.Username {
		if _, err := s.users.GetByUsername(ctx, username); err == nil {
			return nil, apperror.Conflict("username already taken")
		} else if !errors.Is(err, apperror.ErrNotFound) {
			return nil, fmt.Errorf("checking username uniqueness: %w", err)
		}
		user.Username = username
	}
	if url := strings.TrimSpace(in.GitHubURL); url != "" {
		user.GitHubURL = url
	}
	if url := strings.TrimSpace(in.LinkedinURL); url != "" {
		user.LinkedinURL = url
	}
	if in.ProfileImage != "" {
		user.ProfileImage = in.ProfileImage
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("updating user %s: %w", userID, err)
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}
