package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/devhub/internal/apperror"
	"github.com/sakif/devhub/internal/auth"
	"github.com/sakif/devhub/internal/model"
	"github.com/sakif/devhub/internal/repository"
)

// defaultProfileImage is used when a registrant uploads no picture.
const defaultProfileImage = "https://via.placeholder.com/150"

// AuthService handles registration, credential login, and the optional
// GitHub OAuth sign-in.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the authenticated user with the issued JWT so the
// handler can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput carries the registration form fields. ProfileImage is the
// already-stored upload path (or empty), filled in by the handler.
type RegisterInput struct {
	Name         string
	Username     string
	Email        string
	Password     string
	GitHubURL    string
	LinkedinURL  string
	ProfileImage string
}

// Register creates a new account.
//
// Uniqueness of email and username is checked here, against the current
// store snapshot. Like every read-modify-write in this system the check can
// race a concurrent registration; the window is accepted for this workload.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Name == "" {
		return nil, apperror.ValidationFailed("name", "name is required")
	}
	if in.Username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if in.Email == "" {
		return nil, apperror.ValidationFailed("email", "email is required")
	}
	if in.Password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	// Uniqueness: a found record is a conflict, NotFound is the happy path.
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, apperror.Conflict("email already registered")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking email uniqueness: %w", err)
	}
	if _, err := s.users.GetByUsername(ctx, in.Username); err == nil {
		return nil, apperror.Conflict("username already taken")
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("checking username uniqueness: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, apperror.ValidationFailed("password", "password must be 72 bytes or fewer")
	}

	profileImage := in.ProfileImage
	if profileImage == "" {
		profileImage = defaultProfileImage
	}

	user := &model.User{
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		GitHubURL:    strings.TrimSpace(in.GitHubURL),
		LinkedinURL:  strings.TrimSpace(in.LinkedinURL),
		ProfileImage: profileImage,
	}
	if err := s.users.Create(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("username", in.Username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login verifies username + password and issues a JWT.
//
// Both "unknown username" and "wrong password" come back as the same
// Unauthorized error so a caller cannot probe which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("looking up user %s: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// LoginOrRegisterGitHub completes the OAuth callback: first login creates an
// account from the GitHub profile, later logins refresh the mutable profile
// fields. OAuth accounts have no password — credential login stays closed
// for them because Verify always fails on an empty hash.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	user, err := s.users.GetByGitHubID(ctx, ghUser.ID)
	switch {
	case err == nil:
		// Returning user — refresh fields the GitHub profile owns.
		user.Name = githubDisplayName(ghUser)
		user.ProfileImage = ghUser.AvatarURL
		if ghUser.Email != "" {
			user.Email = ghUser.Email
		}
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("refreshing OAuth user %s: %w", user.ID, err)
		}

	case errors.Is(err, apperror.ErrNotFound):
		user = &model.User{
			Name:         githubDisplayName(ghUser),
			Username:     s.availableUsername(ctx, ghUser.Login),
			Email:        ghUser.Email,
			GitHubID:     ghUser.ID,
			GitHubURL:    ghUser.HTMLURL,
			ProfileImage: ghUser.AvatarURL,
		}
		if user.ProfileImage == "" {
			user.ProfileImage = defaultProfileImage
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("creating OAuth user (githubID=%d): %w", ghUser.ID, err)
		}
		s.logger.Info("user registered via GitHub",
			slog.String("userID", user.ID),
			slog.String("username", user.Username),
		)

	default:
		return nil, fmt.Errorf("looking up OAuth user (githubID=%d): %w", ghUser.ID, err)
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// availableUsername returns the GitHub login if it's free, otherwise the
// login with a short unique suffix. A registered "ada" must not be hijacked
// by a GitHub user who also goes by "ada".
func (s *AuthService) availableUsername(ctx context.Context, login string) string {
	if _, err := s.users.GetByUsername(ctx, login); errors.Is(err, apperror.ErrNotFound) {
		return login
	}
	suffix := xid.New().String()
	return login + "-" + suffix[len(suffix)-5:]
}

func githubDisplayName(ghUser *auth.GitHubUser) string {
	if ghUser.Name != "" {
		return ghUser.Name
	}
	return ghUser.Login
}
