package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/tejakusireddy/getonstack/internal/domain"
	"github.com/tejakusireddy/getonstack/internal/repository"
	"github.com/tejakusireddy/getonstack/pkg/config"
	"github.com/tejakusireddy/getonstack/pkg/crypto"
	jwtpkg "github.com/tejakusireddy/getonstack/pkg/jwt"
)

// ErrInvalidCredentials hides whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// Service handles authentication workflows.
type Service struct {
	users  repository.UserRepository
	github *GitHubClient
	logger *slog.Logger
	cfg    config.APIConfig
}

// New constructs a Service.
func New(users repository.UserRepository, github *GitHubClient, logger *slog.Logger, cfg config.APIConfig) Service {
	return Service{users: users, github: github, logger: logger, cfg: cfg}
}

// Token contains an issued access token.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// Signup registers a new user with an email/password pair.
func (s Service) Signup(ctx context.Context, email, password, fullName string) (*domain.User, Token, error) {
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, Token{}, err
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		FullName:     fullName,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, Token{}, err
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, Token{}, err
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, token, nil
}

// Login authenticates a user and returns a session token.
func (s Service) Login(ctx context.Context, email, password string) (*domain.User, Token, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, Token{}, ErrInvalidCredentials
		}
		return nil, Token{}, err
	}
	if err := crypto.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, Token{}, ErrInvalidCredentials
	}
	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, Token{}, err
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return user, token, nil
}

// AuthorizeURL returns the GitHub OAuth authorization redirect target.
func (s Service) AuthorizeURL() string {
	return "https://github.com/login/oauth/authorize" +
		"?client_id=" + s.cfg.GitHubClientID +
		"&redirect_uri=" + s.cfg.GitHubRedirectURI +
		"&scope=user:email,repo"
}

// HandleGitHubCallback exchanges the OAuth code, fetches the GitHub profile,
// and upserts the matching user.
func (s Service) HandleGitHubCallback(ctx context.Context, code string) (*domain.User, Token, error) {
	accessToken, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		return nil, Token{}, err
	}
	profile, err := s.github.UserInfo(ctx, accessToken)
	if err != nil {
		return nil, Token{}, err
	}
	email, err := s.github.PrimaryEmail(ctx, accessToken)
	if err != nil {
		return nil, Token{}, err
	}

	user, err := s.users.GetUserByGitHubID(ctx, profile.ID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &domain.User{
			ID:             uuid.NewString(),
			Email:          email,
			FullName:       profile.Name,
			GitHubID:       profile.ID,
			GitHubUsername: profile.Login,
			IsActive:       true,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.users.CreateUser(ctx, user); err != nil {
			return nil, Token{}, err
		}
		s.logger.Info("user created from github", "user_id", user.ID, "github_username", profile.Login)
	case err != nil:
		return nil, Token{}, err
	default:
		user.GitHubUsername = profile.Login
		user.FullName = profile.Name
		if err := s.users.UpdateUserGitHub(ctx, user); err != nil {
			return nil, Token{}, err
		}
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return nil, Token{}, err
	}
	return user, token, nil
}

// Authorize validates a bearer token and returns the associated user.
func (s Service) Authorize(ctx context.Context, token string) (*domain.User, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return nil, errors.New("auth: token required")
	}
	claims, err := jwtpkg.Parse(trimmed, s.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	return s.users.GetUserByID(ctx, claims.UserID)
}

func (s Service) issueToken(userID string) (Token, error) {
	access, err := jwtpkg.GenerateToken(userID, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return Token{}, err
	}
	return Token{AccessToken: access, TokenType: "bearer", ExpiresIn: s.cfg.AccessTokenTTL}, nil
}
