package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/invoicer/internal/auth"
	"github.com/mmynk/invoicer/internal/models"
	"github.com/mmynk/invoicer/internal/storage"
)

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Token is an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// AuthService handles registration, login and token resolution.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	s.logger.Info("Register request", "email", in.Email)

	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("name is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return nil, invalidf("email is required")
	}

	user, err := s.authenticator.Register(ctx, in.Name, in.Email, in.Password)
	if err != nil {
		s.logger.Warn("Registration failed", "email", in.Email, "error", err)
		return nil, err
	}

	s.logger.Info("User registered successfully", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Token, error) {
	s.logger.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.Warn("Login failed", "email", email, "error", err)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, err
	}

	s.logger.Info("User logged in successfully", "user_id", user.ID, "email", user.Email)
	return &Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwtManager.TokenDuration().Seconds()),
	}, nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, requester *models.User) (*models.User, error) {
	if requester == nil {
		return nil, auth.ErrMissingToken
	}
	return requester, nil
}

// UserFromToken validates a bearer token and loads the user it names.
// A token for a deleted user is rejected as invalid.
func (s *AuthService) UserFromToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.jwtManager.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load token user: %w", err)
	}
	return user, nil
}
