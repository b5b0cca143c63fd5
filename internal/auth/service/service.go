// Package service implements account registration, login, and token refresh.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"terraflow_backend/internal/auth/repository"
	"terraflow_backend/internal/auth/transport"
	"terraflow_backend/platform/apperr"
	"terraflow_backend/platform/config"
	"terraflow_backend/platform/logger"
)

// Store is the persistence surface the auth service needs.
type Store interface {
	Create(ctx context.Context, params repository.CreateParams) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.User, error)
}

type Service struct {
	store Store
	cfg   config.AuthServiceConfig
	log   *logger.Logger
}

func New(store Store, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log}
}

// Register creates an account and returns a fresh token pair.
func (s *Service) Register(ctx context.Context, req transport.RegisterRequest) (transport.AuthResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user, err := s.store.Create(ctx, repository.CreateParams{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		s.log.AuthEvent("register", req.Email, false, "duplicate email")
		return transport.AuthResponse{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		s.log.DatabaseError("create user", err)
		return transport.AuthResponse{}, apperr.Persistence("failed to create account", err)
	}

	s.log.AuthEvent("register", user.Email, true, "")
	return s.tokenResponse(user)
}

// Login verifies credentials and returns a fresh token pair. Unknown emails
// and wrong passwords are reported identically.
func (s *Service) Login(ctx context.Context, req transport.LoginRequest) (transport.AuthResponse, error) {
	user, err := s.store.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		s.log.DatabaseError("get user by email", err)
		return transport.AuthResponse{}, apperr.Persistence("failed to look up account", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.log.AuthEvent("login", req.Email, false, "wrong password")
		return transport.AuthResponse{}, apperr.Unauthorized("invalid credentials")
	}

	s.log.AuthEvent("login", user.Email, true, "")
	return s.tokenResponse(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, req transport.RefreshRequest) (transport.AuthResponse, error) {
	userID, err := s.parseRefreshToken(req.RefreshToken)
	if err != nil {
		return transport.AuthResponse{}, apperr.Unauthorized("invalid refresh token")
	}

	user, err := s.store.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.AuthResponse{}, apperr.Unauthorized("invalid refresh token")
	}
	if err != nil {
		s.log.DatabaseError("get user by id", err)
		return transport.AuthResponse{}, apperr.Persistence("failed to look up account", err)
	}

	return s.tokenResponse(user)
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (transport.UserResponse, error) {
	user, err := s.store.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.UserResponse{}, apperr.NotFound("account not found")
	}
	if err != nil {
		s.log.DatabaseError("get user by id", err)
		return transport.UserResponse{}, apperr.Persistence("failed to look up account", err)
	}
	return transport.NewUserResponse(user), nil
}

func (s *Service) tokenResponse(user repository.User) (transport.AuthResponse, error) {
	access, err := s.signToken(user, "access", s.cfg.GetJWTAccessSecret(), s.cfg.GetAccessTokenTTL())
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign access token", err)
	}

	refresh, err := s.signToken(user, "refresh", s.cfg.GetJWTRefreshSecret(), s.cfg.GetRefreshTokenTTL())
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign refresh token", err)
	}

	return transport.AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         transport.NewUserResponse(user),
	}, nil
}

func (s *Service) signToken(user repository.User, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.String(),
		"type":  tokenType,
		"admin": user.IsAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *Service) parseRefreshToken(raw string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(s.cfg.GetJWTRefreshSecret()), nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("parse refresh token: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("unexpected claims type")
	}
	if tokenType, _ := claims["type"].(string); tokenType != "refresh" {
		return uuid.Nil, errors.New("not a refresh token")
	}

	sub, _ := claims["sub"].(string)
	return uuid.Parse(sub)
}
