package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/apperr"
	jwtsvc "foodgram/internal/pkg/jwt"
	"foodgram/internal/pkg/validator"

	"gorm.io/gorm"
)

var errInvalidCredentials = apperr.Validation("non_field_errors", "Unable to log in with provided credentials.")

// Service issues and revokes API tokens.
type Service struct {
	users  UserReader
	tokens TokenStore
	jwt    tokenIssuer
	ttl    time.Duration
}

func NewService(users UserReader, tokens TokenStore, jwt tokenIssuer, ttl time.Duration) *Service {
	return &Service{users: users, tokens: tokens, jwt: jwt, ttl: ttl}
}

// Login checks the credentials and returns a new token. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (string, error) {
	if err := validator.Struct(req); err != nil {
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", apperr.Internal("failed to load user", err)
	}
	if !CheckPassword(user.PasswordHash, req.Password) {
		return "", errInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return "", apperr.Internal("failed to issue token", err)
	}

	now := time.Now().UTC()
	if err := s.tokens.Create(ctx, &domain.AuthToken{
		UserID:    user.ID,
		TokenHash: jwtsvc.HashToken(token),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}); err != nil {
		return "", apperr.Internal("failed to store token", err)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// Logout revokes the token the request was authenticated with.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.tokens.DeleteByHash(ctx, jwtsvc.HashToken(token)); err != nil {
		return apperr.Internal("failed to revoke token", err)
	}
	return nil
}
