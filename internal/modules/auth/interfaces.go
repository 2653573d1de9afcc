package auth

import (
	"context"

	"foodgram/internal/domain"
)

// UserReader is the part of the user repository login needs.
type UserReader interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TokenStore keeps hashes of issued tokens.
type TokenStore interface {
	Create(ctx context.Context, t *domain.AuthToken) error
	DeleteByHash(ctx context.Context, hash string) error
}

type tokenIssuer interface {
	GenerateToken(userID int64) (string, error)
}
