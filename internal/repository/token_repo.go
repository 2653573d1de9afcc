package repository

import (
	"context"
	"time"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

// TokenRepository stores hashes of issued API tokens.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, t *domain.AuthToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// Active reports whether hash belongs to userID and has not expired.
func (r *TokenRepository) Active(ctx context.Context, userID int64, hash string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.AuthToken{}).
		Where("user_id = ? AND token_hash = ? AND expires_at > ?", userID, hash, time.Now().UTC()).
		Count(&n).Error
	return n > 0, err
}

func (r *TokenRepository) DeleteByHash(ctx context.Context, hash string) error {
	return r.db.WithContext(ctx).
		Where("token_hash = ?", hash).
		Delete(&domain.AuthToken{}).Error
}

func (r *TokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now().UTC()).
		Delete(&domain.AuthToken{})
	return res.RowsAffected, res.Error
}
