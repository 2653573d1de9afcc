package repository

import (
	"context"
	"strings"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.Email = normalizeEmail(u.Email)
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	if err := r.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

// TakenFields reports which of email and username already belong to a user.
func (r *UserRepository) TakenFields(ctx context.Context, email, username string) (emailTaken, usernameTaken bool, err error) {
	var users []domain.User
	err = r.db.WithContext(ctx).
		Select("email", "username").
		Where("email = ? OR username = ?", normalizeEmail(email), username).
		Find(&users).Error
	if err != nil {
		return false, false, err
	}
	for _, u := range users {
		if u.Email == normalizeEmail(email) {
			emailTaken = true
		}
		if u.Username == username {
			usernameTaken = true
		}
	}
	return emailTaken, usernameTaken, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]domain.User, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := r.db.WithContext(ctx).Order("id").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
