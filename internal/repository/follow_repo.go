package repository

import (
	"context"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

type FollowRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Exists(ctx context.Context, userID, followingID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Count(&n).Error
	return n > 0, err
}

func (r *FollowRepository) Insert(ctx context.Context, userID, followingID int64) error {
	return r.db.WithContext(ctx).Create(&domain.Follow{
		UserID:      userID,
		FollowingID: followingID,
	}).Error
}

func (r *FollowRepository) Delete(ctx context.Context, userID, followingID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND following_id = ?", userID, followingID).
		Delete(&domain.Follow{})
	return res.RowsAffected > 0, res.Error
}

// ListFollowing returns the users userID follows, oldest subscription first.
func (r *FollowRepository) ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]domain.User, int64, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.User{}).
			Joins("JOIN follows ON follows.following_id = users.id").
			Where("follows.user_id = ?", userID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	err := base().Order("follows.id").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// FollowingSet reports which of targetIDs viewerID follows, in one query.
func (r *FollowRepository) FollowingSet(ctx context.Context, viewerID int64, targetIDs []int64) (map[int64]bool, error) {
	set := make(map[int64]bool, len(targetIDs))
	if viewerID <= 0 || len(targetIDs) == 0 {
		return set, nil
	}

	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Follow{}).
		Where("user_id = ? AND following_id IN ?", viewerID, targetIDs).
		Pluck("following_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}
