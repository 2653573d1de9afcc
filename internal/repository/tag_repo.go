package repository

import (
	"context"

	"foodgram/internal/domain"

	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := r.db.WithContext(ctx).Order("id").Find(&tags).Error
	return tags, err
}

func (r *TagRepository) GetByID(ctx context.Context, id int64) (*domain.Tag, error) {
	var t domain.Tag
	if err := r.db.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// CountExisting returns how many distinct ids have a tag row.
func (r *TagRepository) CountExisting(ctx context.Context, ids []int64) (int64, error) {
	return countDistinctIDs(ctx, r.db, &domain.Tag{}, ids)
}

func countDistinctIDs(ctx context.Context, db *gorm.DB, model any, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int64
	err := db.WithContext(ctx).Model(model).
		Where("id IN ?", ids).
		Distinct("id").
		Count(&n).Error
	return n, err
}
