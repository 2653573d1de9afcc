package catalog

import (
	"context"
	"errors"
	"strings"

	"foodgram/internal/domain"
	"foodgram/internal/pkg/apperr"

	"gorm.io/gorm"
)

type TagReader interface {
	List(ctx context.Context) ([]domain.Tag, error)
	GetByID(ctx context.Context, id int64) (*domain.Tag, error)
}

type IngredientReader interface {
	List(ctx context.Context, prefix string) ([]domain.Ingredient, error)
	GetByID(ctx context.Context, id int64) (*domain.Ingredient, error)
}

// Service serves the read-only tag and ingredient dictionaries.
type Service struct {
	tags        TagReader
	ingredients IngredientReader
}

func NewService(tags TagReader, ingredients IngredientReader) *Service {
	return &Service{tags: tags, ingredients: ingredients}
}

func (s *Service) Tags(ctx context.Context) ([]domain.Tag, error) {
	tags, err := s.tags.List(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list tags", err)
	}
	return tags, nil
}

func (s *Service) Tag(ctx context.Context, id int64) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tag not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load tag", err)
	}
	return tag, nil
}

// Ingredients lists ingredients, optionally restricted to names starting with
// prefix.
func (s *Service) Ingredients(ctx context.Context, prefix string) ([]domain.Ingredient, error) {
	items, err := s.ingredients.List(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, apperr.Internal("failed to list ingredients", err)
	}
	return items, nil
}

func (s *Service) Ingredient(ctx context.Context, id int64) (*domain.Ingredient, error) {
	ing, err := s.ingredients.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("ingredient not found")
	}
	if err != nil {
		return nil, apperr.Internal("failed to load ingredient", err)
	}
	return ing, nil
}
