package recipe

import (
	"context"
	"errors"

	"foodgram/internal/pkg/apperr"
	"foodgram/internal/pkg/utils"
	"foodgram/internal/pkg/validator"
	"foodgram/internal/repository"
)

// ReferenceCounter counts how many of the given ids exist.
type ReferenceCounter interface {
	CountExisting(ctx context.Context, ids []int64) (int64, error)
}

// Validator checks recipe payloads. Rules run in a fixed order and the first
// failure is returned with the offending field.
type Validator struct {
	ingredients ReferenceCounter
	tags        ReferenceCounter
}

func NewValidator(ingredients, tags ReferenceCounter) *Validator {
	return &Validator{ingredients: ingredients, tags: tags}
}

// validated is a payload that passed every rule.
type validated struct {
	input repository.RecipeInput
	image *utils.Image
}

func (v *Validator) ValidateCreate(ctx context.Context, req CreateRecipeRequest) (*validated, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	return v.validate(ctx, req.payload(), true)
}

func (v *Validator) ValidateUpdate(ctx context.Context, req UpdateRecipeRequest) (*validated, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	return v.validate(ctx, req.payload(), false)
}

func (v *Validator) validate(ctx context.Context, p payload, creating bool) (*validated, error) {
	out := &validated{}

	switch {
	case p.Image != nil && *p.Image != "":
		img, err := utils.DecodeImage(*p.Image)
		if err != nil {
			return nil, apperr.Validation("image", imageMessage(err))
		}
		out.image = img
	case creating || p.Image != nil:
		return nil, apperr.Validation("image", "image is required")
	}

	if len(p.Ingredients) == 0 {
		return nil, apperr.Validation("ingredients", "at least one ingredient is required")
	}
	ingredientIDs := make([]int64, 0, len(p.Ingredients))
	seen := make(map[int64]struct{}, len(p.Ingredients))
	for _, item := range p.Ingredients {
		if _, dup := seen[item.ID]; dup {
			return nil, apperr.Validation("ingredients", "ingredients must not repeat")
		}
		seen[item.ID] = struct{}{}
		ingredientIDs = append(ingredientIDs, item.ID)
	}
	for _, item := range p.Ingredients {
		if item.Amount < 1 {
			return nil, apperr.Validation("ingredients", "ingredient amount must be at least 1")
		}
	}
	if err := v.checkExisting(ctx, v.ingredients, ingredientIDs, "ingredients", "ingredient does not exist"); err != nil {
		return nil, err
	}

	if len(p.Tags) == 0 {
		return nil, apperr.Validation("tags", "at least one tag is required")
	}
	seenTags := make(map[int64]struct{}, len(p.Tags))
	for _, id := range p.Tags {
		if _, dup := seenTags[id]; dup {
			return nil, apperr.Validation("tags", "tags must not repeat")
		}
		seenTags[id] = struct{}{}
	}
	if err := v.checkExisting(ctx, v.tags, p.Tags, "tags", "tag does not exist"); err != nil {
		return nil, err
	}

	if (creating && p.CookingTime == nil) || (p.CookingTime != nil && *p.CookingTime < 1) {
		return nil, apperr.Validation("cooking_time", "cooking time must be at least 1 minute")
	}

	lines := make([]repository.IngredientAmount, 0, len(p.Ingredients))
	for _, item := range p.Ingredients {
		lines = append(lines, repository.IngredientAmount{IngredientID: item.ID, Amount: item.Amount})
	}
	out.input = repository.RecipeInput{
		Name:        p.Name,
		Text:        p.Text,
		CookingTime: p.CookingTime,
		Ingredients: lines,
		TagIDs:      append([]int64(nil), p.Tags...),
	}
	return out, nil
}

// checkExisting compares one count query against the number of distinct ids.
func (v *Validator) checkExisting(ctx context.Context, counter ReferenceCounter, ids []int64, field, msg string) error {
	n, err := counter.CountExisting(ctx, ids)
	if err != nil {
		return apperr.Internal("failed to check "+field, err)
	}
	if n != int64(len(ids)) {
		return apperr.Validation(field, msg)
	}
	return nil
}

func imageMessage(err error) string {
	switch {
	case errors.Is(err, utils.ErrImageTooLarge):
		return "image is too large"
	case errors.Is(err, utils.ErrImageType):
		return "image must be jpeg, png, gif or webp"
	case errors.Is(err, utils.ErrImageEmpty):
		return "image is required"
	default:
		return "image must be a base64 encoded data URI"
	}
}
