package repository

import (
	"context"
	"testing"

	"foodgram/internal/database/dbtest"
	"foodgram/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type recipeFixture struct {
	db          *gorm.DB
	repo        *RecipeRepository
	author      *domain.User
	viewer      *domain.User
	breakfast   *domain.Tag
	dinner      *domain.Tag
	salt, sugar *domain.Ingredient
}

func newRecipeFixture(t *testing.T) *recipeFixture {
	db := dbtest.New(t)
	return &recipeFixture{
		db:        db,
		repo:      NewRecipeRepository(db),
		author:    dbtest.User(t, db, "author"),
		viewer:    dbtest.User(t, db, "viewer"),
		breakfast: dbtest.Tag(t, db, "Breakfast", "#E26C2D", "breakfast"),
		dinner:    dbtest.Tag(t, db, "Dinner", "#49B64E", "dinner"),
		salt:      dbtest.Ingredient(t, db, "salt", "g"),
		sugar:     dbtest.Ingredient(t, db, "sugar", "g"),
	}
}

func ptr[T any](v T) *T { return &v }

func (f *recipeFixture) input(name string, tags []int64, lines ...IngredientAmount) RecipeInput {
	return RecipeInput{
		Name:        ptr(name),
		Text:        ptr("text of " + name),
		Image:       ptr("/media/recipes/" + name + ".png"),
		CookingTime: ptr(10),
		Ingredients: lines,
		TagIDs:      tags,
	}
}

func (f *recipeFixture) create(t *testing.T, name string, tags []int64, lines ...IngredientAmount) int64 {
	t.Helper()
	id, err := f.repo.Create(context.Background(), f.author.ID, f.input(name, tags, lines...))
	require.NoError(t, err)
	return id
}

func TestRecipeCreateThenRead(t *testing.T) {
	f := newRecipeFixture(t)

	id := f.create(t, "omelette",
		[]int64{f.dinner.ID, f.breakfast.ID},
		IngredientAmount{IngredientID: f.sugar.ID, Amount: 2},
		IngredientAmount{IngredientID: f.salt.ID, Amount: 3},
	)

	rec, err := f.repo.GetByID(context.Background(), id, f.viewer.ID)
	require.NoError(t, err)

	view := domain.NewRecipeView(rec, false)
	assert.Equal(t, "omelette", view.Name)
	assert.Equal(t, f.author.Username, view.Author.Username)
	assert.False(t, view.IsFavorited)
	assert.False(t, view.IsInShoppingCart)

	// ingredient lines keep insertion order, tags are ordered by id
	require.Len(t, view.Ingredients, 2)
	assert.Equal(t, domain.IngredientLine{ID: f.sugar.ID, Name: "sugar", MeasurementUnit: "g", Amount: 2}, view.Ingredients[0])
	assert.Equal(t, domain.IngredientLine{ID: f.salt.ID, Name: "salt", MeasurementUnit: "g", Amount: 3}, view.Ingredients[1])
	require.Len(t, view.Tags, 2)
	assert.Equal(t, f.breakfast.ID, view.Tags[0].ID)
	assert.Equal(t, f.dinner.ID, view.Tags[1].ID)
}

func TestRecipeUpdateReplacesAssociations(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	id := f.create(t, "soup",
		[]int64{f.breakfast.ID},
		IngredientAmount{IngredientID: f.salt.ID, Amount: 5},
	)

	err := f.repo.Update(ctx, id, RecipeInput{
		CookingTime: ptr(40),
		Ingredients: []IngredientAmount{{IngredientID: f.sugar.ID, Amount: 7}},
		TagIDs:      []int64{f.dinner.ID},
	})
	require.NoError(t, err)

	assert.Zero(t, dbtest.Count(t, f.db, "recipe_ingredients", "recipe_id = ? AND ingredient_id = ?", id, f.salt.ID))
	assert.Equal(t, int64(1), dbtest.Count(t, f.db, "recipe_ingredients", "recipe_id = ?", id))
	assert.Equal(t, int64(1), dbtest.Count(t, f.db, "recipe_tags", "recipe_id = ?", id))

	rec, err := f.repo.GetByID(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, "soup", rec.Name, "untouched fields keep their value")
	assert.Equal(t, 40, rec.CookingTime)
	require.Len(t, rec.IngredientLines, 1)
	assert.Equal(t, 7, rec.IngredientLines[0].Amount)
	require.Len(t, rec.Tags, 1)
	assert.Equal(t, f.dinner.ID, rec.Tags[0].ID)
}

func TestRecipeUpdateRollsBackOnFailure(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	id := f.create(t, "stew",
		[]int64{f.breakfast.ID},
		IngredientAmount{IngredientID: f.salt.ID, Amount: 5},
	)

	// the duplicate pair violates the unique index halfway through the write
	err := f.repo.Update(ctx, id, RecipeInput{
		Name: ptr("renamed"),
		Ingredients: []IngredientAmount{
			{IngredientID: f.sugar.ID, Amount: 1},
			{IngredientID: f.sugar.ID, Amount: 2},
		},
		TagIDs: []int64{f.dinner.ID},
	})
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))

	rec, err := f.repo.GetByID(ctx, id, 0)
	require.NoError(t, err)
	assert.Equal(t, "stew", rec.Name)
	require.Len(t, rec.IngredientLines, 1)
	assert.Equal(t, f.salt.ID, rec.IngredientLines[0].IngredientID)
	require.Len(t, rec.Tags, 1)
	assert.Equal(t, f.breakfast.ID, rec.Tags[0].ID)
}

func TestRecipeUpdateUnknownID(t *testing.T) {
	f := newRecipeFixture(t)

	err := f.repo.Update(context.Background(), 999, RecipeInput{Name: ptr("x")})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRecipeDeleteRemovesDependentRows(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	id := f.create(t, "cake",
		[]int64{f.breakfast.ID},
		IngredientAmount{IngredientID: f.sugar.ID, Amount: 100},
	)
	require.NoError(t, NewUserRecipeStore(f.db, domain.KindFavorite).Insert(ctx, f.viewer.ID, id))
	require.NoError(t, NewUserRecipeStore(f.db, domain.KindShoppingCart).Insert(ctx, f.viewer.ID, id))

	require.NoError(t, f.repo.Delete(ctx, id))

	assert.Zero(t, dbtest.Count(t, f.db, "recipes"))
	assert.Zero(t, dbtest.Count(t, f.db, "recipe_ingredients"))
	assert.Zero(t, dbtest.Count(t, f.db, "recipe_tags"))
	assert.Zero(t, dbtest.Count(t, f.db, "user_recipes"))

	assert.ErrorIs(t, f.repo.Delete(ctx, id), gorm.ErrRecordNotFound)
}

func TestRecipeListFilters(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	other := dbtest.User(t, f.db, "other")

	salt := IngredientAmount{IngredientID: f.salt.ID, Amount: 1}
	first := f.create(t, "first", []int64{f.breakfast.ID}, salt)
	second := f.create(t, "second", []int64{f.dinner.ID}, salt)
	third := f.create(t, "third", []int64{f.breakfast.ID, f.dinner.ID}, salt)
	foreign, err := f.repo.Create(ctx, other.ID, f.input("foreign", []int64{f.dinner.ID}, salt))
	require.NoError(t, err)

	favorites := NewUserRecipeStore(f.db, domain.KindFavorite)
	require.NoError(t, favorites.Insert(ctx, f.viewer.ID, first))
	require.NoError(t, favorites.Insert(ctx, f.viewer.ID, third))
	require.NoError(t, NewUserRecipeStore(f.db, domain.KindShoppingCart).Insert(ctx, f.viewer.ID, second))

	ids := func(filter RecipeFilter, viewerID int64) []int64 {
		t.Helper()
		recipes, total, err := f.repo.List(ctx, filter, viewerID, 10, 0)
		require.NoError(t, err)
		out := make([]int64, 0, len(recipes))
		for _, r := range recipes {
			out = append(out, r.ID)
		}
		assert.Equal(t, int64(len(out)), total)
		return out
	}

	assert.Equal(t, []int64{foreign, third, second, first}, ids(RecipeFilter{}, 0))
	assert.Equal(t, []int64{third, second, first}, ids(RecipeFilter{AuthorID: f.author.ID}, 0))
	assert.Equal(t, []int64{third, first}, ids(RecipeFilter{TagSlugs: []string{"breakfast"}}, 0))
	assert.Equal(t, []int64{foreign, third, second, first}, ids(RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, 0))
	assert.Equal(t, []int64{third, first}, ids(RecipeFilter{IsFavorited: true}, f.viewer.ID))
	assert.Equal(t, []int64{second}, ids(RecipeFilter{IsInShoppingCart: true}, f.viewer.ID))
	assert.Empty(t, ids(RecipeFilter{IsFavorited: true}, 0))
	assert.Empty(t, ids(RecipeFilter{IsFavorited: true}, other.ID))
}

func TestRecipeListAnnotatesViewerFlags(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()

	salt := IngredientAmount{IngredientID: f.salt.ID, Amount: 1}
	liked := f.create(t, "liked", []int64{f.breakfast.ID}, salt)
	carted := f.create(t, "carted", []int64{f.breakfast.ID}, salt)
	require.NoError(t, NewUserRecipeStore(f.db, domain.KindFavorite).Insert(ctx, f.viewer.ID, liked))
	require.NoError(t, NewUserRecipeStore(f.db, domain.KindShoppingCart).Insert(ctx, f.viewer.ID, carted))

	recipes, _, err := f.repo.List(ctx, RecipeFilter{}, f.viewer.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, recipes, 2)

	byID := map[int64]domain.Recipe{}
	for _, r := range recipes {
		byID[r.ID] = r
	}
	assert.True(t, byID[liked].IsFavorited)
	assert.False(t, byID[liked].IsInShoppingCart)
	assert.False(t, byID[carted].IsFavorited)
	assert.True(t, byID[carted].IsInShoppingCart)

	anon, _, err := f.repo.List(ctx, RecipeFilter{}, 0, 10, 0)
	require.NoError(t, err)
	for _, r := range anon {
		assert.False(t, r.IsFavorited)
		assert.False(t, r.IsInShoppingCart)
	}
}

func TestRecipeListPagination(t *testing.T) {
	f := newRecipeFixture(t)
	salt := IngredientAmount{IngredientID: f.salt.ID, Amount: 1}
	for _, name := range []string{"a", "b", "c"} {
		f.create(t, name, []int64{f.breakfast.ID}, salt)
	}

	page, total, err := f.repo.List(context.Background(), RecipeFilter{}, 0, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 1)
	assert.Equal(t, "a", page[0].Name)
}

func TestSummariesByAuthors(t *testing.T) {
	f := newRecipeFixture(t)
	ctx := context.Background()
	salt := IngredientAmount{IngredientID: f.salt.ID, Amount: 1}
	f.create(t, "old", []int64{f.breakfast.ID}, salt)
	f.create(t, "mid", []int64{f.breakfast.ID}, salt)
	f.create(t, "new", []int64{f.breakfast.ID}, salt)

	limited, err := f.repo.SummariesByAuthors(ctx, []int64{f.author.ID, f.viewer.ID}, 2)
	require.NoError(t, err)
	require.Len(t, limited[f.author.ID], 2)
	assert.Equal(t, "new", limited[f.author.ID][0].Name)
	assert.Equal(t, "mid", limited[f.author.ID][1].Name)
	assert.Empty(t, limited[f.viewer.ID])

	all, err := f.repo.SummariesByAuthors(ctx, []int64{f.author.ID}, 0)
	require.NoError(t, err)
	assert.Len(t, all[f.author.ID], 3)

	counts, err := f.repo.CountByAuthors(ctx, []int64{f.author.ID, f.viewer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[f.author.ID])
	assert.Zero(t, counts[f.viewer.ID])
}
