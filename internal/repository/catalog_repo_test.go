package repository

import (
	"context"
	"testing"

	"foodgram/internal/database/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngredientPrefixIsCaseSensitive(t *testing.T) {
	db := dbtest.New(t)
	repo := NewIngredientRepository(db)
	ctx := context.Background()

	dbtest.Ingredient(t, db, "sugar", "g")
	dbtest.Ingredient(t, db, "Sugar syrup", "ml")
	dbtest.Ingredient(t, db, "salt", "g")
	dbtest.Ingredient(t, db, "сахар", "г")

	names := func(prefix string) []string {
		items, err := repo.List(ctx, prefix)
		require.NoError(t, err)
		out := []string{}
		for _, it := range items {
			out = append(out, it.Name)
		}
		return out
	}

	assert.Equal(t, []string{"salt", "sugar"}, names("s"))
	assert.Equal(t, []string{"Sugar syrup"}, names("Su"))
	assert.Equal(t, []string{"сахар"}, names("са"))
	assert.Len(t, names(""), 4)
	assert.Empty(t, names("pepper"))
}

func TestCountExisting(t *testing.T) {
	db := dbtest.New(t)
	ctx := context.Background()

	a := dbtest.Ingredient(t, db, "egg", "pcs")
	b := dbtest.Ingredient(t, db, "milk", "ml")
	tag := dbtest.Tag(t, db, "Lunch", "#FFF", "lunch")

	n, err := NewIngredientRepository(db).CountExisting(ctx, []int64{a.ID, b.ID, 999})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = NewTagRepository(db).CountExisting(ctx, []int64{tag.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = NewTagRepository(db).CountExisting(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
