package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/testhelpers"
)

func TestCatalogCreateAndGet(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	allergy, err := svc.CreateAllergy(ctx, " Peanuts ", "tree and ground nuts")
	require.NoError(t, err)
	assert.Equal(t, "Peanuts", allergy.Name)

	got, err := svc.GetAllergy(ctx, allergy.ID)
	require.NoError(t, err)
	assert.Equal(t, "tree and ground nuts", got.Description)

	_, err = svc.CreateAllergy(ctx, "Peanuts", "")
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateFlavor(ctx, "  ", "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.GetFlavor(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	ct, err := svc.CreateConstraintType(ctx, "Low-FODMAP")
	require.NoError(t, err)
	_, err = svc.GetConstraintType(ctx, ct.ID)
	require.NoError(t, err)
}

func TestCatalogListConstraintTypesSeedsOnFirstUse(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	cts, err := svc.ListConstraintTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, cts, len(DefaultVocabulary().ConstraintTypes))

	again, err := svc.ListConstraintTypes(ctx)
	require.NoError(t, err)
	assert.Len(t, again, len(cts))
}

func TestCatalogEnsureDefaultsIsIdempotent(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx))
	require.NoError(t, svc.EnsureDefaults(ctx))

	flavors, err := svc.ListFlavors(ctx)
	require.NoError(t, err)
	assert.Len(t, flavors, len(DefaultVocabulary().Flavors))
	for _, f := range flavors {
		assert.NotEmpty(t, f.Description)
	}
}

func TestCatalogDishes(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewCatalogService(db, nil)
	ctx := context.Background()

	curry, err := svc.CreateDish(ctx, "Green Curry", "coconut milk, basil, chili")
	require.NoError(t, err)
	require.NotNil(t, curry.Embedding)
	assert.Len(t, curry.Embedding.Slice(), models.EmbeddingDimensions)

	_, err = svc.CreateDish(ctx, "Margherita Pizza", "tomato, mozzarella, basil")
	require.NoError(t, err)
	_, err = svc.CreateDish(ctx, "Caesar Salad", "romaine, parmesan")
	require.NoError(t, err)

	stored, err := svc.GetDish(ctx, curry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Embedding)
	assert.Equal(t, curry.Embedding.Slice(), stored.Embedding.Slice())

	found, err := svc.SearchDishes(ctx, "BASIL", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Green Curry", found[0].Name)
	assert.Equal(t, "Margherita Pizza", found[1].Name)

	_, err = svc.SearchDishes(ctx, " ", 5)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	all, err := svc.ListDishes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
