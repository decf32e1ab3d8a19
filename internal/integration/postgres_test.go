package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/testhelpers"
	"github.com/pageza/menuwise/backend/internal/types"
)

// TestPostgres runs the persistence paths against a real pgvector database.
// One container is shared by the subtests.
func TestPostgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	ctx := context.Background()

	auth := service.NewAuthService(db, "integration-secret", 0, nil)
	prefs := service.NewPreferenceService(db, nil)
	aggregator := service.NewAggregator(db)
	catalog := service.NewCatalogService(db, nil)
	recs := service.NewRecommendationService(db, aggregator, nil, nil, nil, nil)

	require.NoError(t, catalog.EnsureDefaults(ctx))

	t.Run("preferences replace per category", func(t *testing.T) {
		_, token, err := auth.Register(ctx, "Pat", "pat@example.com", "correct-horse")
		require.NoError(t, err)
		claims, err := auth.ValidateToken(token)
		require.NoError(t, err)

		require.NoError(t, prefs.SetPreferences(ctx, claims.Email, &types.PreferenceDocument{
			Allergies:          []string{"Peanuts", "Shellfish", "Peanuts"},
			DietaryConstraints: []string{"Vegetarian"},
			FlavorPreferences:  map[string]int{"Sweet": 8, "Spicy": 6},
			SpecialPreferences: []string{"No cilantro"},
		}))

		doc, err := aggregator.GetPreferences(ctx, claims.Email)
		require.NoError(t, err)
		assert.Equal(t, []string{"Peanuts", "Shellfish"}, doc.Allergies)
		assert.Equal(t, []string{"Vegetarian"}, doc.DietaryConstraints)
		assert.Equal(t, map[string]int{"Sweet": 8, "Spicy": 6}, doc.FlavorPreferences)
		assert.Equal(t, []string{"No cilantro"}, doc.SpecialPreferences)

		require.NoError(t, prefs.SetPreferences(ctx, claims.Email, &types.PreferenceDocument{
			Allergies: []string{"Soy"},
		}))
		require.NoError(t, prefs.SetFlavorPreference(ctx, claims.Email, "Sweet", 3))

		doc, err = aggregator.GetPreferences(ctx, claims.Email)
		require.NoError(t, err)
		assert.Equal(t, []string{"Soy"}, doc.Allergies)
		assert.Equal(t, []string{"Vegetarian"}, doc.DietaryConstraints)
		assert.Equal(t, map[string]int{"Sweet": 3, "Spicy": 6}, doc.FlavorPreferences)
	})

	t.Run("vector search ranks the closest dish first", func(t *testing.T) {
		for _, name := range []string{"Green Curry", "Tiramisu", "Red Curry"} {
			_, err := catalog.CreateDish(ctx, name, "")
			require.NoError(t, err)
		}

		dishes, err := catalog.SearchDishes(ctx, "Green Curry", 2)
		require.NoError(t, err)
		require.Len(t, dishes, 2)
		assert.Equal(t, "Green Curry", dishes[0].Name)
		assert.Equal(t, "Red Curry", dishes[1].Name)
		require.NotNil(t, dishes[0].Embedding)
		assert.Len(t, dishes[0].Embedding.Slice(), 64)
	})

	t.Run("ratings upsert one row per dish", func(t *testing.T) {
		user := testhelpers.CreateUser(t, db, "rater@example.com")
		identity := &types.Identity{UserID: user.ID, Email: user.Email}
		dish, err := catalog.CreateDish(ctx, "Lentil Soup", "Red lentils with cumin")
		require.NoError(t, err)

		_, err = recs.SaveRecommendationRating(ctx, identity, dish.ID, 2)
		require.NoError(t, err)
		_, err = recs.SaveRecommendationRating(ctx, identity, dish.ID, 5)
		require.NoError(t, err)

		history, err := recs.GetUserDishHistory(ctx, identity)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "Lentil Soup", history[0].DishName)
		assert.Equal(t, 5, history[0].Rating)
	})
}
