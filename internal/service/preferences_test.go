package service

import (
	"context"
	"sort"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/menuwise/backend/internal/metrics"
	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/testhelpers"
	"github.com/pageza/menuwise/backend/internal/types"
)

func allergyNames(t *testing.T, db *gorm.DB, profileID uint) []string {
	t.Helper()
	var names []string
	require.NoError(t, db.Model(&models.Allergy{}).
		Joins("JOIN profile_allergies ON profile_allergies.allergy_id = allergies.id").
		Where("profile_allergies.profile_id = ?", profileID).
		Pluck("allergies.name", &names).Error)
	sort.Strings(names)
	return names
}

func flavorLevels(t *testing.T, db *gorm.DB, profileID uint) map[string]int {
	t.Helper()
	var rows []flavorLevel
	require.NoError(t, db.Model(&models.ProfileFlavorPreference{}).
		Select("flavors.name AS name, profile_flavor_preferences.preference_level AS level").
		Joins("JOIN flavors ON flavors.id = profile_flavor_preferences.flavor_id").
		Where("profile_flavor_preferences.profile_id = ?", profileID).
		Scan(&rows).Error)
	out := map[string]int{}
	for _, r := range rows {
		out[r.Name] = r.Level
	}
	return out
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, profileID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Where("profile_id = ?", profileID).Count(&n).Error)
	return n
}

func TestProcessAllergiesReplacesSet(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	ctx := context.Background()

	profile := testhelpers.CreateProfile(t, db, "a@example.com")
	other := testhelpers.CreateProfile(t, db, "b@example.com")
	require.NoError(t, svc.ProcessAllergies(ctx, other.ID, []string{"Milk"}))

	require.NoError(t, svc.ProcessAllergies(ctx, profile.ID, []string{"Peanuts", "Shellfish", "  ", "", "Peanuts"}))
	assert.Equal(t, []string{"Peanuts", "Shellfish"}, allergyNames(t, db, profile.ID))

	require.NoError(t, svc.ProcessAllergies(ctx, profile.ID, []string{"Shellfish", "Soy"}))
	assert.Equal(t, []string{"Shellfish", "Soy"}, allergyNames(t, db, profile.ID))

	assert.Equal(t, []string{"Milk"}, allergyNames(t, db, other.ID))

	var peanuts int64
	require.NoError(t, db.Model(&models.Allergy{}).Where("name = ?", "Peanuts").Count(&peanuts).Error)
	assert.Equal(t, int64(1), peanuts, "reference rows are never deleted")
}

func TestProcessAllergiesIsIdempotent(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	ctx := context.Background()
	profile := testhelpers.CreateProfile(t, db, "a@example.com")

	names := []string{"Peanuts", "Gluten"}
	require.NoError(t, svc.ProcessAllergies(ctx, profile.ID, names))
	require.NoError(t, svc.ProcessAllergies(ctx, profile.ID, names))

	assert.Equal(t, []string{"Gluten", "Peanuts"}, allergyNames(t, db, profile.ID))
	assert.Equal(t, int64(2), countRows(t, db, &models.ProfileAllergy{}, profile.ID))

	var allergies int64
	require.NoError(t, db.Model(&models.Allergy{}).Count(&allergies).Error)
	assert.Equal(t, int64(2), allergies)
}

func TestProcessAllergiesIsCaseSensitive(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	profile := testhelpers.CreateProfile(t, db, "a@example.com")

	require.NoError(t, svc.ProcessAllergies(context.Background(), profile.ID, []string{"peanuts", "Peanuts"}))
	assert.Equal(t, []string{"Peanuts", "peanuts"}, allergyNames(t, db, profile.ID))
}

func TestProcessConstraints(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	ctx := context.Background()
	profile := testhelpers.CreateProfile(t, db, "a@example.com")

	require.NoError(t, svc.ProcessConstraints(ctx, profile.ID, []string{"Vegetarian", "Halal"}))
	require.NoError(t, svc.ProcessConstraints(ctx, profile.ID, []string{"Vegan"}))
	assert.Equal(t, int64(1), countRows(t, db, &models.ProfileConstraint{}, profile.ID))

	require.NoError(t, svc.ProcessConstraints(ctx, profile.ID, []string{}))
	assert.Zero(t, countRows(t, db, &models.ProfileConstraint{}, profile.ID))
}

func TestProcessFlavorPreferencesSkipsOutOfRange(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	profile := testhelpers.CreateProfile(t, db, "a@example.com")
	before := testutil.ToFloat64(metrics.SkippedFlavorEntries)

	err := svc.ProcessFlavorPreferences(context.Background(), profile.ID, map[string]int{
		"Sweet": 8,
		"Spicy": 0,
		"Sour":  11,
		"Umami": 10,
		"Salty": 1,
		"":      5,
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Sweet": 8, "Umami": 10, "Salty": 1}, flavorLevels(t, db, profile.ID))
	assert.Equal(t, before+2, testutil.ToFloat64(metrics.SkippedFlavorEntries))
}

func TestSetFlavorPreferenceRejectsBeforeAnyWrite(t *testing.T) {
	// A nil database panics on first use, so reaching storage fails the test.
	svc := NewPreferenceService(nil, nil)

	for _, level := range []int{0, -3, 11, 100} {
		err := svc.SetFlavorPreference(context.Background(), "a@example.com", "Sweet", level)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "level %d", level)
		assert.Equal(t, "level", verr.Field)
	}

	err := svc.SetFlavorPreference(context.Background(), "a@example.com", " ", 5)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestSetFlavorPreference(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	ctx := context.Background()
	testhelpers.CreateUser(t, db, "a@example.com")

	require.Error(t, svc.SetFlavorPreference(ctx, "a@example.com", "Sweet", 11))
	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Zero(t, profiles, "rejected call must not create a profile")

	require.NoError(t, svc.SetFlavorPreference(ctx, "a@example.com", "Sweet", 7))
	require.NoError(t, svc.SetFlavorPreference(ctx, "A@example.com", "Sweet", 9))

	profile, err := NewProfileService(db).FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Sweet": 9}, flavorLevels(t, db, profile.ID))

	err = svc.SetFlavorPreference(ctx, "ghost@example.com", "Sweet", 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessSpecialPreferences(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	ctx := context.Background()
	profile := testhelpers.CreateProfile(t, db, "a@example.com")

	require.NoError(t, svc.ProcessSpecialPreferences(ctx, profile.ID, []string{"old note"}))
	require.NoError(t, svc.ProcessSpecialPreferences(ctx, profile.ID, []string{"no cilantro", "", "no cilantro", "mild please"}))

	var notes []string
	require.NoError(t, db.Model(&models.SpecialPreference{}).Where("profile_id = ?", profile.ID).Order("id").Pluck("description", &notes).Error)
	assert.Equal(t, []string{"no cilantro", "no cilantro", "mild please"}, notes)
}

func TestProcessSpecificDishesResetsRatings(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	ctx := context.Background()
	profile := testhelpers.CreateProfile(t, db, "a@example.com")

	ramen := testhelpers.CreateDish(t, db, "Ramen")
	require.NoError(t, db.Create(&models.DishHistory{ProfileID: profile.ID, DishID: ramen.ID, UserRating: 5}).Error)
	stale := testhelpers.CreateDish(t, db, "Stale Dish")
	require.NoError(t, db.Create(&models.DishHistory{ProfileID: profile.ID, DishID: stale.ID, UserRating: 1}).Error)

	require.NoError(t, svc.ProcessSpecificDishes(ctx, profile.ID, []string{"Ramen", "Pad Thai", "Ramen"}))

	var history []models.DishHistory
	require.NoError(t, db.Where("profile_id = ?", profile.ID).Find(&history).Error)
	require.Len(t, history, 2)
	for _, h := range history {
		assert.Equal(t, DefaultDishRating, h.UserRating)
		assert.NotEqual(t, stale.ID, h.DishID)
	}

	var padThai models.Dish
	require.NoError(t, db.Where("name = ?", "Pad Thai").First(&padThai).Error)
	assert.NotNil(t, padThai.Embedding)
}

func TestSetPreferencesLeavesNilCategoriesAlone(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	svc := NewPreferenceService(db, nil)
	ctx := context.Background()
	testhelpers.CreateUser(t, db, "a@example.com")

	require.NoError(t, svc.SetPreferences(ctx, "a@example.com", &types.PreferenceDocument{
		Allergies:          []string{"Peanuts"},
		SpecialPreferences: []string{"window seat"},
	}))
	require.NoError(t, svc.SetPreferences(ctx, "a@example.com", &types.PreferenceDocument{
		Allergies: []string{},
	}))

	profile, err := NewProfileService(db).FindByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Empty(t, allergyNames(t, db, profile.ID))
	assert.Equal(t, int64(1), countRows(t, db, &models.SpecialPreference{}, profile.ID))

	var verr *ValidationError
	assert.ErrorAs(t, svc.SetPreferences(ctx, "a@example.com", nil), &verr)
	assert.ErrorIs(t, svc.SetPreferences(ctx, "ghost@example.com", types.NewPreferenceDocument()), ErrNotFound)
}
