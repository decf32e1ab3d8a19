package testhelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/menuwise/backend/internal/models"
)

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.AppUser {
	t.Helper()
	user := &models.AppUser{Name: "Test User", Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProfile inserts a user and its profile.
func CreateProfile(t *testing.T, db *gorm.DB, email string) *models.Profile {
	t.Helper()
	user := CreateUser(t, db, email)
	profile := &models.Profile{UserID: user.ID}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

// CreateDish inserts a dish without an embedding.
func CreateDish(t *testing.T, db *gorm.DB, name string) *models.Dish {
	t.Helper()
	dish := &models.Dish{Name: name}
	require.NoError(t, db.Create(dish).Error)
	return dish
}
