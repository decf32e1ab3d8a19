package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/testhelpers"
)

func TestAuthRegisterAndLogin(t *testing.T) {
	db := testhelpers.NewSQLiteDB(t)
	auth := NewAuthService(db, "test-secret", time.Hour, nil)
	ctx := context.Background()

	user, token, err := auth.Register(ctx, "Jane", " Jane@Example.com ", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)

	_, _, err = auth.Register(ctx, "Jane", "jane@example.com", "another-pass")
	assert.ErrorIs(t, err, ErrConflict)

	loginToken, err := auth.Login(ctx, "JANE@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, loginToken)

	_, err = auth.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = auth.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var profiles int64
	require.NoError(t, db.Model(&models.Profile{}).Count(&profiles).Error)
	assert.Zero(t, profiles)
}

func TestValidateTokenRejects(t *testing.T) {
	auth := NewAuthService(nil, "test-secret", time.Hour, nil)
	user := &models.AppUser{Email: "a@example.com"}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewAuthService(nil, "other-secret", time.Hour, nil)
		token, err := other.GenerateToken(user)
		require.NoError(t, err)
		_, err = auth.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewAuthService(nil, "test-secret", time.Hour, nil)
		expired.expiry = -time.Minute
		token, err := expired.GenerateToken(user)
		require.NoError(t, err)
		_, err = auth.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"email": "a@example.com"})
		signed, err := token.SignedString([]byte("test-secret"))
		require.NoError(t, err)
		_, err = auth.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := auth.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
