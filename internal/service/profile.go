package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/menuwise/backend/internal/models"
)

// ProfileService resolves profiles from the external identity (email).
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// FindByEmail returns the profile of the user with the given email, or
// ErrNotFound when the user has none.
func (s *ProfileService) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := s.db.WithContext(ctx).
		Joins("JOIN app_users ON app_users.id = profiles.user_id AND app_users.deleted_at IS NULL").
		Where("app_users.email = ?", normalizeEmail(email)).
		First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("profile")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	return &profile, nil
}

// EnsureProfile returns the user's profile, creating it on first use.
func (s *ProfileService) EnsureProfile(ctx context.Context, email string) (*models.Profile, error) {
	var user models.AppUser
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Insert is a no-op when a concurrent request created the profile first.
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&models.Profile{UserID: user.ID}).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	var profile models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &profile, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
