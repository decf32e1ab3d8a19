package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/menuwise/backend/internal/ai"
	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/metrics"
	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/types"
)

const (
	MinDishRating = 1
	MaxDishRating = 5
)

// RecommendationService ties extraction, aggregation and classification
// together and records dish ratings. Guests are served from the preferences
// they supply and never touch the database.
type RecommendationService struct {
	db         *gorm.DB
	profiles   *ProfileService
	aggregator PreferenceAggregator
	extractor  MenuExtractor
	classifier DishClassifier
	archiver   ImageArchiver
	log        *zap.Logger
}

// NewRecommendationService wires the orchestrator. archiver may be nil.
func NewRecommendationService(
	db *gorm.DB,
	aggregator PreferenceAggregator,
	extractor MenuExtractor,
	classifier DishClassifier,
	archiver ImageArchiver,
	log *zap.Logger,
) *RecommendationService {
	return &RecommendationService{
		db:         db,
		profiles:   NewProfileService(db),
		aggregator: aggregator,
		extractor:  extractor,
		classifier: classifier,
		archiver:   archiver,
		log:        logger.OrNop(log),
	}
}

// GenerateRecommendations classifies menuText against the caller's stored
// preferences, or against guestPrefs when identity is nil.
func (s *RecommendationService) GenerateRecommendations(ctx context.Context, menuText string, identity *types.Identity, guestPrefs *types.PreferenceDocument) (*types.RecommendationResult, error) {
	if isBlank(menuText) {
		return nil, newValidationError("menuText", "menu text is required")
	}

	prefs, err := s.resolvePreferences(ctx, identity, guestPrefs)
	if err != nil {
		return nil, err
	}

	result := &types.RecommendationResult{
		Guest:       identity == nil,
		Preferences: prefs.ClassificationPreferences(),
	}
	result.Recommendations = s.classifier.Classify(ctx, menuText, result.Preferences)
	return result, nil
}

// ExtractMenu runs text extraction on image. Images of signed-in callers are
// archived when an archive is configured; archive failures are only logged.
func (s *RecommendationService) ExtractMenu(ctx context.Context, image []byte, identity *types.Identity) (types.AIResult, string) {
	menu := s.extractor.ExtractMenu(ctx, image)
	return menu, s.archive(ctx, identity, image)
}

// AnalyzeMenuImage extracts the menu from image and classifies it.
// Classification is skipped when extraction reports an error.
func (s *RecommendationService) AnalyzeMenuImage(ctx context.Context, image []byte, identity *types.Identity, guestPrefs *types.PreferenceDocument) (*types.RecommendationResult, error) {
	menu, archived := s.ExtractMenu(ctx, image, identity)
	result := &types.RecommendationResult{
		Menu:          menu,
		Guest:         identity == nil,
		ArchivedImage: archived,
	}
	if _, failed := menu.ErrorMessage(); failed {
		return result, nil
	}

	prefs, err := s.resolvePreferences(ctx, identity, guestPrefs)
	if err != nil {
		return nil, err
	}
	result.Preferences = prefs.ClassificationPreferences()
	result.Recommendations = s.classifier.Classify(ctx, ai.Compact(menu), result.Preferences)
	return result, nil
}

// SaveRecommendationRating records rating for dishID. The rating is checked
// before the identity, and before any storage access.
func (s *RecommendationService) SaveRecommendationRating(ctx context.Context, identity *types.Identity, dishID uint, rating int) (*models.DishHistory, error) {
	if rating < MinDishRating || rating > MaxDishRating {
		return nil, newValidationError("rating", "rating must be between %d and %d", MinDishRating, MaxDishRating)
	}
	if dishID == 0 {
		return nil, newValidationError("dishId", "dish id is required")
	}
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	profile, err := s.profiles.EnsureProfile(ctx, identity.Email)
	if err != nil {
		return nil, err
	}

	var entry models.DishHistory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dish models.Dish
		if err := tx.Select("id").First(&dish, dishID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("dish")
			}
			return fmt.Errorf("failed to load dish: %w", err)
		}

		err := tx.Where("profile_id = ? AND dish_id = ?", profile.ID, dishID).First(&entry).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			entry = models.DishHistory{ProfileID: profile.ID, DishID: dishID, UserRating: rating}
			return tx.Omit(clause.Associations).Create(&entry).Error
		case err != nil:
			return fmt.Errorf("failed to load dish history: %w", err)
		}

		entry.UserRating = rating
		return tx.Omit(clause.Associations).Save(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.DishRatings.Inc()
	s.log.Info("saved dish rating",
		zap.Uint("profile_id", profile.ID),
		zap.Uint("dish_id", dishID),
		zap.Int("rating", rating))
	return &entry, nil
}

// GetUserDishHistory lists the caller's rated dishes, most recently rated
// first. A caller without a profile has an empty history.
func (s *RecommendationService) GetUserDishHistory(ctx context.Context, identity *types.Identity) ([]types.DishHistoryEntry, error) {
	if identity == nil {
		return nil, ErrUnauthenticated
	}

	entries := []types.DishHistoryEntry{}
	profile, err := s.profiles.FindByEmail(ctx, identity.Email)
	if errors.Is(err, ErrNotFound) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Table("dish_history").
		Select("dish_history.dish_id, dishes.name AS dish_name, dish_history.user_rating AS rating, dish_history.created_at, dish_history.updated_at").
		Joins("JOIN dishes ON dishes.id = dish_history.dish_id").
		Where("dish_history.profile_id = ?", profile.ID).
		Order("dish_history.updated_at DESC, dish_history.id DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load dish history: %w", err)
	}
	return entries, nil
}

func (s *RecommendationService) resolvePreferences(ctx context.Context, identity *types.Identity, guestPrefs *types.PreferenceDocument) (*types.PreferenceDocument, error) {
	if identity == nil {
		if guestPrefs == nil {
			return types.NewPreferenceDocument(), nil
		}
		return guestPrefs, nil
	}
	prefs, err := s.aggregator.GetPreferences(ctx, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}
	return prefs, nil
}

func (s *RecommendationService) archive(ctx context.Context, identity *types.Identity, image []byte) string {
	if identity == nil || s.archiver == nil || len(image) == 0 {
		return ""
	}
	key, err := s.archiver.Archive(ctx, identity, image)
	if err != nil {
		s.log.Warn("failed to archive menu image", zap.String("user_id", identity.UserID.String()), zap.Error(err))
		return ""
	}
	return key
}
