package service

import (
	"context"

	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, name, email, password string) (*models.AppUser, string, error)
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// IPreferenceService defines the interface for preference writes
type IPreferenceService interface {
	SetPreferences(ctx context.Context, email string, doc *types.PreferenceDocument) error
	SetFlavorPreference(ctx context.Context, email, flavor string, level int) error
}

// PreferenceAggregator reads the normalized preference document of a user.
type PreferenceAggregator interface {
	GetPreferences(ctx context.Context, email string) (*types.PreferenceDocument, error)
}

// ICatalogService defines the interface for reference data operations
type ICatalogService interface {
	ListAllergies(ctx context.Context) ([]models.Allergy, error)
	GetAllergy(ctx context.Context, id uint) (*models.Allergy, error)
	CreateAllergy(ctx context.Context, name, description string) (*models.Allergy, error)
	ListFlavors(ctx context.Context) ([]models.Flavor, error)
	GetFlavor(ctx context.Context, id uint) (*models.Flavor, error)
	CreateFlavor(ctx context.Context, name, description string) (*models.Flavor, error)
	ListConstraintTypes(ctx context.Context) ([]models.ConstraintType, error)
	GetConstraintType(ctx context.Context, id uint) (*models.ConstraintType, error)
	CreateConstraintType(ctx context.Context, name string) (*models.ConstraintType, error)
	ListDishes(ctx context.Context) ([]models.Dish, error)
	GetDish(ctx context.Context, id uint) (*models.Dish, error)
	CreateDish(ctx context.Context, name, description string) (*models.Dish, error)
	SearchDishes(ctx context.Context, query string, limit int) ([]models.Dish, error)
}

// IRecommendationService defines the interface for the menu pipeline
type IRecommendationService interface {
	GenerateRecommendations(ctx context.Context, menuText string, identity *types.Identity, guestPrefs *types.PreferenceDocument) (*types.RecommendationResult, error)
	ExtractMenu(ctx context.Context, image []byte, identity *types.Identity) (types.AIResult, string)
	AnalyzeMenuImage(ctx context.Context, image []byte, identity *types.Identity, guestPrefs *types.PreferenceDocument) (*types.RecommendationResult, error)
	SaveRecommendationRating(ctx context.Context, identity *types.Identity, dishID uint, rating int) (*models.DishHistory, error)
	GetUserDishHistory(ctx context.Context, identity *types.Identity) ([]types.DishHistoryEntry, error)
}

// MenuExtractor turns a menu image into an item to price document.
type MenuExtractor interface {
	ExtractMenu(ctx context.Context, image []byte) types.AIResult
}

// DishClassifier buckets menu items into green, orange and red tiers.
type DishClassifier interface {
	Classify(ctx context.Context, menu string, prefs types.ClassificationPreferences) types.AIResult
}

// ImageArchiver stores uploaded menu images and returns their key.
type ImageArchiver interface {
	Archive(ctx context.Context, identity *types.Identity, image []byte) (string, error)
}

var (
	_ IAuthService           = (*AuthService)(nil)
	_ IPreferenceService     = (*PreferenceService)(nil)
	_ PreferenceAggregator   = (*Aggregator)(nil)
	_ ICatalogService        = (*CatalogService)(nil)
	_ IRecommendationService = (*RecommendationService)(nil)
	_ MenuExtractor          = (*MenuExtractorService)(nil)
	_ DishClassifier         = (*DishClassifierService)(nil)
	_ ImageArchiver          = (*S3ImageArchive)(nil)
)
