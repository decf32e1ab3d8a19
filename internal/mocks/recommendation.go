package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/types"
)

// MockRecommendationService mocks the menu pipeline.
type MockRecommendationService struct {
	mock.Mock
}

var _ service.IRecommendationService = (*MockRecommendationService)(nil)

func (m *MockRecommendationService) GenerateRecommendations(ctx context.Context, menuText string, identity *types.Identity, guestPrefs *types.PreferenceDocument) (*types.RecommendationResult, error) {
	args := m.Called(ctx, menuText, identity, guestPrefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecommendationResult), args.Error(1)
}

func (m *MockRecommendationService) ExtractMenu(ctx context.Context, image []byte, identity *types.Identity) (types.AIResult, string) {
	args := m.Called(ctx, image, identity)
	return args.Get(0).(types.AIResult), args.String(1)
}

func (m *MockRecommendationService) AnalyzeMenuImage(ctx context.Context, image []byte, identity *types.Identity, guestPrefs *types.PreferenceDocument) (*types.RecommendationResult, error) {
	args := m.Called(ctx, image, identity, guestPrefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecommendationResult), args.Error(1)
}

func (m *MockRecommendationService) SaveRecommendationRating(ctx context.Context, identity *types.Identity, dishID uint, rating int) (*models.DishHistory, error) {
	args := m.Called(ctx, identity, dishID, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DishHistory), args.Error(1)
}

func (m *MockRecommendationService) GetUserDishHistory(ctx context.Context, identity *types.Identity) ([]types.DishHistoryEntry, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.DishHistoryEntry), args.Error(1)
}
