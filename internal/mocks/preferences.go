package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/types"
)

// MockPreferenceService mocks preference writes.
type MockPreferenceService struct {
	mock.Mock
}

var _ service.IPreferenceService = (*MockPreferenceService)(nil)

func (m *MockPreferenceService) SetPreferences(ctx context.Context, email string, doc *types.PreferenceDocument) error {
	return m.Called(ctx, email, doc).Error(0)
}

func (m *MockPreferenceService) SetFlavorPreference(ctx context.Context, email, flavor string, level int) error {
	return m.Called(ctx, email, flavor, level).Error(0)
}

// MockAggregator mocks the preference read path.
type MockAggregator struct {
	mock.Mock
}

var _ service.PreferenceAggregator = (*MockAggregator)(nil)

func (m *MockAggregator) GetPreferences(ctx context.Context, email string) (*types.PreferenceDocument, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PreferenceDocument), args.Error(1)
}
