package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/service"
)

// MockCatalogService mocks the reference data service.
type MockCatalogService struct {
	mock.Mock
}

var _ service.ICatalogService = (*MockCatalogService)(nil)

func (m *MockCatalogService) ListAllergies(ctx context.Context) ([]models.Allergy, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Allergy), args.Error(1)
}

func (m *MockCatalogService) GetAllergy(ctx context.Context, id uint) (*models.Allergy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Allergy), args.Error(1)
}

func (m *MockCatalogService) CreateAllergy(ctx context.Context, name, description string) (*models.Allergy, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Allergy), args.Error(1)
}

func (m *MockCatalogService) ListFlavors(ctx context.Context) ([]models.Flavor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flavor), args.Error(1)
}

func (m *MockCatalogService) GetFlavor(ctx context.Context, id uint) (*models.Flavor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flavor), args.Error(1)
}

func (m *MockCatalogService) CreateFlavor(ctx context.Context, name, description string) (*models.Flavor, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flavor), args.Error(1)
}

func (m *MockCatalogService) ListConstraintTypes(ctx context.Context) ([]models.ConstraintType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ConstraintType), args.Error(1)
}

func (m *MockCatalogService) GetConstraintType(ctx context.Context, id uint) (*models.ConstraintType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConstraintType), args.Error(1)
}

func (m *MockCatalogService) CreateConstraintType(ctx context.Context, name string) (*models.ConstraintType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ConstraintType), args.Error(1)
}

func (m *MockCatalogService) ListDishes(ctx context.Context) ([]models.Dish, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dish), args.Error(1)
}

func (m *MockCatalogService) GetDish(ctx context.Context, id uint) (*models.Dish, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

func (m *MockCatalogService) CreateDish(ctx context.Context, name, description string) (*models.Dish, error) {
	args := m.Called(ctx, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dish), args.Error(1)
}

func (m *MockCatalogService) SearchDishes(ctx context.Context, query string, limit int) ([]models.Dish, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Dish), args.Error(1)
}
