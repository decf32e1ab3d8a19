package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/models"
)

const defaultSearchLimit = 10

// CatalogService manages the shared reference data: allergies, flavors,
// constraint types and dishes.
type CatalogService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, log: logger.OrNop(log)}
}

func (s *CatalogService) ListAllergies(ctx context.Context) ([]models.Allergy, error) {
	return listByName[models.Allergy](ctx, s.db, "allergies")
}

func (s *CatalogService) GetAllergy(ctx context.Context, id uint) (*models.Allergy, error) {
	return getByID[models.Allergy](ctx, s.db, id, "allergy")
}

func (s *CatalogService) CreateAllergy(ctx context.Context, name, description string) (*models.Allergy, error) {
	allergy := &models.Allergy{Name: strings.TrimSpace(name), Description: description}
	if err := createUnique(ctx, s.db, allergy, allergy.Name, "allergy"); err != nil {
		return nil, err
	}
	return allergy, nil
}

func (s *CatalogService) ListFlavors(ctx context.Context) ([]models.Flavor, error) {
	return listByName[models.Flavor](ctx, s.db, "flavors")
}

func (s *CatalogService) GetFlavor(ctx context.Context, id uint) (*models.Flavor, error) {
	return getByID[models.Flavor](ctx, s.db, id, "flavor")
}

func (s *CatalogService) CreateFlavor(ctx context.Context, name, description string) (*models.Flavor, error) {
	flavor := &models.Flavor{Name: strings.TrimSpace(name), Description: description}
	if err := createUnique(ctx, s.db, flavor, flavor.Name, "flavor"); err != nil {
		return nil, err
	}
	return flavor, nil
}

// ListConstraintTypes seeds the default vocabulary when the table is empty.
func (s *CatalogService) ListConstraintTypes(ctx context.Context) ([]models.ConstraintType, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.ConstraintType{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to count constraint types: %w", err)
	}
	if count == 0 {
		if err := s.seedConstraintTypes(ctx); err != nil {
			return nil, err
		}
	}
	return listByName[models.ConstraintType](ctx, s.db, "constraint types")
}

func (s *CatalogService) GetConstraintType(ctx context.Context, id uint) (*models.ConstraintType, error) {
	return getByID[models.ConstraintType](ctx, s.db, id, "constraint type")
}

func (s *CatalogService) CreateConstraintType(ctx context.Context, name string) (*models.ConstraintType, error) {
	ct := &models.ConstraintType{Name: strings.TrimSpace(name)}
	if err := createUnique(ctx, s.db, ct, ct.Name, "constraint type"); err != nil {
		return nil, err
	}
	return ct, nil
}

func (s *CatalogService) ListDishes(ctx context.Context) ([]models.Dish, error) {
	return listByName[models.Dish](ctx, s.db, "dishes")
}

func (s *CatalogService) GetDish(ctx context.Context, id uint) (*models.Dish, error) {
	return getByID[models.Dish](ctx, s.db, id, "dish")
}

func (s *CatalogService) CreateDish(ctx context.Context, name, description string) (*models.Dish, error) {
	name = strings.TrimSpace(name)
	dish := &models.Dish{
		Name:        name,
		Description: description,
		Embedding:   dishEmbedding(name, description),
	}
	if err := createUnique(ctx, s.db, dish, name, "dish"); err != nil {
		return nil, err
	}
	return dish, nil
}

// SearchDishes returns the dishes closest to query. PostgreSQL ranks by
// pgvector L2 distance; other drivers fall back to a substring match.
func (s *CatalogService) SearchDishes(ctx context.Context, query string, limit int) ([]models.Dish, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, newValidationError("q", "search query is required")
	}
	if limit <= 0 || limit > 100 {
		limit = defaultSearchLimit
	}

	var dishes []models.Dish
	tx := s.db.WithContext(ctx).Limit(limit)
	if s.db.Dialector.Name() == "postgres" {
		tx = tx.Where("embedding IS NOT NULL").
			Clauses(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{GenerateEmbedding(query)}},
			})
	} else {
		pattern := "%" + strings.ToLower(query) + "%"
		tx = tx.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern).Order("name")
	}
	if err := tx.Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("failed to search dishes: %w", err)
	}
	return dishes, nil
}

// EnsureDefaults inserts any missing constraint types and flavors from the
// embedded vocabulary. Existing rows are left alone.
func (s *CatalogService) EnsureDefaults(ctx context.Context) error {
	if err := s.seedConstraintTypes(ctx); err != nil {
		return err
	}
	for _, f := range DefaultVocabulary().Flavors {
		var flavor models.Flavor
		err := s.db.WithContext(ctx).
			Where(models.Flavor{Name: f.Name}).
			Attrs(models.Flavor{Description: f.Description}).
			FirstOrCreate(&flavor).Error
		if err != nil {
			return fmt.Errorf("failed to seed flavor %q: %w", f.Name, err)
		}
	}
	return nil
}

func (s *CatalogService) seedConstraintTypes(ctx context.Context) error {
	names := DefaultVocabulary().ConstraintTypes
	for _, name := range names {
		var ct models.ConstraintType
		if err := s.db.WithContext(ctx).Where(models.ConstraintType{Name: name}).FirstOrCreate(&ct).Error; err != nil {
			return fmt.Errorf("failed to seed constraint type %q: %w", name, err)
		}
	}
	s.log.Info("seeded constraint types", zap.Int("count", len(names)))
	return nil
}

func listByName[T any](ctx context.Context, db *gorm.DB, what string) ([]T, error) {
	out := []T{}
	if err := db.WithContext(ctx).Order("name").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	return out, nil
}

func getByID[T any](ctx context.Context, db *gorm.DB, id uint, what string) (*T, error) {
	var entity T
	err := db.WithContext(ctx).First(&entity, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(what)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", what, err)
	}
	return &entity, nil
}

// createUnique inserts entity after checking that no row of the same type
// already uses name.
func createUnique[T any](ctx context.Context, db *gorm.DB, entity *T, name, what string) error {
	if name == "" {
		return newValidationError("name", "%s name is required", what)
	}

	var count int64
	if err := db.WithContext(ctx).Model(new(T)).Where("name = ?", name).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check %s: %w", what, err)
	}
	if count > 0 {
		return fmt.Errorf("%s %q %w", what, name, ErrConflict)
	}

	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create %s: %w", what, err)
	}
	return nil
}
