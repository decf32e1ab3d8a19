package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/menuwise/backend/internal/logger"
	"github.com/pageza/menuwise/backend/internal/metrics"
	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/types"
)

const (
	MinFlavorLevel = 1
	MaxFlavorLevel = 10

	// DefaultDishRating is given to every dish of a resubmitted specific-dish list.
	DefaultDishRating = 3
)

// PreferenceService writes preference categories for a profile. Every
// Process* call replaces the category wholesale inside one transaction:
// existing per-profile rows are deleted and one row per incoming item is
// inserted. Reference entities are created on demand and never deleted.
type PreferenceService struct {
	db       *gorm.DB
	profiles *ProfileService
	log      *zap.Logger
}

func NewPreferenceService(db *gorm.DB, log *zap.Logger) *PreferenceService {
	return &PreferenceService{
		db:       db,
		profiles: NewProfileService(db),
		log:      logger.OrNop(log),
	}
}

// SetPreferences reconciles every category present in doc. Nil categories are
// left untouched; empty ones are cleared.
func (s *PreferenceService) SetPreferences(ctx context.Context, email string, doc *types.PreferenceDocument) error {
	if doc == nil {
		return newValidationError("preferences", "preferences are required")
	}

	profile, err := s.profiles.EnsureProfile(ctx, email)
	if err != nil {
		return err
	}

	if doc.Allergies != nil {
		if err := s.ProcessAllergies(ctx, profile.ID, doc.Allergies); err != nil {
			return err
		}
	}
	if doc.DietaryConstraints != nil {
		if err := s.ProcessConstraints(ctx, profile.ID, doc.DietaryConstraints); err != nil {
			return err
		}
	}
	if doc.FlavorPreferences != nil {
		if err := s.ProcessFlavorPreferences(ctx, profile.ID, doc.FlavorPreferences); err != nil {
			return err
		}
	}
	if doc.SpecialPreferences != nil {
		if err := s.ProcessSpecialPreferences(ctx, profile.ID, doc.SpecialPreferences); err != nil {
			return err
		}
	}
	if doc.SpecificDishes != nil {
		if err := s.ProcessSpecificDishes(ctx, profile.ID, doc.SpecificDishes); err != nil {
			return err
		}
	}
	return nil
}

func (s *PreferenceService) ProcessAllergies(ctx context.Context, profileID uint, names []string) error {
	return s.reconcile(ctx, "allergies", profileID, func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.ProfileAllergy{}).Error; err != nil {
			return fmt.Errorf("failed to clear allergies: %w", err)
		}
		for _, name := range uniqueNames(names) {
			var allergy models.Allergy
			if err := tx.Where(models.Allergy{Name: name}).FirstOrCreate(&allergy).Error; err != nil {
				return fmt.Errorf("failed to resolve allergy %q: %w", name, err)
			}
			link := models.ProfileAllergy{ProfileID: profileID, AllergyID: allergy.ID}
			if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link allergy %q: %w", name, err)
			}
		}
		return nil
	})
}

func (s *PreferenceService) ProcessConstraints(ctx context.Context, profileID uint, names []string) error {
	return s.reconcile(ctx, "constraints", profileID, func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.ProfileConstraint{}).Error; err != nil {
			return fmt.Errorf("failed to clear constraints: %w", err)
		}
		for _, name := range uniqueNames(names) {
			var ct models.ConstraintType
			if err := tx.Where(models.ConstraintType{Name: name}).FirstOrCreate(&ct).Error; err != nil {
				return fmt.Errorf("failed to resolve constraint type %q: %w", name, err)
			}
			link := models.ProfileConstraint{ProfileID: profileID, ConstraintTypeID: ct.ID}
			if err := tx.Omit(clause.Associations).Create(&link).Error; err != nil {
				return fmt.Errorf("failed to link constraint %q: %w", name, err)
			}
		}
		return nil
	})
}

// ProcessFlavorPreferences replaces the profile's flavor ratings. Entries
// outside [1,10] are skipped with a warning and the rest are still written.
func (s *PreferenceService) ProcessFlavorPreferences(ctx context.Context, profileID uint, prefs map[string]int) error {
	names := make([]string, 0, len(prefs))
	for name := range prefs {
		names = append(names, name)
	}
	sort.Strings(names)

	return s.reconcile(ctx, "flavors", profileID, func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.ProfileFlavorPreference{}).Error; err != nil {
			return fmt.Errorf("failed to clear flavor preferences: %w", err)
		}
		seen := make(map[string]bool, len(names))
		for _, raw := range names {
			name := strings.TrimSpace(raw)
			level := prefs[raw]
			if name == "" || seen[name] {
				continue
			}
			if level < MinFlavorLevel || level > MaxFlavorLevel {
				s.log.Warn("skipping out of range flavor preference",
					zap.Uint("profile_id", profileID),
					zap.String("flavor", name),
					zap.Int("level", level))
				metrics.SkippedFlavorEntries.Inc()
				continue
			}
			seen[name] = true

			var flavor models.Flavor
			if err := tx.Where(models.Flavor{Name: name}).FirstOrCreate(&flavor).Error; err != nil {
				return fmt.Errorf("failed to resolve flavor %q: %w", name, err)
			}
			pref := models.ProfileFlavorPreference{ProfileID: profileID, FlavorID: flavor.ID, PreferenceLevel: level}
			if err := tx.Omit(clause.Associations).Create(&pref).Error; err != nil {
				return fmt.Errorf("failed to link flavor %q: %w", name, err)
			}
		}
		return nil
	})
}

// ProcessSpecialPreferences replaces the free text notes. Duplicates are kept.
func (s *PreferenceService) ProcessSpecialPreferences(ctx context.Context, profileID uint, descriptions []string) error {
	return s.reconcile(ctx, "special", profileID, func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.SpecialPreference{}).Error; err != nil {
			return fmt.Errorf("failed to clear special preferences: %w", err)
		}
		for _, raw := range descriptions {
			description := strings.TrimSpace(raw)
			if description == "" {
				continue
			}
			note := models.SpecialPreference{ProfileID: profileID, Description: description}
			if err := tx.Omit(clause.Associations).Create(&note).Error; err != nil {
				return fmt.Errorf("failed to save special preference: %w", err)
			}
		}
		return nil
	})
}

// ProcessSpecificDishes resets the profile's dish history to the given dishes,
// each at DefaultDishRating. Prior ratings are discarded.
func (s *PreferenceService) ProcessSpecificDishes(ctx context.Context, profileID uint, dishes []string) error {
	return s.reconcile(ctx, "dishes", profileID, func(tx *gorm.DB) error {
		if err := tx.Where("profile_id = ?", profileID).Delete(&models.DishHistory{}).Error; err != nil {
			return fmt.Errorf("failed to clear dish history: %w", err)
		}
		for _, name := range uniqueNames(dishes) {
			var dish models.Dish
			err := tx.Where(models.Dish{Name: name}).
				Attrs(models.Dish{Embedding: dishEmbedding(name, "")}).
				FirstOrCreate(&dish).Error
			if err != nil {
				return fmt.Errorf("failed to resolve dish %q: %w", name, err)
			}
			entry := models.DishHistory{ProfileID: profileID, DishID: dish.ID, UserRating: DefaultDishRating}
			if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
				return fmt.Errorf("failed to save dish history for %q: %w", name, err)
			}
		}
		return nil
	})
}

// SetFlavorPreference sets one flavor rating. Unlike the bulk path, an out of
// range level is an error and nothing is written.
func (s *PreferenceService) SetFlavorPreference(ctx context.Context, email, flavorName string, level int) error {
	flavorName = strings.TrimSpace(flavorName)
	if flavorName == "" {
		return newValidationError("flavor", "flavor name is required")
	}
	if level < MinFlavorLevel || level > MaxFlavorLevel {
		return newValidationError("level", "preference level must be between %d and %d", MinFlavorLevel, MaxFlavorLevel)
	}

	profile, err := s.profiles.EnsureProfile(ctx, email)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var flavor models.Flavor
		if err := tx.Where(models.Flavor{Name: flavorName}).FirstOrCreate(&flavor).Error; err != nil {
			return fmt.Errorf("failed to resolve flavor %q: %w", flavorName, err)
		}

		var pref models.ProfileFlavorPreference
		err := tx.Where("profile_id = ? AND flavor_id = ?", profile.ID, flavor.ID).First(&pref).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			pref = models.ProfileFlavorPreference{ProfileID: profile.ID, FlavorID: flavor.ID, PreferenceLevel: level}
			if err := tx.Omit(clause.Associations).Create(&pref).Error; err != nil {
				return fmt.Errorf("failed to save flavor preference: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load flavor preference: %w", err)
		default:
			if err := tx.Model(&models.ProfileFlavorPreference{}).
				Where("profile_id = ? AND flavor_id = ?", profile.ID, flavor.ID).
				Update("preference_level", level).Error; err != nil {
				return fmt.Errorf("failed to update flavor preference: %w", err)
			}
		}
		return nil
	})
}

func (s *PreferenceService) reconcile(ctx context.Context, category string, profileID uint, fn func(tx *gorm.DB) error) error {
	if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
		return err
	}
	metrics.Reconciliations.WithLabelValues(category).Inc()
	s.log.Debug("reconciled preferences",
		zap.String("category", category),
		zap.Uint("profile_id", profileID))
	return nil
}

// uniqueNames drops blank entries and repeats, keeping first occurrence order.
// Matching is exact; no case folding.
func uniqueNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}
