package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pageza/menuwise/backend/internal/models"
	"github.com/pageza/menuwise/backend/internal/types"
)

// Aggregator assembles a profile's preferences into one document. It never
// writes.
type Aggregator struct {
	db       *gorm.DB
	profiles *ProfileService
}

func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db, profiles: NewProfileService(db)}
}

// GetPreferences returns the preference document of the user. A user without
// a profile gets an empty document, not an error. Allergies and dietary
// constraints are sorted alphabetically by name; special preferences keep
// insertion order. SpecificDishes is always empty; ratings are served by the
// dish history instead.
func (a *Aggregator) GetPreferences(ctx context.Context, email string) (*types.PreferenceDocument, error) {
	doc := types.NewPreferenceDocument()

	profile, err := a.profiles.FindByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return doc, nil
	}
	if err != nil {
		return nil, err
	}

	var (
		allergies   []string
		constraints []string
		special     []string
		flavors     []flavorLevel
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.db.WithContext(gctx).
			Model(&models.Allergy{}).
			Joins("JOIN profile_allergies ON profile_allergies.allergy_id = allergies.id").
			Where("profile_allergies.profile_id = ?", profile.ID).
			Order("allergies.name").
			Pluck("allergies.name", &allergies).Error
	})
	g.Go(func() error {
		return a.db.WithContext(gctx).
			Model(&models.ConstraintType{}).
			Joins("JOIN profile_constraints ON profile_constraints.constraint_type_id = constraint_types.id").
			Where("profile_constraints.profile_id = ?", profile.ID).
			Order("constraint_types.name").
			Pluck("constraint_types.name", &constraints).Error
	})
	g.Go(func() error {
		return a.db.WithContext(gctx).
			Model(&models.ProfileFlavorPreference{}).
			Select("flavors.name AS name, profile_flavor_preferences.preference_level AS level").
			Joins("JOIN flavors ON flavors.id = profile_flavor_preferences.flavor_id").
			Where("profile_flavor_preferences.profile_id = ?", profile.ID).
			Scan(&flavors).Error
	})
	g.Go(func() error {
		return a.db.WithContext(gctx).
			Model(&models.SpecialPreference{}).
			Where("profile_id = ?", profile.ID).
			Order("id").
			Pluck("description", &special).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to aggregate preferences: %w", err)
	}

	doc.Allergies = append(doc.Allergies, allergies...)
	doc.DietaryConstraints = append(doc.DietaryConstraints, constraints...)
	doc.SpecialPreferences = append(doc.SpecialPreferences, special...)
	for _, f := range flavors {
		doc.FlavorPreferences[f.Name] = f.Level
	}
	return doc, nil
}

type flavorLevel struct {
	Name  string
	Level int
}
