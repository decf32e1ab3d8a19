package types

import "time"

// PreferenceDocument is the normalized view of a profile's preferences.
// Nil categories are treated as "not provided" on writes; reads always
// return non-nil values.
type PreferenceDocument struct {
	Allergies          []string       `json:"allergies" validate:"omitempty,max=100,dive,max=100"`
	DietaryConstraints []string       `json:"dietaryConstraints" validate:"omitempty,max=100,dive,max=100"`
	FlavorPreferences  map[string]int `json:"flavorPreferences" validate:"omitempty,max=100"`
	SpecificDishes     []string       `json:"specificDishes" validate:"omitempty,max=200,dive,max=200"`
	SpecialPreferences []string       `json:"specialPreferences" validate:"omitempty,max=50,dive,max=1000"`
	DishHistory        map[string]int `json:"dishHistory,omitempty"`
}

// NewPreferenceDocument returns a document with every category empty.
func NewPreferenceDocument() *PreferenceDocument {
	return &PreferenceDocument{
		Allergies:          []string{},
		DietaryConstraints: []string{},
		FlavorPreferences:  map[string]int{},
		SpecificDishes:     []string{},
		SpecialPreferences: []string{},
	}
}

// ClassificationPreferences flattens the document into the shape the dish
// classifier consumes.
func (d *PreferenceDocument) ClassificationPreferences() ClassificationPreferences {
	if d == nil {
		return ClassificationPreferences{}
	}
	return ClassificationPreferences{
		FlavorProfile: d.FlavorPreferences,
		Allergies:     d.Allergies,
		Constraints:   d.DietaryConstraints,
	}
}

type ClassificationPreferences struct {
	FlavorProfile map[string]int `json:"flavorProfile"`
	Allergies     []string       `json:"allergies"`
	Constraints   []string       `json:"constraints"`
}

// DishHistoryEntry is one rated dish, joined to its name.
type DishHistoryEntry struct {
	DishID    uint      `json:"dishId"`
	DishName  string    `json:"dishName"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
