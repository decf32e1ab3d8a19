package types

type RegisterRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

// RecommendationRequest carries extracted menu text and, for guests, the
// preferences to classify against.
type RecommendationRequest struct {
	MenuText    string              `json:"menuText" validate:"max=20000"`
	Preferences *PreferenceDocument `json:"preferences"`
}

type RatingRequest struct {
	DishID *uint `json:"dishId" validate:"required"`
	Rating *int  `json:"rating" validate:"required"`
}

type FlavorLevelRequest struct {
	Level *int `json:"level" validate:"required"`
}

type CatalogEntryRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
}
