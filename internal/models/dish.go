package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDimensions is the width of Dish.Embedding.
const EmbeddingDimensions = 64

type Dish struct {
	ID          uint             `gorm:"primarykey" json:"id"`
	Name        string           `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	Embedding   *pgvector.Vector `gorm:"type:vector(64)" json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Dish) TableName() string {
	return "dishes"
}

// DishHistory records one rating per (profile, dish) pair.
type DishHistory struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProfileID  uint      `gorm:"not null;uniqueIndex:idx_dish_history_profile_dish" json:"profile_id"`
	DishID     uint      `gorm:"not null;uniqueIndex:idx_dish_history_profile_dish" json:"dish_id"`
	Profile    Profile   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Dish       Dish      `gorm:"foreignKey:DishID;constraint:OnDelete:CASCADE" json:"-"`
	UserRating int       `gorm:"not null;check:user_rating >= 1 AND user_rating <= 5" json:"user_rating"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (DishHistory) TableName() string {
	return "dish_history"
}

// All returns every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&AppUser{},
		&Profile{},
		&Allergy{},
		&ProfileAllergy{},
		&Flavor{},
		&ProfileFlavorPreference{},
		&ConstraintType{},
		&ProfileConstraint{},
		&SpecialPreference{},
		&Dish{},
		&DishHistory{},
	}
}
