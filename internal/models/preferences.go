package models

import "time"

// Allergy is shared reference data, looked up by exact name.
type Allergy struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Allergy) TableName() string {
	return "allergies"
}

type ProfileAllergy struct {
	ProfileID uint      `gorm:"primaryKey;autoIncrement:false" json:"profile_id"`
	AllergyID uint      `gorm:"primaryKey;autoIncrement:false" json:"allergy_id"`
	Profile   Profile   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Allergy   Allergy   `gorm:"foreignKey:AllergyID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (ProfileAllergy) TableName() string {
	return "profile_allergies"
}

type Flavor struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Flavor) TableName() string {
	return "flavors"
}

// ProfileFlavorPreference rates a flavor from 1 (dislike) to 10 (love).
type ProfileFlavorPreference struct {
	ProfileID       uint      `gorm:"primaryKey;autoIncrement:false" json:"profile_id"`
	FlavorID        uint      `gorm:"primaryKey;autoIncrement:false" json:"flavor_id"`
	Profile         Profile   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Flavor          Flavor    `gorm:"foreignKey:FlavorID" json:"-"`
	PreferenceLevel int       `gorm:"not null;check:preference_level >= 1 AND preference_level <= 10" json:"preference_level"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (ProfileFlavorPreference) TableName() string {
	return "profile_flavor_preferences"
}

// ConstraintType is a dietary label such as "Vegetarian" or "Gluten-Free".
type ConstraintType struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (ConstraintType) TableName() string {
	return "constraint_types"
}

type ProfileConstraint struct {
	ProfileID        uint           `gorm:"primaryKey;autoIncrement:false" json:"profile_id"`
	ConstraintTypeID uint           `gorm:"primaryKey;autoIncrement:false" json:"constraint_type_id"`
	Profile          Profile        `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	ConstraintType   ConstraintType `gorm:"foreignKey:ConstraintTypeID" json:"-"`
	CreatedAt        time.Time      `json:"created_at"`
}

func (ProfileConstraint) TableName() string {
	return "profile_constraints"
}

// SpecialPreference is a free text note. A profile may hold any number of them.
type SpecialPreference struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	ProfileID   uint      `gorm:"not null;index" json:"profile_id"`
	Profile     Profile   `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Description string    `gorm:"type:text;not null" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (SpecialPreference) TableName() string {
	return "special_preferences"
}
