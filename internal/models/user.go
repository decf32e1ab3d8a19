package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AppUser is the authenticated identity. Email is the external identity key.
type AppUser struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Name         string         `gorm:"size:100" json:"name"`
	Email        string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

func (AppUser) TableName() string {
	return "app_users"
}

func (u *AppUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Profile owns every preference category of a user. There is at most one
// profile per user and it is created on the first preference write.
type Profile struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	User      AppUser   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
