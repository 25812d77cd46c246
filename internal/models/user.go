// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account. RatingAverage and RatingCount are the
// creator's reputation, denormalized from the ratings their events receive.
type User struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Username      string         `gorm:"uniqueIndex;not null" json:"username"`
	Email         string         `gorm:"uniqueIndex;not null" json:"email"`
	Password      string         `gorm:"not null" json:"-"`
	RecoveryCode  string         `json:"-"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	AvatarURL     string         `json:"avatar_url"`
	Bio           string         `json:"bio"`
	RatingAverage float64        `gorm:"default:0" json:"rating_average"`
	RatingCount   int            `gorm:"default:0" json:"rating_count"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Events        []Event        `gorm:"foreignKey:CreatorID" json:"events,omitempty"`
	Ratings       []Rating       `gorm:"foreignKey:UserID" json:"ratings,omitempty"`
}

// PublicProfile is the identity shape embedded in event and rating responses.
type PublicProfile struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Public strips the private fields of a user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		AvatarURL: u.AvatarURL,
	}
}
