// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the Chirp application.
//
// The *_count fields are denormalized aggregates kept in sync
// transactionally by the mutating operations; they are never recomputed on
// read.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email    string `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`

	DisplayName     string `gorm:"size:100" json:"display_name"`
	Bio             string `gorm:"type:text" json:"bio"`
	Location        string `gorm:"size:100" json:"location"`
	Website         string `gorm:"size:200" json:"website"`
	ProfileImageURL string `gorm:"size:255" json:"profile_image_url"`
	BannerImageURL  string `gorm:"size:255" json:"banner_image_url"`

	IsVerified bool `gorm:"not null;default:false" json:"is_verified"`
	IsActive   bool `gorm:"not null;default:true" json:"is_active"`
	IsPrivate  bool `gorm:"not null;default:false" json:"is_private"`

	TweetCount     int `gorm:"not null;default:0" json:"tweet_count"`
	FollowersCount int `gorm:"not null;default:0" json:"followers_count"`
	FollowingCount int `gorm:"not null;default:0" json:"following_count"`
	LikesCount     int `gorm:"not null;default:0" json:"likes_count"`

	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	Tweets        []Tweet        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"tweets,omitempty"`
	Notifications []Notification `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
