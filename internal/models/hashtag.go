// Package models contains data structures for the application's domain models.
package models

import "time"

// Hashtag represents a unique, lowercase tag shared by many tweets.
// TweetCount counts live associations and is never decremented below zero.
type Hashtag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	TweetCount int       `gorm:"not null;default:0" json:"tweet_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (Hashtag) TableName() string {
	return "hashtags"
}

// Mention records that a tweet mentioned a user via an @handle token.
type Mention struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TweetID         uint      `gorm:"not null;index" json:"tweet_id"`
	MentionedUserID uint      `gorm:"not null;index" json:"mentioned_user_id"`
	CreatedAt       time.Time `json:"created_at"`

	MentionedUser User `gorm:"foreignKey:MentionedUserID" json:"mentioned_user,omitempty"`
}

// TableName specifies the table name for GORM.
func (Mention) TableName() string {
	return "mentions"
}
