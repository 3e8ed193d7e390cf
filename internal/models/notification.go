// Package models contains data structures for the application's domain models.
package models

import "time"

// NotificationType enumerates the events that produce a notification.
type NotificationType string

const (
	// NotificationTypeLike indicates the recipient's tweet was liked.
	NotificationTypeLike NotificationType = "like"
	// NotificationTypeRetweet indicates the recipient's tweet was retweeted.
	NotificationTypeRetweet NotificationType = "retweet"
	// NotificationTypeFollow indicates someone started following the recipient.
	NotificationTypeFollow NotificationType = "follow"
	// NotificationTypeMention indicates the recipient was mentioned in a tweet.
	NotificationTypeMention NotificationType = "mention"
	// NotificationTypeReply indicates someone replied to the recipient's tweet.
	NotificationTypeReply NotificationType = "reply"
)

// Notification is an append-only event record for a recipient user.
// Notifications are never created when the actor is the recipient.
type Notification struct {
	ID     uint `gorm:"primaryKey" json:"id"`
	UserID uint `gorm:"not null;index" json:"user_id"`

	Type    NotificationType `gorm:"size:50;not null" json:"type"`
	Title   string           `gorm:"size:200;not null" json:"title"`
	Message string           `gorm:"type:text;not null" json:"message"`

	RelatedUserID  *uint `json:"related_user_id,omitempty"`
	RelatedTweetID *uint `json:"related_tweet_id,omitempty"`

	IsRead    bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`

	RelatedUser  *User  `gorm:"foreignKey:RelatedUserID" json:"related_user,omitempty"`
	RelatedTweet *Tweet `gorm:"foreignKey:RelatedTweetID" json:"related_tweet,omitempty"`
}

// TableName specifies the table name for GORM.
func (Notification) TableName() string {
	return "notifications"
}

// NotificationSummary aggregates unread counts grouped by type.
type NotificationSummary struct {
	TotalUnread int64                                     `json:"total_unread"`
	ByType      map[NotificationType]NotificationTypeStat `json:"by_type"`
}

// NotificationTypeStat holds total and unread counts for one type.
type NotificationTypeStat struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}
