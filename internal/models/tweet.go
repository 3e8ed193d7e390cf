// Package models contains data structures for the application's domain models.
package models

import (
	"regexp"
	"strings"
	"time"
)

// Tweet type values. The type is derived once at creation time and never
// changes afterwards.
const (
	TweetTypeTweet   = "tweet"
	TweetTypeReply   = "reply"
	TweetTypeRetweet = "retweet"
)

// Tweet represents a post in the Chirp application.
//
// Tweets are soft-deleted: IsDeleted marks a row logically removed while the
// row is retained so replies and retweets keep a valid target. All read
// paths must filter on is_deleted = false.
type Tweet struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text;not null" json:"content"`
	UserID  uint   `gorm:"not null;index" json:"user_id"`
	User    User   `gorm:"foreignKey:UserID" json:"user"`

	ReplyToID   *uint  `gorm:"index" json:"reply_to_id,omitempty"`
	RetweetOfID *uint  `gorm:"index" json:"retweet_of_id,omitempty"`
	TweetType   string `gorm:"size:20;not null;default:'tweet'" json:"tweet_type"`

	IsDeleted bool `gorm:"not null;default:false;index" json:"-"`

	// Denormalized engagement counters, updated transactionally.
	LikeCount    int `gorm:"not null;default:0" json:"like_count"`
	RetweetCount int `gorm:"not null;default:0" json:"retweet_count"`
	ReplyCount   int `gorm:"not null;default:0" json:"reply_count"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	PlaceName string   `gorm:"size:100" json:"place_name,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Hashtags []Hashtag `gorm:"many2many:tweet_hashtags" json:"hashtags,omitempty"`
	Mentions []Mention `gorm:"foreignKey:TweetID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM.
func (Tweet) TableName() string {
	return "tweets"
}

// DeriveTweetType returns the tweet type implied by the optional reply and
// retweet targets. Reply wins when both are set.
func DeriveTweetType(replyToID, retweetOfID *uint) string {
	switch {
	case replyToID != nil:
		return TweetTypeReply
	case retweetOfID != nil:
		return TweetTypeRetweet
	default:
		return TweetTypeTweet
	}
}

var (
	hashtagPattern = regexp.MustCompile(`#(\w+)`)
	mentionPattern = regexp.MustCompile(`@(\w+)`)
)

// ExtractHashtags returns the hashtags in content, lowercased and
// deduplicated, in order of first appearance.
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m[1])
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ExtractMentions returns every @handle occurrence in content, in order and
// including duplicates. Each occurrence produces its own mention
// notification, so duplicates are intentionally preserved here.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	handles := make([]string, 0, len(matches))
	for _, m := range matches {
		handles = append(handles, m[1])
	}
	return handles
}
