package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	TweetKeyPrefix    = "tweet:%d"
	ProfileKeyPrefix  = "profile:%s"
	TrendingKeyPrefix = "trending:hashtags:%s:%d"
	UnreadKeyPrefix   = "notifications:unread:%d"
)

const (
	UserTTL     = 5 * time.Minute
	TweetTTL    = 30 * time.Minute
	ProfileTTL  = 5 * time.Minute
	TrendingTTL = 2 * time.Minute
	UnreadTTL   = time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func TweetKey(tweetID uint) string {
	return fmt.Sprintf(TweetKeyPrefix, tweetID)
}

func ProfileKey(username string) string {
	return fmt.Sprintf(ProfileKeyPrefix, username)
}

func TrendingKey(window string, limit int) string {
	return fmt.Sprintf(TrendingKeyPrefix, window, limit)
}

func UnreadCountKey(userID uint) string {
	return fmt.Sprintf(UnreadKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateTweet(ctx context.Context, tweetID uint) {
	Invalidate(ctx, TweetKey(tweetID))
}

func InvalidateProfile(ctx context.Context, username string) {
	Invalidate(ctx, ProfileKey(username))
}

func InvalidateUnreadCount(ctx context.Context, userID uint) {
	Invalidate(ctx, UnreadCountKey(userID))
}
