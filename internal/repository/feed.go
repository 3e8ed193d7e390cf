package repository

import (
	"context"
	"time"

	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Feed ranking windows. The recency bucket keeps the home timeline fresh
// without hiding older tweets entirely; discover only surfaces the last day.
const (
	HomeRecencyWindow = 48 * time.Hour
	DiscoverWindow    = 24 * time.Hour
)

// FeedRepository defines the interface for ranked timeline queries.
// Every variant pages with a created_at + id tiebreak so the ordering is
// total and pages never overlap or skip rows.
type FeedRepository interface {
	Home(ctx context.Context, viewerID uint, followingIDs []uint, req models.PageRequest) ([]*models.Tweet, int64, error)
	Discover(ctx context.Context, viewerID uint, followingIDs []uint, req models.PageRequest) ([]*models.Tweet, int64, error)
	Hashtag(ctx context.Context, name string, req models.PageRequest) ([]*models.Tweet, int64, error)
	Mentions(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error)
}

// feedRepository implements FeedRepository
type feedRepository struct {
	db *gorm.DB
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository(db *gorm.DB) FeedRepository {
	return &feedRepository{db: db}
}

// Home returns tweets by the viewer and their followees, ranked by a
// three-level sort: tweets from the last 48 hours first, then total
// engagement, then recency.
func (r *feedRepository) Home(ctx context.Context, viewerID uint, followingIDs []uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	defer observability.ObserveFeedQuery("home", time.Now())

	authorIDs := append([]uint{viewerID}, followingIDs...)
	cutoff := time.Now().Add(-HomeRecencyWindow)

	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Where("user_id IN ? AND is_deleted = ?", authorIDs, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tweets []*models.Tweet
	// Order needs a clause.OrderBy here: a bare expression with bind
	// variables is not something Order(string) can carry.
	err := base.
		Preload("User").
		Clauses(clause.OrderBy{Expression: gorm.Expr(
			"(created_at > ?) DESC, (like_count + retweet_count + reply_count) DESC, created_at DESC, id DESC",
			cutoff,
		)}).
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&tweets).Error
	return tweets, total, err
}

// Discover surfaces engaging tweets from the last 24 hours by active,
// non-private authors the viewer does not already follow. Retweets weigh
// double in the engagement score.
func (r *feedRepository) Discover(ctx context.Context, viewerID uint, followingIDs []uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	defer observability.ObserveFeedQuery("discover", time.Now())

	excludedIDs := append([]uint{viewerID}, followingIDs...)
	cutoff := time.Now().Add(-DiscoverWindow)

	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Joins("JOIN users ON users.id = tweets.user_id").
		Where("tweets.is_deleted = ? AND tweets.created_at > ?", false, cutoff).
		Where("tweets.user_id NOT IN ?", excludedIDs).
		Where("users.is_active = ? AND users.is_private = ?", true, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tweets []*models.Tweet
	err := base.
		Preload("User").
		Order("(tweets.like_count + tweets.retweet_count * 2 + tweets.reply_count) DESC, tweets.created_at DESC, tweets.id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&tweets).Error
	return tweets, total, err
}

// Hashtag lists tweets carrying the normalized tag, newest first.
// Existence of the hashtag itself is checked by the caller.
func (r *feedRepository) Hashtag(ctx context.Context, name string, req models.PageRequest) ([]*models.Tweet, int64, error) {
	defer observability.ObserveFeedQuery("hashtag", time.Now())

	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Joins("JOIN tweet_hashtags ON tweet_hashtags.tweet_id = tweets.id").
		Joins("JOIN hashtags ON hashtags.id = tweet_hashtags.hashtag_id").
		Joins("JOIN users ON users.id = tweets.user_id").
		Where("hashtags.name = ?", name).
		Where("tweets.is_deleted = ? AND users.is_active = ? AND users.is_private = ?", false, true, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tweets []*models.Tweet
	err := base.
		Preload("User").
		Order("tweets.created_at DESC, tweets.id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&tweets).Error
	return tweets, total, err
}

// Mentions lists tweets mentioning the user, newest first. The subquery
// collapses duplicate mention rows of the same tweet into one feed entry.
func (r *feedRepository) Mentions(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	defer observability.ObserveFeedQuery("mentions", time.Now())

	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Joins("JOIN users ON users.id = tweets.user_id").
		Where("tweets.id IN (SELECT tweet_id FROM mentions WHERE mentioned_user_id = ?)", userID).
		Where("tweets.is_deleted = ? AND users.is_active = ?", false, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tweets []*models.Tweet
	err := base.
		Preload("User").
		Order("tweets.created_at DESC, tweets.id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&tweets).Error
	return tweets, total, err
}
