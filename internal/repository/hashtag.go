package repository

import (
	"context"
	"time"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
)

// TrendingHashtag is one row of the trending aggregation.
type TrendingHashtag struct {
	Name       string `json:"name"`
	TweetCount int64  `json:"tweet_count"`
}

// HashtagRepository defines the interface for hashtag data operations
type HashtagRepository interface {
	GetByName(ctx context.Context, name string) (*models.Hashtag, error)
	Trending(ctx context.Context, window time.Duration, limit int) ([]TrendingHashtag, error)
}

// hashtagRepository implements HashtagRepository
type hashtagRepository struct {
	db *gorm.DB
}

// NewHashtagRepository creates a new hashtag repository
func NewHashtagRepository(db *gorm.DB) HashtagRepository {
	return &hashtagRepository{db: db}
}

func (r *hashtagRepository) GetByName(ctx context.Context, name string) (*models.Hashtag, error) {
	var tag models.Hashtag
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// Trending aggregates hashtag usage since the cutoff, counting only live
// tweets from active, non-private authors. Cached briefly because the same
// query is served to every visitor of the trending endpoint.
func (r *hashtagRepository) Trending(ctx context.Context, window time.Duration, limit int) ([]TrendingHashtag, error) {
	since := time.Now().Add(-window)
	var rows []TrendingHashtag
	err := cache.Aside(ctx, cache.TrendingKey(window.String(), limit), &rows, cache.TrendingTTL, func() error {
		defer observability.TrackQuery("trending", "hashtags")()
		return r.db.WithContext(ctx).Raw(`
			SELECT hashtags.name AS name, COUNT(*) AS tweet_count
			FROM hashtags
			JOIN tweet_hashtags ON tweet_hashtags.hashtag_id = hashtags.id
			JOIN tweets ON tweets.id = tweet_hashtags.tweet_id
			JOIN users ON users.id = tweets.user_id
			WHERE tweets.is_deleted = ?
			  AND tweets.created_at > ?
			  AND users.is_active = ?
			  AND users.is_private = ?
			GROUP BY hashtags.id, hashtags.name
			ORDER BY tweet_count DESC, hashtags.name ASC
			LIMIT ?`,
			false, since, true, false, limit,
		).Scan(&rows).Error
	})
	return rows, err
}
