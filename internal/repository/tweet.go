package repository

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TweetRepository defines the interface for tweet data operations
type TweetRepository interface {
	Create(ctx context.Context, tweet *models.Tweet, hashtags []string) error
	GetByID(ctx context.Context, id uint) (*models.Tweet, error)
	UpdateContent(ctx context.Context, tweet *models.Tweet, hashtags []string) error
	SoftDelete(ctx context.Context, tweet *models.Tweet) (bool, error)
	ListByUser(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error)
	ListPublic(ctx context.Context, req models.PageRequest) ([]*models.Tweet, int64, error)
	Replies(ctx context.Context, tweetID uint, req models.PageRequest) ([]*models.Tweet, int64, error)
	Like(ctx context.Context, userID, tweetID uint) (bool, error)
	Unlike(ctx context.Context, userID, tweetID uint) (bool, error)
	IsLiked(ctx context.Context, userID, tweetID uint) (bool, error)
	LikedTweets(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error)
	CreateMentions(ctx context.Context, tweetID uint, mentionedUserIDs []uint) error
}

// tweetRepository implements TweetRepository
type tweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new tweet repository
func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

// Create persists the tweet, bumps the author's tweet_count, bumps the
// parent's reply or retweet counter, and attaches hashtag associations.
// Everything commits or rolls back together so counters never drift.
func (r *tweetRepository) Create(ctx context.Context, tweet *models.Tweet, hashtags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("User", "Hashtags", "Mentions").Create(tweet).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.User{}).Where("id = ?", tweet.UserID).
			Update("tweet_count", gorm.Expr("tweet_count + 1")).Error; err != nil {
			return err
		}

		if tweet.ReplyToID != nil {
			if err := tx.Model(&models.Tweet{}).Where("id = ?", *tweet.ReplyToID).
				Update("reply_count", gorm.Expr("reply_count + 1")).Error; err != nil {
				return err
			}
		}
		if tweet.RetweetOfID != nil {
			if err := tx.Model(&models.Tweet{}).Where("id = ?", *tweet.RetweetOfID).
				Update("retweet_count", gorm.Expr("retweet_count + 1")).Error; err != nil {
				return err
			}
		}

		return attachHashtags(tx, tweet.ID, hashtags)
	})
	if err == nil {
		cache.InvalidateUser(ctx, tweet.UserID)
		if tweet.ReplyToID != nil {
			cache.InvalidateTweet(ctx, *tweet.ReplyToID)
		}
		if tweet.RetweetOfID != nil {
			cache.InvalidateTweet(ctx, *tweet.RetweetOfID)
		}
	}
	return err
}

// attachHashtags upserts each tag, links it to the tweet and bumps its
// usage counter. Tags are already lowercased and deduplicated by the caller.
func attachHashtags(tx *gorm.DB, tweetID uint, hashtags []string) error {
	for _, name := range hashtags {
		var tag models.Hashtag
		if err := tx.Where("name = ?", name).
			FirstOrCreate(&tag, models.Hashtag{Name: name}).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"INSERT INTO tweet_hashtags (tweet_id, hashtag_id) VALUES (?, ?)",
			tweetID, tag.ID,
		).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Hashtag{}).Where("id = ?", tag.ID).
			Update("tweet_count", gorm.Expr("tweet_count + 1")).Error; err != nil {
			return err
		}
	}
	return nil
}

// detachHashtags removes every hashtag association of the tweet, decrementing
// each tag's counter without letting it go below zero.
func detachHashtags(tx *gorm.DB, tweetID uint) error {
	var tagIDs []uint
	if err := tx.Raw(
		"SELECT hashtag_id FROM tweet_hashtags WHERE tweet_id = ?", tweetID,
	).Scan(&tagIDs).Error; err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	if err := tx.Exec("DELETE FROM tweet_hashtags WHERE tweet_id = ?", tweetID).Error; err != nil {
		return err
	}
	return tx.Model(&models.Hashtag{}).
		Where("id IN ? AND tweet_count > 0", tagIDs).
		Update("tweet_count", gorm.Expr("tweet_count - 1")).Error
}

func (r *tweetRepository) GetByID(ctx context.Context, id uint) (*models.Tweet, error) {
	var tweet models.Tweet
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Hashtags").
		Where("is_deleted = ?", false).
		First(&tweet, id).Error
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

// UpdateContent saves the edited content and re-derives the hashtag
// associations from the new text.
func (r *tweetRepository) UpdateContent(ctx context.Context, tweet *models.Tweet, hashtags []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Tweet{}).Where("id = ?", tweet.ID).
			Update("content", tweet.Content).Error; err != nil {
			return err
		}
		if err := detachHashtags(tx, tweet.ID); err != nil {
			return err
		}
		return attachHashtags(tx, tweet.ID, hashtags)
	})
	if err == nil {
		cache.InvalidateTweet(ctx, tweet.ID)
	}
	return err
}

// SoftDelete marks the tweet deleted, keeping the row so replies and
// retweets retain a valid target. Returns false when the tweet was already
// deleted; the second delete must not decrement anything twice.
func (r *tweetRepository) SoftDelete(ctx context.Context, tweet *models.Tweet) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Tweet{}).
			Where("id = ? AND is_deleted = ?", tweet.ID, false).
			Update("is_deleted", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true

		if err := tx.Model(&models.User{}).Where("id = ? AND tweet_count > 0", tweet.UserID).
			Update("tweet_count", gorm.Expr("tweet_count - 1")).Error; err != nil {
			return err
		}
		return detachHashtags(tx, tweet.ID)
	})
	if err == nil && deleted {
		cache.InvalidateTweet(ctx, tweet.ID)
		cache.InvalidateUser(ctx, tweet.UserID)
	}
	return deleted, err
}

func (r *tweetRepository) ListByUser(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Where("user_id = ? AND is_deleted = ?", userID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tweets []*models.Tweet
	err := base.
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&tweets).Error
	return tweets, total, err
}

// ListPublic returns recent tweets from active, non-private authors.
func (r *tweetRepository) ListPublic(ctx context.Context, req models.PageRequest) ([]*models.Tweet, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Joins("JOIN users ON users.id = tweets.user_id").
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

func (r *tweetRepository) Replies(ctx context.Context, tweetID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Joins("JOIN users ON users.id = tweets.user_id").
		Where("tweets.reply_to_id = ? AND tweets.is_deleted = ? AND users.is_active = ?", tweetID, false, true)

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

// Like inserts the (user, tweet) edge and bumps both counters in one
// transaction. A duplicate like is a no-op resolved by the unique index.
func (r *tweetRepository) Like(ctx context.Context, userID, tweetID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Like{UserID: userID, TweetID: tweetID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true

		if err := tx.Model(&models.Tweet{}).Where("id = ?", tweetID).
			Update("like_count", gorm.Expr("like_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("likes_count", gorm.Expr("likes_count + 1")).Error
	})
	if err == nil && created {
		cache.InvalidateTweet(ctx, tweetID)
		cache.InvalidateUser(ctx, userID)
	}
	return created, err
}

func (r *tweetRepository) Unlike(ctx context.Context, userID, tweetID uint) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND tweet_id = ?", userID, tweetID).
			Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		if err := tx.Model(&models.Tweet{}).Where("id = ? AND like_count > 0", tweetID).
			Update("like_count", gorm.Expr("like_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ? AND likes_count > 0", userID).
			Update("likes_count", gorm.Expr("likes_count - 1")).Error
	})
	if err == nil && removed {
		cache.InvalidateTweet(ctx, tweetID)
		cache.InvalidateUser(ctx, userID)
	}
	return removed, err
}

func (r *tweetRepository) IsLiked(ctx context.Context, userID, tweetID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND tweet_id = ?", userID, tweetID).
		Count(&count).Error
	return count > 0, err
}

func (r *tweetRepository) LikedTweets(ctx context.Context, userID uint, req models.PageRequest) ([]*models.Tweet, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Tweet{}).
		Joins("JOIN likes ON likes.tweet_id = tweets.id").
		Where("likes.user_id = ? AND tweets.is_deleted = ?", userID, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tweets []*models.Tweet
	err := base.
		Preload("User").
		Order("likes.created_at DESC, tweets.id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&tweets).Error
	return tweets, total, err
}

// CreateMentions records one row per mention occurrence. Duplicates are kept
// on purpose: each occurrence produced its own notification.
func (r *tweetRepository) CreateMentions(ctx context.Context, tweetID uint, mentionedUserIDs []uint) error {
	if len(mentionedUserIDs) == 0 {
		return nil
	}
	mentions := make([]models.Mention, 0, len(mentionedUserIDs))
	for _, uid := range mentionedUserIDs {
		mentions = append(mentions, models.Mention{TweetID: tweetID, MentionedUserID: uid})
	}
	return r.db.WithContext(ctx).Create(&mentions).Error
}
