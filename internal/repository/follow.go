package repository

import (
	"context"

	"chirp/internal/cache"
	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for social graph operations
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followedID uint) (bool, error)
	Unfollow(ctx context.Context, followerID, followedID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	Followers(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error)
	Following(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error)
}

// followRepository implements FollowRepository
type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow inserts the edge and adjusts both users' counters in one transaction.
// Concurrent duplicate attempts are resolved by the unique pair index; the
// losing insert affects zero rows and the counters stay untouched.
func (r *followRepository) Follow(ctx context.Context, followerID, followedID uint) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.Follow{FollowerID: followerID, FollowedID: followedID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true

		if err := tx.Model(&models.User{}).Where("id = ?", followerID).
			Update("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", followedID).
			Update("followers_count", gorm.Expr("followers_count + 1")).Error
	})
	if err == nil && created {
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followedID)
	}
	return created, err
}

// Unfollow removes the edge and adjusts both users' counters in one transaction.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followedID uint) (bool, error) {
	removed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND followed_id = ?", followerID, followedID).
			Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		if err := tx.Model(&models.User{}).Where("id = ? AND following_count > 0", followerID).
			Update("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ? AND followers_count > 0", followedID).
			Update("followers_count", gorm.Expr("followers_count - 1")).Error
	})
	if err == nil && removed {
		cache.InvalidateUser(ctx, followerID)
		cache.InvalidateUser(ctx, followedID)
	}
	return removed, err
}

func (r *followRepository) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error
	return count > 0, err
}

// FollowingIDs returns the IDs of every user followed by userID.
// Feed queries fetch this set once per request instead of per row.
func (r *followRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followed_id", &ids).Error
	return ids, err
}

func (r *followRepository) Followers(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followed_id = ? AND users.is_active = ?", userID, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := base.
		Order("follows.created_at DESC, users.id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&users).Error
	return users, total, err
}

func (r *followRepository) Following(ctx context.Context, userID uint, req models.PageRequest) ([]*models.User, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ? AND users.is_active = ?", userID, true)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []*models.User
	err := base.
		Order("follows.created_at DESC, users.id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&users).Error
	return users, total, err
}
