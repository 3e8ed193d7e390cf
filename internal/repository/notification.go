package repository

import (
	"context"
	"time"

	"chirp/internal/cache"
	"chirp/internal/models"
	"chirp/internal/observability"

	"gorm.io/gorm"
)

// NotificationFilter narrows a notification listing.
type NotificationFilter struct {
	UnreadOnly bool
	Type       models.NotificationType
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, userID, id uint) (*models.Notification, error)
	List(ctx context.Context, userID uint, filter NotificationFilter, req models.PageRequest) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, userID, id uint) (bool, error)
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	Summary(ctx context.Context, userID uint) (*models.NotificationSummary, error)
}

// notificationRepository implements NotificationRepository
type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	err := r.db.WithContext(ctx).Omit("RelatedUser", "RelatedTweet").Create(n).Error
	if err == nil {
		cache.InvalidateUnreadCount(ctx, n.UserID)
	}
	return err
}

// GetByID fetches one notification scoped to its recipient.
func (r *notificationRepository) GetByID(ctx context.Context, userID, id uint) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepository) List(ctx context.Context, userID uint, filter NotificationFilter, req models.PageRequest) ([]*models.Notification, int64, error) {
	base := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ?", userID)
	if filter.UnreadOnly {
		base = base.Where("is_read = ?", false)
	}
	if filter.Type != "" {
		base = base.Where("type = ?", filter.Type)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []*models.Notification
	err := base.
		Preload("RelatedUser").
		Preload("RelatedTweet").
		Order("created_at DESC, id DESC").
		Limit(req.Limit()).
		Offset(req.Offset()).
		Find(&notifications).Error
	return notifications, total, err
}

// MarkRead flags one notification as read. The user scope in the WHERE
// clause keeps users from acknowledging each other's notifications.
// Returns false when the notification does not exist or is already read.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uint) (bool, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateUnreadCount(ctx, userID)
	}
	return res.RowsAffected > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": &now})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidateUnreadCount(ctx, userID)
	}
	return res.RowsAffected, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.UnreadCountKey(userID), &count, cache.UnreadTTL, func() error {
		return r.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("user_id = ? AND is_read = ?", userID, false).
			Count(&count).Error
	})
	return count, err
}

// Summary aggregates total and unread counts per notification type.
func (r *notificationRepository) Summary(ctx context.Context, userID uint) (*models.NotificationSummary, error) {
	defer observability.TrackQuery("summary", "notifications")()

	type typeRow struct {
		Type   models.NotificationType
		Total  int64
		Unread int64
	}
	var rows []typeRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT type,
		       COUNT(*) AS total,
		       SUM(CASE WHEN is_read = ? THEN 1 ELSE 0 END) AS unread
		FROM notifications
		WHERE user_id = ?
		GROUP BY type`,
		false, userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := &models.NotificationSummary{
		ByType: make(map[models.NotificationType]models.NotificationTypeStat, len(rows)),
	}
	for _, row := range rows {
		summary.TotalUnread += row.Unread
		summary.ByType[row.Type] = models.NotificationTypeStat{Total: row.Total, Unread: row.Unread}
	}
	return summary, nil
}
