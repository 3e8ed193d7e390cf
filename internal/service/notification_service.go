// Package service implements the application's business rules on top of the
// repository layer.
package service

import (
	"context"
	"errors"
	"log/slog"

	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/repository"

	"gorm.io/gorm"
)

// NotificationPublisher fans a stored notification out to real-time consumers.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n *models.Notification) error
}

type NotificationService struct {
	notifRepo repository.NotificationRepository
	publisher NotificationPublisher
}

func NewNotificationService(notifRepo repository.NotificationRepository, publisher NotificationPublisher) *NotificationService {
	return &NotificationService{notifRepo: notifRepo, publisher: publisher}
}

// NotifyInput describes a notification to deliver.
type NotifyInput struct {
	RecipientID    uint
	ActorID        uint
	Type           models.NotificationType
	Title          string
	Message        string
	RelatedUserID  *uint
	RelatedTweetID *uint
}

// Notify stores a notification and publishes it to the recipient's channel.
// Self-directed events (actor == recipient) are silently dropped: nobody
// needs to be told about their own actions.
func (s *NotificationService) Notify(ctx context.Context, in NotifyInput) error {
	if in.ActorID == in.RecipientID {
		return nil
	}

	n := &models.Notification{
		UserID:         in.RecipientID,
		Type:           in.Type,
		Title:          in.Title,
		Message:        in.Message,
		RelatedUserID:  in.RelatedUserID,
		RelatedTweetID: in.RelatedTweetID,
	}
	if err := s.notifRepo.Create(ctx, n); err != nil {
		return err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishNotification(ctx, n); err != nil {
			// Fan-out is best effort; the stored row is authoritative.
			middleware.Logger.WarnContext(ctx, "notification publish failed",
				slog.Any("recipient_id", in.RecipientID),
				slog.String("type", string(in.Type)),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID uint, filter repository.NotificationFilter, req models.PageRequest) ([]*models.Notification, int64, error) {
	return s.notifRepo.List(ctx, userID, filter, req)
}

// MarkRead acknowledges one notification. Acknowledging an unknown or
// foreign notification yields NotFound; re-acknowledging is a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	marked, err := s.notifRepo.MarkRead(ctx, userID, id)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !marked {
		// Either the notification is already read (fine, idempotent) or it
		// does not belong to this user.
		if _, err := s.notifRepo.GetByID(ctx, userID, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Notification", id)
			}
			return models.NewInternalError(err)
		}
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.notifRepo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) Summary(ctx context.Context, userID uint) (*models.NotificationSummary, error) {
	return s.notifRepo.Summary(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.notifRepo.UnreadCount(ctx, userID)
}
