package service

import (
	"context"
	"errors"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyStoresAndPublishes(t *testing.T) {
	repo := noopNotifRepo()
	publisher := &publisherStub{}
	svc := NewNotificationService(repo, publisher)

	actorID := uint(1)
	err := svc.Notify(context.Background(), NotifyInput{
		RecipientID:   2,
		ActorID:       1,
		Type:          models.NotificationTypeFollow,
		Title:         "New follower",
		Message:       "@alice started following you",
		RelatedUserID: &actorID,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, repo.created[0], publisher.published[0])
}

func TestNotifySelfIsDropped(t *testing.T) {
	repo := noopNotifRepo()
	publisher := &publisherStub{}
	svc := NewNotificationService(repo, publisher)

	err := svc.Notify(context.Background(), NotifyInput{
		RecipientID: 1,
		ActorID:     1,
		Type:        models.NotificationTypeLike,
	})
	require.NoError(t, err)
	assert.Empty(t, repo.created)
	assert.Empty(t, publisher.published)
}

func TestNotifySurvivesPublishFailure(t *testing.T) {
	repo := noopNotifRepo()
	publisher := &publisherStub{
		publishFn: func(_ context.Context, _ *models.Notification) error {
			return errors.New("redis is down")
		},
	}
	svc := NewNotificationService(repo, publisher)

	err := svc.Notify(context.Background(), NotifyInput{
		RecipientID: 2,
		ActorID:     1,
		Type:        models.NotificationTypeLike,
	})
	require.NoError(t, err, "the stored row is authoritative, fan-out is best effort")
	assert.Len(t, repo.created, 1)
	assert.Empty(t, publisher.published)
}

func TestMarkReadIdempotentAndScoped(t *testing.T) {
	repo := noopNotifRepo()
	svc := NewNotificationService(repo, nil)

	// Freshly marked.
	require.NoError(t, svc.MarkRead(context.Background(), 1, 10))

	// Already read: MarkRead affects no row but the notification exists.
	repo.markReadFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
	repo.getByIDFn = func(_ context.Context, userID, id uint) (*models.Notification, error) {
		return &models.Notification{ID: id, UserID: userID, IsRead: true}, nil
	}
	require.NoError(t, svc.MarkRead(context.Background(), 1, 10))

	// Foreign or unknown notification.
	repo = noopNotifRepo()
	repo.markReadFn = func(_ context.Context, _, _ uint) (bool, error) { return false, nil }
	svc = NewNotificationService(repo, nil)
	err := svc.MarkRead(context.Background(), 1, 10)
	assertAppError(t, err, "NOT_FOUND")
}
