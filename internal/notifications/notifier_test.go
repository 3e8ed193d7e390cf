package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"chirp/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishAndSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	notifier := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan string, 1)
	require.NoError(t, notifier.StartPatternSubscriber(ctx, func(channel, payload string) {
		received <- payload
	}))

	// Give the subscriber a moment to register.
	time.Sleep(50 * time.Millisecond)

	n := &models.Notification{
		UserID:  7,
		Type:    models.NotificationTypeLike,
		Title:   "New like",
		Message: "alice liked your tweet",
	}
	require.NoError(t, notifier.PublishNotification(ctx, n))

	select {
	case payload := <-received:
		var got models.Notification
		require.NoError(t, json.Unmarshal([]byte(payload), &got))
		assert.Equal(t, uint(7), got.UserID)
		assert.Equal(t, models.NotificationTypeLike, got.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published notification")
	}
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	notifier := NewNotifier(nil)
	ctx := context.Background()

	assert.NoError(t, notifier.PublishNotification(ctx, &models.Notification{UserID: 1}))
	assert.NoError(t, notifier.StartPatternSubscriber(ctx, func(string, string) {}))
}

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "notifications:user:42", UserChannel(42))
}
