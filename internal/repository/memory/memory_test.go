package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luisz08/notif-svc/internal/model"
)

func TestUpdateStatusIsSingleShot(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()

	n, err := repo.CreateFromDraft(ctx, &model.Notification{
		Channel:     "email",
		Recipient:   "user@example.com",
		Content:     "hello",
		ContentHash: "hash",
	})
	require.NoError(t, err)
	require.Equal(t, model.NotificationStatusPending, n.Status)

	updated, err := repo.UpdateStatus(ctx, n.ID, model.NotificationStatusSent, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.NotificationStatusSent, updated.Status)
	require.NotNil(t, updated.SentAt)
	firstSentAt := *updated.SentAt

	// A second transition attempt must not rewrite the terminal row.
	updated, err = repo.UpdateStatus(ctx, n.ID, model.NotificationStatusFailed, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)

	stored, err := repo.Get(ctx, n.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.NotificationStatusSent, stored.Status)
	require.NotNil(t, stored.SentAt)
	assert.True(t, stored.SentAt.Equal(firstSentAt))
}

func TestUpdateStatusUnknownNotification(t *testing.T) {
	repo := NewNotificationRepository()

	updated, err := repo.UpdateStatus(context.Background(), uuid.New(), model.NotificationStatusSent, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestUpdateStatusKeepsExplicitSentAt(t *testing.T) {
	ctx := context.Background()
	repo := NewNotificationRepository()

	n, err := repo.CreateFromDraft(ctx, &model.Notification{
		Channel:     "email",
		Recipient:   "user@example.com",
		Content:     "hello",
		ContentHash: "hash",
	})
	require.NoError(t, err)

	at := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	updated, err := repo.UpdateStatus(ctx, n.ID, model.NotificationStatusSent, &at)
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.SentAt)
	assert.True(t, updated.SentAt.Equal(at))
}
