package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
	"github.com/mypts/profile-api/pkg/messaging"
)

// fakeRepo is an in-memory NotificationRepository.
type fakeRepo struct {
	created   []*model.Notification
	createErr error
	listed    []*model.Notification
	total     int64
}

func (f *fakeRepo) Create(_ context.Context, n *model.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, n)
	return nil
}

func (f *fakeRepo) List(_ context.Context, _ uuid.UUID, _ *model.NotificationFilters) ([]*model.Notification, error) {
	return f.listed, nil
}

func (f *fakeRepo) Count(_ context.Context, _ uuid.UUID, _ *model.NotificationFilters) (int64, error) {
	return f.total, nil
}

func (f *fakeRepo) UnreadCount(_ context.Context, _ uuid.UUID) (int64, error) {
	return f.total, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, id, _ uuid.UUID) (*model.Notification, error) {
	for _, n := range f.created {
		if n.ID == id {
			n.IsRead = true
			return n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) MarkAllRead(_ context.Context, _ uuid.UUID) (int64, error) {
	var count int64
	for _, n := range f.created {
		if !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) Archive(_ context.Context, id, _ uuid.UUID) (*model.Notification, error) {
	for _, n := range f.created {
		if n.ID == id {
			n.IsArchived = true
			return n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeRepo) Delete(_ context.Context, id, _ uuid.UUID) error {
	for i, n := range f.created {
		if n.ID == id {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeRepo) DeleteExpired(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

func TestCreateNotificationPersistsAndPublishes(t *testing.T) {
	repo := &fakeRepo{}
	broker := messaging.NewMemoryBroker()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := broker.Subscribe(ctx, TopicNotificationCreated)
	require.NoError(t, err)

	svc := NewService(repo, broker, zerolog.Nop())
	recipient := uuid.New()

	created, err := svc.CreateNotification(context.Background(), &model.Notification{
		Recipient: recipient,
		Type:      model.TypeProfileView,
		Title:     "New Profile View",
		Message:   "Someone viewed your profile",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, model.PriorityLow, created.Priority)
	assert.False(t, created.CreatedAt.IsZero())
	require.Len(t, repo.created, 1)

	select {
	case payload := <-events:
		var got model.Notification
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, recipient, got.Recipient)
	case <-time.After(time.Second):
		t.Fatal("no creation event published")
	}
}

func TestCreateNotificationValidatesInput(t *testing.T) {
	svc := NewService(&fakeRepo{}, messaging.NewMemoryBroker(), zerolog.Nop())

	_, err := svc.CreateNotification(context.Background(), &model.Notification{
		Title:   "t",
		Message: "m",
	})
	assert.Error(t, err)

	_, err = svc.CreateNotification(context.Background(), &model.Notification{
		Recipient: uuid.New(),
	})
	assert.Error(t, err)
}

func TestCreateNotificationPersistFailurePropagates(t *testing.T) {
	repo := &fakeRepo{createErr: errors.New("db down")}
	svc := NewService(repo, messaging.NewMemoryBroker(), zerolog.Nop())

	_, err := svc.CreateNotification(context.Background(), &model.Notification{
		Recipient: uuid.New(),
		Title:     "t",
		Message:   "m",
	})
	assert.Error(t, err)
}

func TestCreateNotificationPublishFailureIsSwallowed(t *testing.T) {
	repo := &fakeRepo{}
	broker := messaging.NewMemoryBroker()
	broker.Close()

	svc := NewService(repo, broker, zerolog.Nop())

	created, err := svc.CreateNotification(context.Background(), &model.Notification{
		Recipient: uuid.New(),
		Title:     "t",
		Message:   "m",
	})
	require.NoError(t, err)
	assert.NotNil(t, created)
	assert.Len(t, repo.created, 1)
}

func TestGetUserNotificationsPagination(t *testing.T) {
	repo := &fakeRepo{total: 45}
	svc := NewService(repo, messaging.NewMemoryBroker(), zerolog.Nop())

	page, err := svc.GetUserNotifications(context.Background(), uuid.New(), &model.NotificationFilters{
		Page:  2,
		Limit: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(45), page.Pagination.Total)
	assert.Equal(t, int64(3), page.Pagination.Pages)
	assert.Equal(t, 2, page.Pagination.Page)
}

func TestGetUserNotificationsClampsFilters(t *testing.T) {
	repo := &fakeRepo{total: 5}
	svc := NewService(repo, messaging.NewMemoryBroker(), zerolog.Nop())

	page, err := svc.GetUserNotifications(context.Background(), uuid.New(), &model.NotificationFilters{
		Page:  0,
		Limit: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 20, page.Pagination.Limit)
}

func TestMarkAsReadUnknownNotification(t *testing.T) {
	svc := NewService(&fakeRepo{}, messaging.NewMemoryBroker(), zerolog.Nop())

	_, err := svc.MarkAsRead(context.Background(), uuid.New(), uuid.New())
	assert.Error(t, err)
}

func TestNotificationLifecycle(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, messaging.NewMemoryBroker(), zerolog.Nop())
	user := uuid.New()

	created, err := svc.CreateNotification(context.Background(), &model.Notification{
		Recipient: user,
		Title:     "t",
		Message:   "m",
	})
	require.NoError(t, err)

	read, err := svc.MarkAsRead(context.Background(), user, created.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	archived, err := svc.ArchiveNotification(context.Background(), user, created.ID)
	require.NoError(t, err)
	assert.True(t, archived.IsArchived)

	require.NoError(t, svc.DeleteNotification(context.Background(), user, created.ID))
	assert.Error(t, svc.DeleteNotification(context.Background(), user, created.ID))
}
