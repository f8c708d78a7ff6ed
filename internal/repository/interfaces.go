package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mypts/profile-api/internal/model"
)

// All repository interfaces in one file
type (
	// NotificationRepository is the persistent notification record store.
	NotificationRepository interface {
		Create(ctx context.Context, n *model.Notification) error
		List(ctx context.Context, recipient uuid.UUID, filters *model.NotificationFilters) ([]*model.Notification, error)
		Count(ctx context.Context, recipient uuid.UUID, filters *model.NotificationFilters) (int64, error)
		UnreadCount(ctx context.Context, recipient uuid.UUID) (int64, error)
		MarkRead(ctx context.Context, id, recipient uuid.UUID) (*model.Notification, error)
		MarkAllRead(ctx context.Context, recipient uuid.UUID) (int64, error)
		Archive(ctx context.Context, id, recipient uuid.UUID) (*model.Notification, error)
		Delete(ctx context.Context, id, recipient uuid.UUID) error
		DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	}

	// UserRepository exposes the preference projection of a user plus the
	// device-token mutations the dispatcher needs.
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		AddDevice(ctx context.Context, device *model.Device) error
		RemoveDeviceTokens(ctx context.Context, userID uuid.UUID, tokens []string) error
		UpdateChatSettings(ctx context.Context, userID uuid.UUID, settings model.ChatSettings) error
	}

	// ProfileRepository resolves the display data the notification builders
	// interpolate into titles and messages.
	ProfileRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	}
)

// ErrNotFound is returned by repositories when the requested record does
// not exist.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "record not found" }
