package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
	apperrors "github.com/mypts/profile-api/pkg/errors"
	"github.com/mypts/profile-api/pkg/messaging"
)

// Service owns the notification records: creation, listing, state changes.
// Delivery happens asynchronously in the Dispatcher, fed through the broker.
type Service struct {
	repo   repository.NotificationRepository
	broker messaging.Broker
	logger zerolog.Logger
}

func NewService(repo repository.NotificationRepository, broker messaging.Broker, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		broker: broker,
		logger: logger.With().Str("component", "notification_service").Logger(),
	}
}

// CreateNotification persists a notification and announces it on the
// creation topic. Persistence failures propagate; a publish failure is
// logged and swallowed because the record already exists and the client
// will see it on the next list call.
func (s *Service) CreateNotification(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if n.Recipient == uuid.Nil {
		return nil, apperrors.BadRequest("notification recipient is required", nil)
	}
	if n.Title == "" || n.Message == "" {
		return nil, apperrors.BadRequest("notification title and message are required", nil)
	}

	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.Priority == "" {
		n.Priority = model.PriorityLow
	}
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	s.publishCreated(ctx, n)
	return n, nil
}

func (s *Service) publishCreated(ctx context.Context, n *model.Notification) {
	if err := s.broker.Publish(ctx, TopicNotificationCreated, n); err != nil {
		s.logger.Error().Err(err).Str("notification_id", n.ID.String()).
			Msg("failed to publish notification event")
	}
}

// GetUserNotifications lists a user's notifications, newest first.
func (s *Service) GetUserNotifications(ctx context.Context, userID uuid.UUID, filters *model.NotificationFilters) (*model.NotificationPage, error) {
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.Limit < 1 || filters.Limit > 100 {
		filters.Limit = 20
	}

	items, err := s.repo.List(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	total, err := s.repo.Count(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	pages := (total + int64(filters.Limit) - 1) / int64(filters.Limit)
	return &model.NotificationPage{
		Notifications: items,
		Pagination: model.Pagination{
			Total: total,
			Page:  filters.Page,
			Limit: filters.Limit,
			Pages: pages,
		},
	}, nil
}

func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead marks one notification read. The notification must belong to
// the calling user.
func (s *Service) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.MarkRead(ctx, notificationID, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("notification", err)
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return updated, nil
}

// ArchiveNotification hides a notification from default listings without
// deleting the record.
func (s *Service) ArchiveNotification(ctx context.Context, userID, notificationID uuid.UUID) (*model.Notification, error) {
	n, err := s.repo.Archive(ctx, notificationID, userID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("notification", err)
		}
		return nil, fmt.Errorf("failed to archive notification: %w", err)
	}
	return n, nil
}

func (s *Service) DeleteNotification(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.Delete(ctx, notificationID, userID); err != nil {
		if err == repository.ErrNotFound {
			return apperrors.NotFound("notification", err)
		}
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return nil
}
