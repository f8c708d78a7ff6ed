package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mypts/profile-api/internal/repository"
)

// NotificationCleanupWorker periodically deletes notifications whose
// expires_at has passed.
type NotificationCleanupWorker struct {
	repo            repository.NotificationRepository
	cleanupInterval time.Duration
	logger          zerolog.Logger
}

func NewNotificationCleanupWorker(repo repository.NotificationRepository, cleanupInterval time.Duration, logger zerolog.Logger) *NotificationCleanupWorker {
	return &NotificationCleanupWorker{
		repo:            repo,
		cleanupInterval: cleanupInterval,
		logger:          logger.With().Str("component", "notification_cleanup").Logger(),
	}
}

func (w *NotificationCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cleanupInterval)
	defer ticker.Stop()

	w.logger.Info().Dur("interval", w.cleanupInterval).Msg("notification cleanup worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("notification cleanup worker stopped")
			return
		case <-ticker.C:
			if err := w.cleanup(ctx); err != nil {
				w.logger.Error().Err(err).Msg("failed to clean up expired notifications")
			}
		}
	}
}

func (w *NotificationCleanupWorker) cleanup(ctx context.Context) error {
	cutoff := time.Now().UTC()

	rows, err := w.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete expired notifications: %w", err)
	}

	if rows > 0 {
		w.logger.Info().Int64("deleted", rows).Time("cutoff", cutoff).
			Msg("expired notifications removed")
	}
	return nil
}
