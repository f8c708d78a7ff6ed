package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
)

type notificationRepository struct {
	*BaseRepository
}

func NewNotificationRepository(base *BaseRepository) repository.NotificationRepository {
	return &notificationRepository{BaseRepository: base}
}

// notificationRow flattens the nested RelatedTo/Action structs into columns.
type notificationRow struct {
	ID           uuid.UUID              `db:"id"`
	Recipient    uuid.UUID              `db:"recipient"`
	Sender       *uuid.UUID             `db:"sender"`
	Type         model.NotificationType `db:"type"`
	Title        string                 `db:"title"`
	Message      string                 `db:"message"`
	RelatedModel sql.NullString         `db:"related_model"`
	RelatedID    *uuid.UUID             `db:"related_id"`
	ActionText   sql.NullString         `db:"action_text"`
	ActionURL    sql.NullString         `db:"action_url"`
	Priority     model.Priority         `db:"priority"`
	IsRead       bool                   `db:"is_read"`
	IsArchived   bool                   `db:"is_archived"`
	Metadata     model.Map              `db:"metadata"`
	ExpiresAt    *time.Time             `db:"expires_at"`
	CreatedAt    time.Time              `db:"created_at"`
	UpdatedAt    time.Time              `db:"updated_at"`
}

func (r notificationRow) toModel() *model.Notification {
	n := &model.Notification{
		ID:         r.ID,
		Recipient:  r.Recipient,
		Sender:     r.Sender,
		Type:       r.Type,
		Title:      r.Title,
		Message:    r.Message,
		Priority:   r.Priority,
		IsRead:     r.IsRead,
		IsArchived: r.IsArchived,
		Metadata:   r.Metadata,
		ExpiresAt:  r.ExpiresAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.RelatedModel.Valid && r.RelatedID != nil {
		n.RelatedTo = &model.RelatedTo{Model: r.RelatedModel.String, ID: *r.RelatedID}
	}
	if r.ActionText.Valid || r.ActionURL.Valid {
		n.Action = &model.Action{Text: r.ActionText.String, URL: r.ActionURL.String}
	}
	return n
}

const notificationColumns = `id, recipient, sender, type, title, message,
	related_model, related_id, action_text, action_url,
	priority, is_read, is_archived, metadata, expires_at, created_at, updated_at`

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (
			id, recipient, sender, type, title, message,
			related_model, related_id, action_text, action_url,
			priority, is_read, is_archived, metadata, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	var relatedModel, actionText, actionURL *string
	var relatedID *uuid.UUID
	if n.RelatedTo != nil {
		relatedModel = &n.RelatedTo.Model
		id := n.RelatedTo.ID
		relatedID = &id
	}
	if n.Action != nil {
		actionText = &n.Action.Text
		actionURL = &n.Action.URL
	}

	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Recipient, n.Sender, n.Type, n.Title, n.Message,
		relatedModel, relatedID, actionText, actionURL,
		n.Priority, n.IsRead, n.IsArchived, n.Metadata, n.ExpiresAt, n.CreatedAt, n.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *notificationRepository) List(ctx context.Context, recipient uuid.UUID, filters *model.NotificationFilters) ([]*model.Notification, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM notifications
		WHERE recipient = $1 AND is_archived = $2
	`, notificationColumns)
	args := []interface{}{recipient, filters.IsArchived}

	if filters.IsRead != nil {
		query += fmt.Sprintf(" AND is_read = $%d", len(args)+1)
		args = append(args, *filters.IsRead)
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filters.Limit, (filters.Page-1)*filters.Limit)

	var rows []notificationRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	notifications := make([]*model.Notification, len(rows))
	for i, row := range rows {
		notifications[i] = row.toModel()
	}
	return notifications, nil
}

func (r *notificationRepository) Count(ctx context.Context, recipient uuid.UUID, filters *model.NotificationFilters) (int64, error) {
	query := `SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND is_archived = $2`
	args := []interface{}{recipient, filters.IsArchived}

	if filters.IsRead != nil {
		query += fmt.Sprintf(" AND is_read = $%d", len(args)+1)
		args = append(args, *filters.IsRead)
	}

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipient uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND is_read = FALSE AND is_archived = FALSE`
	if err := r.db.GetContext(ctx, &count, query, recipient); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, recipient uuid.UUID) (*model.Notification, error) {
	query := fmt.Sprintf(`
		UPDATE notifications SET is_read = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient = $2
		RETURNING %s
	`, notificationColumns)

	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, id, recipient); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return row.toModel(), nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipient uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE, updated_at = NOW()
		WHERE recipient = $1 AND is_read = FALSE
	`, recipient)
	if err != nil {
		return 0, fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return result.RowsAffected()
}

func (r *notificationRepository) Archive(ctx context.Context, id, recipient uuid.UUID) (*model.Notification, error) {
	query := fmt.Sprintf(`
		UPDATE notifications SET is_archived = TRUE, updated_at = NOW()
		WHERE id = $1 AND recipient = $2
		RETURNING %s
	`, notificationColumns)

	var row notificationRow
	if err := r.db.GetContext(ctx, &row, query, id, recipient); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to archive notification: %w", err)
	}
	return row.toModel(), nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, recipient uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE id = $1 AND recipient = $2`, id, recipient)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *notificationRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at <= $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired notifications: %w", err)
	}
	return result.RowsAffected()
}
