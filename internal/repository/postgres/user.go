package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
)

type userRepository struct {
	*BaseRepository
}

func NewUserRepository(base *BaseRepository) repository.UserRepository {
	return &userRepository{BaseRepository: base}
}

// Get loads the preference projection only; account credentials and the
// rest of the user document belong to the auth service.
func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `
		SELECT id, email, full_name, notifications, chat_settings
		FROM users WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var devices []model.Device
	deviceQuery := `
		SELECT id, user_id, name, push_token, created_at
		FROM user_devices WHERE user_id = $1
		ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &devices, deviceQuery, id); err != nil {
		return nil, fmt.Errorf("failed to load user devices: %w", err)
	}
	user.Devices = devices

	return &user, nil
}

func (r *userRepository) AddDevice(ctx context.Context, device *model.Device) error {
	query := `
		INSERT INTO user_devices (id, user_id, name, push_token, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, push_token) DO UPDATE SET name = EXCLUDED.name
	`
	_, err := r.db.ExecContext(ctx, query,
		device.ID, device.UserID, device.Name, device.PushToken, device.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add device: %w", err)
	}
	return nil
}

func (r *userRepository) RemoveDeviceTokens(ctx context.Context, userID uuid.UUID, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}
	query := `DELETE FROM user_devices WHERE user_id = $1 AND push_token = ANY($2)`
	_, err := r.db.ExecContext(ctx, query, userID, pq.Array(tokens))
	if err != nil {
		return fmt.Errorf("failed to remove device tokens: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateChatSettings(ctx context.Context, userID uuid.UUID, settings model.ChatSettings) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET chat_settings = $2, updated_at = NOW() WHERE id = $1
	`, userID, settings)
	if err != nil {
		return fmt.Errorf("failed to update chat settings: %w", err)
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
