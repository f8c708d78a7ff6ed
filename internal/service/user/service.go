package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
	apperrors "github.com/mypts/profile-api/pkg/errors"
	"github.com/mypts/profile-api/pkg/validator"
)

// RegisterDeviceRequest registers a client device for push delivery.
type RegisterDeviceRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	PushToken string `json:"pushToken" validate:"required"`
}

// UpdateChatSettingsRequest replaces the user's chat delivery settings.
type UpdateChatSettingsRequest struct {
	Enabled     bool                      `json:"enabled"`
	Username    string                    `json:"username" validate:"max=64"`
	ChatID      string                    `json:"chatId" validate:"max=64"`
	Preferences model.CategoryPreferences `json:"preferences"`
}

// Service manages the delivery-preference side of a user account.
type Service struct {
	repo      repository.UserRepository
	validator *validator.Validator
	logger    zerolog.Logger
}

func NewService(repo repository.UserRepository, v *validator.Validator, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		validator: v,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

// RegisterDevice stores a push token for the user. Registering the same
// token twice refreshes the device name instead of duplicating it.
func (s *Service) RegisterDevice(ctx context.Context, userID uuid.UUID, req *RegisterDeviceRequest) (*model.Device, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	device := &model.Device{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      req.Name,
		PushToken: req.PushToken,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.AddDevice(ctx, device); err != nil {
		return nil, fmt.Errorf("failed to register device: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Str("device", req.Name).
		Msg("device registered for push delivery")
	return device, nil
}

// UpdateChatSettings replaces the chat delivery settings. Enabling chat
// requires a recipient identifier.
func (s *Service) UpdateChatSettings(ctx context.Context, userID uuid.UUID, req *UpdateChatSettingsRequest) (*model.ChatSettings, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	settings := model.ChatSettings{
		Enabled:     req.Enabled,
		Username:    req.Username,
		ChatID:      req.ChatID,
		Preferences: req.Preferences,
	}
	if settings.Enabled && settings.Recipient() == "" {
		return nil, apperrors.BadRequest("chat delivery requires a username or chat ID", nil)
	}

	if err := s.repo.UpdateChatSettings(ctx, userID, settings); err != nil {
		return nil, fmt.Errorf("failed to update chat settings: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Bool("enabled", settings.Enabled).
		Msg("chat settings updated")
	return &settings, nil
}
