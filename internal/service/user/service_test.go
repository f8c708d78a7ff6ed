package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/pkg/validator"
)

type fakeUserRepo struct {
	devices  []*model.Device
	settings *model.ChatSettings
}

func (f *fakeUserRepo) Get(_ context.Context, _ uuid.UUID) (*model.User, error) { return nil, nil }

func (f *fakeUserRepo) AddDevice(_ context.Context, d *model.Device) error {
	f.devices = append(f.devices, d)
	return nil
}

func (f *fakeUserRepo) RemoveDeviceTokens(_ context.Context, _ uuid.UUID, _ []string) error {
	return nil
}

func (f *fakeUserRepo) UpdateChatSettings(_ context.Context, _ uuid.UUID, s model.ChatSettings) error {
	f.settings = &s
	return nil
}

func newTestService() (*Service, *fakeUserRepo) {
	repo := &fakeUserRepo{}
	return NewService(repo, validator.New(), zerolog.Nop()), repo
}

func TestRegisterDevice(t *testing.T) {
	svc, repo := newTestService()
	userID := uuid.New()

	device, err := svc.RegisterDevice(context.Background(), userID, &RegisterDeviceRequest{
		Name:      "Pixel 9",
		PushToken: "token-1",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, device.ID)
	assert.Equal(t, userID, device.UserID)
	require.Len(t, repo.devices, 1)
	assert.Equal(t, "token-1", repo.devices[0].PushToken)
}

func TestRegisterDeviceValidation(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.RegisterDevice(context.Background(), uuid.New(), &RegisterDeviceRequest{Name: "Pixel 9"})
	assert.Error(t, err)
	assert.Empty(t, repo.devices)
}

func TestUpdateChatSettings(t *testing.T) {
	svc, repo := newTestService()
	off := false

	settings, err := svc.UpdateChatSettings(context.Background(), uuid.New(), &UpdateChatSettingsRequest{
		Enabled:     true,
		ChatID:      "123456",
		Preferences: model.CategoryPreferences{ConnectionRequests: &off},
	})
	require.NoError(t, err)

	assert.True(t, settings.Enabled)
	require.NotNil(t, repo.settings)
	assert.Equal(t, "123456", repo.settings.ChatID)
	require.NotNil(t, repo.settings.Preferences.ConnectionRequests)
	assert.False(t, *repo.settings.Preferences.ConnectionRequests)
}

func TestUpdateChatSettingsRequiresRecipientWhenEnabled(t *testing.T) {
	svc, repo := newTestService()

	_, err := svc.UpdateChatSettings(context.Background(), uuid.New(), &UpdateChatSettingsRequest{
		Enabled: true,
	})
	assert.Error(t, err)
	assert.Nil(t, repo.settings)
}

func TestUpdateChatSettingsDisabledWithoutRecipient(t *testing.T) {
	svc, _ := newTestService()

	settings, err := svc.UpdateChatSettings(context.Background(), uuid.New(), &UpdateChatSettingsRequest{
		Enabled: false,
	})
	require.NoError(t, err)
	assert.False(t, settings.Enabled)
}
