package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
	"github.com/mypts/profile-api/pkg/messaging"
)

type fakeProfiles struct {
	profiles map[uuid.UUID]*model.Profile
}

func (f *fakeProfiles) Get(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

type factoryFixture struct {
	factory  *Factory
	repo     *fakeRepo
	profiles *fakeProfiles
	users    *fakeUsers
}

func newFactoryFixture() *factoryFixture {
	repo := &fakeRepo{}
	svc := NewService(repo, messaging.NewMemoryBroker(), zerolog.Nop())
	profiles := &fakeProfiles{profiles: make(map[uuid.UUID]*model.Profile)}
	users := &fakeUsers{user: &model.User{ID: uuid.New(), FullName: "John Smith"}}
	return &factoryFixture{
		factory:  NewFactory(svc, profiles, users, "https://my-pts.com", zerolog.Nop()),
		repo:     repo,
		profiles: profiles,
		users:    users,
	}
}

func (f *factoryFixture) addProfile(name string) *model.Profile {
	p := &model.Profile{ID: uuid.New(), Name: name}
	f.profiles.profiles[p.ID] = p
	return p
}

func TestFactoryProfileViewNotification(t *testing.T) {
	f := newFactoryFixture()
	viewed := f.addProfile("My Portfolio")
	viewer := f.addProfile("Curious Visitor")
	owner := uuid.New()

	n, err := f.factory.CreateProfileViewNotification(context.Background(), owner, viewed.ID, viewer.ID)
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, model.TypeProfileView, n.Type)
	assert.Equal(t, owner, n.Recipient)
	assert.Contains(t, n.Message, "Curious Visitor")
	assert.Contains(t, n.Message, "My Portfolio")
	require.NotNil(t, n.RelatedTo)
	assert.Equal(t, model.RelatedProfile, n.RelatedTo.Model)
	assert.Equal(t, viewed.ID, n.RelatedTo.ID)
	require.NotNil(t, n.Action)
	assert.Contains(t, n.Action.URL, viewed.ID.String())
}

func TestFactorySkipsWhenProfileMissing(t *testing.T) {
	f := newFactoryFixture()
	viewer := f.addProfile("Curious Visitor")

	n, err := f.factory.CreateProfileViewNotification(context.Background(), uuid.New(), uuid.New(), viewer.ID)

	assert.NoError(t, err)
	assert.Nil(t, n)
	assert.Empty(t, f.repo.created)
}

func TestFactoryConnectionRequestNotification(t *testing.T) {
	f := newFactoryFixture()
	recipient := uuid.New()
	sender := f.users.user.ID

	n, err := f.factory.CreateConnectionRequestNotification(context.Background(), recipient, sender)
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, model.TypeConnectionRequest, n.Type)
	assert.Contains(t, n.Message, "John Smith")
	require.NotNil(t, n.Sender)
	assert.Equal(t, sender, *n.Sender)
	assert.Equal(t, "user", n.Metadata.GetString("connectionType", ""))
}

func TestFactorySkipsWhenSenderMissing(t *testing.T) {
	f := newFactoryFixture()
	f.users.err = repository.ErrNotFound

	n, err := f.factory.CreateConnectionRequestNotification(context.Background(), uuid.New(), uuid.New())

	assert.NoError(t, err)
	assert.Nil(t, n)
}

func TestFactoryProfileConnectionRequestCarriesMarkers(t *testing.T) {
	f := newFactoryFixture()
	from := f.addProfile("Acme Corp")
	to := f.addProfile("My Portfolio")
	connectionID := uuid.New()

	n, err := f.factory.CreateProfileConnectionRequestNotification(context.Background(),
		uuid.New(), from.ID, to.ID, connectionID, "wants to collaborate")
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, model.TypeProfileConnectionRequest, n.Type)
	assert.Equal(t, model.RelatedProfileConnection, n.RelatedTo.Model)
	assert.Equal(t, connectionID, n.RelatedTo.ID)
	// These metadata markers steer the email template selection.
	assert.True(t, n.Metadata.Has("connectionType"))
	assert.Equal(t, "wants to collaborate", n.Metadata.GetString("connectionReason", ""))
}

func TestFactoryProfileConnectionAccepted(t *testing.T) {
	f := newFactoryFixture()
	accepter := f.addProfile("Acme Corp")
	requester := f.addProfile("My Portfolio")

	n, err := f.factory.CreateProfileConnectionAcceptedNotification(context.Background(),
		uuid.New(), accepter.ID, requester.ID, uuid.New())
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, model.TypeProfileConnectionAccepted, n.Type)
	assert.Contains(t, n.Message, "Acme Corp")
}

func TestFactoryEndorsementNotification(t *testing.T) {
	f := newFactoryFixture()
	endorser := f.addProfile("Mentor")
	endorsed := f.addProfile("My Portfolio")

	n, err := f.factory.CreateEndorsementNotification(context.Background(),
		uuid.New(), endorser.ID, endorsed.ID, "Go")
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, model.TypeEndorsementReceived, n.Type)
	assert.Contains(t, n.Message, "Go")
	assert.Equal(t, "Go", n.Metadata.GetString("skill", ""))
}

func TestFactoryBadgeNotifications(t *testing.T) {
	f := newFactoryFixture()
	profile := f.addProfile("My Portfolio")
	recipient := uuid.New()
	suggestionID := uuid.New()

	earned, err := f.factory.CreateBadgeEarnedNotification(context.Background(),
		recipient, profile.ID, "Networker", "Connected with 50 profiles")
	require.NoError(t, err)
	assert.Equal(t, model.TypeBadgeEarned, earned.Type)
	assert.Contains(t, earned.Message, "Networker")

	approved, err := f.factory.CreateBadgeSuggestionApprovedNotification(context.Background(),
		recipient, suggestionID, "Night Owl")
	require.NoError(t, err)
	assert.Equal(t, model.TypeBadgeSuggestionApproved, approved.Type)

	rejected, err := f.factory.CreateBadgeSuggestionRejectedNotification(context.Background(),
		recipient, suggestionID, "Night Owl", "too niche")
	require.NoError(t, err)
	assert.Equal(t, model.TypeBadgeSuggestionRejected, rejected.Type)
	assert.Contains(t, rejected.Message, "too niche")

	implemented, err := f.factory.CreateBadgeSuggestionImplementedNotification(context.Background(),
		recipient, suggestionID, "Night Owl")
	require.NoError(t, err)
	assert.Equal(t, model.TypeBadgeSuggestionDone, implemented.Type)
}

func TestFactoryMilestoneNotification(t *testing.T) {
	f := newFactoryFixture()
	profile := f.addProfile("My Portfolio")

	n, err := f.factory.CreateMilestoneNotification(context.Background(),
		uuid.New(), profile.ID, "1000 MyPts", 1024)
	require.NoError(t, err)
	require.NotNil(t, n)

	assert.Equal(t, model.TypeMilestoneAchieved, n.Type)
	assert.Contains(t, n.Title, "1000 MyPts")
	assert.Equal(t, float64(1024), n.Metadata.GetFloat("currentPoints", 0))
}
