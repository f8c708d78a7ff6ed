package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
)

// Factory builds the well-known notification shapes for social and
// achievement events. Builders resolve the referenced entities first; a
// dangling reference skips the notification instead of failing the caller,
// since the triggering action already succeeded.
type Factory struct {
	svc       *Service
	profiles  repository.ProfileRepository
	users     repository.UserRepository
	clientURL string
	logger    zerolog.Logger
}

func NewFactory(svc *Service, profiles repository.ProfileRepository, users repository.UserRepository, clientURL string, logger zerolog.Logger) *Factory {
	return &Factory{
		svc:       svc,
		profiles:  profiles,
		users:     users,
		clientURL: clientURL,
		logger:    logger.With().Str("component", "notification_factory").Logger(),
	}
}

// CreateProfileViewNotification notifies a profile owner that someone viewed
// their profile.
func (f *Factory) CreateProfileViewNotification(ctx context.Context, ownerID, viewedProfileID, viewerProfileID uuid.UUID) (*model.Notification, error) {
	viewed, ok := f.resolveProfile(ctx, viewedProfileID, "profile view")
	if !ok {
		return nil, nil
	}
	viewer, ok := f.resolveProfile(ctx, viewerProfileID, "profile view")
	if !ok {
		return nil, nil
	}

	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: ownerID,
		Type:      model.TypeProfileView,
		Title:     "New Profile View",
		Message:   fmt.Sprintf("%s viewed your profile \"%s\"", viewer.Name, viewed.Name),
		RelatedTo: &model.RelatedTo{Model: model.RelatedProfile, ID: viewed.ID},
		Action: &model.Action{
			Text: "View Profile",
			URL:  fmt.Sprintf("%s/profile/%s", f.clientURL, viewed.ID),
		},
		Priority: model.PriorityLow,
		Metadata: model.Map{
			"viewerProfileId": viewerProfileID.String(),
			"viewerName":      viewer.Name,
		},
	})
}

// CreateConnectionRequestNotification notifies a user of an account-level
// connection request.
func (f *Factory) CreateConnectionRequestNotification(ctx context.Context, recipientID, senderID uuid.UUID) (*model.Notification, error) {
	sender, ok := f.resolveUser(ctx, senderID, "connection request")
	if !ok {
		return nil, nil
	}

	senderRef := senderID
	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Sender:    &senderRef,
		Type:      model.TypeConnectionRequest,
		Title:     "New Connection Request",
		Message:   fmt.Sprintf("%s wants to connect with you", displayName(sender)),
		RelatedTo: &model.RelatedTo{Model: model.RelatedUser, ID: senderID},
		Action: &model.Action{
			Text: "View Request",
			URL:  fmt.Sprintf("%s/connections/requests", f.clientURL),
		},
		Priority: model.PriorityMedium,
		Metadata: model.Map{
			"connectionType": "user",
			"senderName":     displayName(sender),
		},
	})
}

// CreateProfileConnectionRequestNotification notifies a profile owner that
// another profile requested a connection.
func (f *Factory) CreateProfileConnectionRequestNotification(ctx context.Context, recipientID, fromProfileID, toProfileID, connectionID uuid.UUID, reason string) (*model.Notification, error) {
	from, ok := f.resolveProfile(ctx, fromProfileID, "profile connection request")
	if !ok {
		return nil, nil
	}
	to, ok := f.resolveProfile(ctx, toProfileID, "profile connection request")
	if !ok {
		return nil, nil
	}

	meta := model.Map{
		"connectionType": "profile",
		"fromProfileId":  fromProfileID.String(),
		"toProfileId":    toProfileID.String(),
	}
	if reason != "" {
		meta["connectionReason"] = reason
	}

	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeProfileConnectionRequest,
		Title:     "New Profile Connection Request",
		Message:   fmt.Sprintf("%s wants to connect with your profile \"%s\"", from.Name, to.Name),
		RelatedTo: &model.RelatedTo{Model: model.RelatedProfileConnection, ID: connectionID},
		Action: &model.Action{
			Text: "Review Request",
			URL:  fmt.Sprintf("%s/profile/%s/connections", f.clientURL, to.ID),
		},
		Priority: model.PriorityMedium,
		Metadata: meta,
	})
}

// CreateProfileConnectionAcceptedNotification notifies the requesting side
// that their profile connection was accepted.
func (f *Factory) CreateProfileConnectionAcceptedNotification(ctx context.Context, recipientID, accepterProfileID, requesterProfileID, connectionID uuid.UUID) (*model.Notification, error) {
	accepter, ok := f.resolveProfile(ctx, accepterProfileID, "profile connection accepted")
	if !ok {
		return nil, nil
	}
	requester, ok := f.resolveProfile(ctx, requesterProfileID, "profile connection accepted")
	if !ok {
		return nil, nil
	}

	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeProfileConnectionAccepted,
		Title:     "Connection Request Accepted",
		Message:   fmt.Sprintf("%s accepted the connection request from \"%s\"", accepter.Name, requester.Name),
		RelatedTo: &model.RelatedTo{Model: model.RelatedProfileConnection, ID: connectionID},
		Action: &model.Action{
			Text: "View Connection",
			URL:  fmt.Sprintf("%s/profile/%s/connections", f.clientURL, requester.ID),
		},
		Priority: model.PriorityLow,
	})
}

// CreateEndorsementNotification notifies a profile owner of a new skill
// endorsement.
func (f *Factory) CreateEndorsementNotification(ctx context.Context, recipientID, endorserProfileID, endorsedProfileID uuid.UUID, skill string) (*model.Notification, error) {
	endorser, ok := f.resolveProfile(ctx, endorserProfileID, "endorsement")
	if !ok {
		return nil, nil
	}
	endorsed, ok := f.resolveProfile(ctx, endorsedProfileID, "endorsement")
	if !ok {
		return nil, nil
	}

	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeEndorsementReceived,
		Title:     "New Endorsement",
		Message:   fmt.Sprintf("%s endorsed \"%s\" for %s", endorser.Name, endorsed.Name, skill),
		RelatedTo: &model.RelatedTo{Model: model.RelatedProfile, ID: endorsed.ID},
		Action: &model.Action{
			Text: "View Endorsements",
			URL:  fmt.Sprintf("%s/profile/%s/endorsements", f.clientURL, endorsed.ID),
		},
		Priority: model.PriorityLow,
		Metadata: model.Map{"skill": skill},
	})
}

// CreateBadgeEarnedNotification congratulates a user on a newly earned badge.
func (f *Factory) CreateBadgeEarnedNotification(ctx context.Context, recipientID, profileID uuid.UUID, badgeName, badgeDescription string) (*model.Notification, error) {
	profile, ok := f.resolveProfile(ctx, profileID, "badge earned")
	if !ok {
		return nil, nil
	}

	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeBadgeEarned,
		Title:     "Badge Earned!",
		Message:   fmt.Sprintf("Your profile \"%s\" earned the %s badge: %s", profile.Name, badgeName, badgeDescription),
		RelatedTo: &model.RelatedTo{Model: model.RelatedProfile, ID: profile.ID},
		Action: &model.Action{
			Text: "View Badges",
			URL:  fmt.Sprintf("%s/profile/%s/badges", f.clientURL, profile.ID),
		},
		Priority: model.PriorityMedium,
		Metadata: model.Map{"badgeName": badgeName},
	})
}

// CreateBadgeSuggestionApprovedNotification tells a user their badge
// suggestion made it through review.
func (f *Factory) CreateBadgeSuggestionApprovedNotification(ctx context.Context, recipientID, suggestionID uuid.UUID, badgeName string) (*model.Notification, error) {
	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeBadgeSuggestionApproved,
		Title:     "Badge Suggestion Approved",
		Message:   fmt.Sprintf("Your badge suggestion \"%s\" was approved and is being considered for implementation", badgeName),
		Action: &model.Action{
			Text: "View Suggestions",
			URL:  fmt.Sprintf("%s/badges/suggestions", f.clientURL),
		},
		Priority: model.PriorityLow,
		Metadata: model.Map{"suggestionId": suggestionID.String(), "badgeName": badgeName},
	})
}

// CreateBadgeSuggestionRejectedNotification carries the reviewer's reason
// when present.
func (f *Factory) CreateBadgeSuggestionRejectedNotification(ctx context.Context, recipientID, suggestionID uuid.UUID, badgeName, reason string) (*model.Notification, error) {
	message := fmt.Sprintf("Your badge suggestion \"%s\" was not approved", badgeName)
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeBadgeSuggestionRejected,
		Title:     "Badge Suggestion Update",
		Message:   message,
		Action: &model.Action{
			Text: "View Suggestions",
			URL:  fmt.Sprintf("%s/badges/suggestions", f.clientURL),
		},
		Priority: model.PriorityLow,
		Metadata: model.Map{"suggestionId": suggestionID.String(), "badgeName": badgeName},
	})
}

// CreateBadgeSuggestionImplementedNotification announces that a suggested
// badge is now live.
func (f *Factory) CreateBadgeSuggestionImplementedNotification(ctx context.Context, recipientID, suggestionID uuid.UUID, badgeName string) (*model.Notification, error) {
	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeBadgeSuggestionDone,
		Title:     "Your Badge Suggestion Is Live!",
		Message:   fmt.Sprintf("The badge \"%s\" you suggested has been implemented. Thank you for the idea!", badgeName),
		Action: &model.Action{
			Text: "View Badges",
			URL:  fmt.Sprintf("%s/badges", f.clientURL),
		},
		Priority: model.PriorityMedium,
		Metadata: model.Map{"suggestionId": suggestionID.String(), "badgeName": badgeName},
	})
}

// CreateMilestoneNotification celebrates a profile reaching a named
// milestone.
func (f *Factory) CreateMilestoneNotification(ctx context.Context, recipientID, profileID uuid.UUID, milestone string, currentPoints float64) (*model.Notification, error) {
	profile, ok := f.resolveProfile(ctx, profileID, "milestone")
	if !ok {
		return nil, nil
	}

	return f.svc.CreateNotification(ctx, &model.Notification{
		Recipient: recipientID,
		Type:      model.TypeMilestoneAchieved,
		Title:     fmt.Sprintf("Milestone Reached: %s", milestone),
		Message:   fmt.Sprintf("Congratulations! Your profile \"%s\" reached the %s milestone", profile.Name, milestone),
		RelatedTo: &model.RelatedTo{Model: model.RelatedProfile, ID: profile.ID},
		Action: &model.Action{
			Text: "View Profile",
			URL:  fmt.Sprintf("%s/profile/%s", f.clientURL, profile.ID),
		},
		Priority: model.PriorityMedium,
		Metadata: model.Map{"milestone": milestone, "currentPoints": currentPoints},
	})
}

func (f *Factory) resolveProfile(ctx context.Context, id uuid.UUID, event string) (*model.Profile, bool) {
	profile, err := f.profiles.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			f.logger.Warn().Str("profile_id", id.String()).Str("event", event).
				Msg("profile no longer exists, skipping notification")
		} else {
			f.logger.Error().Err(err).Str("profile_id", id.String()).Str("event", event).
				Msg("failed to load profile for notification")
		}
		return nil, false
	}
	return profile, true
}

func (f *Factory) resolveUser(ctx context.Context, id uuid.UUID, event string) (*model.User, bool) {
	user, err := f.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			f.logger.Warn().Str("user_id", id.String()).Str("event", event).
				Msg("user no longer exists, skipping notification")
		} else {
			f.logger.Error().Err(err).Str("user_id", id.String()).Str("event", event).
				Msg("failed to load user for notification")
		}
		return nil, false
	}
	return user, true
}

func displayName(u *model.User) string {
	if u.FullName != "" {
		return u.FullName
	}
	return "Someone"
}
