package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	TypeProfileView               NotificationType = "profile_view"
	TypeProfileLike               NotificationType = "profile_like"
	TypeConnectionRequest         NotificationType = "connection_request"
	TypeConnectionAccepted        NotificationType = "connection_accepted"
	TypeProfileComment            NotificationType = "profile_comment"
	TypeProfileConnectionRequest  NotificationType = "profile_connection_request"
	TypeProfileConnectionAccepted NotificationType = "profile_connection_accepted"
	TypeEndorsementReceived       NotificationType = "endorsement_received"
	TypeMessageReceived           NotificationType = "message_received"
	TypeSecurityAlert             NotificationType = "security_alert"
	TypeSystemNotification        NotificationType = "system_notification"
	TypeAchievementUnlocked       NotificationType = "achievement_unlocked"
	TypeSellSubmitted             NotificationType = "sell_submitted"
	TypeSellRequest               NotificationType = "sell_request"
	TypeSellCompleted             NotificationType = "sell_completed"
	TypeBookingRequest            NotificationType = "booking_request"
	TypeReminder                  NotificationType = "reminder"
	TypeCommunityInvitation       NotificationType = "community_invitation"
	TypeCommunityAnnouncement     NotificationType = "community_announcement"
	TypeCommunityReport           NotificationType = "community_report"
	TypeBadgeEarned               NotificationType = "badge_earned"
	TypeBadgeSuggestionApproved   NotificationType = "badge_suggestion_approved"
	TypeBadgeSuggestionRejected   NotificationType = "badge_suggestion_rejected"
	TypeBadgeSuggestionDone       NotificationType = "badge_suggestion_implemented"
	TypeMilestoneAchieved         NotificationType = "milestone_achieved"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Entity kinds a notification can reference via RelatedTo.
const (
	RelatedProfile           = "Profile"
	RelatedUser              = "User"
	RelatedComment           = "Comment"
	RelatedMessage           = "Message"
	RelatedTransaction       = "Transaction"
	RelatedEvent             = "Event"
	RelatedTask              = "Task"
	RelatedBooking           = "Booking"
	RelatedProfileConnection = "ProfileConnection"
	RelatedCommunityInvite   = "CommunityGroupInvitation"
)

// Transaction kinds carried in metadata under "transactionType".
const (
	TxBuy  = "BUY_MYPTS"
	TxSell = "SELL_MYPTS"
)

// Map is the open metadata payload stored as JSONB. Keys and shapes vary by
// notification type; branch logic goes through the typed accessors so it
// behaves the same regardless of how the value was decoded.
type Map map[string]interface{}

func (m Map) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *Map) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	return json.Unmarshal(b, m)
}

// GetString returns the value under key rendered as a string, or def when
// the key is absent.
func (m Map) GetString(key, def string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return formatNumber(s)
	case json.Number:
		return s.String()
	default:
		return fmt.Sprintf("%v", s)
	}
}

// GetFloat returns the numeric value under key, or def when absent or not a
// number.
func (m Map) GetFloat(key string, def float64) float64 {
	v, ok := m[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return def
		}
		return f
	default:
		return def
	}
}

// GetMap returns a nested map under key, or nil.
func (m Map) GetMap(key string) Map {
	switch nested := m[key].(type) {
	case Map:
		return nested
	case map[string]interface{}:
		return Map(nested)
	default:
		return nil
	}
}

// Has reports whether key is present with a non-nil value.
func (m Map) Has(key string) bool {
	v, ok := m[key]
	return ok && v != nil
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%g", f)
}

// RelatedTo points a notification at the domain object it concerns.
type RelatedTo struct {
	Model string    `json:"model"`
	ID    uuid.UUID `json:"id"`
}

// Action is the single call-to-action surfaced to the user.
type Action struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type Notification struct {
	ID         uuid.UUID        `db:"id" json:"id"`
	Recipient  uuid.UUID        `db:"recipient" json:"recipient"`
	Sender     *uuid.UUID       `db:"sender" json:"sender,omitempty"`
	Type       NotificationType `db:"type" json:"type"`
	Title      string           `db:"title" json:"title"`
	Message    string           `db:"message" json:"message"`
	RelatedTo  *RelatedTo       `json:"relatedTo,omitempty"`
	Action     *Action          `json:"action,omitempty"`
	Priority   Priority         `db:"priority" json:"priority"`
	IsRead     bool             `db:"is_read" json:"isRead"`
	IsArchived bool             `db:"is_archived" json:"isArchived"`
	Metadata   Map              `db:"metadata" json:"metadata,omitempty"`
	ExpiresAt  *time.Time       `db:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt  time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updatedAt"`
}

// RelatedToTransaction reports whether the notification references a
// transaction entity.
func (n *Notification) RelatedToTransaction() bool {
	return n.RelatedTo != nil && n.RelatedTo.Model == RelatedTransaction
}

// NotificationFilters narrows user-facing notification queries.
type NotificationFilters struct {
	IsRead     *bool
	IsArchived bool
	Page       int
	Limit      int
}

// Pagination describes one page of a notification listing.
type Pagination struct {
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

type NotificationPage struct {
	Notifications []*Notification `json:"notifications"`
	Pagination    Pagination      `json:"pagination"`
}
