package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NotificationToggles are the per-user on/off switches for the async
// delivery channels. The chat channel has its own settings block.
type NotificationToggles struct {
	Push  bool `json:"push"`
	Email bool `json:"email"`
}

func (t NotificationToggles) Value() (driver.Value, error) { return json.Marshal(t) }

func (t *NotificationToggles) Scan(src interface{}) error { return scanJSON(src, t) }

// CategoryPreferences are the finer-grained gates applied on top of the
// channel toggles. nil means "no explicit preference"; only an explicit
// false blocks delivery.
type CategoryPreferences struct {
	Transactions          *bool `json:"transactions,omitempty"`
	TransactionUpdates    *bool `json:"transactionUpdates,omitempty"`
	PurchaseConfirmations *bool `json:"purchaseConfirmations,omitempty"`
	SaleConfirmations     *bool `json:"saleConfirmations,omitempty"`
	Security              *bool `json:"security,omitempty"`
	ConnectionRequests    *bool `json:"connectionRequests,omitempty"`
	Messages              *bool `json:"messages,omitempty"`
}

// ChatSettings holds the chat-bot delivery configuration for a user. ChatID
// is the stable recipient identifier; Username is the fallback handle.
type ChatSettings struct {
	Enabled     bool                `json:"enabled"`
	Username    string              `json:"username,omitempty"`
	ChatID      string              `json:"chatId,omitempty"`
	Preferences CategoryPreferences `json:"preferences"`
}

func (s ChatSettings) Value() (driver.Value, error) { return json.Marshal(s) }

func (s *ChatSettings) Scan(src interface{}) error { return scanJSON(src, s) }

// Recipient returns the preferred chat recipient: the stable identifier when
// present, else the handle. Empty when neither is set.
func (s ChatSettings) Recipient() string {
	if s.ChatID != "" {
		return s.ChatID
	}
	return s.Username
}

// Device is a registered client device; PushToken is empty for devices that
// never granted push permission.
type Device struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	PushToken string    `db:"push_token" json:"pushToken,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// User is the preference projection the dispatcher works with, not the full
// account record owned by the auth layer.
type User struct {
	ID            uuid.UUID           `db:"id" json:"id"`
	Email         string              `db:"email" json:"email"`
	FullName      string              `db:"full_name" json:"fullName"`
	Notifications NotificationToggles `db:"notifications" json:"notifications"`
	Chat          ChatSettings        `db:"chat_settings" json:"chatSettings"`
	Devices       []Device            `db:"-" json:"devices,omitempty"`
}

// PushTokens returns the distinct non-empty push tokens across the user's
// devices.
func (u *User) PushTokens() []string {
	seen := make(map[string]struct{}, len(u.Devices))
	tokens := make([]string, 0, len(u.Devices))
	for _, d := range u.Devices {
		if d.PushToken == "" {
			continue
		}
		if _, dup := seen[d.PushToken]; dup {
			continue
		}
		seen[d.PushToken] = struct{}{}
		tokens = append(tokens, d.PushToken)
	}
	return tokens
}

func scanJSON(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
	return json.Unmarshal(b, dst)
}
