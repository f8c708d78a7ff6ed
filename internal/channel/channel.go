package channel

import (
	"context"
)

// PushResult reports the outcome of a multicast push send. InvalidTokens
// lists targets the provider no longer recognizes; callers prune these from
// the user's devices.
type PushResult struct {
	SuccessCount  int
	FailureCount  int
	InvalidTokens []string
}

// PushSender delivers a push notification to a set of device tokens in one
// call.
type PushSender interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (*PushResult, error)
}

// EmailSender renders named templates and delivers HTML email.
type EmailSender interface {
	Render(name string, data map[string]interface{}) (string, error)
	Send(ctx context.Context, to, subject, html string) error
}

// TransactionDetails is the structured payload a chat transaction
// notification carries.
type TransactionDetails struct {
	ID      string
	Type    string
	Amount  float64
	Balance float64
	Status  string
}

// ChatNotifier delivers messages through the chat-bot channel.
type ChatNotifier interface {
	SendNotification(ctx context.Context, recipient, title, body, actionURL, actionText string) error
	SendTransactionNotification(ctx context.Context, recipient, title, body string, tx TransactionDetails, detailURL string) error
}
