package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/mypts/profile-api/internal/channel"
	"github.com/mypts/profile-api/internal/model"
	"github.com/mypts/profile-api/internal/repository"
	"github.com/mypts/profile-api/pkg/messaging"
	"github.com/mypts/profile-api/pkg/metrics"
)

// TopicNotificationCreated is the broker channel the creation path writes
// to and the dispatcher consumes. Subscribe exactly once per process.
const TopicNotificationCreated = "notifications:created"

// RealtimeSink pushes the full notification to a live connection transport
// (socket gateway). Best-effort: it does not gate on user preferences.
type RealtimeSink interface {
	PublishToUser(ctx context.Context, userID uuid.UUID, n *model.Notification) error
}

type DispatcherConfig struct {
	AppName   string
	ClientURL string
}

// Dispatcher fans one persisted notification out to the channels the
// recipient has enabled. Each notification is processed at most once per
// process lifetime and each channel failure is isolated.
type Dispatcher struct {
	users    repository.UserRepository
	push     channel.PushSender
	email    channel.EmailSender
	chat     channel.ChatNotifier
	realtime RealtimeSink
	guard    *DedupGuard
	cfg      DispatcherConfig
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewDispatcher(
	users repository.UserRepository,
	push channel.PushSender,
	email channel.EmailSender,
	chat channel.ChatNotifier,
	guard *DedupGuard,
	cfg DispatcherConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *Dispatcher {
	if cfg.AppName == "" {
		cfg.AppName = "MyPts"
	}
	return &Dispatcher{
		users:   users,
		push:    push,
		email:   email,
		chat:    chat,
		guard:   guard,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With().Str("component", "notification_dispatcher").Logger(),
	}
}

// SetRealtimeSink attaches the live-connection transport. Optional.
func (d *Dispatcher) SetRealtimeSink(sink RealtimeSink) {
	d.realtime = sink
}

// Run consumes the creation queue until ctx is cancelled. Call once from
// process startup; the single subscription is what guarantees one dispatch
// per creation event.
func (d *Dispatcher) Run(ctx context.Context, broker messaging.Broker) error {
	msgs, err := broker.Subscribe(ctx, TopicNotificationCreated)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", TopicNotificationCreated, err)
	}

	d.logger.Info().Msg("notification dispatcher started")
	for payload := range msgs {
		var n model.Notification
		if err := json.Unmarshal(payload, &n); err != nil {
			d.logger.Error().Err(err).Msg("failed to decode notification event")
			continue
		}
		d.Dispatch(ctx, &n)
	}
	d.logger.Info().Msg("notification dispatcher stopped")
	return nil
}

// Dispatch processes one notification-created event: dedup, preference
// lookup, channel branching. Channel failures are logged and never
// propagate to the caller or to sibling channels.
func (d *Dispatcher) Dispatch(ctx context.Context, n *model.Notification) {
	timer := prometheus.NewTimer(d.metrics.DispatchDuration)
	defer timer.ObserveDuration()
	d.metrics.DispatchesTotal.Inc()

	logger := d.logger.With().
		Str("notification_id", n.ID.String()).
		Str("recipient", n.Recipient.String()).
		Str("type", string(n.Type)).
		Logger()

	if n.IsArchived {
		d.metrics.DispatchSkips.WithLabelValues("archived").Inc()
		logger.Debug().Msg("skipping archived notification")
		return
	}

	// Mark seen before any other work so re-entrant duplicates are no-ops.
	if !d.guard.FirstSeen(n.ID.String()) {
		d.metrics.DispatchSkips.WithLabelValues("duplicate").Inc()
		logger.Info().Msg("skipping duplicate notification event")
		return
	}

	if n.RelatedToTransaction() {
		if !d.guard.FirstTransaction(n.RelatedTo.ID.String(), string(n.Type)) {
			d.metrics.DispatchSkips.WithLabelValues("duplicate_transaction").Inc()
			logger.Info().Str("transaction_id", n.RelatedTo.ID.String()).
				Msg("skipping duplicate transaction notification")
			return
		}
	}

	logger.Info().Msg("processing notification")

	// In-app refresh hint; does not gate on preferences.
	if d.realtime != nil {
		if err := d.realtime.PublishToUser(ctx, n.Recipient, n); err != nil {
			logger.Warn().Err(err).Msg("failed to publish realtime notification")
		}
	}

	user, err := d.users.Get(ctx, n.Recipient)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			d.metrics.DispatchSkips.WithLabelValues("missing_recipient").Inc()
			logger.Warn().Msg("recipient no longer exists, skipping dispatch")
		} else {
			logger.Error().Err(err).Msg("failed to load recipient")
		}
		return
	}

	if user.Notifications.Push {
		d.sendPush(ctx, n, user, logger)
	}
	if user.Notifications.Email {
		d.sendEmail(ctx, n, user, logger)
	}
	if user.Chat.Enabled {
		d.sendChat(ctx, n, user, logger)
	}
}

func (d *Dispatcher) sendPush(ctx context.Context, n *model.Notification, user *model.User, logger zerolog.Logger) {
	if !categoryAllowed(n, user.Chat.Preferences) {
		logger.Info().Msg("push delivery blocked by category preference")
		return
	}

	tokens := user.PushTokens()
	if len(tokens) == 0 {
		logger.Debug().Msg("no push-enabled devices for recipient")
		return
	}

	result, err := d.push.Send(ctx, tokens, n.Title, n.Message, d.buildPushData(n))
	if err != nil {
		d.metrics.ChannelSends.WithLabelValues("push", "error").Inc()
		logger.Error().Err(err).Msg("failed to send push notification")
		return
	}
	d.metrics.ChannelSends.WithLabelValues("push", "ok").Inc()
	logger.Info().Int("success", result.SuccessCount).Int("failure", result.FailureCount).
		Msg("push notification sent")

	if len(result.InvalidTokens) > 0 {
		if err := d.users.RemoveDeviceTokens(ctx, user.ID, result.InvalidTokens); err != nil {
			logger.Error().Err(err).Msg("failed to prune invalid push tokens")
			return
		}
		d.metrics.PushTokensPruned.Add(float64(len(result.InvalidTokens)))
		logger.Info().Int("pruned", len(result.InvalidTokens)).Msg("removed invalid push tokens")
	}
}

// buildPushData assembles the data payload sent alongside the push
// notification. Transaction notifications carry the structured transaction
// fields, everything else the click-action hint.
func (d *Dispatcher) buildPushData(n *model.Notification) map[string]string {
	data := map[string]string{
		"notificationType": string(n.Type),
		"notificationId":   n.ID.String(),
	}
	if n.RelatedTo != nil {
		data["relatedModel"] = n.RelatedTo.Model
		data["relatedId"] = n.RelatedTo.ID.String()
	}

	if n.Type == model.TypeSystemNotification && n.RelatedToTransaction() && n.Metadata != nil {
		data["transactionType"] = n.Metadata.GetString("transactionType", "Transaction")
		data["amount"] = n.Metadata.GetString("amount", "0")
		data["status"] = n.Metadata.GetString("status", "Unknown")
		return data
	}

	data["clickAction"] = "OPEN_APP"
	data["url"] = ""
	if n.Action != nil && n.Action.URL != "" {
		data["clickAction"] = "OPEN_URL"
		data["url"] = n.Action.URL
	}
	data["timestamp"] = fmt.Sprintf("%d", time.Now().UnixMilli())
	return data
}

func (d *Dispatcher) sendEmail(ctx context.Context, n *model.Notification, user *model.User, logger zerolog.Logger) {
	if user.Email == "" {
		logger.Debug().Msg("no email address for recipient")
		return
	}
	if !categoryAllowed(n, user.Chat.Preferences) {
		logger.Info().Msg("email delivery blocked by category preference")
		return
	}

	plan := d.buildEmailPlan(n, user)

	html, err := d.email.Render(plan.Template, plan.Data)
	if err != nil {
		// Template problems must not lose the notification: fall back to a
		// minimal email carrying the message and action link.
		d.metrics.EmailTemplateErrors.Inc()
		logger.Error().Err(err).Str("template", plan.Template).
			Msg("email template failed, falling back to plain email")
		html = fallbackEmailBody(n)
	}

	if err := d.email.Send(ctx, user.Email, plan.Subject, html); err != nil {
		d.metrics.ChannelSends.WithLabelValues("email", "error").Inc()
		logger.Error().Err(err).Msg("failed to send email notification")
		return
	}
	d.metrics.ChannelSends.WithLabelValues("email", "ok").Inc()
	logger.Info().Str("template", plan.Template).Msg("email notification sent")
}

func fallbackEmailBody(n *model.Notification) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<p>%s</p>", template.HTMLEscapeString(n.Message))
	if n.Action != nil && n.Action.URL != "" {
		fmt.Fprintf(&sb, `<p><a href="%s">%s</a></p>`,
			n.Action.URL, template.HTMLEscapeString(n.Action.Text))
	}
	return sb.String()
}

func (d *Dispatcher) sendChat(ctx context.Context, n *model.Notification, user *model.User, logger zerolog.Logger) {
	recipient := user.Chat.Recipient()
	if recipient == "" {
		logger.Debug().Msg("no chat recipient configured")
		return
	}
	if !categoryAllowed(n, user.Chat.Preferences) {
		logger.Info().Msg("chat delivery blocked by category preference")
		return
	}

	var err error
	if n.Type == model.TypeSystemNotification && n.RelatedToTransaction() && n.Metadata != nil {
		tx := channel.TransactionDetails{
			ID:      n.RelatedTo.ID.String(),
			Type:    n.Metadata.GetString("transactionType", "Transaction"),
			Amount:  n.Metadata.GetFloat("amount", 0),
			Balance: n.Metadata.GetFloat("balance", 0),
			Status:  n.Metadata.GetString("status", "Unknown"),
		}
		err = d.chat.SendTransactionNotification(ctx, recipient, n.Title, n.Message, tx, d.transactionDetailURL(n))
	} else {
		actionURL, actionText := "", ""
		if n.Action != nil {
			actionURL, actionText = n.Action.URL, n.Action.Text
		}
		err = d.chat.SendNotification(ctx, recipient, n.Title, n.Message, actionURL, actionText)
	}

	if err != nil {
		d.metrics.ChannelSends.WithLabelValues("chat", "error").Inc()
		logger.Error().Err(err).Msg("failed to send chat notification")
		return
	}
	d.metrics.ChannelSends.WithLabelValues("chat", "ok").Inc()
	logger.Info().Msg("chat notification sent")
}

// transactionDetailURL prefers the notification's own action URL, normalized
// to carry a scheme, and otherwise builds one from the configured client URL.
func (d *Dispatcher) transactionDetailURL(n *model.Notification) string {
	if n.Action != nil && n.Action.URL != "" {
		return ensureScheme(n.Action.URL)
	}
	base := strings.TrimSuffix(ensureScheme(d.cfg.ClientURL), "/")
	return fmt.Sprintf("%s/dashboard/transactions/%s", base, n.RelatedTo.ID.String())
}

func ensureScheme(url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return "https://" + url
}
