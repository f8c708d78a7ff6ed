package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mypts/profile-api/internal/channel"
)

const defaultAPIBase = "https://api.telegram.org"

type Config struct {
	BotToken string
	APIBase  string
	Timeout  time.Duration
}

// Notifier delivers notifications through the Telegram Bot API.
type Notifier struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

func NewNotifier(cfg Config, logger zerolog.Logger) *Notifier {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("channel", "chat").Logger(),
	}
}

func (n *Notifier) SendNotification(ctx context.Context, recipient, title, body, actionURL, actionText string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n\n%s", escape(title), escape(body))
	if actionURL != "" {
		text := actionText
		if text == "" {
			text = "Open"
		}
		fmt.Fprintf(&sb, "\n\n<a href=\"%s\">%s</a>", actionURL, escape(text))
	}
	return n.sendMessage(ctx, recipient, sb.String())
}

func (n *Notifier) SendTransactionNotification(ctx context.Context, recipient, title, body string, tx channel.TransactionDetails, detailURL string) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b>\n\n%s\n", escape(title), escape(body))
	fmt.Fprintf(&sb, "\nType: %s", escape(tx.Type))
	fmt.Fprintf(&sb, "\nAmount: %s MyPts", formatAmount(tx.Amount))
	if tx.Balance != 0 {
		fmt.Fprintf(&sb, "\nBalance: %s MyPts", formatAmount(tx.Balance))
	}
	fmt.Fprintf(&sb, "\nStatus: %s", escape(tx.Status))
	if detailURL != "" {
		fmt.Fprintf(&sb, "\n\n<a href=\"%s\">View Transaction</a>", detailURL)
	}
	return n.sendMessage(ctx, recipient, sb.String())
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func (n *Notifier) sendMessage(ctx context.Context, recipient, html string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.cfg.APIBase, n.cfg.BotToken)

	form := url.Values{}
	form.Set("chat_id", chatID(recipient))
	form.Set("text", html)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return fmt.Errorf("failed to decode chat response: %w", err)
	}
	if !decoded.OK {
		return fmt.Errorf("chat provider rejected message: %d %s", decoded.ErrorCode, decoded.Description)
	}
	return nil
}

// chatID normalizes a recipient: numeric IDs pass through, handles get the
// "@" prefix the bot API expects.
func chatID(recipient string) string {
	if _, err := strconv.ParseInt(recipient, 10, 64); err == nil {
		return recipient
	}
	if strings.HasPrefix(recipient, "@") {
		return recipient
	}
	return "@" + recipient
}

func escape(s string) string {
	replacer := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return replacer.Replace(s)
}

func formatAmount(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
