package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mypts/profile-api/internal/channel"
)

const defaultEndpoint = "https://fcm.googleapis.com/fcm/send"

// Provider error codes that mean the token is gone for good.
var invalidTokenErrors = map[string]bool{
	"NotRegistered":       true,
	"InvalidRegistration": true,
	"MismatchSenderId":    true,
}

type Config struct {
	ServerKey string
	Endpoint  string
	Timeout   time.Duration
}

// FCMSender sends multicast push notifications through the FCM HTTP API.
type FCMSender struct {
	cfg    Config
	client *http.Client
	logger zerolog.Logger
}

func NewFCMSender(cfg Config, logger zerolog.Logger) *FCMSender {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &FCMSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("channel", "push").Logger(),
	}
}

type fcmRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type fcmResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (s *FCMSender) Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (*channel.PushResult, error) {
	payload, err := json.Marshal(fcmRequest{
		RegistrationIDs: tokens,
		Notification:    fcmNotification{Title: title, Body: body},
		Data:            data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.cfg.ServerKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push provider returned status %d", resp.StatusCode)
	}

	var decoded fcmResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}

	result := &channel.PushResult{
		SuccessCount: decoded.Success,
		FailureCount: decoded.Failure,
	}
	for i, r := range decoded.Results {
		if r.Error == "" || i >= len(tokens) {
			continue
		}
		if invalidTokenErrors[r.Error] {
			result.InvalidTokens = append(result.InvalidTokens, tokens[i])
		} else {
			s.logger.Warn().Str("error", r.Error).Msg("push delivery failed for token")
		}
	}

	return result, nil
}
