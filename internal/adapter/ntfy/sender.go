// Package ntfy publishes notifications to an ntfy server.
package ntfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

// DefaultURL is the public ntfy instance.
const DefaultURL = "https://ntfy.sh"

const (
	priorityDefault = 4
	priorityUrgent  = 5
)

// Sender publishes notifications using the ntfy JSON API.
type Sender struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewSender creates a sender for the ntfy server at baseURL.
func NewSender(baseURL string, timeout time.Duration, logger *slog.Logger) *Sender {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultURL
	}
	return &Sender{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger.With("component", "ntfy"),
	}
}

type publishRequest struct {
	Topic    string   `json:"topic"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags,omitempty"`
	Click    string   `json:"click,omitempty"`
}

type publishResponse struct {
	ID string `json:"id"`
}

// Send publishes the payload and returns the ntfy message id.
func (s *Sender) Send(ctx context.Context, p domain.NotificationPayload) (string, error) {
	if strings.TrimSpace(p.Topic) == "" {
		return "", fmt.Errorf("ntfy topic: %w", domain.ErrInvalidInput)
	}

	body, err := json.Marshal(toPublishRequest(p))
	if err != nil {
		return "", fmt.Errorf("marshal ntfy message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ntfy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("ntfy HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out publishResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ntfy response: %w", err)
	}
	s.logger.Debug("ntfy message published", "topic", p.Topic, "message_id", out.ID)
	return out.ID, nil
}

func toPublishRequest(p domain.NotificationPayload) publishRequest {
	r := publishRequest{
		Topic:    p.Topic,
		Title:    p.Title,
		Message:  p.Body,
		Priority: priorityDefault,
		Tags:     []string{"volcano"},
		Click:    p.Data["report_url"],
	}
	switch p.Data["type"] {
	case domain.EmergencyAlarmType:
		r.Priority = priorityUrgent
		r.Tags = []string{"rotating_light", "volcano"}
	case domain.EmergencyStopType:
		r.Tags = []string{"white_check_mark"}
	}
	return r
}
