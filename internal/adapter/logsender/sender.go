// Package logsender is a dry-run push provider that only logs notifications.
package logsender

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

// Sender logs each payload at info level instead of pushing it.
type Sender struct {
	logger *slog.Logger
	seq    atomic.Int64
}

// NewSender creates a dry-run sender.
func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger.With("component", "logsender")}
}

// Send logs the payload and returns a sequential "dry-run-N" message id.
func (s *Sender) Send(_ context.Context, p domain.NotificationPayload) (string, error) {
	id := fmt.Sprintf("dry-run-%d", s.seq.Add(1))
	s.logger.Info("dry-run notification",
		"message_id", id,
		"topic", p.Topic,
		"title", p.Title,
		"body", p.Body,
		"data", p.Data,
	)
	return id, nil
}
