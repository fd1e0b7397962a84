package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
	"github.com/couchcryptid/volcano-alert-service/internal/observability"
)

// Dispatcher delivers notifications through a Sender and isolates its failures.
type Dispatcher struct {
	sender  Sender
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewDispatcher creates a Dispatcher backed by sender.
func NewDispatcher(sender Sender, logger *slog.Logger, metrics *observability.Metrics) *Dispatcher {
	return &Dispatcher{
		sender:  sender,
		logger:  logger.With("component", "dispatcher"),
		metrics: metrics,
	}
}

// Notify sends p and returns the provider message id. Failures are logged and
// returned as *domain.DispatchError; callers treat them as non-fatal.
func (d *Dispatcher) Notify(ctx context.Context, p domain.NotificationPayload) (string, error) {
	id, err := d.sender.Send(ctx, p)
	if err != nil {
		d.metrics.Notifications.WithLabelValues(observability.NotifyFailed).Inc()
		derr := &domain.DispatchError{Topic: p.Topic, Err: err}
		d.logger.Error("notification failed", "topic", p.Topic, "error", err)
		return "", derr
	}
	d.metrics.Notifications.WithLabelValues(observability.NotifySent).Inc()
	d.logger.Info("notification sent", "topic", p.Topic, "message_id", id)
	return id, nil
}
