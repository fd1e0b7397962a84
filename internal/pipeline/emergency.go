package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

// EmergencyConfig holds the emergency alarm settings.
type EmergencyConfig struct {
	Topic       string
	NotifyClear bool
}

// Emergency raises and clears the manual evacuation alarm.
type Emergency struct {
	store      Store[domain.EmergencyState]
	dispatcher *Dispatcher
	cfg        EmergencyConfig
	logger     *slog.Logger
}

// NewEmergency creates an Emergency service.
func NewEmergency(cfg EmergencyConfig, store Store[domain.EmergencyState], dispatcher *Dispatcher, logger *slog.Logger) *Emergency {
	return &Emergency{
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.With("component", "emergency"),
	}
}

// Status returns the current alarm state.
func (e *Emergency) Status(ctx context.Context) (domain.EmergencyState, error) {
	st, err := e.store.Load(ctx)
	if err != nil {
		return domain.EmergencyState{}, fmt.Errorf("load emergency state: %w", err)
	}
	return st.Normalize(), nil
}

// Trigger persists an active alarm and pushes it to the emergency topic.
// Blank message and title take their defaults. The push is best-effort.
func (e *Emergency) Trigger(ctx context.Context, level, message, title string) (domain.EmergencyState, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = domain.DefaultAlarmMessage
	}
	st := domain.EmergencyState{
		Active:    true,
		Level:     strings.TrimSpace(level),
		Message:   message,
		UpdatedAt: domain.Now(),
	}
	if err := e.store.Save(ctx, st); err != nil {
		return domain.EmergencyState{}, fmt.Errorf("save emergency state: %w", err)
	}
	e.logger.Warn("emergency alarm raised", "level", st.Level)

	_, _ = e.dispatcher.Notify(ctx, domain.NewAlarmNotification(e.cfg.Topic, strings.TrimSpace(title), st))
	return st, nil
}

// Clear persists an inactive alarm. A push is sent only when NotifyClear is set.
func (e *Emergency) Clear(ctx context.Context, message string) (domain.EmergencyState, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = domain.DefaultEmergencyMessage
	}
	st := domain.EmergencyState{
		Message:   message,
		UpdatedAt: domain.Now(),
	}
	if err := e.store.Save(ctx, st); err != nil {
		return domain.EmergencyState{}, fmt.Errorf("save emergency state: %w", err)
	}
	e.logger.Info("emergency alarm cleared")

	if e.cfg.NotifyClear {
		_, _ = e.dispatcher.Notify(ctx, domain.NewClearNotification(e.cfg.Topic, st))
	}
	return st, nil
}
