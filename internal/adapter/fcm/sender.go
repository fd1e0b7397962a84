// Package fcm sends topic notifications through Firebase Cloud Messaging.
package fcm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
)

const androidPriorityHigh = "high"

// messagingClient is the subset of *messaging.Client used by Sender.
type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Sender publishes notifications to FCM topics.
type Sender struct {
	client messagingClient
	logger *slog.Logger
}

// NewSender initializes the Firebase app from a service account file and
// returns a sender backed by its messaging client.
func NewSender(ctx context.Context, credentialsFile string, logger *slog.Logger) (*Sender, error) {
	if credentialsFile == "" {
		return nil, errors.New("GOOGLE_APPLICATION_CREDENTIALS is required for the fcm push provider")
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &Sender{client: client, logger: logger.With("component", "fcm")}, nil
}

// Send delivers the payload to its topic and returns the FCM message id.
func (s *Sender) Send(ctx context.Context, p domain.NotificationPayload) (string, error) {
	if p.Topic == "" {
		return "", fmt.Errorf("fcm topic: %w", domain.ErrInvalidInput)
	}
	id, err := s.client.Send(ctx, toMessage(p))
	if err != nil {
		return "", fmt.Errorf("fcm send: %w", err)
	}
	s.logger.Debug("fcm message sent", "topic", p.Topic, "message_id", id)
	return id, nil
}

func toMessage(p domain.NotificationPayload) *messaging.Message {
	data := p.Data
	if data == nil {
		data = map[string]string{}
	}
	android := &messaging.AndroidConfig{Priority: androidPriorityHigh}
	if p.Sound != "" {
		android.Notification = &messaging.AndroidNotification{Sound: p.Sound}
	}
	return &messaging.Message{
		Topic: p.Topic,
		Notification: &messaging.Notification{
			Title: p.Title,
			Body:  p.Body,
		},
		Data:    data,
		Android: android,
	}
}
