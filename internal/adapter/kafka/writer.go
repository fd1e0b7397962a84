// Package kafka publishes notifications as JSON messages to Kafka topics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/volcano-alert-service/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of kafkago.Writer used by Sender.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Sender writes each notification to the Kafka topic named by its payload.
// Downstream consumers fan the messages out to devices.
type Sender struct {
	writer messageWriter
	logger *slog.Logger
}

// NewSender creates a Kafka producer for the given brokers. The topic is taken
// from each payload, so one writer serves both report and emergency topics.
func NewSender(brokers []string, logger *slog.Logger) *Sender {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Sender{writer: w, logger: logger.With("component", "kafka")}
}

// Send publishes the payload and returns a message id of the form
// "<topic>/<key>@<unix-nanos>".
func (s *Sender) Send(ctx context.Context, p domain.NotificationPayload) (string, error) {
	if p.Topic == "" {
		return "", fmt.Errorf("kafka topic: %w", domain.ErrInvalidInput)
	}
	msg, err := serializeToMessage(p, domain.Now())
	if err != nil {
		return "", err
	}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		return "", fmt.Errorf("write kafka message: %w", err)
	}

	id := fmt.Sprintf("%s/%s@%s", p.Topic, msg.Key, headerValue(msg, "sent_at_ns"))
	s.logger.Debug("kafka message written", "topic", p.Topic, "message_id", id)
	return id, nil
}

func (s *Sender) Close() error {
	return s.writer.Close()
}

// serializeToMessage marshals a notification into a Kafka message keyed by
// report id, or by notification type for emergency pushes.
func serializeToMessage(p domain.NotificationPayload, sentAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize notification: %w", err)
	}
	key := p.Data["report_id"]
	if key == "" {
		key = p.Data["type"]
	}
	return kafkago.Message{
		Topic: p.Topic,
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "title", Value: []byte(p.Title)},
			{Key: "sent_at", Value: []byte(sentAt.Format(time.RFC3339))},
			{Key: "sent_at_ns", Value: []byte(strconv.FormatInt(sentAt.UnixNano(), 10))},
		},
	}, nil
}

func headerValue(msg kafkago.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
