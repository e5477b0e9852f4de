package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"community-lending/internal/domain/notification"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NotificationPublisher mirrors created notifications onto a topic for push
// delivery. Messages are keyed by recipient so one user's feed stays ordered.
type NotificationPublisher struct {
	w MessageWriter
}

func NewNotificationWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

func NewNotificationPublisher(w MessageWriter) *NotificationPublisher {
	return &NotificationPublisher{w: w}
}

type notificationMessage struct {
	NotificationID    string    `json:"notification_id"`
	UserID            string    `json:"user_id"`
	Title             string    `json:"title"`
	Message           string    `json:"message"`
	Type              string    `json:"type"`
	RelatedEntityType string    `json:"related_entity_type"`
	RelatedEntityID   string    `json:"related_entity_id"`
	PublishedAt       time.Time `json:"published_at"`
}

func (p *NotificationPublisher) Publish(ctx context.Context, n notification.Notification) error {
	payload, err := json.Marshal(notificationMessage{
		NotificationID:    n.NotificationID,
		UserID:            n.UserID,
		Title:             n.Title,
		Message:           n.Message,
		Type:              string(n.Type),
		RelatedEntityType: n.RelatedEntityType,
		RelatedEntityID:   n.RelatedEntityID,
		PublishedAt:       time.Now().UTC(),
	})
	if err != nil {
		return errors.Wrap(err, "encode notification")
	}
	msg := kafka.Message{
		Key:   []byte(n.UserID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "notification-type", Value: []byte(n.Type)},
		},
	}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrapf(err, "publish notification %s", n.NotificationID)
	}
	return nil
}

func (p *NotificationPublisher) Close() error { return p.w.Close() }
