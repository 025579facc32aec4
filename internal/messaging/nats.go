package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"trace_validation_gateway/internal/notification"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	notificationSubjectPrefix = "notification."
	traceSubmittedSubject     = "trace.submitted"
)

type NATSClient interface {
	PublishNotification(ctx context.Context, n notification.Notification) error
	PublishTraceSubmitted(ctx context.Context, msg TraceSubmittedMessage) error
	SubscribeToNotifications(ctx context.Context, handler func(notification.Notification)) error
	Close()
}

// natsConnection is the part of *nats.Conn the client uses.
type natsConnection interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

type natsClient struct {
	conn   natsConnection
	logger *zap.Logger
}

func NewNATSClient(url string, logger *zap.Logger) (NATSClient, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	logger.Info("connected to NATS", zap.String("url", url))
	return newNATSClient(conn, logger), nil
}

func newNATSClient(conn natsConnection, logger *zap.Logger) *natsClient {
	return &natsClient{
		conn:   conn,
		logger: logger,
	}
}

type NotificationMessage struct {
	NotificationID string    `json:"notification_id"`
	Kind           string    `json:"kind"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	CreatedAt      time.Time `json:"created_at"`
}

type ExpenseItemMessage struct {
	Date     string `json:"date"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type TraceSubmittedMessage struct {
	SubmissionID      string               `json:"submission_id"`
	UserAddress       string               `json:"user_address"`
	Title             string               `json:"title"`
	Description       string               `json:"description"`
	RecipientAddress  string               `json:"recipient_address"`
	ReviewerAddress   string               `json:"reviewer_address,omitempty"`
	TokenSymbol       string               `json:"token_symbol"`
	DonateToCommunity bool                 `json:"donate_to_community"`
	Items             []ExpenseItemMessage `json:"items,omitempty"`
}

func (c *natsClient) PublishNotification(ctx context.Context, n notification.Notification) error {
	msg := NotificationMessage{
		NotificationID: n.ID,
		Kind:           string(n.Kind),
		Title:          n.Title,
		Description:    n.Description,
		CreatedAt:      n.CreatedAt,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal notification", zap.Error(err))
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	subject := notificationSubjectPrefix + string(n.Kind)
	err = c.conn.Publish(subject, data)
	if err != nil {
		c.logger.Error("failed to publish notification", zap.Error(err), zap.String("notification_id", n.ID))
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	c.logger.Debug("notification published", zap.String("notification_id", n.ID), zap.String("subject", subject))
	return nil
}

func (c *natsClient) PublishTraceSubmitted(ctx context.Context, msg TraceSubmittedMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Error("failed to marshal trace submission", zap.Error(err))
		return fmt.Errorf("failed to marshal trace submission: %w", err)
	}

	err = c.conn.Publish(traceSubmittedSubject, data)
	if err != nil {
		c.logger.Error("failed to publish trace submission", zap.Error(err), zap.String("submission_id", msg.SubmissionID))
		return fmt.Errorf("failed to publish trace submission: %w", err)
	}

	c.logger.Info("trace submission published", zap.String("submission_id", msg.SubmissionID))
	return nil
}

func (c *natsClient) SubscribeToNotifications(ctx context.Context, handler func(notification.Notification)) error {
	_, err := c.conn.Subscribe(notificationSubjectPrefix+"*", func(msg *nats.Msg) {
		var received NotificationMessage
		if err := json.Unmarshal(msg.Data, &received); err != nil {
			c.logger.Error("failed to unmarshal notification message", zap.Error(err))
			return
		}

		kind := received.Kind
		if kind == "" {
			kind = strings.TrimPrefix(msg.Subject, notificationSubjectPrefix)
		}

		handler(notification.Notification{
			ID:          received.NotificationID,
			Kind:        notification.Kind(kind),
			Title:       received.Title,
			Description: received.Description,
			CreatedAt:   received.CreatedAt,
		})
		c.logger.Debug("notification message processed", zap.String("notification_id", received.NotificationID))
	})

	if err != nil {
		c.logger.Error("failed to subscribe to notifications", zap.Error(err))
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}

	c.logger.Info("subscribed to notification messages")
	return nil
}

func (c *natsClient) Close() {
	if c.conn != nil {
		c.conn.Close()
		c.logger.Info("NATS connection closed")
	}
}
