package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Kind string

const (
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

// Notification is a user-facing message about the outcome of an action.
type Notification struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func New(kind Kind, title, description string) Notification {
	return Notification{
		ID:          uuid.New().String(),
		Kind:        kind,
		Title:       title,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// Notifier delivers notifications. Delivery is fire-and-forget: implementations handle
// their own failures.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Publisher is a transport able to carry notifications, such as the NATS client.
type Publisher interface {
	PublishNotification(ctx context.Context, n Notification) error
}

type logNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (l *logNotifier) Notify(ctx context.Context, n Notification) {
	fields := []zap.Field{
		zap.String("notification_id", n.ID),
		zap.String("title", n.Title),
		zap.String("description", n.Description),
	}
	switch n.Kind {
	case KindError:
		l.logger.Error("notification", fields...)
	case KindWarning:
		l.logger.Warn("notification", fields...)
	default:
		l.logger.Info("notification", fields...)
	}
}

type publishingNotifier struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewPublishingNotifier(publisher Publisher, logger *zap.Logger) Notifier {
	return &publishingNotifier{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *publishingNotifier) Notify(ctx context.Context, n Notification) {
	if err := p.publisher.PublishNotification(ctx, n); err != nil {
		p.logger.Error("failed to publish notification", zap.Error(err), zap.String("notification_id", n.ID))
	}
}

type multiNotifier struct {
	notifiers []Notifier
}

// Multi fans a notification out to every notifier in order.
func Multi(notifiers ...Notifier) Notifier {
	return &multiNotifier{notifiers: notifiers}
}

func (m *multiNotifier) Notify(ctx context.Context, n Notification) {
	for _, notifier := range m.notifiers {
		notifier.Notify(ctx, n)
	}
}
