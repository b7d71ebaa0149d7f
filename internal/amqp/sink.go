package amqp

import (
	"context"

	"badyet/internal/log"
	"badyet/internal/notify"
)

// Sink forwards notifications to the activity queue so the worker can append
// them to the activity log. Delivery problems are logged and swallowed; the
// notification contract is fire-and-forget.
type Sink struct {
	client *Client
	logger *log.Logger
}

func NewSink(client *Client, logger *log.Logger) *Sink {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentAMQP)
	}
	return &Sink{client: client, logger: logger}
}

func (s *Sink) Notify(ctx context.Context, n notify.Notification) {
	msg := &ActivityMessage{
		Event:       "notification",
		Kind:        string(n.Kind),
		Title:       n.Title,
		Description: n.Description,
		Timestamp:   n.At,
	}
	if err := s.client.PublishActivity(ctx, msg); err != nil {
		s.logger.WarnContext(ctx, "Activity message dropped",
			log.FieldError, err.Error(), "title", n.Title)
	}
}
