// Package notify consumes status-change events and alerts customers whose
// order is ready for pickup. Delivery is best-effort with no acknowledgment
// contract towards the customer.
package notify

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"knowledge-cafe/internal/common/mq"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

// Notifier delivers one pickup alert. Implementations wrap real transports
// (mail, push); LogNotifier is the default.
type Notifier interface {
	Notify(ctx context.Context, orderID, customerName string) error
}

// LogNotifier writes the alert to the structured log.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier { return &LogNotifier{log: log} }

func (n *LogNotifier) Notify(_ context.Context, orderID, customerName string) error {
	n.log.Info("pickup_notification", map[string]any{
		"order_id": orderID, "customer_name": customerName,
	})
	return nil
}

type Consumer interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
}

// Subscriber drains the notifications queue and dispatches on ready events.
type Subscriber struct {
	consumer Consumer
	notifier Notifier
	log      *logger.Logger
}

func NewSubscriber(consumer Consumer, notifier Notifier, log *logger.Logger) *Subscriber {
	return &Subscriber{consumer: consumer, notifier: notifier, log: log}
}

func (s *Subscriber) Run(ctx context.Context) error {
	deliveries, err := s.consumer.Consume(mq.NotificationsQueue, "notification-subscriber", 10)
	if err != nil {
		return err
	}
	s.log.Info("subscriber_started", map[string]any{"queue": mq.NotificationsQueue})

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			s.handle(ctx, d)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, d amqp.Delivery) {
	var evt domain.StatusChanged
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		// Malformed events go to the dead-letter queue.
		s.log.Error("status_event_malformed", err, nil)
		_ = d.Nack(false, false)
		return
	}

	if evt.NewStatus == domain.StatusReady {
		if err := s.notifier.Notify(ctx, evt.OrderID, evt.CustomerName); err != nil {
			s.log.Error("notification_failed", err, map[string]any{"order_id": evt.OrderID})
		}
	}
	_ = d.Ack(false)
}
