package queue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"knowledge-cafe/internal/common/mq"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

// Consumer is the event-side freshness source, usually the RabbitMQ client.
type Consumer interface {
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
}

// Watcher pushes queue snapshots to a sink. Every placement event triggers a
// refresh immediately; the ticker bounds staleness when events are dropped
// or the broker is down.
type Watcher struct {
	svc      *Service
	consumer Consumer
	source   domain.Source
	interval time.Duration
	sink     func([]domain.Order)
	log      *logger.Logger
}

func NewWatcher(svc *Service, consumer Consumer, source domain.Source, interval time.Duration, sink func([]domain.Order), log *logger.Logger) *Watcher {
	return &Watcher{
		svc:      svc,
		consumer: consumer,
		source:   source,
		interval: interval,
		sink:     sink,
		log:      log,
	}
}

func (w *Watcher) Run(ctx context.Context) error {
	var events <-chan amqp.Delivery
	if w.consumer != nil {
		ch, err := w.consumer.Consume(mq.QueueDisplayQueue, "queue-watcher", 10)
		if err != nil {
			// Polling alone still satisfies the staleness bound.
			w.log.Error("queue_subscribe_failed", err, nil)
		} else {
			events = ch
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			_ = d.Ack(false)
			w.refresh(ctx)
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *Watcher) refresh(ctx context.Context) {
	orders, err := w.svc.Active(ctx, w.source)
	if err != nil {
		w.log.Error("queue_refresh_failed", err, nil)
		return
	}
	w.sink(orders)
}
