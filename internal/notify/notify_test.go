package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

type chanConsumer struct{ ch chan amqp.Delivery }

func (c *chanConsumer) Consume(string, string, int) (<-chan amqp.Delivery, error) {
	return c.ch, nil
}

type recordingNotifier struct{ notified []string }

func (r *recordingNotifier) Notify(_ context.Context, orderID, _ string) error {
	r.notified = append(r.notified, orderID)
	return nil
}

func delivery(t *testing.T, evt domain.StatusChanged) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	return amqp.Delivery{Body: body}
}

func TestSubscriberNotifiesOnReadyOnly(t *testing.T) {
	c := &chanConsumer{ch: make(chan amqp.Delivery, 4)}
	n := &recordingNotifier{}
	sub := NewSubscriber(c, n, logger.New("test"))

	c.ch <- delivery(t, domain.StatusChanged{OrderID: "o1", NewStatus: domain.StatusPreparing})
	c.ch <- delivery(t, domain.StatusChanged{OrderID: "o2", CustomerName: "Ada", NewStatus: domain.StatusReady})
	c.ch <- delivery(t, domain.StatusChanged{OrderID: "o3", NewStatus: domain.StatusCompleted})
	close(c.ch)

	err := sub.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"o2"}, n.notified)
}

func TestSubscriberSkipsMalformedEvents(t *testing.T) {
	c := &chanConsumer{ch: make(chan amqp.Delivery, 2)}
	n := &recordingNotifier{}
	sub := NewSubscriber(c, n, logger.New("test"))

	c.ch <- amqp.Delivery{Body: []byte("not json")}
	c.ch <- delivery(t, domain.StatusChanged{OrderID: "o2", NewStatus: domain.StatusReady})
	close(c.ch)

	require.NoError(t, sub.Run(context.Background()))
	assert.Equal(t, []string{"o2"}, n.notified)
}

func TestSubscriberStopsOnContextCancel(t *testing.T) {
	c := &chanConsumer{ch: make(chan amqp.Delivery)}
	sub := NewSubscriber(c, &recordingNotifier{}, logger.New("test"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber did not stop on cancel")
	}
}
