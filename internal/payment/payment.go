// Package payment talks to the card terminal for walk-in orders. The flow is
// fire-and-forget: a terminal outage never blocks order placement, the
// customer can still pay at pickup.
package payment

import (
	"context"
	"time"

	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

// IntentStatus is the terminal's view of one payment attempt.
type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentSucceeded IntentStatus = "succeeded"
	IntentFailed    IntentStatus = "failed"
	IntentCanceled  IntentStatus = "canceled"
)

func (s IntentStatus) Final() bool {
	return s == IntentSucceeded || s == IntentFailed || s == IntentCanceled
}

// Terminal is the card-terminal boundary.
type Terminal interface {
	CreateIntent(ctx context.Context, orderID string, amount domain.Cents) (handle string, err error)
	Status(ctx context.Context, handle string) (IntentStatus, error)
}

// PaymentSetter is the slice of the order store the collector writes to.
type PaymentSetter interface {
	SetPaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error
}

type Collector struct {
	terminal Terminal
	orders   PaymentSetter
	interval time.Duration
	timeout  time.Duration
	log      *logger.Logger
}

func NewCollector(terminal Terminal, orders PaymentSetter, interval, timeout time.Duration, log *logger.Logger) *Collector {
	return &Collector{
		terminal: terminal,
		orders:   orders,
		interval: interval,
		timeout:  timeout,
		log:      log,
	}
}

// Collect creates a payment intent for the order and follows it to a final
// status. Intended to run in its own goroutine; every failure mode degrades
// to "pay at pickup" and is only logged.
func (c *Collector) Collect(ctx context.Context, orderID string, amount domain.Cents) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	handle, err := c.terminal.CreateIntent(ctx, orderID, amount)
	if err != nil {
		c.log.Error("payment_intent_failed", err, map[string]any{"order_id": orderID})
		return
	}

	status, err := c.poll(ctx, handle)
	if err != nil {
		c.log.Error("payment_poll_failed", err, map[string]any{"order_id": orderID})
		return
	}

	ps := domain.PaymentFailed
	if status == IntentSucceeded {
		ps = domain.PaymentCompleted
	}
	if err := c.orders.SetPaymentStatus(ctx, orderID, ps); err != nil {
		c.log.Error("payment_status_update_failed", err, map[string]any{"order_id": orderID})
		return
	}
	c.log.Info("payment_settled", map[string]any{
		"order_id": orderID, "intent_status": string(status), "amount": amount.String(),
	})
}

func (c *Collector) poll(ctx context.Context, handle string) (IntentStatus, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		status, err := c.terminal.Status(ctx, handle)
		if err != nil {
			return "", err
		}
		if status.Final() {
			return status, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
