// Package lifecycle drives staff-side status transitions: pending →
// preparing → ready → completed, one step at a time.
package lifecycle

import (
	"context"
	"encoding/json"
	"time"

	"knowledge-cafe/internal/common/mq"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

// Orders is the slice of the order store the lifecycle service needs.
type Orders interface {
	Find(ctx context.Context, id string) (domain.Order, error)
	Advance(ctx context.Context, id, changedBy string) (old, next domain.Status, err error)
}

// SalesRecorder books a completed walk-in order into the daily sales ledger.
type SalesRecorder interface {
	Record(ctx context.Context, o *domain.Order, at time.Time) error
}

type Publisher interface {
	PublishPersistent(ctx context.Context, exchange, key string, body []byte) error
}

type Service struct {
	orders Orders
	sales  SalesRecorder
	pub    Publisher
	log    *logger.Logger
	now    func() time.Time
}

func NewService(orders Orders, sales SalesRecorder, pub Publisher, log *logger.Logger) *Service {
	return &Service{
		orders: orders,
		sales:  sales,
		pub:    pub,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service { s.now = now; return s }

// Advance moves the order one status forward on behalf of a staff member.
// Advancing a completed order is a no-op that returns the order unchanged.
func (s *Service) Advance(ctx context.Context, id, changedBy string) (*domain.Order, error) {
	old, next, err := s.orders.Advance(ctx, id, changedBy)
	if err != nil {
		return nil, err
	}

	o, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if old == next {
		// Terminal: nothing changed, nothing to announce.
		return &o, nil
	}

	s.log.Info("order_status_advanced", map[string]any{
		"order_id": id, "from": string(old), "to": string(next), "by": changedBy,
	})

	s.publishChange(ctx, &o, old, next, changedBy)

	if next == domain.StatusCompleted && o.Source == domain.SourceInPerson {
		// Walk-in revenue is booked at handover, not at placement.
		if err := s.sales.Record(ctx, &o, s.now()); err != nil {
			s.log.Error("sales_record_failed", err, map[string]any{"order_id": id})
		}
	}
	return &o, nil
}

func (s *Service) publishChange(ctx context.Context, o *domain.Order, old, next domain.Status, changedBy string) {
	if s.pub == nil {
		return
	}
	evt := domain.StatusChanged{
		OrderID:      o.ID,
		CustomerName: o.Customer.Name,
		OldStatus:    old,
		NewStatus:    next,
		ChangedBy:    changedBy,
		ChangedAt:    s.now(),
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return
	}
	if err := s.pub.PublishPersistent(ctx, mq.NotificationsExchange, "", body); err != nil {
		s.log.Error("status_event_publish_failed", err, map[string]any{"order_id": o.ID})
	}
}
