// Package checkout converts a session cart into a persisted order. This is
// the single write path for order creation on every surface.
package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"knowledge-cafe/internal/cart"
	"knowledge-cafe/internal/common/mq"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

// Inserter persists a new order, falling back to the local store on primary
// failure. fellBack=true means the order lives in the fallback only.
type Inserter interface {
	InsertWithFallback(ctx context.Context, o *domain.Order) (fellBack bool, err error)
}

// LedgerRecorder applies an order to the customer's loyalty/deposit account.
type LedgerRecorder interface {
	RecordOrder(ctx context.Context, customer domain.Customer, orderID string, spend domain.Cents, cups int, deposit domain.Cents) error
}

// Publisher announces placed orders to the queue display and POS.
type Publisher interface {
	PublishPersistent(ctx context.Context, exchange, key string, body []byte) error
}

type Service struct {
	carts  *cart.Manager
	orders Inserter
	ledger LedgerRecorder
	pub    Publisher
	hours  Hours
	log    *logger.Logger
	now    func() time.Time
}

func NewService(carts *cart.Manager, orders Inserter, ledger LedgerRecorder, pub Publisher, hours Hours, log *logger.Logger) *Service {
	return &Service{
		carts:  carts,
		orders: orders,
		ledger: ledger,
		pub:    pub,
		hours:  hours,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the service clock. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service { s.now = now; return s }

type PlaceRequest struct {
	SessionID  string
	Customer   domain.Customer
	Scheduling domain.Scheduling
	Source     domain.Source
}

// PlaceOrder validates the request, snapshots the cart into an immutable
// order, persists it (never silently losing it), updates the customer
// ledger, publishes the placement event and clears the cart.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceRequest) (*domain.Order, error) {
	if strings.TrimSpace(req.Customer.Name) == "" {
		return nil, domain.Invalid("customer", "name is required")
	}
	if strings.TrimSpace(req.Customer.Email) == "" {
		return nil, domain.Invalid("customer", "email is required")
	}

	now := s.now()
	if req.Scheduling.Type == domain.SchedulingImmediate && req.Scheduling.ScheduledFor.IsZero() {
		req.Scheduling.ScheduledFor = now
	}
	if err := s.hours.ValidateScheduling(req.Scheduling, now); err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, domain.Invalid("cart", "cart is empty")
	}

	order := snapshot(c, req, now)

	fellBack, err := s.orders.InsertWithFallback(ctx, order)
	if err != nil {
		return nil, err
	}
	if fellBack {
		s.log.Info("order_stored_locally", map[string]any{"order_id": order.ID})
	}

	// Ledger and event publication are best-effort: the order is already
	// safely stored and a failure here must not undo the sale.
	cups := order.DepositCups()
	if err := s.ledger.RecordOrder(ctx, order.Customer, order.ID, order.Subtotal, cups, order.DepositTotal); err != nil {
		s.log.Error("ledger_update_failed", err, map[string]any{"order_id": order.ID})
	}
	s.publishPlaced(ctx, order)

	if err := s.carts.Clear(ctx, req.SessionID); err != nil {
		s.log.Error("cart_clear_failed", err, map[string]any{"session": req.SessionID})
	}

	s.log.Info("order_placed", map[string]any{
		"order_id": order.ID, "source": string(order.Source),
		"grand_total": order.GrandTotal.String(), "items": len(order.Items),
	})
	return order, nil
}

func snapshot(c cart.Cart, req PlaceRequest, now time.Time) *domain.Order {
	items := make([]domain.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, domain.OrderItem{
			ItemID:         l.ItemID,
			Name:           l.Name,
			UnitPrice:      l.UnitPrice,
			Quantity:       l.Quantity,
			Deposit:        l.Deposit,
			DepositPerUnit: l.DepositPerUnit,
		})
	}
	t := c.Totals()

	pay := domain.PaymentCompleted
	if req.Source == domain.SourceInPerson {
		// Walk-ins pay on the terminal after the order is queued.
		pay = domain.PaymentPending
	}

	return &domain.Order{
		ID:            newOrderID(now),
		Items:         items,
		Customer:      req.Customer,
		Subtotal:      t.Subtotal,
		DepositTotal:  t.DepositTotal,
		GrandTotal:    t.GrandTotal,
		Source:        req.Source,
		Scheduling:    req.Scheduling,
		Status:        domain.StatusPending,
		PaymentStatus: pay,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// newOrderID is client-generated so an order keeps its identity even when it
// only ever reaches the fallback store.
func newOrderID(now time.Time) string {
	return fmt.Sprintf("%s-%s", now.Format("20060102"), uuid.NewString())
}

func (s *Service) publishPlaced(ctx context.Context, o *domain.Order) {
	if s.pub == nil {
		return
	}
	evt := domain.OrderPlaced{
		OrderID:      o.ID,
		CustomerName: o.Customer.Name,
		Source:       o.Source,
		Items:        o.Items,
		GrandTotal:   o.GrandTotal,
		Scheduling:   o.Scheduling,
		PlacedAt:     o.CreatedAt,
	}
	body, err := json.Marshal(evt)
	if err != nil {
		return
	}
	key := "orders." + string(o.Source)
	if err := s.pub.PublishPersistent(ctx, mq.OrdersExchange, key, body); err != nil {
		s.log.Error("order_event_publish_failed", err, map[string]any{"order_id": o.ID})
	}
}
