// Package cart holds the per-session shopping cart. Every mutation reprices
// through the pricing engine and flushes the whole snapshot to the store, so
// a page reload within the same session gets the cart back intact.
package cart

import (
	"context"

	"knowledge-cafe/internal/catalog"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/pricing"
)

// Line is one priced cart entry. Quantity is always ≥ 1; a line decremented
// to zero is deleted, never stored.
type Line struct {
	Key            string       `json:"key"`
	ItemID         string       `json:"item_id"`
	Name           string       `json:"name"`
	UnitPrice      domain.Cents `json:"unit_price"`
	Deposit        bool         `json:"deposit"`
	DepositPerUnit domain.Cents `json:"deposit_per_unit"`
	Quantity       int          `json:"quantity"`
}

type Cart struct {
	Lines map[string]Line `json:"lines"`
}

func New() Cart { return Cart{Lines: map[string]Line{}} }

func (c Cart) Empty() bool { return len(c.Lines) == 0 }

type Totals struct {
	Subtotal     domain.Cents `json:"subtotal"`
	DepositTotal domain.Cents `json:"deposit_total"`
	GrandTotal   domain.Cents `json:"grand_total"`
}

// Totals sums unit prices and deposits separately. The grand total is their
// sum by construction.
func (c Cart) Totals() Totals {
	var t Totals
	for _, l := range c.Lines {
		t.Subtotal += l.UnitPrice * domain.Cents(l.Quantity)
		t.DepositTotal += l.DepositPerUnit * domain.Cents(l.Quantity)
	}
	t.GrandTotal = t.Subtotal + t.DepositTotal
	return t
}

// Store persists cart snapshots per session. Last write wins across
// concurrent sessions on the same id; there is one writer in practice.
type Store interface {
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// Manager is the cart service shared by the customer and POS surfaces.
type Manager struct {
	store Store
	fees  pricing.Fees
}

func NewManager(store Store, fees pricing.Fees) *Manager {
	return &Manager{store: store, fees: fees}
}

// AddLine prices the item, merges it into the session cart and persists the
// snapshot. Identical customizations land on the same line.
func (m *Manager) AddLine(ctx context.Context, sessionID, itemID string, role domain.Role, cust pricing.Customization) (Cart, error) {
	item, ok := catalog.Lookup(itemID)
	if !ok {
		return Cart{}, domain.Invalid("item", "unknown item "+itemID)
	}
	q, err := pricing.Price(item, role, cust, m.fees)
	if err != nil {
		return Cart{}, err
	}

	c, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	key := pricing.LineKey(itemID, cust)
	line, exists := c.Lines[key]
	if !exists {
		line = Line{
			Key:            key,
			ItemID:         itemID,
			Name:           q.Label,
			UnitPrice:      q.UnitPrice,
			Deposit:        q.Deposit(),
			DepositPerUnit: q.DepositPerUnit,
		}
	}
	line.Quantity++
	c.Lines[key] = line

	if err := m.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// ChangeQuantity adjusts a line by delta and removes it when the result
// drops to zero or below.
func (m *Manager) ChangeQuantity(ctx context.Context, sessionID, key string, delta int) (Cart, error) {
	c, err := m.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	line, ok := c.Lines[key]
	if !ok {
		return Cart{}, domain.ErrNotFound
	}
	line.Quantity += delta
	if line.Quantity <= 0 {
		delete(c.Lines, key)
	} else {
		c.Lines[key] = line
	}
	if err := m.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (m *Manager) Get(ctx context.Context, sessionID string) (Cart, error) {
	return m.store.Load(ctx, sessionID)
}

func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	return m.store.Clear(ctx, sessionID)
}
