package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/pricing"
)

func newManager() *Manager {
	return NewManager(NewMemoryStore(), pricing.DefaultFees)
}

func TestAddLineMergesIdenticalCustomizations(t *testing.T) {
	m := newManager()
	ctx := context.Background()
	cust := pricing.Customization{Milk: pricing.MilkOat, Cup: pricing.CupToGo}

	_, err := m.AddLine(ctx, "s1", "cappuccino", domain.RoleStudent, cust)
	require.NoError(t, err)
	c, err := m.AddLine(ctx, "s1", "cappuccino", domain.RoleStudent, cust)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	for _, l := range c.Lines {
		assert.Equal(t, 2, l.Quantity)
	}
}

func TestAddLineKeepsDistinctCustomizationsApart(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	_, err := m.AddLine(ctx, "s1", "cappuccino", domain.RoleStudent,
		pricing.Customization{Milk: pricing.MilkOat, Cup: pricing.CupToGo})
	require.NoError(t, err)
	c, err := m.AddLine(ctx, "s1", "cappuccino", domain.RoleStudent,
		pricing.Customization{Milk: pricing.MilkCow, Cup: pricing.CupToGo})
	require.NoError(t, err)

	assert.Len(t, c.Lines, 2)
}

func TestDecrementToZeroRemovesLine(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	c, err := m.AddLine(ctx, "s1", "wasser", domain.RoleStudent, pricing.Customization{})
	require.NoError(t, err)
	var key string
	for k := range c.Lines {
		key = k
	}

	c, err = m.ChangeQuantity(ctx, "s1", key, -1)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)

	// No zero-or-negative-quantity line is ever stored.
	c, err = m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestChangeQuantityUnknownKey(t *testing.T) {
	m := newManager()
	_, err := m.ChangeQuantity(context.Background(), "s1", "nope", 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestValidationErrorAddsNothing(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	// Milk missing on a milk drink: rejected, cart untouched.
	_, err := m.AddLine(ctx, "s1", "cappuccino", domain.RoleStudent,
		pricing.Customization{Cup: pricing.CupToGo})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	c, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestTotalsSeparateDeposit(t *testing.T) {
	m := newManager()
	ctx := context.Background()

	_, err := m.AddLine(ctx, "s1", "cappuccino", domain.RoleStaff, pricing.Customization{
		Milk: pricing.MilkOat, Syrup: "syrup-vanilla", Cup: pricing.CupDeposit,
	})
	require.NoError(t, err)
	c, err := m.AddLine(ctx, "s1", "espresso", domain.RoleStudent,
		pricing.Customization{Cup: pricing.CupToGo})
	require.NoError(t, err)

	tt := c.Totals()
	assert.Equal(t, domain.Cents(330+150), tt.Subtotal) // 3.00+0.30 staff capp, 1.30+0.20 espresso
	assert.Equal(t, domain.Cents(200), tt.DepositTotal)
	assert.Equal(t, tt.Subtotal+tt.DepositTotal, tt.GrandTotal)
}

func TestCartSurvivesReload(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	m1 := NewManager(store, pricing.DefaultFees)
	_, err := m1.AddLine(ctx, "s1", "tea", domain.RoleStudent,
		pricing.Customization{Cup: pricing.CupToGo})
	require.NoError(t, err)

	// A fresh manager over the same store stands in for a page reload.
	m2 := NewManager(store, pricing.DefaultFees)
	c, err := m2.Get(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	for _, l := range c.Lines {
		assert.Equal(t, domain.Cents(100+20), l.UnitPrice)
		assert.Equal(t, 1, l.Quantity)
	}
}

func TestClear(t *testing.T) {
	m := newManager()
	ctx := context.Background()
	_, err := m.AddLine(ctx, "s1", "redbull", domain.RoleStudent, pricing.Customization{})
	require.NoError(t, err)
	require.NoError(t, m.Clear(ctx, "s1"))
	c, err := m.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}
