package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"knowledge-cafe/internal/domain"
)

func TestAccountAccumulatesCups(t *testing.T) {
	a := Account{Email: "x@y.z"}
	now := time.Now()

	// N orders of k cups each, zero returns → N×k outstanding.
	for i := 0; i < 3; i++ {
		a.RecordOrder("o", 500, 2, 400, now)
	}
	assert.Equal(t, 6, a.CupsOutstanding)
	assert.Equal(t, 0, a.CupsReturned)
	assert.Equal(t, domain.Cents(1200), a.DepositPaid)
	assert.Equal(t, 3, a.Visits)
	assert.Equal(t, domain.Cents(1500), a.TotalSpent)
}

func TestAccountFullReturnResets(t *testing.T) {
	a := Account{Email: "x@y.z"}
	now := time.Now()
	a.RecordOrder("o1", 500, 3, 600, now)

	cups, refund := a.ReturnAll(200, now)
	assert.Equal(t, 3, cups)
	assert.Equal(t, domain.Cents(600), refund)
	assert.Equal(t, 0, a.CupsOutstanding)
	assert.Equal(t, 3, a.CupsReturned)
	assert.Equal(t, domain.Cents(600), a.DepositReturned)
}

func TestAccountReturnWithNothingOutstanding(t *testing.T) {
	a := Account{Email: "x@y.z"}
	cups, refund := a.ReturnAll(200, time.Now())
	assert.Zero(t, cups)
	assert.Zero(t, refund)
	assert.Empty(t, a.Activity)
}

func TestAccountOrderWithoutCupsSkipsActivity(t *testing.T) {
	a := Account{Email: "x@y.z"}
	a.RecordOrder("o1", 300, 0, 0, time.Now())
	assert.Equal(t, 1, a.Visits)
	assert.Equal(t, 0, a.CupsOutstanding)
	assert.Empty(t, a.Activity)
}

func TestActivityIsNewestFirst(t *testing.T) {
	a := Account{Email: "x@y.z"}
	now := time.Now()
	a.RecordOrder("o1", 100, 1, 200, now)
	a.ReturnAll(200, now.Add(time.Minute))

	assert.Len(t, a.Activity, 2)
	assert.Equal(t, ActivityReturn, a.Activity[0].Type)
	assert.Equal(t, ActivityDeposit, a.Activity[1].Type)
}

func TestAggregate(t *testing.T) {
	entries := []SaleEntry{
		{
			OrderID: "o1",
			Total:   680,
			Items: []domain.OrderItem{
				{Name: "Espresso • To-Go Cup", UnitPrice: 150, Quantity: 2},
				{Name: "Cappuccino (Oat Milk) • Deposit Cup", UnitPrice: 250, DepositPerUnit: 200, Quantity: 1, Deposit: true},
			},
		},
		{
			OrderID: "o2",
			Total:   150,
			Items: []domain.OrderItem{
				{Name: "Espresso • To-Go Cup", UnitPrice: 150, Quantity: 1},
			},
		},
	}

	r := Aggregate("2026-08-28", entries)
	assert.Equal(t, 2, r.TotalOrders)
	assert.Equal(t, domain.Cents(830), r.TotalRevenue)
	assert.Len(t, r.Items, 2)

	byName := map[string]ItemSales{}
	for _, it := range r.Items {
		byName[it.Name] = it
	}
	assert.Equal(t, 3, byName["Espresso • To-Go Cup"].Quantity)
	assert.Equal(t, domain.Cents(450), byName["Espresso • To-Go Cup"].Revenue)
	assert.Equal(t, domain.Cents(450), byName["Cappuccino (Oat Milk) • Deposit Cup"].Revenue)
}
