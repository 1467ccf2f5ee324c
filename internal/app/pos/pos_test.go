package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/ledger"
	"knowledge-cafe/internal/lifecycle"
	"knowledge-cafe/internal/logger"
	"knowledge-cafe/internal/queue"
	"knowledge-cafe/internal/store"
)

type fakeOrders struct {
	byID map[string]*domain.Order
}

func (f *fakeOrders) Find(_ context.Context, id string) (domain.Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return *o, nil
}

func (f *fakeOrders) Advance(_ context.Context, id, _ string) (domain.Status, domain.Status, error) {
	o, ok := f.byID[id]
	if !ok {
		return "", "", domain.ErrNotFound
	}
	old := o.Status
	o.Status = old.Next()
	return old, o.Status, nil
}

type noSales struct{}

func (noSales) Record(context.Context, *domain.Order, time.Time) error { return nil }

type fakeLedger struct {
	outstanding int
}

func (f *fakeLedger) Account(_ context.Context, email string) (ledger.Account, error) {
	if email != "ada@example.com" {
		return ledger.Account{}, domain.ErrNotFound
	}
	return ledger.Account{Email: email, CupsOutstanding: f.outstanding}, nil
}

func (f *fakeLedger) ReturnCups(_ context.Context, _ string, depositPerCup domain.Cents) (int, domain.Cents, error) {
	cups := f.outstanding
	f.outstanding = 0
	return cups, depositPerCup * domain.Cents(cups), nil
}

type fakeSalesReader struct{ entries []ledger.SaleEntry }

func (f *fakeSalesReader) Daily(context.Context, string) ([]ledger.SaleEntry, error) {
	return f.entries, nil
}

func newTestServer(t *testing.T, orders *fakeOrders, led *fakeLedger, sales SalesReader) *httptest.Server {
	t.Helper()
	log := logger.New("test")
	h := NewHandler(Deps{
		Lifecycle: lifecycle.NewService(orders, noSales{}, nil, log),
		Queue:     queue.NewService(listerFunc(func() []domain.Order { return nil })),
		Customers: led,
		Sales:     sales,
		Deposit:   200,
		Log:       log,
	})
	r := chi.NewRouter()
	r.Post("/orders/{id}/advance", h.advance)
	r.Post("/returns", h.returnCups)
	r.Get("/customers/{email}", h.customer)
	r.Get("/sales/{day}", h.dailySales)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type listerFunc func() []domain.Order

func (f listerFunc) List(context.Context, store.Filter) ([]domain.Order, error) {
	return f(), nil
}

func TestAdvanceEndpoint(t *testing.T) {
	orders := &fakeOrders{byID: map[string]*domain.Order{
		"o1": {ID: "o1", Status: domain.StatusPending, Source: domain.SourceInPerson},
	}}
	srv := newTestServer(t, orders, &fakeLedger{}, &fakeSalesReader{})

	resp, err := http.Post(srv.URL+"/orders/o1/advance", "application/json", strings.NewReader(`{"changed_by":"barista-1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var o domain.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&o))
	assert.Equal(t, domain.StatusPreparing, o.Status)
}

func TestAdvanceUnknownOrder(t *testing.T) {
	srv := newTestServer(t, &fakeOrders{byID: map[string]*domain.Order{}}, &fakeLedger{}, &fakeSalesReader{})

	resp, err := http.Post(srv.URL+"/orders/missing/advance", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReturnCupsEndpoint(t *testing.T) {
	led := &fakeLedger{outstanding: 3}
	srv := newTestServer(t, &fakeOrders{}, led, &fakeSalesReader{})

	resp, err := http.Post(srv.URL+"/returns", "application/json", strings.NewReader(`{"email":"ada@example.com"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var v struct {
		Cups   int          `json:"cups"`
		Refund domain.Cents `json:"refund"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, 3, v.Cups)
	assert.Equal(t, domain.Cents(600), v.Refund)
	assert.Zero(t, led.outstanding)
}

func TestReturnCupsRequiresEmail(t *testing.T) {
	srv := newTestServer(t, &fakeOrders{}, &fakeLedger{}, &fakeSalesReader{})

	resp, err := http.Post(srv.URL+"/returns", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDailySalesEndpoint(t *testing.T) {
	sales := &fakeSalesReader{entries: []ledger.SaleEntry{
		{OrderID: "o1", Total: 300, Items: []domain.OrderItem{
			{Name: "Espresso • To-Go Cup", UnitPrice: 150, Quantity: 2},
		}},
	}}
	srv := newTestServer(t, &fakeOrders{}, &fakeLedger{}, sales)

	resp, err := http.Get(srv.URL + "/sales/2026-08-28")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var r ledger.DailyReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&r))
	assert.Equal(t, "2026-08-28", r.Day)
	assert.Equal(t, 1, r.TotalOrders)
	assert.Equal(t, domain.Cents(300), r.TotalRevenue)
}
