// Package pos is the staff terminal service: walk-in orders, status
// advancing, the live queue, cup returns and the daily sales report.
package pos

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"knowledge-cafe/internal/app/httpapi"
	"knowledge-cafe/internal/cart"
	"knowledge-cafe/internal/checkout"
	"knowledge-cafe/internal/common/httpx"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/ledger"
	"knowledge-cafe/internal/lifecycle"
	"knowledge-cafe/internal/logger"
	"knowledge-cafe/internal/payment"
	"knowledge-cafe/internal/queue"
)

// CustomerLedger is the slice of the deposit/loyalty ledger the POS uses.
type CustomerLedger interface {
	Account(ctx context.Context, email string) (ledger.Account, error)
	ReturnCups(ctx context.Context, email string, depositPerCup domain.Cents) (int, domain.Cents, error)
}

// SalesReader backs the daily report endpoint.
type SalesReader interface {
	Daily(ctx context.Context, day string) ([]ledger.SaleEntry, error)
}

type Handler struct {
	checkout  *checkout.Service
	lifecycle *lifecycle.Service
	queue     *queue.Service
	customers CustomerLedger
	sales     SalesReader
	collector *payment.Collector
	deposit   domain.Cents
	log       *logger.Logger
}

type Deps struct {
	Carts     *cart.Manager
	Checkout  *checkout.Service
	Lifecycle *lifecycle.Service
	Queue     *queue.Service
	Customers CustomerLedger
	Sales     SalesReader
	Collector *payment.Collector // nil when no terminal is configured
	Deposit   domain.Cents
	Log       *logger.Logger
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		checkout:  d.Checkout,
		lifecycle: d.Lifecycle,
		queue:     d.Queue,
		customers: d.Customers,
		sales:     d.Sales,
		collector: d.Collector,
		deposit:   d.Deposit,
		log:       d.Log,
	}
}

func Run(ctx context.Context, addr string, d Deps) error {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Mount("/cart", httpapi.NewCartHandler(d.Carts).Routes())
	r.Post("/orders", h.placeOrder)
	r.Post("/orders/{id}/advance", h.advance)
	r.Get("/queue", h.activeQueue)
	r.Get("/customers/{email}", h.customer)
	r.Post("/returns", h.returnCups)
	r.Get("/sales/{day}", h.dailySales)

	d.Log.Info("service_started", map[string]any{"addr": addr})
	return httpx.New(addr, r).Run(ctx)
}

type placeOrderRequest struct {
	Customer domain.Customer `json:"customer"`
}

// placeOrder checks out the terminal's cart as a walk-in order. Payment runs
// against the card terminal in the background; a terminal failure leaves the
// order payable at pickup.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	session, err := httpapi.SessionID(r)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	var req placeOrderRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}

	o, err := h.checkout.PlaceOrder(r.Context(), checkout.PlaceRequest{
		SessionID:  session,
		Customer:   req.Customer,
		Scheduling: domain.Scheduling{Type: domain.SchedulingImmediate},
		Source:     domain.SourceInPerson,
	})
	if err != nil {
		httpapi.Error(w, err)
		return
	}

	if h.collector != nil {
		go h.collector.Collect(context.Background(), o.ID, o.GrandTotal)
	}
	httpapi.WriteJSON(w, http.StatusCreated, o)
}

type advanceRequest struct {
	ChangedBy string `json:"changed_by"`
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	if req.ChangedBy == "" {
		req.ChangedBy = "pos"
	}
	o, err := h.lifecycle.Advance(r.Context(), chi.URLParam(r, "id"), req.ChangedBy)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) activeQueue(w http.ResponseWriter, r *http.Request) {
	source := domain.Source(r.URL.Query().Get("source"))
	orders, err := h.queue.Active(r.Context(), source)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) customer(w http.ResponseWriter, r *http.Request) {
	a, err := h.customers.Account(r.Context(), chi.URLParam(r, "email"))
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, a)
}

type returnRequest struct {
	Email string `json:"email"`
}

func (h *Handler) returnCups(w http.ResponseWriter, r *http.Request) {
	var req returnRequest
	if err := httpapi.Decode(r, &req); err != nil {
		httpapi.Error(w, err)
		return
	}
	if req.Email == "" {
		httpapi.Error(w, domain.Invalid("email", "email is required"))
		return
	}
	cups, refund, err := h.customers.ReturnCups(r.Context(), req.Email, h.deposit)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	h.log.Info("cups_returned", map[string]any{
		"email": req.Email, "cups": cups, "refund": refund.String(),
	})
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"cups": cups, "refund": refund})
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	day := chi.URLParam(r, "day")
	entries, err := h.sales.Daily(r.Context(), day)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, ledger.Aggregate(day, entries))
}
