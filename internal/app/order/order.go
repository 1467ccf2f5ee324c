// Package order is the customer-facing service: catalog browsing, cart
// editing and online checkout.
package order

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"knowledge-cafe/internal/app/httpapi"
	"knowledge-cafe/internal/cart"
	"knowledge-cafe/internal/catalog"
	"knowledge-cafe/internal/checkout"
	"knowledge-cafe/internal/common/httpx"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

type Handler struct {
	checkout *checkout.Service
	log      *logger.Logger
}

func NewHandler(co *checkout.Service, log *logger.Logger) *Handler {
	return &Handler{checkout: co, log: log}
}

// Run wires the routes and serves until ctx is cancelled.
func Run(ctx context.Context, addr string, carts *cart.Manager, co *checkout.Service, log *logger.Logger) error {
	h := NewHandler(co, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Get("/catalog", h.listCatalog)
	r.Get("/catalog/syrups", h.listSyrups)
	r.Mount("/cart", httpapi.NewCartHandler(carts).Routes())
	r.Post("/orders", h.placeOrder)

	log.Info("service_started", map[string]any{"addr": addr})
	return httpx.New(addr, r).Run(ctx)
}

type catalogItemView struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	PriceStudent domain.Cents `json:"price_student"`
	PriceStaff   domain.Cents `json:"price_staff"`
	Milk         bool         `json:"milk"`
}

func itemView(it catalog.Item) catalogItemView {
	return catalogItemView{
		ID:           it.ID,
		Name:         it.Name,
		Category:     string(it.Category),
		PriceStudent: it.PriceStudent,
		PriceStaff:   it.PriceStaff,
		Milk:         it.Milk,
	}
}

func (h *Handler) listCatalog(w http.ResponseWriter, _ *http.Request) {
	items := catalog.Items()
	out := make([]catalogItemView, 0, len(items))
	for _, it := range items {
		out = append(out, itemView(it))
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) listSyrups(w http.ResponseWriter, _ *http.Request) {
	syrups := catalog.Syrups()
	out := make([]catalogItemView, 0, len(syrups))
	for _, it := range syrups {
		out = append(out, itemView(it))
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"syrups": out})
}

type placeOrderRequest struct {
	Customer   domain.Customer   `json:"customer"`
	Scheduling domain.Scheduling `json:"scheduling"`
}

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
	if req.Scheduling.Type == "" {
		req.Scheduling.Type = domain.SchedulingImmediate
	}

	o, err := h.checkout.PlaceOrder(r.Context(), checkout.PlaceRequest{
		SessionID:  session,
		Customer:   req.Customer,
		Scheduling: req.Scheduling,
		Source:     domain.SourceOnline,
	})
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, o)
}
