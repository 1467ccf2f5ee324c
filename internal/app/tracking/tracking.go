// Package tracking is the read-only customer view: look one order up or see
// the active queue.
package tracking

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"knowledge-cafe/internal/app/httpapi"
	"knowledge-cafe/internal/common/httpx"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
	"knowledge-cafe/internal/queue"
)

// Finder resolves a single order by id.
type Finder interface {
	Find(ctx context.Context, id string) (domain.Order, error)
}

type Handler struct {
	orders    Finder
	queue     *queue.Service
	snapshot  *queue.Snapshot // nil disables the cache
	staleness time.Duration
	log       *logger.Logger
}

func NewHandler(orders Finder, q *queue.Service, snap *queue.Snapshot, staleness time.Duration, log *logger.Logger) *Handler {
	return &Handler{orders: orders, queue: q, snapshot: snap, staleness: staleness, log: log}
}

func Run(ctx context.Context, addr string, orders Finder, q *queue.Service, snap *queue.Snapshot, staleness time.Duration, log *logger.Logger) error {
	h := NewHandler(orders, q, snap, staleness, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Get("/orders/{id}", h.find)
	r.Get("/queue", h.activeQueue)

	log.Info("service_started", map[string]any{"addr": addr})
	return httpx.New(addr, r).Run(ctx)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Find(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, o)
}

// activeQueue serves the cached snapshot while it is within the staleness
// bound and falls back to a live store read otherwise. Source filtering
// always goes to the store; the cache holds the unfiltered view.
func (h *Handler) activeQueue(w http.ResponseWriter, r *http.Request) {
	source := domain.Source(r.URL.Query().Get("source"))
	if source == "" && h.snapshot != nil {
		if orders, ok := h.snapshot.Get(h.staleness); ok {
			httpapi.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
			return
		}
	}
	orders, err := h.queue.Active(r.Context(), source)
	if err != nil {
		httpapi.Error(w, err)
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"orders": orders})
}
