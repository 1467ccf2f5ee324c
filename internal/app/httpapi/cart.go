package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"knowledge-cafe/internal/cart"
	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/pricing"
)

// CartHandler serves the cart routes mounted by both the customer service
// and the POS.
type CartHandler struct {
	carts *cart.Manager
}

func NewCartHandler(carts *cart.Manager) *CartHandler { return &CartHandler{carts: carts} }

// Routes returns the cart sub-router: get, add line, change quantity, clear.
func (h *CartHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.get)
	r.Post("/items", h.addItem)
	r.Patch("/items/{key}", h.changeQuantity)
	r.Delete("/", h.clear)
	return r
}

type cartView struct {
	Lines  []cart.Line `json:"lines"`
	Totals cart.Totals `json:"totals"`
}

func view(c cart.Cart) cartView {
	lines := make([]cart.Line, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, l)
	}
	return cartView{Lines: lines, Totals: c.Totals()}
}

func (h *CartHandler) get(w http.ResponseWriter, r *http.Request) {
	session, err := SessionID(r)
	if err != nil {
		Error(w, err)
		return
	}
	c, err := h.carts.Get(r.Context(), session)
	if err != nil {
		Error(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view(c))
}

type addItemRequest struct {
	ItemID        string                `json:"item_id"`
	Role          domain.Role           `json:"role"`
	Customization pricing.Customization `json:"customization"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	session, err := SessionID(r)
	if err != nil {
		Error(w, err)
		return
	}
	var req addItemRequest
	if err := Decode(r, &req); err != nil {
		Error(w, err)
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleStudent
	}
	if req.Role != domain.RoleStudent && req.Role != domain.RoleStaff {
		Error(w, domain.Invalid("role", "role must be student or staff"))
		return
	}
	c, err := h.carts.AddLine(r.Context(), session, req.ItemID, req.Role, req.Customization)
	if err != nil {
		Error(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view(c))
}

type changeQuantityRequest struct {
	Delta int `json:"delta"`
}

func (h *CartHandler) changeQuantity(w http.ResponseWriter, r *http.Request) {
	session, err := SessionID(r)
	if err != nil {
		Error(w, err)
		return
	}
	var req changeQuantityRequest
	if err := Decode(r, &req); err != nil {
		Error(w, err)
		return
	}
	c, err := h.carts.ChangeQuantity(r.Context(), session, chi.URLParam(r, "key"), req.Delta)
	if err != nil {
		Error(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, view(c))
}

func (h *CartHandler) clear(w http.ResponseWriter, r *http.Request) {
	session, err := SessionID(r)
	if err != nil {
		Error(w, err)
		return
	}
	if err := h.carts.Clear(r.Context(), session); err != nil {
		Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
