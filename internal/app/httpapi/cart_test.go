package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"knowledge-cafe/internal/cart"
	"knowledge-cafe/internal/pricing"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	carts := cart.NewManager(cart.NewMemoryStore(), pricing.DefaultFees)
	srv := httptest.NewServer(NewCartHandler(carts).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, session, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeCart(t *testing.T, resp *http.Response) (lines []cart.Line, totals cart.Totals) {
	t.Helper()
	var v struct {
		Lines  []cart.Line `json:"lines"`
		Totals cart.Totals `json:"totals"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v.Lines, v.Totals
}

func TestCartRoutesRequireSession(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var problem struct {
		Type   string `json:"type"`
		Status int    `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&problem))
	assert.Equal(t, "validation_error", problem.Type)
	assert.Equal(t, http.StatusBadRequest, problem.Status)
}

func TestCartAddAndMerge(t *testing.T) {
	srv := newServer(t)
	body := `{"item_id":"espresso","role":"student","customization":{"cup":"togo"}}`

	resp := do(t, srv, http.MethodPost, "/items", "s1", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, srv, http.MethodPost, "/items", "s1", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines, totals := decodeCart(t, resp)

	require.Len(t, lines, 1, "identical customizations merge")
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, totals.Subtotal+totals.DepositTotal, totals.GrandTotal)
}

func TestCartRejectsInvalidCustomization(t *testing.T) {
	srv := newServer(t)
	// Cappuccino without milk choice.
	resp := do(t, srv, http.MethodPost, "/items", "s1",
		`{"item_id":"cappuccino","role":"staff","customization":{"cup":"togo"}}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartQuantityAndClear(t *testing.T) {
	srv := newServer(t)
	resp := do(t, srv, http.MethodPost, "/items", "s1",
		`{"item_id":"espresso","customization":{"cup":"togo"}}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines, _ := decodeCart(t, resp)
	require.Len(t, lines, 1)
	key := lines[0].Key

	resp = do(t, srv, http.MethodPatch, "/items/"+key, "s1", `{"delta":-1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	lines, _ = decodeCart(t, resp)
	assert.Empty(t, lines, "decrement to zero removes the line")

	resp = do(t, srv, http.MethodPatch, "/items/"+key, "s1", `{"delta":1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, srv, http.MethodDelete, "/", "s1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
