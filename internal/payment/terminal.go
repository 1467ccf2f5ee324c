package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"knowledge-cafe/internal/domain"
)

// HTTPTerminal drives a card terminal over its JSON API: POST /intents to
// start a payment, GET /intents/{id} to follow it.
type HTTPTerminal struct {
	base   string
	client *http.Client
}

func NewHTTPTerminal(base string) *HTTPTerminal {
	return &HTTPTerminal{base: base, client: &http.Client{}}
}

type createIntentRequest struct {
	OrderID     string `json:"order_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

type intentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (t *HTTPTerminal) CreateIntent(ctx context.Context, orderID string, amount domain.Cents) (string, error) {
	body, err := json.Marshal(createIntentRequest{
		OrderID:     orderID,
		AmountCents: int64(amount),
		Currency:    "EUR",
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.base+"/intents", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("terminal create intent: unexpected status %d", resp.StatusCode)
	}

	var ir intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return "", err
	}
	if ir.ID == "" {
		return "", fmt.Errorf("terminal create intent: empty intent id")
	}
	return ir.ID, nil
}

func (t *HTTPTerminal) Status(ctx context.Context, handle string) (IntentStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.base+"/intents/"+handle, nil)
	if err != nil {
		return "", err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("terminal intent status: unexpected status %d", resp.StatusCode)
	}

	var ir intentResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return "", err
	}
	return IntentStatus(ir.Status), nil
}
