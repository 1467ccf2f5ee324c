package domain

import "time"

// OrderPlaced is published to the orders topic exchange when checkout
// persists a new order.
type OrderPlaced struct {
	OrderID      string      `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	Source       Source      `json:"source"`
	Items        []OrderItem `json:"items"`
	GrandTotal   Cents       `json:"grand_total"`
	Scheduling   Scheduling  `json:"scheduling"`
	PlacedAt     time.Time   `json:"placed_at"`
}

// StatusChanged is published to the notifications fanout exchange on every
// staff-driven lifecycle transition.
type StatusChanged struct {
	OrderID      string    `json:"order_id"`
	CustomerName string    `json:"customer_name"`
	OldStatus    Status    `json:"old_status"`
	NewStatus    Status    `json:"new_status"`
	ChangedBy    string    `json:"changed_by"`
	ChangedAt    time.Time `json:"changed_at"`
}
