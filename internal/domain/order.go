package domain

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleStaff   Role = "staff"
)

type Source string

const (
	SourceOnline   Source = "online"
	SourceInPerson Source = "in_person"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type SchedulingType string

const (
	SchedulingImmediate SchedulingType = "immediate"
	SchedulingScheduled SchedulingType = "scheduled"
)

type Scheduling struct {
	Type         SchedulingType `json:"type"`
	ScheduledFor time.Time      `json:"scheduled_for"`
}

// OrderItem is a snapshot of a cart line at checkout time. Prices are frozen
// here; later catalog changes never touch placed orders.
type OrderItem struct {
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	UnitPrice      Cents  `json:"unit_price"`
	Quantity       int    `json:"quantity"`
	Deposit        bool   `json:"deposit"`
	DepositPerUnit Cents  `json:"deposit_per_unit"`
}

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Order struct {
	ID            string        `json:"id"`
	Items         []OrderItem   `json:"items"`
	Customer      Customer      `json:"customer"`
	Subtotal      Cents         `json:"subtotal"`
	DepositTotal  Cents         `json:"deposit_total"`
	GrandTotal    Cents         `json:"grand_total"`
	Source        Source        `json:"source"`
	Scheduling    Scheduling    `json:"scheduling"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// DepositCups counts physical deposit cups across the order.
func (o *Order) DepositCups() int {
	n := 0
	for _, it := range o.Items {
		if it.Deposit {
			n += it.Quantity
		}
	}
	return n
}
