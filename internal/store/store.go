// Package store persists orders. The primary store is Postgres; a local
// append-only file takes writes when the primary is unreachable so an order
// is never silently lost.
package store

import (
	"context"
	"time"

	"knowledge-cafe/internal/domain"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Statuses   []domain.Status
	Source     domain.Source
	Since      time.Time
	Until      time.Time
	ActiveOnly bool // pending, preparing, ready
	Limit      int
}

// Store is the order persistence contract shared by the checkout, POS,
// queue and tracking surfaces.
type Store interface {
	Insert(ctx context.Context, o *domain.Order) error
	Find(ctx context.Context, id string) (domain.Order, error)
	List(ctx context.Context, f Filter) ([]domain.Order, error)

	// Advance moves the order one step along the lifecycle under a row
	// guard: concurrent repeats observe the already-advanced status and
	// do nothing. completed stays completed.
	Advance(ctx context.Context, id, changedBy string) (old, next domain.Status, err error)

	SetPaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error
}
