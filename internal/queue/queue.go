// Package queue produces the live order queue shown on the café display and
// the POS. Freshness comes from two sides: an event subscription for low
// latency and periodic polling as the backstop when events are lost.
package queue

import (
	"context"
	"sort"

	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/store"
)

type Lister interface {
	List(ctx context.Context, f store.Filter) ([]domain.Order, error)
}

type Service struct {
	orders Lister
}

func NewService(orders Lister) *Service { return &Service{orders: orders} }

// Active returns all non-completed orders, optionally filtered by source,
// ordered for display: pending, then preparing, then ready, newest first
// within each status.
func (s *Service) Active(ctx context.Context, source domain.Source) ([]domain.Order, error) {
	orders, err := s.orders.List(ctx, store.Filter{ActiveOnly: true, Source: source})
	if err != nil {
		return nil, err
	}
	SortForDisplay(orders)
	return orders, nil
}

// SortForDisplay orders a queue snapshot in place by status rank, then
// newest first within a rank.
func SortForDisplay(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		ri, rj := orders[i].Status.Rank(), orders[j].Status.Rank()
		if ri != rj {
			return ri < rj
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
