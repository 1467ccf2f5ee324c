package store

import (
	"context"
	"errors"

	"knowledge-cafe/internal/domain"
	"knowledge-cafe/internal/logger"
)

// Failover writes through to the primary store and falls back to the local
// store when the primary fails, so checkout never loses an order. Reads
// prefer the primary and degrade to local data on error.
//
// If the primary write actually succeeded but its response was lost, the
// fallback row duplicates it; there is no dedup (known gap, flagged for
// reconciliation).
type Failover struct {
	primary  Store
	fallback Store
	log      *logger.Logger
}

func NewFailover(primary, fallback Store, log *logger.Logger) *Failover {
	return &Failover{primary: primary, fallback: fallback, log: log}
}

// Insert returns fellBack=true when the order landed in the local store.
func (s *Failover) InsertWithFallback(ctx context.Context, o *domain.Order) (fellBack bool, err error) {
	err = s.primary.Insert(ctx, o)
	if err == nil {
		return false, nil
	}
	if domain.IsValidation(err) {
		return false, err
	}
	s.log.Error("primary_store_unavailable", err, map[string]any{"order_id": o.ID})
	if ferr := s.fallback.Insert(ctx, o); ferr != nil {
		// Both stores down: this is the only case where the order is lost
		// to persistence and the caller must surface the failure.
		return false, ferr
	}
	return true, nil
}

func (s *Failover) Insert(ctx context.Context, o *domain.Order) error {
	_, err := s.InsertWithFallback(ctx, o)
	return err
}

func (s *Failover) Find(ctx context.Context, id string) (domain.Order, error) {
	o, err := s.primary.Find(ctx, id)
	if err == nil || errors.Is(err, domain.ErrNotFound) {
		if errors.Is(err, domain.ErrNotFound) {
			// The order may only exist locally after a failover write.
			if lo, lerr := s.fallback.Find(ctx, id); lerr == nil {
				return lo, nil
			}
		}
		return o, err
	}
	s.log.Error("primary_store_read_failed", err, map[string]any{"order_id": id})
	return s.fallback.Find(ctx, id)
}

func (s *Failover) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	out, err := s.primary.List(ctx, f)
	if err != nil {
		s.log.Error("primary_store_read_failed", err, nil)
		return s.fallback.List(ctx, f)
	}
	// Locally stranded orders still show up on the queue display.
	if local, lerr := s.fallback.List(ctx, f); lerr == nil && len(local) > 0 {
		seen := make(map[string]struct{}, len(out))
		for _, o := range out {
			seen[o.ID] = struct{}{}
		}
		for _, o := range local {
			if _, dup := seen[o.ID]; !dup {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (s *Failover) Advance(ctx context.Context, id, changedBy string) (domain.Status, domain.Status, error) {
	old, next, err := s.primary.Advance(ctx, id, changedBy)
	if err == nil {
		return old, next, nil
	}
	if errors.Is(err, domain.ErrNotFound) {
		return s.fallback.Advance(ctx, id, changedBy)
	}
	return old, next, err
}

func (s *Failover) SetPaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error {
	err := s.primary.SetPaymentStatus(ctx, id, ps)
	if errors.Is(err, domain.ErrNotFound) {
		return s.fallback.SetPaymentStatus(ctx, id, ps)
	}
	return err
}
