package queue

import (
	"sync"
	"time"

	"knowledge-cafe/internal/domain"
)

// Snapshot caches the latest queue view written by a Watcher. Readers get
// the cached slice plus its age so they can fall back to a live read when
// the cache goes stale.
type Snapshot struct {
	mu     sync.RWMutex
	orders []domain.Order
	at     time.Time
}

func NewSnapshot() *Snapshot { return &Snapshot{} }

func (s *Snapshot) Set(orders []domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = orders
	s.at = time.Now()
}

// Get returns the cached orders and whether they are younger than maxAge.
func (s *Snapshot) Get(maxAge time.Duration) ([]domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.at.IsZero() || time.Since(s.at) > maxAge {
		return nil, false
	}
	return append([]domain.Order(nil), s.orders...), true
}
