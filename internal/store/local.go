package store

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"knowledge-cafe/internal/domain"
)

// Local is the file-backed fallback store. Orders are appended as JSON lines
// so a write needs nothing but a working disk; rows stay here until someone
// reconciles them against the primary (duplicates are possible and accepted).
type Local struct {
	mu   sync.Mutex
	path string
}

func NewLocal(path string) *Local { return &Local{path: path} }

type localRecord struct {
	Order     domain.Order `json:"order"`
	Recovered bool         `json:"recovered"`
	FailedAt  time.Time    `json:"failed_at"`
}

func (l *Local) Insert(_ context.Context, o *domain.Order) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return domain.StoreFailed("local insert", err)
	}
	defer f.Close()

	rec := localRecord{Order: *o, FailedAt: time.Now().UTC()}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(b, '\n')); err != nil {
		return domain.StoreFailed("local insert", err)
	}
	return f.Sync()
}

// readAllLocked scans the whole file. Callers must hold l.mu so that a
// concurrent append cannot slip between a read and a later rewrite.
func (l *Local) readAllLocked() ([]domain.Order, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.StoreFailed("local read", err)
	}
	defer f.Close()

	var out []domain.Order
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		var rec localRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			continue // skip torn writes
		}
		out = append(out, rec.Order)
	}
	return out, sc.Err()
}

func (l *Local) Find(ctx context.Context, id string) (domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.readAllLocked()
	if err != nil {
		return domain.Order{}, err
	}
	for i := len(orders) - 1; i >= 0; i-- {
		if orders[i].ID == id {
			return orders[i], nil
		}
	}
	return domain.Order{}, domain.ErrNotFound
}

func (l *Local) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.readAllLocked()
	if err != nil {
		return nil, err
	}
	var out []domain.Order
	for _, o := range orders {
		if f.ActiveOnly && o.Status == domain.StatusCompleted {
			continue
		}
		if f.Source != "" && o.Source != f.Source {
			continue
		}
		if !f.Since.IsZero() && o.CreatedAt.Before(f.Since) {
			continue
		}
		if !f.Until.IsZero() && !o.CreatedAt.Before(f.Until) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Advance rewrites the matching record in place. The fallback file is a
// degraded mode, so the whole-file rewrite is acceptable. The lock spans the
// read and the rewrite; a concurrent Insert must never be renamed away.
func (l *Local) Advance(ctx context.Context, id, changedBy string) (domain.Status, domain.Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.readAllLocked()
	if err != nil {
		return "", "", err
	}
	var old, next domain.Status
	found := false
	for i := range orders {
		if orders[i].ID == id {
			old = orders[i].Status
			next = old.Next()
			orders[i].Status = next
			orders[i].UpdatedAt = time.Now().UTC()
			found = true
			break
		}
	}
	if !found {
		return "", "", domain.ErrNotFound
	}
	if err := l.rewriteLocked(orders); err != nil {
		return "", "", err
	}
	return old, next, nil
}

func (l *Local) SetPaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	orders, err := l.readAllLocked()
	if err != nil {
		return err
	}
	found := false
	for i := range orders {
		if orders[i].ID == id {
			orders[i].PaymentStatus = ps
			orders[i].UpdatedAt = time.Now().UTC()
			found = true
			break
		}
	}
	if !found {
		return domain.ErrNotFound
	}
	return l.rewriteLocked(orders)
}

func (l *Local) rewriteLocked(orders []domain.Order) error {
	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return domain.StoreFailed("local rewrite", err)
	}
	w := bufio.NewWriter(f)
	for _, o := range orders {
		b, err := json.Marshal(localRecord{Order: o})
		if err != nil {
			f.Close()
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			f.Close()
			return domain.StoreFailed("local rewrite", err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return domain.StoreFailed("local rewrite", err)
	}
	if err := f.Close(); err != nil {
		return domain.StoreFailed("local rewrite", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return domain.StoreFailed("local rewrite", err)
	}
	return nil
}

func containsStatus(set []domain.Status, s domain.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}
