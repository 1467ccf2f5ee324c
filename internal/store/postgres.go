package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"knowledge-cafe/internal/domain"
)

// Postgres is the primary order store.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres { return &Postgres{pool: pool} }

func (s *Postgres) Insert(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.StoreFailed("insert", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders
			(id, customer_name, customer_email, items, subtotal, deposit_total, grand_total,
			 source, scheduling_type, scheduled_for, status, payment_status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, o.ID, o.Customer.Name, o.Customer.Email, items,
		int64(o.Subtotal), int64(o.DepositTotal), int64(o.GrandTotal),
		string(o.Source), string(o.Scheduling.Type), o.Scheduling.ScheduledFor,
		string(o.Status), string(o.PaymentStatus), o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return domain.StoreFailed("insert", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, 'checkout', $3)
	`, o.ID, string(o.Status), o.CreatedAt)
	if err != nil {
		return domain.StoreFailed("insert", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StoreFailed("insert", err)
	}
	return nil
}

func (s *Postgres) Find(ctx context.Context, id string) (domain.Order, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, customer_name, customer_email, items, subtotal, deposit_total, grand_total,
		       source, scheduling_type, scheduled_for, status, payment_status, created_at, updated_at
		FROM orders WHERE id = $1
	`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Order{}, domain.StoreFailed("find", err)
	}
	return o, nil
}

func (s *Postgres) List(ctx context.Context, f Filter) ([]domain.Order, error) {
	q := `
		SELECT id, customer_name, customer_email, items, subtotal, deposit_total, grand_total,
		       source, scheduling_type, scheduled_for, status, payment_status, created_at, updated_at
		FROM orders WHERE 1=1`
	args := []any{}
	n := 0
	arg := func(v any) string { n++; args = append(args, v); return fmt.Sprintf("$%d", n) }

	if f.ActiveOnly {
		q += ` AND status <> ` + arg(string(domain.StatusCompleted))
	}
	if len(f.Statuses) > 0 {
		set := make([]string, len(f.Statuses))
		for i, st := range f.Statuses {
			set[i] = string(st)
		}
		q += ` AND status = ANY(` + arg(set) + `)`
	}
	if f.Source != "" {
		q += ` AND source = ` + arg(string(f.Source))
	}
	if !f.Since.IsZero() {
		q += ` AND created_at >= ` + arg(f.Since)
	}
	if !f.Until.IsZero() {
		q += ` AND created_at < ` + arg(f.Until)
	}
	q += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		q += ` LIMIT ` + arg(f.Limit)
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, domain.StoreFailed("list", err)
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.StoreFailed("list", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.StoreFailed("list", err)
	}
	return out, nil
}

// Advance performs the guarded lifecycle transition in one transaction,
// mirroring the status log kept for every change.
func (s *Postgres) Advance(ctx context.Context, id, changedBy string) (domain.Status, domain.Status, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", "", domain.StoreFailed("advance", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", domain.ErrNotFound
	}
	if err != nil {
		return "", "", domain.StoreFailed("advance", err)
	}

	old := domain.Status(cur)
	next := old.Next()
	if old == next {
		// completed is terminal; repeating the action is a no-op.
		return old, next, tx.Commit(ctx)
	}

	now := time.Now().UTC()
	if _, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1
	`, id, string(next), now); err != nil {
		return "", "", domain.StoreFailed("advance", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO order_status_log (order_id, status, changed_by, changed_at)
		VALUES ($1, $2, $3, $4)
	`, id, string(next), changedBy, now); err != nil {
		return "", "", domain.StoreFailed("advance", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", "", domain.StoreFailed("advance", err)
	}
	return old, next, nil
}

func (s *Postgres) SetPaymentStatus(ctx context.Context, id string, ps domain.PaymentStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET payment_status = $2, updated_at = now() WHERE id = $1
	`, id, string(ps))
	if err != nil {
		return domain.StoreFailed("payment", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o        domain.Order
		items    []byte
		sub, dep int64
		grand    int64
		src, sch string
		st, pay  string
	)
	err := row.Scan(&o.ID, &o.Customer.Name, &o.Customer.Email, &items, &sub, &dep, &grand,
		&src, &sch, &o.Scheduling.ScheduledFor, &st, &pay, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("decode items: %w", err)
	}
	o.Subtotal = domain.Cents(sub)
	o.DepositTotal = domain.Cents(dep)
	o.GrandTotal = domain.Cents(grand)
	o.Source = domain.Source(src)
	o.Scheduling.Type = domain.SchedulingType(sch)
	o.Status = domain.Status(st)
	o.PaymentStatus = domain.PaymentStatus(pay)
	return o, nil
}
