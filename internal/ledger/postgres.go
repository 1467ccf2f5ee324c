package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"knowledge-cafe/internal/domain"
)

// Customers persists accounts keyed by email. The activity log lives in its
// own append-only table.
type Customers struct {
	pool *pgxpool.Pool
}

func NewCustomers(pool *pgxpool.Pool) *Customers { return &Customers{pool: pool} }

func (c *Customers) Account(ctx context.Context, email string) (Account, error) {
	var a Account
	err := c.pool.QueryRow(ctx, `
		SELECT email, name, visits, total_spent, cups_outstanding, cups_returned,
		       deposit_paid, deposit_returned
		FROM customers WHERE email = $1
	`, email).Scan(&a.Email, &a.Name, &a.Visits, &a.TotalSpent, &a.CupsOutstanding,
		&a.CupsReturned, &a.DepositPaid, &a.DepositReturned)
	if errors.Is(err, pgx.ErrNoRows) {
		return Account{}, domain.ErrNotFound
	}
	if err != nil {
		return Account{}, domain.StoreFailed("ledger account", err)
	}

	rows, err := c.pool.Query(ctx, `
		SELECT type, cups, amount, description, at
		FROM deposit_activity WHERE email = $1 ORDER BY at DESC LIMIT 50
	`, email)
	if err != nil {
		return Account{}, domain.StoreFailed("ledger activity", err)
	}
	defer rows.Close()
	for rows.Next() {
		var act Activity
		var typ string
		if err := rows.Scan(&typ, &act.Cups, &act.Amount, &act.Description, &act.At); err != nil {
			return Account{}, domain.StoreFailed("ledger activity", err)
		}
		act.Type = ActivityType(typ)
		a.Activity = append(a.Activity, act)
	}
	return a, rows.Err()
}

// RecordOrder upserts the customer row and, when deposit cups are present,
// appends a deposit activity entry in the same transaction.
func (c *Customers) RecordOrder(ctx context.Context, customer domain.Customer, orderID string, spend domain.Cents, cups int, deposit domain.Cents) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return domain.StoreFailed("ledger record", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	_, err = tx.Exec(ctx, `
		INSERT INTO customers (email, name, visits, total_spent, cups_outstanding, cups_returned, deposit_paid, deposit_returned)
		VALUES ($1, $2, 1, $3, $4, 0, $5, 0)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			visits = customers.visits + 1,
			total_spent = customers.total_spent + EXCLUDED.total_spent,
			cups_outstanding = customers.cups_outstanding + EXCLUDED.cups_outstanding,
			deposit_paid = customers.deposit_paid + EXCLUDED.deposit_paid
	`, customer.Email, customer.Name, int64(spend), cups, int64(deposit))
	if err != nil {
		return domain.StoreFailed("ledger record", err)
	}

	if cups > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO deposit_activity (email, type, cups, amount, description, at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, customer.Email, string(ActivityDeposit), cups, int64(deposit), "Order "+orderID, now)
		if err != nil {
			return domain.StoreFailed("ledger record", err)
		}
	}
	return tx.Commit(ctx)
}

// ReturnCups resets the customer's outstanding cups to zero and appends a
// return entry. Returning with nothing outstanding is a no-op, not an error.
func (c *Customers) ReturnCups(ctx context.Context, email string, depositPerCup domain.Cents) (int, domain.Cents, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, 0, domain.StoreFailed("ledger return", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var outstanding int
	err = tx.QueryRow(ctx, `
		SELECT cups_outstanding FROM customers WHERE email = $1 FOR UPDATE
	`, email).Scan(&outstanding)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, domain.ErrNotFound
	}
	if err != nil {
		return 0, 0, domain.StoreFailed("ledger return", err)
	}
	// The Account model owns the return arithmetic; the SQL below only
	// persists what it decided.
	acct := Account{Email: email, CupsOutstanding: outstanding}
	cups, refund := acct.ReturnAll(depositPerCup, time.Now().UTC())
	if cups == 0 {
		return 0, 0, tx.Commit(ctx)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE customers SET
			cups_outstanding = $2,
			cups_returned = cups_returned + $3,
			deposit_returned = deposit_returned + $4
		WHERE email = $1
	`, email, acct.CupsOutstanding, cups, int64(refund)); err != nil {
		return 0, 0, domain.StoreFailed("ledger return", err)
	}
	act := acct.Activity[0]
	if _, err := tx.Exec(ctx, `
		INSERT INTO deposit_activity (email, type, cups, amount, description, at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, email, string(act.Type), act.Cups, int64(act.Amount), act.Description, act.At); err != nil {
		return 0, 0, domain.StoreFailed("ledger return", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, domain.StoreFailed("ledger return", err)
	}
	return cups, refund, nil
}

// Sales is the date-bucketed sales ledger fed by completed in-person orders.
type Sales struct {
	pool *pgxpool.Pool
}

func NewSales(pool *pgxpool.Pool) *Sales { return &Sales{pool: pool} }

func (s *Sales) Record(ctx context.Context, o *domain.Order, at time.Time) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO sales (day, order_id, items, total, customer_name, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, at.Format("2006-01-02"), o.ID, items, int64(o.GrandTotal), o.Customer.Name, at)
	if err != nil {
		return domain.StoreFailed("sales record", err)
	}
	return nil
}

// SaleEntry is one completed order in a day bucket.
type SaleEntry struct {
	OrderID string
	Items   []domain.OrderItem
	Total   domain.Cents
}

func (s *Sales) Daily(ctx context.Context, day string) ([]SaleEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT order_id, items, total FROM sales WHERE day = $1 ORDER BY recorded_at
	`, day)
	if err != nil {
		return nil, domain.StoreFailed("sales daily", err)
	}
	defer rows.Close()

	var out []SaleEntry
	for rows.Next() {
		var e SaleEntry
		var items []byte
		var total int64
		if err := rows.Scan(&e.OrderID, &items, &total); err != nil {
			return nil, domain.StoreFailed("sales daily", err)
		}
		if err := json.Unmarshal(items, &e.Items); err != nil {
			return nil, err
		}
		e.Total = domain.Cents(total)
		out = append(out, e)
	}
	return out, rows.Err()
}
