// Package ledger tracks per-customer loyalty counters, the refundable cup
// deposit (Pfand) balance, and the daily sales ledger.
package ledger

import (
	"time"

	"knowledge-cafe/internal/domain"
)

type ActivityType string

const (
	ActivityDeposit ActivityType = "deposit"
	ActivityReturn  ActivityType = "return"
)

type Activity struct {
	Type        ActivityType `json:"type"`
	Cups        int          `json:"cups"`
	Amount      domain.Cents `json:"amount"`
	Description string       `json:"description"`
	At          time.Time    `json:"at"`
}

// Account is a customer's loyalty and deposit state. CupsOutstanding only
// grows on deposit-cup orders and only resets toward zero on an explicit
// return; nothing else may touch it.
type Account struct {
	Email           string       `json:"email"`
	Name            string       `json:"name"`
	Visits          int          `json:"visits"`
	TotalSpent      domain.Cents `json:"total_spent"`
	CupsOutstanding int          `json:"cups_outstanding"`
	CupsReturned    int          `json:"cups_returned"`
	DepositPaid     domain.Cents `json:"deposit_paid"`
	DepositReturned domain.Cents `json:"deposit_returned"`
	Activity        []Activity   `json:"activity"`
}

// RecordOrder applies one placed order: a visit, the spend, and any deposit
// cups it carried.
func (a *Account) RecordOrder(orderID string, spend domain.Cents, cups int, deposit domain.Cents, at time.Time) {
	a.Visits++
	a.TotalSpent += spend
	if cups <= 0 {
		return
	}
	a.CupsOutstanding += cups
	a.DepositPaid += deposit
	a.Activity = append([]Activity{{
		Type:        ActivityDeposit,
		Cups:        cups,
		Amount:      deposit,
		Description: "Order " + orderID,
		At:          at,
	}}, a.Activity...)
}

// ReturnAll hands back every outstanding cup and credits the deposit. It
// returns the number of cups and the refunded amount; both are zero when
// nothing was outstanding.
func (a *Account) ReturnAll(depositPerCup domain.Cents, at time.Time) (cups int, refund domain.Cents) {
	cups = a.CupsOutstanding
	if cups == 0 {
		return 0, 0
	}
	refund = depositPerCup * domain.Cents(cups)
	a.CupsOutstanding = 0
	a.CupsReturned += cups
	a.DepositReturned += refund
	a.Activity = append([]Activity{{
		Type:        ActivityReturn,
		Cups:        cups,
		Amount:      refund,
		Description: "Cup return",
		At:          at,
	}}, a.Activity...)
	return cups, refund
}
