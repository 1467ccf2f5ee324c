// Package pricing resolves a catalog item plus a customization choice into a
// unit price. Every surface (cart, POS, checkout) prices through here so the
// same (item, role, customization) triple always yields the same result.
package pricing

import (
	"fmt"
	"strings"

	"knowledge-cafe/internal/catalog"
	"knowledge-cafe/internal/domain"
)

type Milk string

const (
	MilkNone Milk = ""
	MilkCow  Milk = "cow"
	MilkOat  Milk = "oat"
)

type Cup string

const (
	CupNone    Cup = ""
	CupToGo    Cup = "togo"
	CupDeposit Cup = "deposit"
)

// Customization is the full choice set for a hot drink. Cold drinks and
// add-ons are added without one.
type Customization struct {
	Milk      Milk   `json:"milk"`
	Syrup     string `json:"syrup"`
	ExtraShot bool   `json:"extra_shot"`
	Cup       Cup    `json:"cup"`
}

// Fees carries the configurable cup surcharges. Defaults match the menu:
// €0.20 to-go fee, €2.00 refundable deposit.
type Fees struct {
	ToGo    domain.Cents
	Deposit domain.Cents
}

var DefaultFees = Fees{ToGo: 20, Deposit: 200}

// Quote is the resolved price for one unit. DepositPerUnit is the refundable
// portion; it never enters UnitPrice so order subtotals exclude it.
type Quote struct {
	UnitPrice      domain.Cents
	DepositPerUnit domain.Cents
	Label          string
}

// Deposit reports whether the quoted line carries a refundable cup.
func (q Quote) Deposit() bool { return q.DepositPerUnit > 0 }

// Price resolves the unit price for an item under a role and customization.
// Hot drinks require a cup choice; milk drinks additionally require a milk
// type. Anything else must be passed an empty customization.
func Price(item catalog.Item, role domain.Role, cust Customization, fees Fees) (Quote, error) {
	if item.Category != catalog.CategoryHot {
		if cust != (Customization{}) {
			return Quote{}, domain.Invalid("customization", fmt.Sprintf("%s takes no customization", item.ID))
		}
		return Quote{UnitPrice: item.Price(role), Label: item.Name}, nil
	}

	if item.Milk {
		if cust.Milk != MilkCow && cust.Milk != MilkOat {
			return Quote{}, domain.Invalid("milk", "milk type is required")
		}
	} else if cust.Milk != MilkNone {
		return Quote{}, domain.Invalid("milk", fmt.Sprintf("%s takes no milk", item.ID))
	}
	if cust.Cup != CupToGo && cust.Cup != CupDeposit {
		return Quote{}, domain.Invalid("cup", "cup type is required")
	}

	price := item.Price(role)
	label := item.Name

	if cust.Milk == MilkCow {
		label += " (Cow Milk)"
	} else if cust.Milk == MilkOat {
		label += " (Oat Milk)"
	}

	if cust.Syrup != "" {
		syrup, ok := catalog.Lookup(cust.Syrup)
		if !ok || !strings.HasPrefix(syrup.ID, "syrup-") {
			return Quote{}, domain.Invalid("syrup", fmt.Sprintf("unknown syrup %q", cust.Syrup))
		}
		price += syrup.Price(role)
		label += " + " + syrup.Name
	}

	if cust.ExtraShot {
		shot, ok := catalog.Lookup("extra-shot")
		if ok {
			price += shot.Price(role)
		}
		label += " + Extra Shot"
	}

	q := Quote{Label: label}
	switch cust.Cup {
	case CupToGo:
		price += fees.ToGo
		q.Label += " • To-Go Cup"
	case CupDeposit:
		q.DepositPerUnit = fees.Deposit
		q.Label += " • Deposit Cup"
	}
	q.UnitPrice = price
	return q, nil
}

// LineKey builds the deterministic composite cart key for an item and its
// customization. Identical configurations merge into one line, distinct ones
// never collide.
func LineKey(itemID string, cust Customization) string {
	syrup := cust.Syrup
	if syrup == "" {
		syrup = "none"
	}
	shot := "normal"
	if cust.ExtraShot {
		shot = "extra"
	}
	milk := string(cust.Milk)
	if milk == "" {
		milk = "none"
	}
	cup := string(cust.Cup)
	if cup == "" {
		cup = "none"
	}
	return strings.Join([]string{itemID, milk, syrup, shot, cup}, "_")
}
