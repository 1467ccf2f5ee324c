// Package catalog holds the static purchasable-item table. Items are loaded
// once at startup and never change at runtime; placed orders snapshot prices
// so edits here never rewrite history.
package catalog

import "knowledge-cafe/internal/domain"

type Category string

const (
	CategoryHot   Category = "hot"
	CategoryCold  Category = "cold"
	CategoryAddOn Category = "addon"
)

type Item struct {
	ID           string
	Name         string
	Category     Category
	PriceStudent domain.Cents
	PriceStaff   domain.Cents

	// Milk marks hot drinks that take a milk/syrup customization. Espresso
	// variants and tea only need a cup choice.
	Milk bool
}

var items = []Item{
	{ID: "americano", Name: "Americano", Category: CategoryHot, PriceStudent: 150, PriceStaff: 200},
	{ID: "espresso", Name: "Espresso", Category: CategoryHot, PriceStudent: 130, PriceStaff: 180},
	{ID: "espresso-doppio", Name: "Espresso Doppio", Category: CategoryHot, PriceStudent: 170, PriceStaff: 220},
	{ID: "cappuccino", Name: "Cappuccino", Category: CategoryHot, PriceStudent: 250, PriceStaff: 300, Milk: true},
	{ID: "latte-macchiato", Name: "Latte Macchiato", Category: CategoryHot, PriceStudent: 200, PriceStaff: 250, Milk: true},
	{ID: "cafe-latte", Name: "Cafe Latte", Category: CategoryHot, PriceStudent: 270, PriceStaff: 320, Milk: true},
	{ID: "tea", Name: "Tea", Category: CategoryHot, PriceStudent: 100, PriceStaff: 150},
	{ID: "pumpkin-spice", Name: "Pumpkin Spice Latte", Category: CategoryHot, PriceStudent: 300, PriceStaff: 350, Milk: true},
	{ID: "cinnamon-bun-latte", Name: "Cinnamon Bun Latte", Category: CategoryHot, PriceStudent: 300, PriceStaff: 350, Milk: true},
	{ID: "hot-chocolate", Name: "Hot Chocolate", Category: CategoryHot, PriceStudent: 290, PriceStaff: 340, Milk: true},

	{ID: "softdrinks", Name: "Softdrinks", Category: CategoryCold, PriceStudent: 150, PriceStaff: 150},
	{ID: "wasser", Name: "Water", Category: CategoryCold, PriceStudent: 100, PriceStaff: 100},
	{ID: "redbull", Name: "RedBull", Category: CategoryCold, PriceStudent: 200, PriceStaff: 200},

	{ID: "togo", Name: "To Go", Category: CategoryAddOn, PriceStudent: 20, PriceStaff: 20},
	{ID: "extra-shot", Name: "Extra Shot", Category: CategoryAddOn, PriceStudent: 50, PriceStaff: 50},
	{ID: "syrup-pumpkin", Name: "Pumpkin Spice Syrup", Category: CategoryAddOn, PriceStudent: 30, PriceStaff: 30},
	{ID: "syrup-hazelnut", Name: "Hazelnut Syrup", Category: CategoryAddOn, PriceStudent: 30, PriceStaff: 30},
	{ID: "syrup-vanilla", Name: "Vanilla Syrup", Category: CategoryAddOn, PriceStudent: 30, PriceStaff: 30},
	{ID: "syrup-spekuloos", Name: "Spekuloos Syrup", Category: CategoryAddOn, PriceStudent: 30, PriceStaff: 30},
	{ID: "syrup-gingerbread", Name: "Gingerbread Syrup", Category: CategoryAddOn, PriceStudent: 30, PriceStaff: 30},
}

var byID = func() map[string]Item {
	m := make(map[string]Item, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}()

// Lookup finds a catalog item by id.
func Lookup(id string) (Item, bool) {
	it, ok := byID[id]
	return it, ok
}

// Items returns the full catalog in menu order.
func Items() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Syrups returns the add-on syrup items.
func Syrups() []Item {
	var out []Item
	for _, it := range items {
		if it.Category == CategoryAddOn && len(it.ID) > 6 && it.ID[:6] == "syrup-" {
			out = append(out, it)
		}
	}
	return out
}

// Price resolves the role-specific price, falling back to the other role's
// price when one side is unset. Incomplete pricing data is an accepted state,
// not an error.
func (it Item) Price(role domain.Role) domain.Cents {
	if role == domain.RoleStaff {
		if it.PriceStaff > 0 {
			return it.PriceStaff
		}
		return it.PriceStudent
	}
	if it.PriceStudent > 0 {
		return it.PriceStudent
	}
	return it.PriceStaff
}
