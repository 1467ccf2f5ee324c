package ledger

import (
	"sort"

	"knowledge-cafe/internal/domain"
)

// ItemSales is the per-item rollup on a daily report. Aggregation keys on the
// resolved line name so milk variants stay separate rows.
type ItemSales struct {
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	Revenue   domain.Cents `json:"revenue"`
	UnitPrice domain.Cents `json:"unit_price"`
}

type DailyReport struct {
	Day          string       `json:"day"`
	TotalOrders  int          `json:"total_orders"`
	TotalRevenue domain.Cents `json:"total_revenue"`
	Items        []ItemSales  `json:"items"`
}

// Aggregate rolls sale entries up into a daily report, sorted by revenue.
func Aggregate(day string, entries []SaleEntry) DailyReport {
	r := DailyReport{Day: day, TotalOrders: len(entries)}
	byName := map[string]*ItemSales{}
	for _, e := range entries {
		r.TotalRevenue += e.Total
		for _, it := range e.Items {
			agg, ok := byName[it.Name]
			if !ok {
				agg = &ItemSales{Name: it.Name, UnitPrice: it.UnitPrice}
				byName[it.Name] = agg
			}
			agg.Quantity += it.Quantity
			agg.Revenue += (it.UnitPrice + it.DepositPerUnit) * domain.Cents(it.Quantity)
		}
	}
	for _, v := range byName {
		r.Items = append(r.Items, *v)
	}
	sort.Slice(r.Items, func(i, j int) bool {
		if r.Items[i].Revenue != r.Items[j].Revenue {
			return r.Items[i].Revenue > r.Items[j].Revenue
		}
		return r.Items[i].Name < r.Items[j].Name
	})
	return r
}
