package derived

import (
	"cmp"
	"slices"

	"github.com/farmchainx/dashboard/internal/domain/analytics"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/shopspring/decimal"
)

// DefaultTopN is how many rows the ranking cards show.
const DefaultTopN = 5

type PurchaseSummary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalPurchases     int     `json:"totalPurchases"`
	AverageOrderValue  float64 `json:"averageOrderValue"`
	AverageRevenue     float64 `json:"averageRevenue"`
	MaxPurchases       int     `json:"maxPurchases"`
	MaxRevenue         float64 `json:"maxRevenue"`
	ActiveTransactions int     `json:"activeTransactions"`
}

func SummarizePurchases(points []analytics.PurchasePoint) PurchaseSummary {
	var s PurchaseSummary
	revenue := decimal.Zero
	maxRevenue := decimal.Zero

	for _, pt := range points {
		n := 0
		if pt.Purchases != nil {
			n = *pt.Purchases
		}
		r := decimal.Zero
		if pt.Revenue != nil {
			r = decimal.NewFromFloat(*pt.Revenue)
		}

		s.TotalPurchases += n
		revenue = revenue.Add(r)

		if n > s.MaxPurchases {
			s.MaxPurchases = n
		}
		if r.GreaterThan(maxRevenue) {
			maxRevenue = r
		}
	}

	s.TotalRevenue = revenue.InexactFloat64()
	s.AverageOrderValue = safeDiv(revenue, s.TotalPurchases).InexactFloat64()
	s.AverageRevenue = safeDiv(revenue, len(points)).InexactFloat64()
	s.MaxRevenue = maxRevenue.InexactFloat64()

	if len(points) > 0 {
		if last := points[len(points)-1].Purchases; last != nil {
			s.ActiveTransactions = *last
		}
	}
	return s
}

type GroupKey string

const (
	ByCropType GroupKey = "cropType"
	ByName     GroupKey = "name"
)

type Metric string

const (
	BySales   Metric = "sales"
	ByRevenue Metric = "revenue"
)

type Ranked struct {
	Key     string  `json:"key"`
	Sales   int     `json:"sales"`
	Revenue float64 `json:"revenue"`
	Count   int     `json:"count"`
}

// TopN groups products, accumulates quantity and price*quantity per group,
// orders groups by the metric (ties keep first-seen order) and keeps n.
func TopN(items []product.Product, key GroupKey, metric Metric, n int) []Ranked {
	type acc struct {
		key     string
		sales   int
		revenue decimal.Decimal
		count   int
	}

	index := make(map[string]int)
	groups := make([]*acc, 0)

	for _, p := range items {
		k := p.CropType
		if key == ByName {
			k = p.Name
		}

		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, &acc{key: k, revenue: decimal.Zero})
		}

		g := groups[i]
		g.sales += p.QuantityOrZero()
		g.revenue = g.revenue.Add(lineValue(p))
		g.count++
	}

	slices.SortStableFunc(groups, func(a, b *acc) int {
		if metric == ByRevenue {
			return b.revenue.Cmp(a.revenue)
		}
		return cmp.Compare(b.sales, a.sales)
	})

	if n <= 0 {
		n = DefaultTopN
	}
	if len(groups) > n {
		groups = groups[:n]
	}

	out := make([]Ranked, 0, len(groups))
	for _, g := range groups {
		out = append(out, Ranked{
			Key:     g.key,
			Sales:   g.sales,
			Revenue: g.revenue.InexactFloat64(),
			Count:   g.count,
		})
	}
	return out
}

// AverageRating is the mean of positive ratings, rounded to one decimal.
func AverageRating(items []product.Product) float64 {
	sum := decimal.Zero
	n := 0

	for _, p := range items {
		if r := p.RatingOrZero(); r > 0 {
			sum = sum.Add(decimal.NewFromFloat(r))
			n++
		}
	}

	return safeDiv(sum, n).Round(1).InexactFloat64()
}

type UserShare struct {
	Role       string  `json:"role"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func UserShares(stats analytics.UserStats) []UserShare {
	rows := []struct {
		role  string
		count int
	}{
		{"FARMER", stats.Farmers},
		{"CUSTOMER", stats.Customers},
		{"RETAILER", stats.Retailers},
	}

	out := make([]UserShare, 0, len(rows))
	for _, r := range rows {
		pct := 0.0
		if stats.Total > 0 {
			pct = decimal.NewFromInt(int64(r.count)).
				Mul(decimal.NewFromInt(100)).
				Div(decimal.NewFromInt(int64(stats.Total))).
				Round(1).
				InexactFloat64()
		}
		out = append(out, UserShare{Role: r.role, Count: r.count, Percentage: pct})
	}
	return out
}
