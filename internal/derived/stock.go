package derived

import (
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/shopspring/decimal"
)

type StockClass string

const (
	OutOfStock StockClass = "out-of-stock"
	LowStock   StockClass = "low-stock"
	InStock    StockClass = "in-stock"
)

// LowStockThreshold is the largest quantity still reported as low stock.
const LowStockThreshold = 10

// ClassifyStock maps every quantity to exactly one class. Negative
// quantities violate the data model and are reported as out of stock.
func ClassifyStock(quantity int) StockClass {
	switch {
	case quantity <= 0:
		return OutOfStock
	case quantity <= LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// FilterByStock keeps products of one class; "all" or empty keeps every
// product. "in-stock" follows the inventory screen and means any quantity > 0.
func FilterByStock(items []product.Product, filter string) []product.Product {
	out := make([]product.Product, 0, len(items))
	for _, p := range items {
		q := p.QuantityOrZero()
		keep := false

		switch StockClass(filter) {
		case InStock:
			keep = q > 0
		case LowStock:
			keep = ClassifyStock(q) == LowStock
		case OutOfStock:
			keep = ClassifyStock(q) == OutOfStock
		default:
			keep = true
		}

		if keep {
			out = append(out, p)
		}
	}
	return out
}

type InventorySummary struct {
	TotalProducts  int     `json:"totalProducts"`
	ActiveProducts int     `json:"activeProducts"`
	InStock        int     `json:"inStock"`
	LowStock       int     `json:"lowStock"`
	OutOfStock     int     `json:"outOfStock"`
	TotalValue     float64 `json:"totalValue"`
	AveragePrice   float64 `json:"averagePrice"`
	MaxItemValue   float64 `json:"maxItemValue"`
}

func SummarizeInventory(items []product.Product) InventorySummary {
	s := InventorySummary{TotalProducts: len(items)}

	total := decimal.Zero
	priceSum := decimal.Zero
	maxValue := decimal.Zero

	for _, p := range items {
		switch ClassifyStock(p.QuantityOrZero()) {
		case InStock:
			s.InStock++
		case LowStock:
			s.LowStock++
		case OutOfStock:
			s.OutOfStock++
		}

		value := lineValue(p)
		total = total.Add(value)
		priceSum = priceSum.Add(decimal.NewFromFloat(p.PriceOrZero()))
		if value.GreaterThan(maxValue) {
			maxValue = value
		}
	}

	s.ActiveProducts = s.InStock + s.LowStock
	s.TotalValue = total.InexactFloat64()
	s.AveragePrice = safeDiv(priceSum, len(items)).InexactFloat64()
	s.MaxItemValue = maxValue.InexactFloat64()
	return s
}

func lineValue(p product.Product) decimal.Decimal {
	return decimal.NewFromFloat(p.PriceOrZero()).Mul(decimal.NewFromInt(int64(p.QuantityOrZero())))
}

// safeDiv reports 0 instead of dividing by zero.
func safeDiv(sum decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}
