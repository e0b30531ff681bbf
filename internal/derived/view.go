// Package derived computes everything a dashboard displays from a fetched
// product snapshot. All functions are pure and leave their input untouched.
package derived

import (
	"cmp"
	"slices"
	"strings"

	"github.com/farmchainx/dashboard/internal/domain/product"
)

type SortKey string

const (
	SortName   SortKey = "name"
	SortRating SortKey = "rating"
	SortPrice  SortKey = "price"
	SortDate   SortKey = "date"
)

// AllCategories disables the category filter.
const AllCategories = "all"

type Params struct {
	Query    string  `form:"q" json:"q"`
	Category string  `form:"category" json:"category"`
	Sort     SortKey `form:"sort" json:"sort"`
	// Page is accepted for compatibility; everything is one page.
	Page int `form:"page" json:"-"`
}

type View struct {
	Items      []product.Product `json:"items"`
	Total      int               `json:"total"`
	Visible    int               `json:"visible"`
	Categories []string          `json:"categories"`
	Params     Params            `json:"params"`
}

// Apply runs search, then category filter, then a stable sort.
func Apply(items []product.Product, p Params) View {
	out := Search(items, p.Query)
	out = FilterCategory(out, p.Category)
	out = Sort(out, p.Sort)
	if out == nil {
		out = []product.Product{}
	}

	return View{
		Items:      out,
		Total:      len(items),
		Visible:    len(out),
		Categories: Categories(items),
		Params:     p,
	}
}

// Search keeps products where any present field of name, crop type,
// location or farmer name contains the query, case-insensitively.
func Search(items []product.Product, query string) []product.Product {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return slices.Clone(items)
	}

	out := make([]product.Product, 0, len(items))
	for _, p := range items {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p product.Product, lowerQuery string) bool {
	for _, field := range []string{p.Name, p.CropType, p.Location, p.FarmerName()} {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), lowerQuery) {
			return true
		}
	}
	return false
}

func FilterCategory(items []product.Product, category string) []product.Product {
	if category == "" || category == AllCategories {
		return slices.Clone(items)
	}

	out := make([]product.Product, 0, len(items))
	for _, p := range items {
		if p.CropType == category {
			out = append(out, p)
		}
	}
	return out
}

// Sort returns a stably sorted copy. Unknown keys keep the input order.
func Sort(items []product.Product, key SortKey) []product.Product {
	out := slices.Clone(items)

	switch key {
	case SortName:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return strings.Compare(a.Name, b.Name)
		})
	case SortRating:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(b.RatingOrZero(), a.RatingOrZero())
		})
	case SortPrice:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(a.PriceOrZero(), b.PriceOrZero())
		})
	case SortDate:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return b.CreatedAt.Compare(a.CreatedAt.Time)
		})
	}

	return out
}

// Categories lists distinct non-empty crop types in first-seen order.
func Categories(items []product.Product) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)

	for _, p := range items {
		if p.CropType == "" {
			continue
		}
		if _, ok := seen[p.CropType]; ok {
			continue
		}
		seen[p.CropType] = struct{}{}
		out = append(out, p.CropType)
	}
	return out
}
