package derived

import (
	"slices"
	"testing"
	"time"

	"github.com/farmchainx/dashboard/internal/domain/product"
)

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

func names(items []product.Product) []string {
	out := make([]string, 0, len(items))
	for _, p := range items {
		out = append(out, p.Name)
	}
	return out
}

func sampleProducts() []product.Product {
	day := func(d int) product.Timestamp {
		return product.Timestamp{Time: time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)}
	}

	return []product.Product{
		{ID: "1", Name: "Tomatoes", CropType: "Vegetables", Location: "Pune", Price: fp(40), Quantity: ip(25), AverageRating: fp(4.5), Farmer: &product.FarmerRef{Name: "Asha"}, CreatedAt: day(1)},
		{ID: "2", Name: "Mangoes", CropType: "Fruits", Location: "Ratnagiri", Price: fp(120), Quantity: ip(8), CreatedAt: day(3)},
		{ID: "3", Name: "Basmati", CropType: "Grains", Price: nil, Quantity: ip(0), AverageRating: fp(3), Farmer: &product.FarmerRef{Name: "Ravi"}, CreatedAt: day(2)},
		{ID: "4", Name: "Apples", CropType: "Fruits", Location: "Shimla", Price: fp(90), Quantity: nil, AverageRating: fp(4.5), CreatedAt: day(4)},
	}
}

func TestSearch(t *testing.T) {
	items := sampleProducts()

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty_is_noop", "", []string{"Tomatoes", "Mangoes", "Basmati", "Apples"}},
		{"whitespace_is_noop", "   ", []string{"Tomatoes", "Mangoes", "Basmati", "Apples"}},
		{"name_case_insensitive", "MANGO", []string{"Mangoes"}},
		{"crop_type", "fruit", []string{"Mangoes", "Apples"}},
		{"location", "shim", []string{"Apples"}},
		{"farmer_name", "ravi", []string{"Basmati"}},
		{"no_match", "quinoa", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(Search(items, tt.query))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Search(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilterCategory(t *testing.T) {
	items := sampleProducts()

	if got := names(FilterCategory(items, "Fruits")); !slices.Equal(got, []string{"Mangoes", "Apples"}) {
		t.Fatalf("Fruits = %v", got)
	}
	if got := FilterCategory(items, AllCategories); len(got) != len(items) {
		t.Fatalf("all kept %d of %d", len(got), len(items))
	}
	if got := FilterCategory(items, "fruits"); len(got) != 0 {
		t.Fatalf("category match must be exact, got %v", names(got))
	}
}

func TestSort(t *testing.T) {
	items := sampleProducts()

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortName, []string{"Apples", "Basmati", "Mangoes", "Tomatoes"}},
		// Tomatoes and Apples tie on 4.5 and keep input order
		{SortRating, []string{"Tomatoes", "Apples", "Basmati", "Mangoes"}},
		{SortPrice, []string{"Basmati", "Tomatoes", "Apples", "Mangoes"}},
		{SortDate, []string{"Apples", "Mangoes", "Basmati", "Tomatoes"}},
		{"unknown", []string{"Tomatoes", "Mangoes", "Basmati", "Apples"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got := names(Sort(items, tt.key))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("Sort(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSortByPriceIsAscending(t *testing.T) {
	items := append(sampleProducts(),
		product.Product{Name: "Onions", Price: fp(15)},
		product.Product{Name: "Garlic", Price: fp(15)},
		product.Product{Name: "Free"},
	)

	out := Sort(items, SortPrice)
	for i := 1; i < len(out); i++ {
		if out[i-1].PriceOrZero() > out[i].PriceOrZero() {
			t.Fatalf("out of order at %d: %v > %v", i, out[i-1].PriceOrZero(), out[i].PriceOrZero())
		}
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	items := sampleProducts()
	before := names(items)

	v := Apply(items, Params{Query: "o", Category: AllCategories, Sort: SortName})

	if got := names(items); !slices.Equal(got, before) {
		t.Fatalf("input reordered: %v", got)
	}
	if v.Total != 4 || v.Visible != len(v.Items) {
		t.Fatalf("counts = %d/%d (items %d)", v.Visible, v.Total, len(v.Items))
	}
	if !slices.Equal(v.Categories, []string{"Vegetables", "Fruits", "Grains"}) {
		t.Fatalf("categories = %v", v.Categories)
	}
}

func TestApplyEmptyQueryKeepsOriginalOrder(t *testing.T) {
	items := sampleProducts()

	v := Apply(items, Params{})
	if !slices.Equal(names(v.Items), names(items)) {
		t.Fatalf("got %v", names(v.Items))
	}
}

func TestApplyNoMatchesReturnsEmptyNotNil(t *testing.T) {
	v := Apply(nil, Params{Query: "x"})
	if v.Items == nil {
		t.Fatalf("items must be an empty slice")
	}
}

func TestPriceScenario(t *testing.T) {
	items := []product.Product{
		{Name: "A", Price: fp(10), Quantity: ip(0)},
		{Name: "B", Price: fp(5), Quantity: ip(20)},
	}

	v := Apply(items, Params{Sort: SortPrice})
	if got := names(v.Items); !slices.Equal(got, []string{"B", "A"}) {
		t.Fatalf("order = %v", got)
	}

	s := SummarizeInventory(items)
	if s.OutOfStock != 1 || s.InStock != 1 || s.LowStock != 0 {
		t.Fatalf("stock = %+v", s)
	}
}
