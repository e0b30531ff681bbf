package analytics

import (
	"encoding/json"

	"github.com/farmchainx/dashboard/internal/domain/product"
)

type UserStats struct {
	Farmers   int `json:"farmers"`
	Customers int `json:"customers"`
	Retailers int `json:"retailers"`
	Admins    int `json:"admins"`
	Total     int `json:"total"`
}

// PurchasePoint is one period of GET /api/analytics/purchases.
type PurchasePoint struct {
	Month     string   `json:"month"`
	Purchases *int     `json:"purchases,omitempty"`
	Revenue   *float64 `json:"revenue,omitempty"`
	Growth    *float64 `json:"growth,omitempty"`
}

type ProductPoint struct {
	Month          string `json:"month"`
	ProductsAdded  int    `json:"productsAdded"`
	TopCrop        string `json:"topCrop,omitempty"`
	ActiveListings int    `json:"activeListings"`
}

// SystemMetrics is whatever the backend reports. The two well-known figures
// are optional; nothing is invented when they are missing.
type SystemMetrics struct {
	ConversionRate *float64       `json:"conversionRate,omitempty"`
	SystemUptime   *float64       `json:"systemUptime,omitempty"`
	Extra          map[string]any `json:"-"`
}

type Activity struct {
	ID        product.ID        `json:"id"`
	Type      string            `json:"type"`
	User      string            `json:"user,omitempty"`
	Role      string            `json:"role,omitempty"`
	Action    string            `json:"action,omitempty"`
	Product   string            `json:"product,omitempty"`
	Amount    string            `json:"amount,omitempty"`
	Rating    string            `json:"rating,omitempty"`
	Status    string            `json:"status,omitempty"`
	CreatedAt product.Timestamp `json:"createdAt"`
}

func (m *SystemMetrics) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	m.Extra = raw
	m.ConversionRate = number(raw, "conversionRate")
	m.SystemUptime = number(raw, "systemUptime")
	return nil
}

func (m SystemMetrics) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+2)
	for k, v := range m.Extra {
		out[k] = v
	}

	delete(out, "conversionRate")
	delete(out, "systemUptime")
	if m.ConversionRate != nil {
		out["conversionRate"] = *m.ConversionRate
	}
	if m.SystemUptime != nil {
		out["systemUptime"] = *m.SystemUptime
	}
	return json.Marshal(out)
}

func number(raw map[string]any, key string) *float64 {
	f, ok := raw[key].(float64)
	if !ok {
		return nil
	}
	return &f
}
