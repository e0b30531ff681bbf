package qr

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/shopspring/decimal"
)

const NotSpecified = "Not specified"

type Field struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Formatter struct {
	// DateLayout is a Go time layout; empty means 1/2/2006.
	DateLayout string
	Currency   string
}

func (f Formatter) dateLayout() string {
	if f.DateLayout == "" {
		return "1/2/2006"
	}
	return f.DateLayout
}

func (f Formatter) currency() string {
	if f.Currency == "" {
		return "₹"
	}
	return f.Currency
}

// BuildDisplayFields lists every shown product field in a fixed order.
// id, imageUrl, averageRating and farmer are never shown.
func BuildDisplayFields(p product.Product, f Formatter) []Field {
	raw := []struct {
		key   string
		value string
	}{
		{"name", p.Name},
		{"cropType", p.CropType},
		{"soilType", p.SoilType},
		{"pesticides", p.Pesticides},
		{"harvestDate", p.HarvestDate},
		{"useBeforeDate", p.UseBeforeDate},
		{"location", p.Location},
		{"additionalInfo", p.AdditionalInfo},
		{"price", floatOrEmpty(p.Price)},
		{"quantity", intOrEmpty(p.Quantity)},
		{"createdAt", timestampOrEmpty(p.CreatedAt)},
	}

	out := make([]Field, 0, len(raw))
	for _, r := range raw {
		out = append(out, Field{
			Key:   r.key,
			Label: Label(r.key),
			Value: f.Value(r.key, r.value),
		})
	}
	return out
}

// Label turns a camelCase key into "Camel Case".
func Label(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Value formats one raw field value for display. Zero numbers count as
// absent, the same as empty strings.
func (f Formatter) Value(key, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return NotSpecified
	}

	lower := strings.ToLower(key)
	switch {
	case strings.Contains(lower, "price"):
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return raw
		}
		return f.currency() + d.StringFixed(2)
	case strings.Contains(lower, "date") || strings.HasSuffix(key, "At"):
		ts, err := product.ParseTimestamp(raw)
		if err != nil {
			return raw
		}
		return ts.Format(f.dateLayout())
	default:
		return raw
	}
}

func floatOrEmpty(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intOrEmpty(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func timestampOrEmpty(t product.Timestamp) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
