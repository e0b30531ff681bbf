package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrNotFound = errors.New("product not found")

// ID accepts both JSON numbers and strings; the backend hands out numeric ids.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Timestamp parses the backend's zone-less LocalDateTime as well as RFC 3339.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, errors.New("unrecognized timestamp: " + strconv.Quote(s))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	if s == "" {
		*t = Timestamp{}
		return nil
	}

	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339))
}

type FarmerRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Product struct {
	ID             ID         `json:"id"`
	Name           string     `json:"name"`
	CropType       string     `json:"cropType"`
	SoilType       string     `json:"soilType,omitempty"`
	Pesticides     string     `json:"pesticides,omitempty"`
	HarvestDate    string     `json:"harvestDate,omitempty"`
	UseBeforeDate  string     `json:"useBeforeDate,omitempty"`
	Location       string     `json:"location,omitempty"`
	AdditionalInfo string     `json:"additionalInfo,omitempty"`
	Price          *float64   `json:"price,omitempty"`
	Quantity       *int       `json:"quantity,omitempty"`
	ImageURL       string     `json:"imageUrl,omitempty"`
	AverageRating  *float64   `json:"averageRating,omitempty"`
	Farmer         *FarmerRef `json:"farmer,omitempty"`
	CreatedAt      Timestamp  `json:"createdAt"`
}

// PriceOrZero, QuantityOrZero and RatingOrZero treat absent numerics as 0.
func (p Product) PriceOrZero() float64 {
	if p.Price == nil {
		return 0
	}
	return *p.Price
}

func (p Product) QuantityOrZero() int {
	if p.Quantity == nil {
		return 0
	}
	return *p.Quantity
}

func (p Product) RatingOrZero() float64 {
	if p.AverageRating == nil {
		return 0
	}
	return *p.AverageRating
}

func (p Product) FarmerName() string {
	if p.Farmer == nil {
		return ""
	}
	return p.Farmer.Name
}

// Find returns the product with the given id from a snapshot.
func Find(items []Product, id string) (Product, error) {
	for _, p := range items {
		if string(p.ID) == id {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}
