// Package qr builds the verification payload encoded in product QR codes,
// the human-readable field list and the printable quality report.
package qr

import (
	"encoding/json"
	"time"

	"github.com/farmchainx/dashboard/internal/domain/product"
)

const PayloadType = "Product"

// Payload is what a scanner gets back. Images, ratings and the farmer
// reference stay out.
type Payload struct {
	ProductID     string    `json:"productId"`
	Name          string    `json:"name"`
	CropType      string    `json:"cropType"`
	Price         *float64  `json:"price"`
	HarvestDate   string    `json:"harvestDate"`
	UseBeforeDate string    `json:"useBeforeDate"`
	Location      string    `json:"location"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
}

func BuildPayload(p product.Product, now time.Time) Payload {
	return Payload{
		ProductID:     p.ID.String(),
		Name:          p.Name,
		CropType:      p.CropType,
		Price:         p.Price,
		HarvestDate:   p.HarvestDate,
		UseBeforeDate: p.UseBeforeDate,
		Location:      p.Location,
		Type:          PayloadType,
		Timestamp:     now.UTC(),
	}
}

// Encode renders the payload as the text stored in the QR code.
func (p Payload) Encode() (string, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func DecodePayload(s string) (Payload, error) {
	var p Payload
	err := json.Unmarshal([]byte(s), &p)
	return p, err
}
