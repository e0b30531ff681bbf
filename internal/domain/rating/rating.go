package rating

import (
	"github.com/farmchainx/dashboard/internal/domain/product"
)

const (
	MinStars = 1
	MaxStars = 5
)

type UserRef struct {
	ID   product.ID `json:"id,omitempty"`
	Name string     `json:"name,omitempty"`
}

type Rating struct {
	ID          product.ID        `json:"id"`
	ProductID   product.ID        `json:"productId,omitempty"`
	ProductName string            `json:"productName,omitempty"`
	Stars       int               `json:"stars"`
	Comment     string            `json:"comment,omitempty"`
	User        *UserRef          `json:"user,omitempty"`
	CreatedAt   product.Timestamp `json:"createdAt"`
}

// SubmitRequest is the body of POST /api/products/{id}/ratings. Range checks
// happen in the dashboard before anything reaches the network.
type SubmitRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment,omitempty" binding:"omitempty,max=500"`
}

func ValidStars(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}
