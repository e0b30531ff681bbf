package dashboard

import (
	"context"
	"fmt"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/farmchainx/dashboard/internal/domain/rating"
)

func (d *Dashboard) CreateProduct(ctx context.Context, req product.CreateProductRequest, image *apiclient.ImageUpload) (product.Product, error) {
	if err := ValidateCreate(req, image); err != nil {
		return product.Product{}, err
	}

	p, err := d.backend.CreateProduct(ctx, req, image)
	if err != nil {
		d.notes.Error(err.Error())
		return product.Product{}, fmt.Errorf("create product: %w", err)
	}

	d.notes.Success("Product created successfully!")
	d.refreshAfter(ctx, "create")
	return p, nil
}

func (d *Dashboard) UpdateProduct(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	p, err := d.backend.UpdateProduct(ctx, id, req)
	if err != nil {
		d.notes.Error("Failed to update product: " + err.Error())
		return product.Product{}, fmt.Errorf("update product: %w", err)
	}

	d.notes.Success("Product updated successfully!")
	d.refreshAfter(ctx, "update")
	return p, nil
}

func (d *Dashboard) DeleteProduct(ctx context.Context, id string) error {
	if err := d.backend.DeleteProduct(ctx, id); err != nil {
		d.notes.Error("Failed to delete product: " + err.Error())
		return fmt.Errorf("delete product: %w", err)
	}

	d.notes.Success("Product deleted successfully!")
	d.refreshAfter(ctx, "delete")
	return nil
}

// Rate rejects out-of-range stars before touching the network.
func (d *Dashboard) Rate(ctx context.Context, productID string, req rating.SubmitRequest) error {
	if !rating.ValidStars(req.Stars) {
		return &ValidationError{Field: "stars", Rule: "range", Message: "Please select a rating"}
	}

	if err := d.backend.AddRating(ctx, productID, req); err != nil {
		d.notes.Error("Failed to submit rating. Please try again.")
		return fmt.Errorf("submit rating: %w", err)
	}

	d.notes.Success("Thanks for your rating!")
	d.refreshAfter(ctx, "rate")
	return nil
}

// refreshAfter reloads once a mutation succeeded. A failed reload is
// already recorded on the dashboard and does not undo the mutation.
func (d *Dashboard) refreshAfter(ctx context.Context, action string) {
	if err := d.Refresh(ctx); err != nil {
		d.log.Warn("refresh after mutation failed", "action", action, "err", err)
	}
}
