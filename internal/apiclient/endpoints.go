package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/farmchainx/dashboard/internal/domain/analytics"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/farmchainx/dashboard/internal/domain/rating"
	"github.com/farmchainx/dashboard/internal/domain/user"
)

type LoginResponse struct {
	Token   string    `json:"token"`
	User    user.User `json:"user"`
	Message string    `json:"message,omitempty"`
}

// loginUser tolerates the backend's numeric user ids.
type loginUser struct {
	ID    product.ID `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  string     `json:"role"`
}

type RegisterResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Message string `json:"message,omitempty"`
}

func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	resp, err := c.Request(ctx, http.MethodPost, "/api/auth/login", Options{
		Op:   "auth.login",
		JSON: map[string]string{"email": email, "password": password},
	})
	if err != nil {
		return LoginResponse{}, err
	}

	var raw struct {
		Token   string    `json:"token"`
		User    loginUser `json:"user"`
		Message string    `json:"message"`
	}
	if err := resp.Decode(&raw); err != nil {
		return LoginResponse{}, err
	}

	role, err := user.ParseRole(raw.User.Role)
	if err != nil {
		return LoginResponse{}, statusError("auth.login", KindHTTP, resp.Status, "Login returned an unknown role")
	}

	return LoginResponse{
		Token: raw.Token,
		User: user.User{
			ID:    raw.User.ID.String(),
			Name:  raw.User.Name,
			Email: raw.User.Email,
			Role:  role,
		},
		Message: raw.Message,
	}, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string, role user.Role) (RegisterResponse, error) {
	resp, err := c.Request(ctx, http.MethodPost, "/api/auth/register", Options{
		Op: "auth.register",
		JSON: map[string]string{
			"name":     name,
			"email":    email,
			"password": password,
			"role":     string(role),
		},
	})
	if err != nil {
		return RegisterResponse{}, err
	}

	var raw struct {
		ID      product.ID `json:"id"`
		Name    string     `json:"name"`
		Email   string     `json:"email"`
		Role    string     `json:"role"`
		Message string     `json:"message"`
	}
	if err := resp.Decode(&raw); err != nil {
		return RegisterResponse{}, err
	}

	return RegisterResponse{
		ID:      raw.ID.String(),
		Name:    raw.Name,
		Email:   raw.Email,
		Role:    raw.Role,
		Message: raw.Message,
	}, nil
}

func (c *Client) Products(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	err := c.getJSON(ctx, "products.list", "/api/products", nil, &out)
	return out, err
}

func (c *Client) MyProducts(ctx context.Context) ([]product.Product, error) {
	var out []product.Product
	err := c.getJSON(ctx, "products.mine", "/api/products/my-products", nil, &out)
	return out, err
}

// ImageUpload is the optional image part of a product create. Size is only
// used for validation before upload.
type ImageUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func (c *Client) CreateProduct(ctx context.Context, req product.CreateProductRequest, image *ImageUpload) (product.Product, error) {
	mp := &Multipart{Fields: req.Fields()}
	if image != nil {
		mp.File = &File{
			Field:       "image",
			Name:        image.Name,
			ContentType: image.ContentType,
			Reader:      image.Reader,
		}
	}

	resp, err := c.Request(ctx, http.MethodPost, "/api/products", Options{
		Op:        "products.create",
		Multipart: mp,
	})
	if err != nil {
		return product.Product{}, err
	}

	var out product.Product
	if resp.IsJSON() {
		if err := resp.Decode(&out); err != nil {
			return product.Product{}, err
		}
	}
	return out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	resp, err := c.Request(ctx, http.MethodPut, "/api/products/"+url.PathEscape(id), Options{
		Op:   "products.update",
		JSON: req,
	})
	if err != nil {
		return product.Product{}, err
	}

	var out product.Product
	if resp.IsJSON() {
		if err := resp.Decode(&out); err != nil {
			return product.Product{}, err
		}
	}
	return out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/api/products/"+url.PathEscape(id), Options{
		Op: "products.delete",
	})
	return err
}

func (c *Client) AddRating(ctx context.Context, productID string, req rating.SubmitRequest) error {
	_, err := c.Request(ctx, http.MethodPost, "/api/products/"+url.PathEscape(productID)+"/ratings", Options{
		Op:   "ratings.add",
		JSON: req,
	})
	return err
}

func (c *Client) ProductRatings(ctx context.Context, productID string) ([]rating.Rating, error) {
	var out []rating.Rating
	err := c.getJSON(ctx, "ratings.product", "/api/products/"+url.PathEscape(productID)+"/ratings", nil, &out)
	return out, err
}

func (c *Client) Ratings(ctx context.Context) ([]rating.Rating, error) {
	var out []rating.Rating
	err := c.getJSON(ctx, "ratings.list", "/api/ratings", nil, &out)
	return out, err
}

func (c *Client) DeleteRating(ctx context.Context, id string) error {
	_, err := c.Request(ctx, http.MethodDelete, "/api/products/ratings/"+url.PathEscape(id), Options{
		Op: "ratings.delete",
	})
	return err
}

func (c *Client) UserStats(ctx context.Context) (analytics.UserStats, error) {
	var out analytics.UserStats
	err := c.getJSON(ctx, "users.stats", "/api/users/stats", nil, &out)
	return out, err
}

func (c *Client) PurchaseAnalytics(ctx context.Context) ([]analytics.PurchasePoint, error) {
	var out []analytics.PurchasePoint
	err := c.getJSON(ctx, "analytics.purchases", "/api/analytics/purchases", nil, &out)
	return out, err
}

func (c *Client) ProductAnalytics(ctx context.Context) ([]analytics.ProductPoint, error) {
	var out []analytics.ProductPoint
	err := c.getJSON(ctx, "analytics.products", "/api/analytics/products", nil, &out)
	return out, err
}

func (c *Client) SystemMetrics(ctx context.Context) (analytics.SystemMetrics, error) {
	var out analytics.SystemMetrics
	err := c.getJSON(ctx, "analytics.metrics", "/api/analytics/metrics", nil, &out)
	return out, err
}

func (c *Client) RecentActivities(ctx context.Context) ([]analytics.Activity, error) {
	var out []analytics.Activity
	err := c.getJSON(ctx, "activities.recent", "/api/activities/recent", nil, &out)
	return out, err
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, query url.Values, out any) error {
	resp, err := c.Request(ctx, http.MethodGet, endpoint, Options{Op: op, Query: query})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
