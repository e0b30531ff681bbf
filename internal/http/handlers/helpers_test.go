package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/dashboard"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/farmchainx/dashboard/internal/domain/rating"
	"github.com/farmchainx/dashboard/internal/domain/user"
	"github.com/farmchainx/dashboard/internal/http/middlewares"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

var (
	farmerSession = session.Session{
		ID:    "sid-farmer",
		User:  user.User{ID: "3", Name: "Asha", Email: "asha@farm.io", Role: user.RoleFarmer},
		Token: "tok-farmer",
	}
	customerSession = session.Session{
		ID:    "sid-customer",
		User:  user.User{ID: "8", Name: "Ravi", Email: "ravi@shop.io", Role: user.RoleCustomer},
		Token: "tok-customer",
	}
	adminSession = session.Session{
		ID:    "sid-admin",
		User:  user.User{ID: "1", Name: "Root", Email: "root@farm.io", Role: user.RoleAdmin},
		Token: "tok-admin",
	}
)

func sampleProducts() []product.Product {
	return []product.Product{
		{ID: "1", Name: "Tomatoes", CropType: "Vegetables", Price: fp(40), Quantity: ip(20), AverageRating: fp(4), Location: "Pune"},
		{ID: "2", Name: "Apples", CropType: "Fruits", Price: fp(120), Quantity: ip(5), AverageRating: fp(5)},
		{ID: "3", Name: "Rice", CropType: "Grains", Price: fp(60), Quantity: ip(0)},
	}
}

// fakeBackend satisfies dashboard.Backend. Unset funcs succeed with zero values.
type fakeBackend struct {
	listFn   func(ctx context.Context) ([]product.Product, error)
	createFn func(ctx context.Context, req product.CreateProductRequest, image *apiclient.ImageUpload) (product.Product, error)
	updateFn func(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error)
	deleteFn func(ctx context.Context, id string) error
	rateFn   func(ctx context.Context, productID string, req rating.SubmitRequest) error
}

func (f *fakeBackend) Products(ctx context.Context) ([]product.Product, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return sampleProducts(), nil
}

func (f *fakeBackend) MyProducts(ctx context.Context) ([]product.Product, error) {
	return f.Products(ctx)
}

func (f *fakeBackend) CreateProduct(ctx context.Context, req product.CreateProductRequest, image *apiclient.ImageUpload) (product.Product, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req, image)
	}
	return product.Product{ID: "99", Name: req.Name}, nil
}

func (f *fakeBackend) UpdateProduct(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return product.Product{ID: product.ID(id), Name: req.Name}, nil
}

func (f *fakeBackend) DeleteProduct(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeBackend) AddRating(ctx context.Context, productID string, req rating.SubmitRequest) error {
	if f.rateFn != nil {
		return f.rateFn(ctx, productID, req)
	}
	return nil
}

func newRegistry(b dashboard.Backend) *dashboard.Registry {
	return dashboard.NewRegistry(time.Hour, func(s session.Session) *dashboard.Dashboard {
		return dashboard.New(s.User.Role, b)
	}, nil)
}

// withSession stands in for RequireSession.
func withSession(s session.Session) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middlewares.CtxSession, s)
		c.Next()
	}
}

func setupRouter(method, path string, s session.Session, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, withSession(s), h)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type errorEnvelope struct {
	Error struct {
		Code      string          `json:"code"`
		Message   string          `json:"message"`
		RequestID string          `json:"requestId"`
		Details   json.RawMessage `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, w.Body.String())
	}
	return env
}

func expiredErr() error {
	return &apiclient.Error{Kind: apiclient.KindAuthExpired, Status: http.StatusUnauthorized, Message: "Token expired"}
}
