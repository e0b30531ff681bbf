package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/farmchainx/dashboard/internal/domain/rating"
	"github.com/farmchainx/dashboard/internal/http/handlers"
	"github.com/farmchainx/dashboard/internal/qr"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

type fakeRatings struct {
	items []rating.Rating
	err   error
}

func (f fakeRatings) ProductRatings(context.Context, string) ([]rating.Rating, error) {
	return f.items, f.err
}

func newProductsHandler(b *fakeBackend, ratings fakeRatings) *handlers.ProductsHandler {
	return handlers.NewProductsHandler(newRegistry(b),
		func(session.Session) handlers.RatingsReader { return ratings },
		qr.Formatter{},
	)
}

type part struct {
	file        bool
	contentType string
	value       string
}

func multipartBody(t *testing.T, parts map[string]part) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, p := range parts {
		if !p.file {
			_ = mw.WriteField(name, p.value)
			continue
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+name+`"; filename="upload.bin"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		_, _ = w.Write([]byte(p.value))
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestCreateProduct(t *testing.T) {
	valid := map[string]part{
		"name":     {value: "Tomatoes"},
		"cropType": {value: "Vegetables"},
		"price":    {value: "40"},
		"quantity": {value: "20"},
	}
	with := func(extra map[string]part) map[string]part {
		out := map[string]part{}
		for k, v := range valid {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		name        string
		parts       map[string]part
		wantStatus  int
		wantMessage string
		wantCalls   int
	}{
		{name: "valid_without_image", parts: valid, wantStatus: http.StatusCreated, wantCalls: 1},
		{
			name:       "valid_with_image",
			parts:      with(map[string]part{"image": {file: true, contentType: "image/png", value: "png"}}),
			wantStatus: http.StatusCreated,
			wantCalls:  1,
		},
		{
			name:        "missing_name",
			parts:       with(map[string]part{"name": {value: ""}}),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Product name is required",
		},
		{
			name:        "zero_price",
			parts:       with(map[string]part{"price": {value: "0"}}),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Price must be greater than 0",
		},
		{
			name:        "not_an_image",
			parts:       with(map[string]part{"image": {file: true, contentType: "application/pdf", value: "%PDF"}}),
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Please select a valid image file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			b := &fakeBackend{
				createFn: func(_ context.Context, req product.CreateProductRequest, _ *apiclient.ImageUpload) (product.Product, error) {
					calls++
					return product.Product{ID: "99", Name: req.Name}, nil
				},
			}
			r := setupRouter(http.MethodPost, "/products", farmerSession, newProductsHandler(b, fakeRatings{}).Create)

			body, ct := multipartBody(t, tt.parts)
			req := httptest.NewRequest(http.MethodPost, "/products", body)
			req.Header.Set("Content-Type", ct)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantMessage != "" {
				if msg := decodeError(t, w).Error.Message; msg != tt.wantMessage {
					t.Fatalf("message = %q, want %q", msg, tt.wantMessage)
				}
			}
			if calls != tt.wantCalls {
				t.Fatalf("backend calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRateProduct(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		rateErr    error
		wantStatus int
		wantCalls  int
	}{
		{name: "ok", body: `{"stars":4,"comment":"fresh"}`, wantStatus: http.StatusCreated, wantCalls: 1},
		{name: "no_stars", body: `{"stars":0}`, wantStatus: http.StatusBadRequest},
		{name: "too_many_stars", body: `{"stars":6}`, wantStatus: http.StatusBadRequest},
		{
			name:       "backend_fails",
			body:       `{"stars":5}`,
			rateErr:    &apiclient.Error{Kind: apiclient.KindHTTP, Status: http.StatusBadRequest, Message: "Already rated"},
			wantStatus: http.StatusBadRequest,
			wantCalls:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			b := &fakeBackend{
				rateFn: func(_ context.Context, id string, _ rating.SubmitRequest) error {
					calls++
					if id != "2" {
						t.Errorf("product id = %q", id)
					}
					return tt.rateErr
				},
			}
			r := setupRouter(http.MethodPost, "/products/:id/ratings", customerSession, newProductsHandler(b, fakeRatings{}).Rate)

			w := doJSON(t, r, http.MethodPost, "/products/2/ratings", tt.body, nil)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if calls != tt.wantCalls {
				t.Fatalf("backend calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	b := &fakeBackend{
		deleteFn: func(_ context.Context, id string) error {
			if id == "404" {
				return &apiclient.Error{Kind: apiclient.KindHTTP, Status: http.StatusNotFound, Message: "Product not found"}
			}
			return nil
		},
	}
	r := setupRouter(http.MethodDelete, "/products/:id", farmerSession, newProductsHandler(b, fakeRatings{}).Delete)

	if w := doJSON(t, r, http.MethodDelete, "/products/1", "", nil); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodDelete, "/products/404", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing product status = %d", w.Code)
	}
}

func TestProductRatings(t *testing.T) {
	h := newProductsHandler(&fakeBackend{}, fakeRatings{items: []rating.Rating{{ID: "1", Stars: 5}}})
	r := setupRouter(http.MethodGet, "/products/:id/ratings", customerSession, h.Ratings)

	w := doJSON(t, r, http.MethodGet, "/products/1/ratings", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"count":1`) {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	h = newProductsHandler(&fakeBackend{}, fakeRatings{err: errors.New("down")})
	r = setupRouter(http.MethodGet, "/products/:id/ratings", customerSession, h.Ratings)
	if w := doJSON(t, r, http.MethodGet, "/products/1/ratings", "", nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("failure status = %d", w.Code)
	}
}

func TestProductDetailsAndQR(t *testing.T) {
	h := newProductsHandler(&fakeBackend{}, fakeRatings{})

	r := gin.New()
	r.Use(withSession(customerSession))
	r.GET("/products/:id/details", h.Details)
	r.GET("/products/:id/qr", h.QR)
	r.GET("/products/:id/qr/payload", h.QRPayload)
	r.GET("/products/:id/report", h.Report)

	t.Run("details", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/1/details", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"label":"Crop Type"`) {
			t.Fatalf("body = %s", w.Body.String())
		}
	})

	t.Run("unknown_product", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/77/details", "", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("payload", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/1/qr/payload", "", nil)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"type":"Product"`) {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("png_download", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/1/qr?download=true&size=128", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
		if w.Header().Get("Content-Type") != "image/png" {
			t.Fatalf("content type = %q", w.Header().Get("Content-Type"))
		}
		if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
			t.Fatalf("not a png")
		}
		if !strings.Contains(w.Header().Get("Content-Disposition"), "product-1-qr.png") {
			t.Fatalf("disposition = %q", w.Header().Get("Content-Disposition"))
		}
	})

	t.Run("size_out_of_range", func(t *testing.T) {
		if w := doJSON(t, r, http.MethodGet, "/products/1/qr?size=8", "", nil); w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", w.Code)
		}
	})

	t.Run("report", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/products/1/report", "", nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		body := w.Body.String()
		if !strings.Contains(body, "Product Quality Report") || !strings.Contains(body, "Tomatoes") {
			t.Fatalf("report body = %s", body)
		}
	})
}

func TestQRDownloadQuotesFilename(t *testing.T) {
	odd := product.Product{ID: `7"; evil=1`, Name: "Odd", CropType: "Fruits", Price: fp(1), Quantity: ip(1)}
	b := &fakeBackend{listFn: func(context.Context) ([]product.Product, error) {
		return []product.Product{odd}, nil
	}}
	r := setupRouter(http.MethodGet, "/products/:id/qr", customerSession, newProductsHandler(b, fakeRatings{}).QR)

	w := doJSON(t, r, http.MethodGet, "/products/7%22%3B%20evil%3D1/qr?download=true", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	disposition, params, err := mime.ParseMediaType(w.Header().Get("Content-Disposition"))
	if err != nil {
		t.Fatalf("parse %q: %v", w.Header().Get("Content-Disposition"), err)
	}
	if disposition != "attachment" || len(params) != 1 || params["filename"] != `product-7"; evil=1-qr.png` {
		t.Fatalf("disposition = %q params = %v", disposition, params)
	}
}
