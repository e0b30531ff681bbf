package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/auth"
	"github.com/farmchainx/dashboard/internal/config"
	"github.com/farmchainx/dashboard/internal/dashboard"
	apphttp "github.com/farmchainx/dashboard/internal/http"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

const productsJSON = `[
	{"id": 1, "name": "Tomatoes", "cropType": "Vegetables", "price": 40, "quantity": 20, "averageRating": 4.2, "farmer": {"id": 3, "name": "Asha"}},
	{"id": 2, "name": "Apples", "cropType": "Fruits", "price": 120, "quantity": 4},
	{"id": 3, "name": "Rice", "cropType": "Grains", "price": 60, "quantity": 0}
]`

// fakeFarmBackend plays the marketplace REST backend.
type fakeFarmBackend struct {
	mu        sync.Mutex
	ratedWith []string

	tokenExpired atomic.Bool
	listCalls    atomic.Int32
}

func (b *fakeFarmBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON := func(status int, body string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}

	if r.URL.Path == "/api/auth/login" {
		var req struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		role := "CUSTOMER"
		if strings.HasPrefix(req.Email, "farmer") {
			role = "FARMER"
		}
		writeJSON(http.StatusOK, `{"token":"backend-`+strings.ToLower(role)+`","user":{"id":8,"name":"Ravi","email":"`+req.Email+`","role":"`+role+`"},"message":"Login successful"}`)
		return
	}

	if b.tokenExpired.Load() {
		writeJSON(http.StatusUnauthorized, `{"error":"Token expired"}`)
		return
	}

	switch {
	case r.Method == http.MethodGet && (r.URL.Path == "/api/products" || r.URL.Path == "/api/products/my-products"):
		b.listCalls.Add(1)
		writeJSON(http.StatusOK, productsJSON)
	case r.Method == http.MethodPost && r.URL.Path == "/api/products/1/ratings":
		b.mu.Lock()
		b.ratedWith = append(b.ratedWith, r.Header.Get("Authorization"))
		b.mu.Unlock()
		writeJSON(http.StatusCreated, `{"id": 44, "stars": 5}`)
	default:
		writeJSON(http.StatusNotFound, `{"error":"not found"}`)
	}
}

type harness struct {
	router  *gin.Engine
	backend *fakeFarmBackend
}

func setupHarness(t *testing.T) harness {
	t.Helper()

	fb := &fakeFarmBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := session.NewRedisClient(session.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	backend := apiclient.New(srv.URL, apiclient.WithLogger(logger))
	sessions := session.NewRedisStore(rdb, "farmchainx:session", time.Hour)
	registry := dashboard.NewRegistry(time.Hour, func(s session.Session) *dashboard.Dashboard {
		return dashboard.New(s.User.Role, backend.WithToken(s.Token), dashboard.WithLogger(logger))
	}, nil)

	cfg := config.Config{
		Env:            "test",
		DateLayout:     "1/2/2006",
		MaxUploadBytes: 6 << 20,
	}

	router := apphttp.NewRouter(logger, cfg, apphttp.Deps{
		Sessions:   sessions,
		Tokens:     auth.NewManager("test-secret", time.Hour),
		Dashboards: registry,
		Backend:    backend,
		Chat:       apiclient.New(srv.URL),
		Classifier: apiclient.New(srv.URL),
		Ping:       sessions.Ping,
	})

	return harness{router: router, backend: fb}
}

func (h harness) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h harness) login(t *testing.T, email string) string {
	t.Helper()

	w := h.do(t, http.MethodPost, "/auth/login", "", `{"email":"`+email+`","password":"secret1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("login response: %v body=%s", err, w.Body.String())
	}
	return resp.Token
}

func TestCustomerBrowsesAndRates(t *testing.T) {
	h := setupHarness(t)
	token := h.login(t, "ravi@shop.io")

	w := h.do(t, http.MethodGet, "/dashboard/products?sort=price", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("products status = %d body=%s", w.Code, w.Body.String())
	}

	var view struct {
		Items []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(view.Items) != 3 || view.Items[0].Name != "Tomatoes" || view.Items[0].ID != "1" {
		t.Fatalf("view = %+v", view.Items)
	}
	if len(view.Categories) != 3 {
		t.Fatalf("categories = %v", view.Categories)
	}

	w = h.do(t, http.MethodPost, "/products/1/ratings", token, `{"stars":0}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("zero stars status = %d", w.Code)
	}

	w = h.do(t, http.MethodPost, "/products/1/ratings", token, `{"stars":5,"comment":"Very fresh"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("rate status = %d body=%s", w.Code, w.Body.String())
	}

	h.backend.mu.Lock()
	rated := append([]string(nil), h.backend.ratedWith...)
	h.backend.mu.Unlock()
	if len(rated) != 1 || rated[0] != "Bearer backend-customer" {
		t.Fatalf("backend saw %v", rated)
	}

	// initial load plus the refresh after rating
	if got := h.backend.listCalls.Load(); got != 2 {
		t.Fatalf("list calls = %d, want 2", got)
	}

	w = h.do(t, http.MethodGet, "/notifications", token, "")
	if !strings.Contains(w.Body.String(), "Thanks for your rating!") {
		t.Fatalf("notifications = %s", w.Body.String())
	}
}

func TestRoleGuards(t *testing.T) {
	h := setupHarness(t)
	customer := h.login(t, "ravi@shop.io")
	farmer := h.login(t, "farmer@farm.io")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
	}{
		{name: "anonymous", method: http.MethodGet, path: "/dashboard", wantStatus: http.StatusUnauthorized},
		{name: "customer_inventory", method: http.MethodGet, path: "/dashboard/inventory", token: customer, wantStatus: http.StatusForbidden},
		{name: "farmer_inventory", method: http.MethodGet, path: "/dashboard/inventory?filter=low-stock", token: farmer, wantStatus: http.StatusOK},
		{name: "farmer_rates", method: http.MethodPost, path: "/products/1/ratings", token: farmer, body: `{"stars":4}`, wantStatus: http.StatusForbidden},
		{name: "customer_admin", method: http.MethodGet, path: "/admin/overview", token: customer, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := h.do(t, tt.method, tt.path, tt.token, tt.body)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestExpiredBackendTokenEndsSession(t *testing.T) {
	h := setupHarness(t)
	token := h.login(t, "ravi@shop.io")

	if w := h.do(t, http.MethodGet, "/dashboard", token, ""); w.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d", w.Code)
	}

	h.backend.tokenExpired.Store(true)

	w := h.do(t, http.MethodPost, "/dashboard/refresh", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("refresh status = %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"code":"session_expired"`) || !strings.Contains(w.Body.String(), `"redirect":"/login"`) {
		t.Fatalf("body = %s", w.Body.String())
	}

	w = h.do(t, http.MethodGet, "/me", token, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("session still alive after expiry: %d", w.Code)
	}
}

func TestLogout(t *testing.T) {
	h := setupHarness(t)
	token := h.login(t, "ravi@shop.io")

	if w := h.do(t, http.MethodPost, "/auth/logout", token, ""); w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/me", token, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	h := setupHarness(t)

	if w := h.do(t, http.MethodGet, "/healthz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz = %d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/readyz", "", ""); w.Code != http.StatusOK {
		t.Fatalf("readyz = %d body=%s", w.Code, w.Body.String())
	}

	w := h.do(t, http.MethodGet, "/healthz", "", "")
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("missing request id header")
	}
}
