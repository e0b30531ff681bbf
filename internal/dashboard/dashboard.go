// Package dashboard owns one session's product snapshot and its lifecycle:
// idle, loading, then ready or error. Filtering, sorting and search are
// recomputed from the snapshot; only mutations go back to the backend.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/derived"
	"github.com/farmchainx/dashboard/internal/domain/product"
	"github.com/farmchainx/dashboard/internal/domain/rating"
	"github.com/farmchainx/dashboard/internal/domain/user"
	"github.com/farmchainx/dashboard/internal/notify"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// Backend is the slice of the api client a dashboard needs, already bound
// to the session's token.
type Backend interface {
	Products(ctx context.Context) ([]product.Product, error)
	MyProducts(ctx context.Context) ([]product.Product, error)
	CreateProduct(ctx context.Context, req product.CreateProductRequest, image *apiclient.ImageUpload) (product.Product, error)
	UpdateProduct(ctx context.Context, id string, req product.UpdateProductRequest) (product.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AddRating(ctx context.Context, productID string, req rating.SubmitRequest) error
}

// Metrics is satisfied by *observability.Prom.
type Metrics interface {
	RefreshObserved(result string)
}

type nopMetrics struct{}

// DefaultRefreshTimeout bounds a fetch once it no longer follows the caller.
const DefaultRefreshTimeout = 30 * time.Second

func (nopMetrics) RefreshObserved(string) {}

type Dashboard struct {
	role    user.Role
	backend Backend
	notes   *notify.Queue
	log     *slog.Logger
	metrics Metrics
	now     func() time.Time
	timeout time.Duration

	mu       sync.Mutex
	state    State
	items    []product.Product
	lastErr  string
	gen      uint64
	loadedAt time.Time
}

type Option func(*Dashboard)

func WithLogger(log *slog.Logger) Option {
	return func(d *Dashboard) {
		if log != nil {
			d.log = log
		}
	}
}

func WithMetrics(m Metrics) Option {
	return func(d *Dashboard) {
		if m != nil {
			d.metrics = m
		}
	}
}

func WithNotifications(q *notify.Queue) Option {
	return func(d *Dashboard) {
		if q != nil {
			d.notes = q
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) { d.now = now }
}

func WithRefreshTimeout(timeout time.Duration) Option {
	return func(d *Dashboard) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

func New(role user.Role, backend Backend, opts ...Option) *Dashboard {
	d := &Dashboard{
		role:    role,
		backend: backend,
		notes:   notify.NewQueue(),
		log:     slog.Default(),
		metrics: nopMetrics{},
		now:     time.Now,
		timeout: DefaultRefreshTimeout,
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dashboard) Role() user.Role              { return d.role }
func (d *Dashboard) Notifications() *notify.Queue { return d.notes }

// load picks the listing for the role: farmers manage their own products,
// everyone else browses the marketplace.
func (d *Dashboard) load(ctx context.Context) ([]product.Product, error) {
	if d.role == user.RoleFarmer {
		return d.backend.MyProducts(ctx)
	}
	return d.backend.Products(ctx)
}

// Refresh fetches a new snapshot. A result that arrives after a newer
// Refresh started is discarded. On failure the previous snapshot stays.
// The snapshot is shared by every request of the session, so the fetch
// outlives a caller that goes away and is bounded by the refresh timeout.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()
	d.gen++
	gen := d.gen
	d.state = StateLoading
	d.mu.Unlock()

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()

	items, err := d.load(fetchCtx)

	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen {
		d.metrics.RefreshObserved("stale")
		d.log.Debug("discarding superseded fetch", "generation", gen, "current", d.gen)
		return nil
	}

	if err != nil {
		d.state = StateError
		d.lastErr = err.Error()
		d.metrics.RefreshObserved("error")
		d.notes.Error("Failed to load products: " + err.Error())
		d.log.Warn("dashboard refresh failed", "role", d.role, "err", err)
		return fmt.Errorf("refresh dashboard: %w", err)
	}

	if items == nil {
		items = []product.Product{}
	}
	d.items = items
	d.lastErr = ""
	d.state = StateReady
	d.loadedAt = d.now()
	d.metrics.RefreshObserved("ready")
	return nil
}

// EnsureLoaded performs the first fetch of a fresh dashboard.
func (d *Dashboard) EnsureLoaded(ctx context.Context) error {
	d.mu.Lock()
	idle := d.state == StateIdle
	d.mu.Unlock()

	if !idle {
		return nil
	}
	return d.Refresh(ctx)
}

type Snapshot struct {
	State         State                 `json:"state"`
	Role          user.Role             `json:"role"`
	Error         string                `json:"error,omitempty"`
	Products      int                   `json:"products"`
	Generation    uint64                `json:"generation"`
	LoadedAt      *time.Time            `json:"loadedAt,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	s := Snapshot{
		State:      d.state,
		Role:       d.role,
		Error:      d.lastErr,
		Products:   len(d.items),
		Generation: d.gen,
	}
	if !d.loadedAt.IsZero() {
		t := d.loadedAt
		s.LoadedAt = &t
	}
	d.mu.Unlock()

	s.Notifications = d.notes.Active()
	return s
}

// Products returns a copy of the current snapshot.
func (d *Dashboard) Products() []product.Product {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.items)
}

func (d *Dashboard) Find(id string) (product.Product, error) {
	return product.Find(d.Products(), id)
}

func (d *Dashboard) View(p derived.Params) derived.View {
	return derived.Apply(d.Products(), p)
}

func (d *Dashboard) Inventory(filter string) []product.Product {
	return derived.FilterByStock(d.Products(), filter)
}

type Stats struct {
	Inventory     derived.InventorySummary `json:"inventory"`
	TopCrops      []derived.Ranked         `json:"topCrops"`
	TopProducts   []derived.Ranked         `json:"topProducts"`
	AverageRating float64                  `json:"averageRating"`
	Categories    []string                 `json:"categories"`
}

func (d *Dashboard) Stats() Stats {
	items := d.Products()
	return Stats{
		Inventory:     derived.SummarizeInventory(items),
		TopCrops:      derived.TopN(items, derived.ByCropType, derived.BySales, derived.DefaultTopN),
		TopProducts:   derived.TopN(items, derived.ByName, derived.ByRevenue, derived.DefaultTopN),
		AverageRating: derived.AverageRating(items),
		Categories:    derived.Categories(items),
	}
}
