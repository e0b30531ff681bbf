package dashboard

import (
	"context"
	"time"

	"github.com/farmchainx/dashboard/internal/cache"
	"github.com/farmchainx/dashboard/internal/session"
)

// Factory builds the dashboard for a newly seen session.
type Factory func(s session.Session) *Dashboard

// RegistryMetrics is satisfied by *observability.Prom.
type RegistryMetrics interface {
	DashboardOpened()
	DashboardClosed()
}

type nopRegistryMetrics struct{}

func (nopRegistryMetrics) DashboardOpened() {}
func (nopRegistryMetrics) DashboardClosed() {}

// Registry keeps one dashboard per session and drops dashboards that have
// been idle for longer than the configured window.
type Registry struct {
	dashboards *cache.Cache[*Dashboard]
	factory    Factory
	metrics    RegistryMetrics
}

func NewRegistry(idle time.Duration, factory Factory, metrics RegistryMetrics) *Registry {
	if metrics == nil {
		metrics = nopRegistryMetrics{}
	}

	r := &Registry{factory: factory, metrics: metrics}
	r.dashboards = cache.New(idle, cache.WithEvict(func(string, *Dashboard) {
		r.metrics.DashboardClosed()
	}))
	return r
}

func (r *Registry) For(s session.Session) *Dashboard {
	return r.dashboards.GetOrCreate(s.ID, func() *Dashboard {
		r.metrics.DashboardOpened()
		return r.factory(s)
	})
}

// Close forgets a session's dashboard, typically on logout.
func (r *Registry) Close(sessionID string) {
	r.dashboards.Delete(sessionID)
}

func (r *Registry) Len() int { return r.dashboards.Len() }

// Run sweeps idle dashboards until ctx is done.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.dashboards.Sweep()
		}
	}
}
