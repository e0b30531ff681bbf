package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// calls to the FarmChainX backend and auxiliary services
	UpstreamDuration    *prometheus.HistogramVec
	UpstreamErrorsTotal *prometheus.CounterVec

	// dashboard lifecycle
	DashboardRefreshes *prometheus.CounterVec
	StaleResponses     prometheus.Counter
	ActiveDashboards   prometheus.Gauge
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "farmchainx",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "farmchainx",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "farmchainx",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "farmchainx",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Upstream call latency by logical operation.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"op", "status"},
		),
		UpstreamErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "farmchainx",
				Subsystem: "upstream",
				Name:      "errors_total",
				Help:      "Upstream errors by logical op and class.",
			},
			[]string{"op", "class"},
		),
		DashboardRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "farmchainx",
				Subsystem: "dashboard",
				Name:      "refreshes_total",
				Help:      "Dashboard snapshot refreshes by result.",
			},
			[]string{"result"}, // result=ready|error|stale
		),
		StaleResponses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "farmchainx",
				Subsystem: "dashboard",
				Name:      "stale_responses_total",
				Help:      "Fetch results discarded because a newer refresh superseded them.",
			},
		),
		ActiveDashboards: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "farmchainx",
				Subsystem: "dashboard",
				Name:      "active",
				Help:      "Dashboards currently held in the session registry.",
			},
		),
	}
	reg.MustRegister(
		p.RequestsTotal, p.RequestsDuration, p.InFlight,
		p.UpstreamDuration, p.UpstreamErrorsTotal,
		p.DashboardRefreshes, p.StaleResponses, p.ActiveDashboards,
	)

	return p
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing; best effort:
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
