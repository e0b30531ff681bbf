package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/auth"
	"github.com/farmchainx/dashboard/internal/config"
	"github.com/farmchainx/dashboard/internal/dashboard"
	httpx "github.com/farmchainx/dashboard/internal/http"
	"github.com/farmchainx/dashboard/internal/observability"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		Enabled:     cfg.TracingEnabled,
		ServiceName: "farmchainx-dashboard",
		Env:         cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	var sessions session.Backing
	if cfg.MemorySessions() {
		log.Warn("sessions are kept in process memory and will not survive a restart")
		sessions = session.NewMemoryStore()
	} else {
		rdb := session.NewRedisClient(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		sessions = session.NewRedisStore(rdb, "farmchainx:session", cfg.SessionTTL())
	}

	upstream := func(baseURL string) *apiclient.Client {
		return apiclient.New(baseURL, apiclient.WithLogger(log), apiclient.WithObserver(prom))
	}
	backend := upstream(cfg.BackendURL)

	dashboards := dashboard.NewRegistry(cfg.DashboardIdle(), func(s session.Session) *dashboard.Dashboard {
		return dashboard.New(s.User.Role, backend.WithToken(s.Token),
			dashboard.WithLogger(log.With("session", s.ID, "user_id", s.User.ID)),
			dashboard.WithMetrics(prom),
		)
	}, prom)
	go dashboards.Run(ctx, time.Minute)

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Sessions:   sessions,
		Tokens:     auth.NewManager(cfg.SessionSecret, cfg.SessionTTL()),
		Dashboards: dashboards,
		Backend:    backend,
		Chat:       upstream(cfg.ChatURL),
		Classifier: upstream(cfg.ClassifierURL),
		Prom:       prom,
		Metrics:    promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Ping:       sessions.Ping,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "backend", cfg.BackendURL)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		cctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(cctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(cctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
