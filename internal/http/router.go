package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/auth"
	"github.com/farmchainx/dashboard/internal/config"
	"github.com/farmchainx/dashboard/internal/dashboard"
	"github.com/farmchainx/dashboard/internal/domain/user"
	"github.com/farmchainx/dashboard/internal/http/handlers"
	"github.com/farmchainx/dashboard/internal/http/middlewares"
	"github.com/farmchainx/dashboard/internal/observability"
	"github.com/farmchainx/dashboard/internal/qr"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	maxJSONBody = 1 << 20
	serviceName = "farmchainx-dashboard"
)

// Deps are the long-lived collaborators the router wires into handlers.
type Deps struct {
	Sessions   session.Store
	Tokens     *auth.Manager
	Dashboards *dashboard.Registry

	// Backend is unauthenticated; handlers bind it to the session token.
	Backend    *apiclient.Client
	Chat       *apiclient.Client
	Classifier *apiclient.Client

	Prom    *observability.Prom
	Metrics http.Handler

	// Ping backs /readyz; nil means always ready.
	Ping func(ctx context.Context) error
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	secure := cfg.Env == "prod"

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.MaxBodyBytes(maxJSONBody, cfg.MaxUploadBytes))

	// health
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	sessionAuth := middlewares.NewSessionAuth(deps.Tokens, deps.Sessions)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	assistLimiter := middlewares.NewRateLimiter(30, time.Minute)

	// per-session views of the backend
	backendFor := func(s session.Session) *apiclient.Client { return deps.Backend.WithToken(s.Token) }

	authHandler := handlers.NewAuthHandler(deps.Backend, deps.Sessions, deps.Tokens, deps.Dashboards, secure)
	dashboardHandler := handlers.NewDashboardHandler(deps.Dashboards)
	productsHandler := handlers.NewProductsHandler(deps.Dashboards,
		func(s session.Session) handlers.RatingsReader { return backendFor(s) },
		qr.Formatter{DateLayout: cfg.DateLayout},
	)
	adminHandler := handlers.NewAdminHandler(deps.Dashboards,
		func(s session.Session) handlers.AdminBackend { return backendFor(s) },
	)
	assistHandler := handlers.NewAssistHandler(deps.Chat, deps.Classifier)

	// public auth routes
	authGroup := r.Group("/auth")
	authGroup.POST("/login",
		loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		middlewares.RequireJSON(),
		authHandler.Login,
	)
	authGroup.POST("/register",
		loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP),
		middlewares.RequireJSON(),
		authHandler.Register,
	)
	authGroup.POST("/logout", sessionAuth.OptionalSession(), authHandler.Logout)

	// everything below needs a live session
	s := r.Group("/")
	s.Use(sessionAuth.RequireSession())
	s.Use(middlewares.EndSessionOnExpiry(deps.Sessions, deps.Dashboards, secure))

	s.GET("/me", authHandler.Me)

	s.GET("/dashboard", dashboardHandler.Get)
	s.POST("/dashboard/refresh", dashboardHandler.Refresh)
	s.GET("/dashboard/products", dashboardHandler.Products)
	s.GET("/dashboard/stats", dashboardHandler.Stats)
	s.GET("/dashboard/inventory", middlewares.RequireRole(user.RoleFarmer), dashboardHandler.Inventory)

	s.GET("/notifications", dashboardHandler.Notifications)
	s.DELETE("/notifications/:id", dashboardHandler.DismissNotification)

	farmer := middlewares.RequireRole(user.RoleFarmer)
	buyer := middlewares.RequireRole(user.RoleCustomer, user.RoleRetailer)

	s.POST("/products", farmer, middlewares.RequireMultipart(), productsHandler.Create)
	s.PUT("/products/:id", farmer, middlewares.RequireJSON(), productsHandler.Update)
	s.DELETE("/products/:id", middlewares.RequireRole(user.RoleFarmer, user.RoleAdmin), productsHandler.Delete)
	s.POST("/products/:id/ratings", buyer, middlewares.RequireJSON(), productsHandler.Rate)
	s.GET("/products/:id/ratings", productsHandler.Ratings)
	s.GET("/products/:id/details", productsHandler.Details)
	s.GET("/products/:id/qr", productsHandler.QR)
	s.GET("/products/:id/qr/payload", productsHandler.QRPayload)
	s.GET("/products/:id/report", productsHandler.Report)

	admin := s.Group("/admin")
	admin.Use(middlewares.RequireRole(user.RoleAdmin))
	admin.GET("/overview", adminHandler.Overview)
	admin.DELETE("/ratings/:id", adminHandler.DeleteRating)

	assist := assistLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP)
	s.POST("/chat", assist, middlewares.RequireJSON(), assistHandler.Chat)
	s.POST("/classify", assist, middlewares.RequireMultipart(), assistHandler.Classify)

	return r
}
