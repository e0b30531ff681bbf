package handlers

import (
	"context"
	"net/http"

	"github.com/farmchainx/dashboard/internal/derived"
	"github.com/farmchainx/dashboard/internal/domain/analytics"
	"github.com/farmchainx/dashboard/internal/domain/rating"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

// AdminBackend is what the admin screens read; the api client bound to
// the admin's token satisfies it.
type AdminBackend interface {
	UserStats(ctx context.Context) (analytics.UserStats, error)
	PurchaseAnalytics(ctx context.Context) ([]analytics.PurchasePoint, error)
	ProductAnalytics(ctx context.Context) ([]analytics.ProductPoint, error)
	SystemMetrics(ctx context.Context) (analytics.SystemMetrics, error)
	RecentActivities(ctx context.Context) ([]analytics.Activity, error)
	Ratings(ctx context.Context) ([]rating.Rating, error)
	DeleteRating(ctx context.Context, id string) error
}

type AdminHandler struct {
	dashboards Dashboards
	backendFor func(s session.Session) AdminBackend
}

func NewAdminHandler(dashboards Dashboards, backendFor func(s session.Session) AdminBackend) *AdminHandler {
	return &AdminHandler{dashboards: dashboards, backendFor: backendFor}
}

type adminOverview struct {
	Users           analytics.UserStats       `json:"userStats"`
	UserShares      []derived.UserShare       `json:"userShares"`
	Purchases       []analytics.PurchasePoint `json:"purchases"`
	PurchaseSummary derived.PurchaseSummary   `json:"purchaseSummary"`
	Products        []analytics.ProductPoint  `json:"productAnalytics"`
	Metrics         analytics.SystemMetrics   `json:"metrics"`
	Activities      []analytics.Activity      `json:"activities"`
	Ratings         []rating.Rating           `json:"ratings"`
	AverageRating   float64                   `json:"averageRating"`
	TopCrops        []derived.Ranked          `json:"topCrops"`
	Inventory       derived.InventorySummary  `json:"inventory"`
}

// Overview gathers every admin card in one response. Any failed backend
// call fails the whole overview, as the screen cannot render half of it.
func (h *AdminHandler) Overview(ctx *gin.Context) {
	d, s, ok := loadDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	api := h.backendFor(s)
	c := ctx.Request.Context()

	var (
		out adminOverview
		err error
	)

	if out.Users, err = api.UserStats(c); err != nil {
		RespondErr(ctx, err)
		return
	}
	if out.Purchases, err = api.PurchaseAnalytics(c); err != nil {
		RespondErr(ctx, err)
		return
	}
	if out.Products, err = api.ProductAnalytics(c); err != nil {
		RespondErr(ctx, err)
		return
	}
	if out.Metrics, err = api.SystemMetrics(c); err != nil {
		RespondErr(ctx, err)
		return
	}
	if out.Activities, err = api.RecentActivities(c); err != nil {
		RespondErr(ctx, err)
		return
	}
	if out.Ratings, err = api.Ratings(c); err != nil {
		RespondErr(ctx, err)
		return
	}

	items := d.Products()

	out.UserShares = derived.UserShares(out.Users)
	out.PurchaseSummary = derived.SummarizePurchases(out.Purchases)
	out.AverageRating = derived.AverageRating(items)
	out.TopCrops = derived.TopN(items, derived.ByCropType, derived.BySales, derived.DefaultTopN)
	out.Inventory = derived.SummarizeInventory(items)

	RespondJSONWithETag(ctx, http.StatusOK, out)
}

func (h *AdminHandler) DeleteRating(ctx *gin.Context) {
	d, s, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	if err := h.backendFor(s).DeleteRating(ctx.Request.Context(), ctx.Param("id")); err != nil {
		d.Notifications().Error("Failed to delete rating: " + err.Error())
		RespondErr(ctx, err)
		return
	}

	d.Notifications().Success("Rating deleted successfully!")
	ctx.Status(http.StatusNoContent)
}
