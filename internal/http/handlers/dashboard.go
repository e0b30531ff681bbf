package handlers

import (
	"errors"
	"net/http"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/derived"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboards Dashboards
}

func NewDashboardHandler(dashboards Dashboards) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

func (h *DashboardHandler) Get(ctx *gin.Context) {
	d, _, ok := loadDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, d.Snapshot())
}

// Refresh always answers with the snapshot; a failed fetch shows up as
// state=error with the previous products still counted.
func (h *DashboardHandler) Refresh(ctx *gin.Context) {
	d, _, ok := loadDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	if err := d.Refresh(ctx.Request.Context()); err != nil && errors.Is(err, apiclient.ErrAuthExpired) {
		RespondErr(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, d.Snapshot())
}

func (h *DashboardHandler) Products(ctx *gin.Context) {
	var params derived.Params
	if !BindQuery(ctx, &params) {
		return
	}

	d, _, ok := loadDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, d.View(params))
}

func (h *DashboardHandler) Stats(ctx *gin.Context) {
	d, _, ok := loadDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, d.Stats())
}

type inventoryQuery struct {
	Filter string `form:"filter" json:"filter" binding:"omitempty,oneof=all in-stock low-stock out-of-stock"`
}

func (h *DashboardHandler) Inventory(ctx *gin.Context) {
	var q inventoryQuery
	if !BindQuery(ctx, &q) {
		return
	}
	if q.Filter == "" {
		q.Filter = "all"
	}

	d, _, ok := loadDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	items := d.Inventory(q.Filter)

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items":   items,
		"count":   len(items),
		"filter":  q.Filter,
		"summary": derived.SummarizeInventory(d.Products()),
	})
}

func (h *DashboardHandler) Notifications(ctx *gin.Context) {
	d, _, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	items := d.Notifications().Active()
	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}

func (h *DashboardHandler) DismissNotification(ctx *gin.Context) {
	d, _, ok := currentDashboard(ctx, h.dashboards)
	if !ok {
		return
	}

	if !d.Notifications().Dismiss(ctx.Param("id")) {
		RespondNotFound(ctx, "Notification not found")
		return
	}
	ctx.Status(http.StatusNoContent)
}
