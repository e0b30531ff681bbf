package handlers

import (
	"errors"

	"github.com/farmchainx/dashboard/internal/apiclient"
	"github.com/farmchainx/dashboard/internal/dashboard"
	"github.com/farmchainx/dashboard/internal/http/middlewares"
	"github.com/farmchainx/dashboard/internal/session"
	"github.com/gin-gonic/gin"
)

// Dashboards hands out the dashboard that belongs to a session;
// *dashboard.Registry satisfies it.
type Dashboards interface {
	For(s session.Session) *dashboard.Dashboard
}

// loadDashboard returns the caller's dashboard after its first fetch. A
// failed fetch is not fatal: the dashboard keeps its error state and the
// previous snapshot. Only an expired backend token aborts the request.
func loadDashboard(ctx *gin.Context, dashboards Dashboards) (*dashboard.Dashboard, session.Session, bool) {
	d, s, ok := currentDashboard(ctx, dashboards)
	if !ok {
		return nil, s, false
	}

	if err := d.EnsureLoaded(ctx.Request.Context()); err != nil && errors.Is(err, apiclient.ErrAuthExpired) {
		RespondErr(ctx, err)
		return nil, s, false
	}

	return d, s, true
}

// currentDashboard skips the first fetch; notification reads use it.
func currentDashboard(ctx *gin.Context, dashboards Dashboards) (*dashboard.Dashboard, session.Session, bool) {
	s, ok := middlewares.SessionFromContext(ctx)
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return nil, session.Session{}, false
	}
	return dashboards.For(s), s, true
}
