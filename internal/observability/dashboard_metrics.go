package observability

// RefreshObserved counts a finished refresh; result is ready, error or stale.
func (p *Prom) RefreshObserved(result string) {
	p.DashboardRefreshes.WithLabelValues(result).Inc()
	if result == "stale" {
		p.StaleResponses.Inc()
	}
}

func (p *Prom) DashboardOpened() { p.ActiveDashboards.Inc() }
func (p *Prom) DashboardClosed() { p.ActiveDashboards.Dec() }
