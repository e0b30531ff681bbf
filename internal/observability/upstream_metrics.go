package observability

import (
	"context"
	"errors"
	"strings"
	"time"
)

// classed is implemented by errors that already know their metric class
// (the api client's error kinds).
type classed interface {
	MetricClass() string
}

func (p *Prom) ObserveUpstream(op string, fn func() error) error {
	start := time.Now()
	err := fn()

	status := "ok"

	if err != nil {
		status = "error"
		p.UpstreamErrorsTotal.WithLabelValues(op, classifyUpstreamErr(err)).Inc()
	}
	p.UpstreamDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
	return err
}

func classifyUpstreamErr(err error) string {
	var c classed
	if errors.As(err, &c) {
		return c.MetricClass()
	}

	if errors.Is(err, context.Canceled) {
		return "canceled"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
