package middleware

import (
	"strconv"
	"time"

	"vizhaa-backend/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records request counts and latency per route pattern.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := renderError(c, c.Next()); err != nil {
			return err
		}

		path := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), path, status).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())
		return nil
	}
}

// renderError runs the app error handler right away so outer middleware see
// the final status code.
func renderError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}
	return c.App().Config().ErrorHandler(c, err)
}

// MetricsHandler serves the Prometheus registry.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
