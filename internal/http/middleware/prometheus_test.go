package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/sessions/:id", func(c *fiber.Ctx) error {
		assert.Equal(t, float64(1), testutil.ToFloat64(m.inFlight))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Delete("/sessions/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/sessions/:id/generate", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusConflict, "incomplete")
	})
	app.Post("/sessions/:id/chat", func(c *fiber.Ctx) error { return errors.New("boom") })
	return app, m, reg
}

func TestPrometheusMiddleware(t *testing.T) {
	app, m, _ := newMetricsApp(t)

	cases := []struct {
		method, target, pattern, status string
	}{
		{"GET", "/sessions/0b5c", "/sessions/:id", "200"},
		{"DELETE", "/sessions/0b5c", "/sessions/:id", "204"},
		{"POST", "/sessions/0b5c/generate", "/sessions/:id/generate", "409"},
		{"POST", "/sessions/0b5c/chat", "/sessions/:id/chat", "500"},
	}
	for _, tc := range cases {
		_, err := app.Test(httptest.NewRequest(tc.method, tc.target, nil))
		require.NoError(t, err)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.requestCount.WithLabelValues(tc.method, tc.pattern, tc.status)), tc.target)
	}

	assert.Equal(t, float64(0), testutil.ToFloat64(m.inFlight))
	assert.Equal(t, 4, testutil.CollectAndCount(m.requestDuration))
}

func TestPrometheusMiddleware_SkipsMetricsScrape(t *testing.T) {
	app, m, _ := newMetricsApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
}

func TestPrometheusMiddleware_UnmatchedRoute(t *testing.T) {
	app, m, _ := newMetricsApp(t)

	for _, target := range []string{"/nope/1", "/nope/2"} {
		_, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, float64(2), testutil.ToFloat64(m.requestCount.WithLabelValues("GET", unmatchedPath, "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestCount))
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
