package middleware

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedApp(rl *RateLimiter) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil))),
	})
	app.Use(rl.Handler())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          5,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return "client-a" },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		for i := 0; i < 5; i++ {
			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, "OK", string(body))
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          2,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return "client-a" },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		for i := 0; i < 2; i++ {
			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)
		}

		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		require.NoError(t, err)
		assert.Equal(t, 429, resp.StatusCode)
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("Retry-After"))

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "RATE_LIMIT_EXCEEDED")
	})

	t.Run("separate limits per key", func(t *testing.T) {
		key := "client-a"
		rl := NewRateLimiter(RateLimiterConfig{
			Max:          1,
			Window:       time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string { return key },
		})
		defer rl.Stop()
		app := newLimitedApp(rl)

		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 200, resp.StatusCode)
		resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 429, resp.StatusCode)

		key = "client-b"
		resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("window resets", func(t *testing.T) {
		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		rl := NewRateLimiter(RateLimiterConfig{Max: 1, Window: time.Minute})
		defer rl.Stop()
		rl.now = func() time.Time { return now }
		app := newLimitedApp(rl)

		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 200, resp.StatusCode)
		resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 429, resp.StatusCode)

		now = now.Add(61 * time.Second)
		resp, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("sets rate limit headers", func(t *testing.T) {
		rl := NewRateLimiter(RateLimiterConfig{Max: 10, Window: time.Minute})
		defer rl.Stop()
		app := newLimitedApp(rl)

		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "9", resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})
}

func TestRateLimiter_Evict(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(RateLimiterConfig{Max: 5, Window: time.Minute})
	defer rl.Stop()
	rl.now = func() time.Time { return now }
	app := newLimitedApp(rl)

	_, _ = app.Test(httptest.NewRequest("GET", "/test", nil))
	require.Len(t, rl.windows, 1)

	rl.evict(now.Add(time.Minute))
	assert.Len(t, rl.windows, 1)

	rl.evict(now.Add(3 * time.Minute))
	assert.Empty(t, rl.windows)
}

func TestRateLimiter_StopTwice(t *testing.T) {
	rl := NewRateLimiter(DefaultRateLimiterConfig())
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}
