package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSystemHandler(t *testing.T) {
	ok := func(ctx context.Context) error { return nil }
	down := func(ctx context.Context) error { return errors.New("connection refused") }

	t.Run("root banner", func(t *testing.T) {
		h := NewSystemHandler("Admin Auth API", nil, zerolog.Nop())
		r := gin.New()
		r.GET("/", h.Root)

		w := do(r, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Admin Auth API is running"}`, w.Body.String())
	})

	t.Run("healthy", func(t *testing.T) {
		h := NewSystemHandler("api", map[string]HealthCheck{"store": ok, "redis": ok}, zerolog.Nop())
		r := gin.New()
		r.GET("/health", h.Health)

		w := do(r, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	})

	t.Run("unhealthy", func(t *testing.T) {
		h := NewSystemHandler("api", map[string]HealthCheck{"store": down, "redis": ok}, zerolog.Nop())
		r := gin.New()
		r.GET("/health", h.Health)

		w := do(r, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"failing":["store"]`)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0m 5s", formatDuration(5*time.Second))
	assert.Equal(t, "2h 3m 4s", formatDuration(2*time.Hour+3*time.Minute+4*time.Second))
	assert.Equal(t, "1d 1h 0m 0s", formatDuration(25*time.Hour))
}
