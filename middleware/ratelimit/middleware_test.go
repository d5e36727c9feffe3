package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedServer(cfg *Config) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(cfg))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func get(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddlewareLimits(t *testing.T) {
	e := newLimitedServer(&Config{Rate: 3, Period: time.Minute})

	for i := 0; i < 3; i++ {
		rec := get(e, "203.0.113.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d within the limit", i+1)
	}

	rec := get(e, "203.0.113.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too many requests")
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddlewareHeaders(t *testing.T) {
	e := newLimitedServer(&Config{Rate: 5, Period: time.Minute})

	rec := get(e, "203.0.113.2")
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestMiddlewareKeysPerIP(t *testing.T) {
	e := newLimitedServer(&Config{Rate: 1, Period: time.Minute})

	require.Equal(t, http.StatusOK, get(e, "203.0.113.3").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "203.0.113.3").Code)
	assert.Equal(t, http.StatusOK, get(e, "203.0.113.4").Code, "a different client gets its own window")
}

func TestMiddlewareCustomHandler(t *testing.T) {
	e := newLimitedServer(&Config{
		Rate:   1,
		Period: time.Minute,
		OnLimitReached: func(c echo.Context) error {
			return c.String(http.StatusServiceUnavailable, "slow down")
		},
	})

	require.Equal(t, http.StatusOK, get(e, "203.0.113.5").Code)
	rec := get(e, "203.0.113.5")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "slow down", rec.Body.String())
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	reset := time.Now().Add(time.Minute)

	_, _, exists := store.Get("k")
	assert.False(t, exists)

	assert.Equal(t, 1, store.Increment("k", reset))
	assert.Equal(t, 2, store.Increment("k", reset))

	count, _, exists := store.Get("k")
	assert.True(t, exists)
	assert.Equal(t, 2, count)

	store.Reset("k")
	_, _, exists = store.Get("k")
	assert.False(t, exists)
}

func TestMemoryStoreWindowExpiry(t *testing.T) {
	store := NewMemoryStore()

	store.Increment("k", time.Now().Add(20*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, _, exists := store.Get("k")
	assert.False(t, exists, "counts outside the window are discarded")
	assert.Equal(t, 1, store.Increment("k", time.Now().Add(time.Minute)), "a new window starts at one")
}
