package requireauth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triologic/medrec/session"
	"github.com/triologic/medrec/testutils"
)

func TestMiddleware(t *testing.T) {
	manager, err := session.ProvideSessionManager(testutils.GetTestConfig(), &session.Options{Store: session.NewMemoryStore()}, nil)
	require.NoError(t, err)

	e := echo.New()
	e.Use(session.Middleware(manager))
	e.POST("/login", func(c echo.Context) error {
		session.Login(c, 7)
		return c.NoContent(http.StatusOK)
	})
	e.GET("/private", func(c echo.Context) error {
		return c.String(http.StatusOK, "secret")
	}, Middleware())

	t.Run("blocks anonymous requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Not authenticated")
	})

	t.Run("passes authenticated requests through", func(t *testing.T) {
		login := httptest.NewRequest(http.MethodPost, "/login", nil)
		loginRec := httptest.NewRecorder()
		e.ServeHTTP(loginRec, login)
		cookies := loginRec.Result().Cookies()
		require.NotEmpty(t, cookies)

		req := httptest.NewRequest(http.MethodGet, "/private", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "secret", rec.Body.String())
	})
}
