package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/triologic/medrec/middleware/requireauth"
	"github.com/triologic/medrec/services/account"
	"github.com/triologic/medrec/session"
	"github.com/triologic/medrec/testutils"
)

type recordingMail struct {
	textBody string
}

func (m *recordingMail) Send(toEmail, toName, subject, htmlBody, textBody string) error {
	m.textBody = textBody
	return nil
}

var verifyCodePattern = regexp.MustCompile(`code is: (\d{6})`)

func newAuthServer(t *testing.T) (*echo.Echo, *recordingMail) {
	t.Helper()
	db := testutils.SetupTestDB(t,
		&account.Doctor{}, &account.VerificationCode{}, &account.ResetToken{},
		&session.DoctorSession{})

	accountSvc := account.NewService(testutils.GetTestConfig(), db, nil)
	mailer := &recordingMail{}
	accountSvc.SetMailService(mailer)

	manager, err := session.ProvideSessionManager(testutils.GetTestConfig(),
		&session.Options{Store: session.NewMemoryStore()}, nil)
	require.NoError(t, err)
	sessionSvc := session.NewSessionService(db, manager)

	h := NewAuthHandler(accountSvc)

	e := echo.New()
	e.Use(session.Middleware(manager))
	e.Use(session.SessionServiceMiddleware(sessionSvc))
	e.POST("/api/signup", h.Signup)
	e.POST("/api/login", h.Login)
	e.POST("/api/logout", h.Logout, requireauth.Middleware())
	e.POST("/api/verify-code", h.VerifyCode)
	e.POST("/api/forgot-password", h.ForgotPassword)
	e.POST("/api/reset-password", h.ResetPassword)
	e.GET("/api/me", h.Me, requireauth.Middleware())

	return e, mailer
}

func postJSON(e *echo.Echo, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

const signupBody = `{
	"first_name": "Amira",
	"last_name": "Hassan",
	"username": "amira.hassan",
	"email": "amira@example.com",
	"password": "correct-horse"
}`

func TestSignupLoginFlow(t *testing.T) {
	e, mailer := newAuthServer(t)

	rec := postJSON(e, "/api/signup", signupBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)

	t.Run("login before verification is blocked with a redirect", func(t *testing.T) {
		rec := postJSON(e, "/api/login", `{"username":"amira.hassan","password":"correct-horse"}`, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "UNVERIFIED", body["code"])
		assert.Equal(t, "/verify", body["redirect"])
	})

	match := verifyCodePattern.FindStringSubmatch(mailer.textBody)
	require.Len(t, match, 2)

	t.Run("verify then log in", func(t *testing.T) {
		rec := postJSON(e, "/api/verify-code",
			`{"email":"amira@example.com","code":"`+match[1]+`"}`, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		login := postJSON(e, "/api/login", `{"username":"amira.hassan","password":"correct-horse"}`, nil)
		require.Equal(t, http.StatusOK, login.Code)
		assert.Contains(t, login.Body.String(), `"ok":true`)
		assert.NotContains(t, login.Body.String(), "password_hash", "the hash never leaves the server")
		require.NotEmpty(t, login.Result().Cookies())

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		me := httptest.NewRecorder()
		e.ServeHTTP(me, req)
		assert.Equal(t, http.StatusOK, me.Code)
		assert.Contains(t, me.Body.String(), "amira.hassan")
	})

	t.Run("wrong password gets the uniform message", func(t *testing.T) {
		rec := postJSON(e, "/api/login", `{"username":"amira.hassan","password":"nope"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid username or password")
	})

	t.Run("me without a session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	e, mailer := newAuthServer(t)

	rec := postJSON(e, "/api/signup", signupBody, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("unknown email gets the same generic answer", func(t *testing.T) {
		rec := postJSON(e, "/api/forgot-password", `{"email":"ghost@example.com"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "If the email is registered")
	})

	rec = postJSON(e, "/api/forgot-password", `{"email":"amira@example.com"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	tokenMatch := regexp.MustCompile(`token=([0-9a-f]{64})`).FindStringSubmatch(mailer.textBody)
	require.Len(t, tokenMatch, 2)

	t.Run("reset with the emailed token", func(t *testing.T) {
		rec := postJSON(e, "/api/reset-password",
			`{"token":"`+tokenMatch[1]+`","password":"a-new-password"}`, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Password has been reset")
	})

	t.Run("token cannot be replayed", func(t *testing.T) {
		rec := postJSON(e, "/api/reset-password",
			`{"token":"`+tokenMatch[1]+`","password":"another-password"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
