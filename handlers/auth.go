package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/account"
	"github.com/triologic/medrec/session"
)

type AuthHandler struct {
	accountSvc *account.Service
}

func NewAuthHandler(accountSvc *account.Service) *AuthHandler {
	return &AuthHandler{accountSvc: accountSvc}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var input account.RegisterInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	doctor, emailSent, err := h.accountSvc.Register(input)
	if err != nil {
		return failErr(c, err)
	}

	message := "Account created, check your email for the verification code"
	if !emailSent {
		message = "Account created, but the verification email could not be sent. Please request a new code."
	}

	return ok(c, http.StatusCreated, message, map[string]any{
		"email":      doctor.Email,
		"email_sent": emailSent,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	doctor, err := h.accountSvc.Authenticate(req.Username, req.Password)
	if err != nil {
		return failErr(c, err)
	}

	session.Login(c, doctor.ID)

	return ok(c, http.StatusOK, "Login successful", map[string]any{
		"doctor": doctor,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	session.Logout(c)
	return ok(c, http.StatusOK, "Logged out", nil)
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyCode(c echo.Context) error {
	var req verifyCodeRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.accountSvc.VerifyCode(req.Email, req.Code); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Email verified, you can now log in", nil)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *AuthHandler) ResendCode(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	sent, err := h.accountSvc.ResendCode(req.Email)
	if err != nil {
		return failErr(c, err)
	}
	if !sent {
		return ok(c, http.StatusOK, "Account is already verified", nil)
	}
	return ok(c, http.StatusOK, "A new verification code has been sent", nil)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req emailRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.accountSvc.RequestPasswordReset(req.Email); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "If the email is registered, a reset link has been sent", nil)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.accountSvc.ResetPassword(req.Token, req.Password); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Password has been reset, you can now log in", nil)
}

func (h *AuthHandler) Me(c echo.Context) error {
	doctor, err := h.accountSvc.GetDoctor(session.GetDoctorID(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "", map[string]any{
		"doctor": doctor,
	})
}
