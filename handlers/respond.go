package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/account"
	"github.com/triologic/medrec/services/appointment"
	"github.com/triologic/medrec/services/intake"
	"github.com/triologic/medrec/services/patient"
	"github.com/triologic/medrec/services/task"
)

// ok writes the success envelope. Extra payload fields are merged next
// to "ok" and "message".
func ok(c echo.Context, status int, message string, extra map[string]any) error {
	body := map[string]any{"ok": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]any{
		"ok":    false,
		"error": message,
	})
}

// failErr maps service errors onto HTTP statuses. Known sentinels get
// their specific status; wrapped infrastructure errors ("failed to ...")
// become an opaque 500; anything else is a validation failure.
func failErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return fail(c, http.StatusUnauthorized, "Invalid username or password")
	case errors.Is(err, account.ErrNotVerified):
		return c.JSON(http.StatusForbidden, map[string]any{
			"ok":       false,
			"error":    "Account is not verified",
			"code":     "UNVERIFIED",
			"redirect": "/verify",
		})
	case errors.Is(err, account.ErrDuplicateAccount):
		return fail(c, http.StatusConflict, "Username or email is already registered")
	case errors.Is(err, account.ErrAccountNotFound):
		return fail(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, account.ErrCodeInvalid):
		return fail(c, http.StatusBadRequest, "Invalid verification code")
	case errors.Is(err, account.ErrCodeExpired):
		return fail(c, http.StatusBadRequest, "Verification code has expired")
	case errors.Is(err, account.ErrResetTokenInvalid):
		return fail(c, http.StatusBadRequest, "Invalid or expired reset token")
	case errors.Is(err, account.ErrResetTokenExpired):
		return fail(c, http.StatusBadRequest, "Reset token has expired")
	case errors.Is(err, account.ErrResetTokenUsed):
		return fail(c, http.StatusBadRequest, "Reset token has already been used")
	case errors.Is(err, account.ErrMailSendFailed):
		return fail(c, http.StatusInternalServerError, "Failed to send email, please try again")
	case errors.Is(err, patient.ErrInvalidID):
		return fail(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, patient.ErrNotOwned):
		return fail(c, http.StatusForbidden, "You do not have access to this patient")
	case errors.Is(err, patient.ErrPatientNotFound):
		return fail(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, appointment.ErrNotFound):
		return fail(c, http.StatusNotFound, "Appointment not found")
	case errors.Is(err, task.ErrNotFound):
		return fail(c, http.StatusNotFound, "Task not found")
	case errors.Is(err, intake.ErrIncompleteDraft):
		return fail(c, http.StatusBadRequest, "Patient information is incomplete")
	}

	if strings.HasPrefix(err.Error(), "failed to") {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return fail(c, http.StatusBadRequest, err.Error())
}
