package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/triologic/medrec/services/account"
	"github.com/triologic/medrec/session"
)

type SettingsHandler struct {
	accountSvc *account.Service
	sessionSvc session.SessionService
}

func NewSettingsHandler(accountSvc *account.Service, sessionSvc session.SessionService) *SettingsHandler {
	return &SettingsHandler{
		accountSvc: accountSvc,
		sessionSvc: sessionSvc,
	}
}

func (h *SettingsHandler) UpdateProfile(c echo.Context) error {
	var input account.ProfileInput
	if err := c.Bind(&input); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	doctor, err := h.accountSvc.UpdateProfile(session.GetDoctorID(c), input)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Profile updated", map[string]any{
		"doctor": doctor,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *SettingsHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}

	if err := h.accountSvc.ChangePassword(session.GetDoctorID(c), req.CurrentPassword, req.NewPassword); err != nil {
		return failErr(c, err)
	}
	return ok(c, http.StatusOK, "Password changed", nil)
}

type sessionView struct {
	ID        uint           `json:"id"`
	IPAddress string         `json:"ip_address"`
	Browser   string         `json:"browser"`
	Device    map[string]any `json:"device"`
	Current   bool           `json:"current"`
	LastUsed  string         `json:"last_used"`
	CreatedAt string         `json:"created_at"`
}

// Sessions lists the doctor's active sessions with browser summaries so
// unfamiliar devices stand out.
func (h *SettingsHandler) Sessions(c echo.Context) error {
	if h.sessionSvc == nil {
		return fail(c, http.StatusInternalServerError, "Session tracking is not available")
	}

	manager := session.GetManager(c)
	currentToken := ""
	if manager != nil {
		currentToken = manager.Token(c.Request().Context())
	}

	rows, err := h.sessionSvc.GetDoctorSessions(session.GetDoctorID(c), currentToken)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	views := make([]sessionView, 0, len(rows))
	for _, row := range rows {
		views = append(views, sessionView{
			ID:        row.ID,
			IPAddress: row.IPAddress,
			Browser:   session.GetBrowserInfo(row.UserAgent),
			Device:    session.GetDeviceInfo(row.UserAgent),
			Current:   row.Current,
			LastUsed:  row.LastUsed.Format("2006-01-02 15:04:05"),
			CreatedAt: row.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"sessions": views,
	})
}

func (h *SettingsHandler) RevokeSession(c echo.Context) error {
	if h.sessionSvc == nil {
		return fail(c, http.StatusInternalServerError, "Session tracking is not available")
	}

	sessionID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || sessionID == 0 {
		return fail(c, http.StatusBadRequest, "Invalid session id")
	}

	if err := h.sessionSvc.RevokeSession(session.GetDoctorID(c), uint(sessionID)); err != nil {
		return fail(c, http.StatusNotFound, "Session not found")
	}
	return ok(c, http.StatusOK, "Session revoked", nil)
}
