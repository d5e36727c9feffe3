package session

import (
	"time"

	"github.com/labstack/echo/v4"
)

const (
	DoctorIDKey      = "_doctor_id"
	AuthenticatedKey = "_authenticated"
)

// Login rotates the session token before binding the doctor to it, so a
// pre-login cookie cannot be replayed as an authenticated one.
func Login(c echo.Context, doctorID uint) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	ctx := c.Request().Context()

	_ = manager.RenewToken(ctx)
	manager.Put(ctx, DoctorIDKey, doctorID)
	manager.Put(ctx, AuthenticatedKey, true)

	if service := GetSessionService(c); service != nil {
		token := manager.Token(ctx)
		if token != "" && doctorID > 0 {
			ipAddress := c.RealIP()
			userAgent := c.Request().UserAgent()
			expiresAt := time.Now().Add(manager.config.MaxAge)

			_ = service.TrackSession(doctorID, token, ipAddress, userAgent, expiresAt)
		}
	}
}

func Logout(c echo.Context) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	ctx := c.Request().Context()

	if service := GetSessionService(c); service != nil {
		if token := manager.Token(ctx); token != "" {
			_ = service.RemoveSessionByToken(token)
		}
	}

	manager.Remove(ctx, DoctorIDKey)
	manager.Remove(ctx, AuthenticatedKey)
	_ = manager.Destroy(ctx)
}

func GetDoctorID(c echo.Context) uint {
	manager := GetManager(c)
	if manager == nil {
		return 0
	}
	ctx := c.Request().Context()

	switch v := manager.Get(ctx, DoctorIDKey).(type) {
	case uint:
		return v
	case int:
		return uint(v)
	case int64:
		return uint(v)
	case uint64:
		return uint(v)
	case float64:
		return uint(v)
	default:
		return 0
	}
}

func IsAuthenticated(c echo.Context) bool {
	manager := GetManager(c)
	if manager == nil {
		return false
	}
	ctx := c.Request().Context()
	return manager.GetBool(ctx, AuthenticatedKey) && GetDoctorID(c) > 0
}

func Set(c echo.Context, key string, value any) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	manager.Put(c.Request().Context(), key, value)
}

func Get(c echo.Context, key string) any {
	manager := GetManager(c)
	if manager == nil {
		return nil
	}
	return manager.Get(c.Request().Context(), key)
}

func Delete(c echo.Context, key string) {
	manager := GetManager(c)
	if manager == nil {
		return
	}
	manager.Remove(c.Request().Context(), key)
}

func GetSessionService(c echo.Context) SessionService {
	if service, ok := c.Get(sessionServiceKey).(SessionService); ok {
		return service
	}
	return nil
}
