package session

import (
	"time"

	"github.com/mileusna/useragent"
	"gorm.io/gorm"
)

type sessionService struct {
	db             *gorm.DB
	sessionManager *Manager
}

func NewSessionService(db *gorm.DB, sessionManager *Manager) SessionService {
	return &sessionService{
		db:             db,
		sessionManager: sessionManager,
	}
}

func (s *sessionService) TrackSession(doctorID uint, token string, ipAddress, userAgent string, expiresAt time.Time) error {
	session := DoctorSession{
		DoctorID:  doctorID,
		Token:     token,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		CreatedAt: time.Now(),
		LastUsed:  time.Now(),
		ExpiresAt: expiresAt,
	}

	return s.db.Create(&session).Error
}

func (s *sessionService) UpdateLastUsed(token string) error {
	return s.db.Model(&DoctorSession{}).
		Where("token = ?", token).
		Update("last_used", time.Now()).Error
}

func (s *sessionService) GetDoctorSessions(doctorID uint, currentToken string) ([]DoctorSession, error) {
	var sessions []DoctorSession

	err := s.db.Where("doctor_id = ? AND expires_at > ?", doctorID, time.Now()).
		Order("last_used DESC").
		Find(&sessions).Error

	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].Token == currentToken {
			sessions[i].Current = true
		}
	}

	return sessions, nil
}

func (s *sessionService) RevokeSession(doctorID uint, sessionID uint) error {
	var session DoctorSession
	err := s.db.Where("id = ? AND doctor_id = ?", sessionID, doctorID).First(&session).Error
	if err != nil {
		return err
	}

	if s.sessionManager != nil && s.sessionManager.SessionManager.Store != nil {
		if err := s.sessionManager.SessionManager.Store.Delete(session.Token); err != nil {
			return err
		}
	}

	return s.db.Delete(&session).Error
}

func (s *sessionService) RevokeAllOtherSessions(doctorID uint, currentToken string) error {
	var sessions []DoctorSession
	err := s.db.Where("doctor_id = ? AND token != ?", doctorID, currentToken).Find(&sessions).Error
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		return nil
	}

	if s.sessionManager != nil && s.sessionManager.SessionManager.Store != nil {
		for _, session := range sessions {
			if err := s.sessionManager.SessionManager.Store.Delete(session.Token); err != nil {
				return err
			}
		}
	}

	return s.db.Where("doctor_id = ? AND token != ?", doctorID, currentToken).Delete(&DoctorSession{}).Error
}

func (s *sessionService) CleanupExpiredSessions() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&DoctorSession{}).Error
}

func (s *sessionService) SessionExists(token string) (bool, error) {
	var count int64
	err := s.db.Model(&DoctorSession{}).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	if count > 0 {
		_ = s.UpdateLastUsed(token)
		return true, nil
	}

	return false, nil
}

func (s *sessionService) RemoveSessionByToken(token string) error {
	return s.db.Where("token = ?", token).Delete(&DoctorSession{}).Error
}

func GetBrowserInfo(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown Browser"
	}

	ua := useragent.Parse(userAgentString)

	if ua.Name != "" {
		if ua.Version != "" {
			return ua.Name + " " + ua.Version
		}
		return ua.Name
	}

	return "Unknown Browser"
}

func GetDeviceInfo(userAgentString string) map[string]any {
	if userAgentString == "" {
		return map[string]any{
			"browser":     "Unknown Browser",
			"os":          "Unknown OS",
			"device_type": "Unknown",
			"mobile":      false,
			"tablet":      false,
			"desktop":     false,
			"bot":         false,
		}
	}

	ua := useragent.Parse(userAgentString)

	deviceType := "Desktop"
	if ua.Mobile {
		deviceType = "Mobile"
	} else if ua.Tablet {
		deviceType = "Tablet"
	} else if ua.Bot {
		deviceType = "Bot"
	}

	browser := "Unknown Browser"
	if ua.Name != "" {
		if ua.Version != "" {
			browser = ua.Name + " " + ua.Version
		} else {
			browser = ua.Name
		}
	}

	os := "Unknown OS"
	if ua.OS != "" {
		if ua.OSVersion != "" {
			os = ua.OS + " " + ua.OSVersion
		} else {
			os = ua.OS
		}
	}

	return map[string]any{
		"browser":     browser,
		"os":          os,
		"device_type": deviceType,
		"mobile":      ua.Mobile,
		"tablet":      ua.Tablet,
		"desktop":     !ua.Mobile && !ua.Tablet && !ua.Bot,
		"bot":         ua.Bot,
	}
}
