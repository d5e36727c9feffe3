package session

import (
	"time"
)

// DoctorSession is the server-side record of an scs session, kept so a
// doctor can review and revoke their active sessions.
type DoctorSession struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	DoctorID  uint      `json:"doctor_id" gorm:"not null;index"`
	Token     string    `json:"-" gorm:"uniqueIndex;size:255;not null"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	Current   bool      `json:"current" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (DoctorSession) TableName() string {
	return "doctor_sessions"
}

type SessionService interface {
	TrackSession(doctorID uint, token string, ipAddress, userAgent string, expiresAt time.Time) error

	UpdateLastUsed(token string) error

	GetDoctorSessions(doctorID uint, currentToken string) ([]DoctorSession, error)

	RevokeSession(doctorID uint, sessionID uint) error

	RevokeAllOtherSessions(doctorID uint, currentToken string) error

	CleanupExpiredSessions() error

	SessionExists(token string) (bool, error)

	RemoveSessionByToken(token string) error
}
