package account

import (
	"time"

	"gorm.io/gorm"
)

type Doctor struct {
	gorm.Model
	FirstName        string `json:"first_name" gorm:"size:100;not null"`
	LastName         string `json:"last_name" gorm:"size:100;not null"`
	Username         string `json:"username" gorm:"uniqueIndex;size:20;not null"`
	Email            string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash     string `json:"-" gorm:"size:255;not null"`
	IsVerified       bool   `json:"is_verified" gorm:"default:false"`
	PhoneCountryCode string `json:"phone_country_code" gorm:"size:10"`
	PhoneNumber      string `json:"phone_number" gorm:"size:30"`
	Specialization   string `json:"specialization" gorm:"size:100"`
}

func (Doctor) TableName() string {
	return "doctors"
}

func (d *Doctor) FullName() string {
	return d.FirstName + " " + d.LastName
}

// VerificationCode holds a bcrypt hash of the 6-digit email verification
// code. At most one active (unverified, unexpired) row exists per doctor.
type VerificationCode struct {
	gorm.Model
	DoctorID   uint       `json:"doctor_id" gorm:"index;not null"`
	CodeHash   string     `json:"-" gorm:"size:255;not null"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
}

func (VerificationCode) TableName() string {
	return "email_verifications"
}

// ResetToken stores the password reset token in plaintext so the emailed
// link can be looked up directly. Tokens are single-use and short-lived.
type ResetToken struct {
	gorm.Model
	DoctorID  uint       `json:"doctor_id" gorm:"index;not null"`
	Token     string     `json:"-" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func (ResetToken) TableName() string {
	return "password_resets"
}
