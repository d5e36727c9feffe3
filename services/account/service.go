package account

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/triologic/medrec/config"
	"github.com/triologic/medrec/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrInvalidCredentials    = errors.New("invalid username or password")
	ErrNotVerified           = errors.New("account is not verified")
	ErrDuplicateAccount      = errors.New("username or email is already registered")
	ErrAccountNotFound       = errors.New("account not found")
	ErrCodeInvalid           = errors.New("invalid verification code")
	ErrCodeExpired           = errors.New("verification code has expired")
	ErrResetTokenInvalid     = errors.New("invalid or expired reset token")
	ErrResetTokenExpired     = errors.New("reset token has expired")
	ErrResetTokenUsed        = errors.New("reset token has already been used")
	ErrMailSendFailed        = errors.New("failed to send email")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,20}$`)

type MailService interface {
	Send(toEmail, toName, subject, htmlBody, textBody string) error
}

type Service struct {
	config      *config.Config
	db          *gorm.DB
	mailService MailService
	logger      *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

func (s *Service) SetMailService(mailService MailService) {
	s.mailService = mailService
}

type RegisterInput struct {
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	PhoneCountryCode string `json:"phone_country_code"`
	PhoneNumber      string `json:"phone_number"`
	Specialization   string `json:"specialization"`
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", s.config.Auth.MinPasswordLength)
	}
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// isDuplicateKey recognizes a unique index violation regardless of
// driver, so a concurrent duplicate insert that slips past the
// pre-insert check still surfaces as a duplicate-account conflict.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "Duplicate entry")
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// Register creates an unverified doctor account and issues a verification
// code in one transaction. The verification email is sent after commit;
// a send failure is reported through the emailSent flag, not an error.
func (s *Service) Register(input RegisterInput) (*Doctor, bool, error) {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	if input.FirstName == "" || input.LastName == "" {
		return nil, false, fmt.Errorf("first name and last name are required")
	}
	if !usernamePattern.MatchString(input.Username) {
		return nil, false, fmt.Errorf("username must be 3-20 characters using letters, numbers, dots, underscores or hyphens")
	}
	if err := validateEmail(input.Email); err != nil {
		return nil, false, err
	}
	if err := s.ValidatePassword(input.Password); err != nil {
		return nil, false, err
	}

	var count int64
	if err := s.db.Model(&Doctor{}).
		Where("username = ? OR email = ?", input.Username, input.Email).
		Count(&count).Error; err != nil {
		return nil, false, fmt.Errorf("failed to check existing accounts: %w", err)
	}
	if count > 0 {
		return nil, false, ErrDuplicateAccount
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, false, err
	}

	doctor := &Doctor{
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		Username:         input.Username,
		Email:            input.Email,
		PasswordHash:     hash,
		IsVerified:       false,
		PhoneCountryCode: input.PhoneCountryCode,
		PhoneNumber:      input.PhoneNumber,
		Specialization:   input.Specialization,
	}

	var code string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(doctor).Error; err != nil {
			return err
		}
		code, err = s.issueCode(tx, doctor.ID)
		return err
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, false, ErrDuplicateAccount
		}
		if s.logger != nil {
			s.logger.Error("registration failed", zap.Error(err), zap.String("username", input.Username))
		}
		return nil, false, fmt.Errorf("failed to create account: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("doctor registered",
			zap.Uint("doctor_id", doctor.ID),
			zap.String("username", doctor.Username))
	}

	emailSent := s.sendVerificationEmail(doctor, code) == nil
	return doctor, emailSent, nil
}

// issueCode expires any still-active codes for the doctor, then stores a
// bcrypt hash of a fresh 6-digit code. The plaintext code is returned for
// the email body only.
func (s *Service) issueCode(tx *gorm.DB, doctorID uint) (string, error) {
	now := time.Now()

	if err := tx.Model(&VerificationCode{}).
		Where("doctor_id = ? AND verified_at IS NULL AND expires_at > ?", doctorID, now).
		Update("expires_at", now).Error; err != nil {
		return "", fmt.Errorf("failed to expire previous codes: %w", err)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate verification code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.config.Auth.BcryptCost)
	if err != nil {
		return "", ErrPasswordHashingFailed
	}

	record := &VerificationCode{
		DoctorID:  doctorID,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.config.Auth.VerificationCodeExpiry),
	}
	if err := tx.Create(record).Error; err != nil {
		return "", fmt.Errorf("failed to store verification code: %w", err)
	}

	return code, nil
}

func (s *Service) VerifyCode(email, code string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)

	var doctor Doctor
	if err := s.db.Where("email = ?", email).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	if doctor.IsVerified {
		return nil
	}

	var record VerificationCode
	err := s.db.Where("doctor_id = ? AND verified_at IS NULL", doctor.ID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return fmt.Errorf("failed to look up verification code: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		return ErrCodeExpired
	}

	if bcrypt.CompareHashAndPassword([]byte(record.CodeHash), []byte(code)) != nil {
		return ErrCodeInvalid
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Doctor{}).Where("id = ?", doctor.ID).
			Update("is_verified", true).Error; err != nil {
			return err
		}
		return tx.Model(&VerificationCode{}).Where("id = ?", record.ID).
			Update("verified_at", now).Error
	})
	if err != nil {
		return fmt.Errorf("failed to mark account verified: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("account verified", zap.Uint("doctor_id", doctor.ID))
	}
	return nil
}

func (s *Service) ResendCode(email string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	var doctor Doctor
	if err := s.db.Where("email = ?", email).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrAccountNotFound
		}
		return false, fmt.Errorf("failed to look up account: %w", err)
	}

	if doctor.IsVerified {
		return false, nil
	}

	var code string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		code, err = s.issueCode(tx, doctor.ID)
		return err
	})
	if err != nil {
		return false, err
	}

	if err := s.sendVerificationEmail(&doctor, code); err != nil {
		return false, ErrMailSendFailed
	}
	return true, nil
}

// Authenticate reports the same error for an unknown username and a wrong
// password so responses do not reveal which accounts exist.
func (s *Service) Authenticate(username, password string) (*Doctor, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var doctor Doctor
	if err := s.db.Where("username = ?", username).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Burn a comparison so the timing matches the found path.
			_ = bcrypt.CompareHashAndPassword(
				[]byte("$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"),
				[]byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.VerifyPassword(doctor.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !doctor.IsVerified {
		return &doctor, ErrNotVerified
	}

	return &doctor, nil
}

func (s *Service) GetDoctor(doctorID uint) (*Doctor, error) {
	var doctor Doctor
	if err := s.db.First(&doctor, doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}
	return &doctor, nil
}

func (s *Service) generateResetToken() (string, error) {
	bytes := make([]byte, s.config.Auth.PasswordResetTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// RequestPasswordReset succeeds whether or not the email has an account, so
// the endpoint cannot be used to enumerate addresses.
func (s *Service) RequestPasswordReset(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validateEmail(email); err != nil {
		return err
	}

	var doctor Doctor
	if err := s.db.Where("email = ?", email).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Info("password reset requested for unknown email")
			}
			return nil
		}
		return fmt.Errorf("failed to look up account: %w", err)
	}

	token, err := s.generateResetToken()
	if err != nil {
		return err
	}

	record := &ResetToken{
		DoctorID:  doctor.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(s.config.Auth.PasswordResetExpiry),
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("doctor_id = ?", doctor.ID).Delete(&ResetToken{}).Error; err != nil {
			return err
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	// A send failure is logged but not returned. The caller always gets
	// the same generic outcome as for an unknown email, so a mail outage
	// does not reveal which addresses are registered.
	if err := s.sendPasswordResetEmail(&doctor, token); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send password reset email",
				zap.Error(err), zap.Uint("doctor_id", doctor.ID))
		}
		return nil
	}

	if s.logger != nil {
		s.logger.Info("password reset token issued", zap.Uint("doctor_id", doctor.ID))
	}
	return nil
}

func (s *Service) ResetPassword(token, newPassword string) error {
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if len(token) < 20 {
		return ErrResetTokenInvalid
	}

	var record ResetToken
	if err := s.db.Where("token = ?", token).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("failed to look up reset token: %w", err)
	}

	if record.UsedAt != nil {
		return ErrResetTokenUsed
	}

	if time.Now().After(record.ExpiresAt) {
		// Expired rows are deleted on access; a retry sees "invalid".
		_ = s.db.Delete(&record).Error
		return ErrResetTokenExpired
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Doctor{}).Where("id = ?", record.DoctorID).
			Update("password_hash", hash).Error; err != nil {
			return err
		}
		if err := tx.Model(&ResetToken{}).Where("id = ?", record.ID).
			Update("used_at", now).Error; err != nil {
			return err
		}
		return tx.Where("doctor_id = ? AND id != ?", record.DoctorID, record.ID).
			Delete(&ResetToken{}).Error
	})
	if err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("password reset completed", zap.Uint("doctor_id", record.DoctorID))
	}
	return nil
}

type ProfileInput struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Email            *string `json:"email"`
	PhoneCountryCode *string `json:"phone_country_code"`
	PhoneNumber      *string `json:"phone_number"`
	Specialization   *string `json:"specialization"`
}

func (s *Service) UpdateProfile(doctorID uint, input ProfileInput) (*Doctor, error) {
	doctor, err := s.GetDoctor(doctorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.FirstName != nil {
		name := strings.TrimSpace(*input.FirstName)
		if name == "" {
			return nil, fmt.Errorf("first name cannot be empty")
		}
		updates["first_name"] = name
	}
	if input.LastName != nil {
		name := strings.TrimSpace(*input.LastName)
		if name == "" {
			return nil, fmt.Errorf("last name cannot be empty")
		}
		updates["last_name"] = name
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		if email != doctor.Email {
			var count int64
			if err := s.db.Model(&Doctor{}).
				Where("email = ? AND id != ?", email, doctorID).
				Count(&count).Error; err != nil {
				return nil, fmt.Errorf("failed to check existing accounts: %w", err)
			}
			if count > 0 {
				return nil, ErrDuplicateAccount
			}
			updates["email"] = email
		}
	}
	if input.PhoneCountryCode != nil {
		updates["phone_country_code"] = strings.TrimSpace(*input.PhoneCountryCode)
	}
	if input.PhoneNumber != nil {
		updates["phone_number"] = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Specialization != nil {
		updates["specialization"] = strings.TrimSpace(*input.Specialization)
	}

	if len(updates) > 0 {
		if err := s.db.Model(doctor).Updates(updates).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, ErrDuplicateAccount
			}
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.GetDoctor(doctorID)
}

func (s *Service) ChangePassword(doctorID uint, currentPassword, newPassword string) error {
	doctor, err := s.GetDoctor(doctorID)
	if err != nil {
		return err
	}

	if err := s.VerifyPassword(doctor.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.db.Model(&Doctor{}).Where("id = ?", doctorID).
		Update("password_hash", hash).Error; err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("password changed", zap.Uint("doctor_id", doctorID))
	}
	return nil
}
