package account

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

func (s *Service) sendVerificationEmail(doctor *Doctor, code string) error {
	if s.mailService == nil {
		if s.logger != nil {
			s.logger.Warn("mail service not configured, skipping verification email",
				zap.Uint("doctor_id", doctor.ID))
		}
		return ErrMailSendFailed
	}

	appName := s.config.App.Name
	expiry := int(s.config.Auth.VerificationCodeExpiry.Minutes())

	subject := fmt.Sprintf("%s - Verify your email", appName)

	html := fmt.Sprintf(`<p>Hello Dr. %s,</p>
<p>Thank you for registering with %s. Your verification code is:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px;">%s</p>
<p>This code expires in %d minutes. If you did not create an account, you can ignore this email.</p>`,
		doctor.LastName, appName, code, expiry)

	text := fmt.Sprintf(
		"Hello Dr. %s,\n\nYour %s verification code is: %s\n\nThis code expires in %d minutes.\nIf you did not create an account, you can ignore this email.\n",
		doctor.LastName, appName, code, expiry)

	if err := s.mailService.Send(doctor.Email, doctor.FullName(), subject, html, text); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send verification email",
				zap.Error(err), zap.Uint("doctor_id", doctor.ID))
		}
		return err
	}
	return nil
}

func (s *Service) sendPasswordResetEmail(doctor *Doctor, token string) error {
	if s.mailService == nil {
		if s.logger != nil {
			s.logger.Warn("mail service not configured, skipping reset email",
				zap.Uint("doctor_id", doctor.ID))
		}
		return ErrMailSendFailed
	}

	appName := s.config.App.Name
	expiry := int(s.config.Auth.PasswordResetExpiry.Minutes())
	resetURL := fmt.Sprintf("%s/reset-password?token=%s",
		strings.TrimRight(s.config.App.URL, "/"), token)

	subject := fmt.Sprintf("%s - Password reset", appName)

	html := fmt.Sprintf(`<p>Hello Dr. %s,</p>
<p>We received a request to reset your %s password. Click the link below to choose a new password:</p>
<p><a href="%s">%s</a></p>
<p>This link expires in %d minutes. If you did not request a reset, no action is needed.</p>`,
		doctor.LastName, appName, resetURL, resetURL, expiry)

	text := fmt.Sprintf(
		"Hello Dr. %s,\n\nReset your %s password using this link:\n%s\n\nThe link expires in %d minutes.\nIf you did not request a reset, no action is needed.\n",
		doctor.LastName, appName, resetURL, expiry)

	if err := s.mailService.Send(doctor.Email, doctor.FullName(), subject, html, text); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send password reset email",
				zap.Error(err), zap.Uint("doctor_id", doctor.ID))
		}
		return err
	}
	return nil
}
