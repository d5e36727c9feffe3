package testutils

import (
	"time"

	"github.com/triologic/medrec/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name: "Test EHR",
			URL:  "http://localhost:8080",
		},
		Auth: config.AuthConfig{
			BcryptCost:               bcrypt.MinCost,
			MinPasswordLength:        8,
			VerificationCodeExpiry:   15 * time.Minute,
			PasswordResetExpiry:      30 * time.Minute,
			PasswordResetTokenLength: 32,
		},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Session: config.SessionConfig{
			Store:    "memory",
			Name:     "medrec_session",
			MaxAge:   12 * time.Hour,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
		Uploads: config.UploadsConfig{
			Dir:         "uploads",
			MaxScanSize: 10 * 1024 * 1024,
		},
	}
}
