package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"MEDREC_APP_"`
	Server    ServerConfig    `envPrefix:"MEDREC_SERVER_"`
	Log       LogConfig       `envPrefix:"MEDREC_LOG_"`
	Database  DatabaseConfig  `envPrefix:"MEDREC_DATABASE_"`
	Session   SessionConfig   `envPrefix:"MEDREC_SESSION_"`
	Auth      AuthConfig      `envPrefix:"MEDREC_AUTH_"`
	Mail      MailConfig      `envPrefix:"MEDREC_MAIL_"`
	Uploads   UploadsConfig   `envPrefix:"MEDREC_UPLOADS_"`
	RateLimit RateLimitConfig `envPrefix:"MEDREC_RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"TrioLogic Medical EHR"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"medrec.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Store    string        `env:"STORE" envDefault:"database"`
	Name     string        `env:"NAME" envDefault:"medrec_session"`
	MaxAge   time.Duration `env:"MAX_AGE" envDefault:"12h"`
	Path     string        `env:"PATH" envDefault:"/"`
	Domain   string        `env:"DOMAIN" envDefault:""`
	Secure   bool          `env:"SECURE" envDefault:"false"`
	HttpOnly bool          `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string        `env:"SAME_SITE" envDefault:"lax"`
}

type AuthConfig struct {
	BcryptCost               int           `env:"BCRYPT_COST" envDefault:"10"`
	MinPasswordLength        int           `env:"MIN_PASSWORD_LENGTH" envDefault:"8"`
	VerificationCodeExpiry   time.Duration `env:"VERIFICATION_CODE_EXPIRY" envDefault:"15m"`
	PasswordResetExpiry      time.Duration `env:"PASSWORD_RESET_EXPIRY" envDefault:"30m"`
	PasswordResetTokenLength int           `env:"PASSWORD_RESET_TOKEN_LENGTH" envDefault:"32"`
}

type MailConfig struct {
	Host        string        `env:"HOST" envDefault:"localhost"`
	Port        int           `env:"PORT" envDefault:"587"`
	Username    string        `env:"USERNAME" envDefault:""`
	Password    string        `env:"PASSWORD" envDefault:""`
	Encryption  string        `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string        `env:"FROM_ADDRESS" envDefault:""`
	FromName    string        `env:"FROM_NAME" envDefault:"TrioLogic Medical EHR"`
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"20s"`
}

type UploadsConfig struct {
	Dir         string `env:"DIR" envDefault:"uploads"`
	MaxScanSize int64  `env:"MAX_SCAN_SIZE" envDefault:"10485760"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"ENABLED" envDefault:"true"`
	Rate    int           `env:"RATE" envDefault:"20"`
	Period  time.Duration `env:"PERIOD" envDefault:"1m"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
