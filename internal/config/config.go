package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel  int       `env:"LOG_LEVEL" envDefault:"0"`
	LogFormat string    `env:"LOG_FORMAT" envDefault:"text"`
	HTTP      HTTP      `envPrefix:"HTTP_"`
	GRPC      GRPC      `envPrefix:"GRPC_"`
	Database  Database  `envPrefix:"DATABASE_"`
	JWT       JWT       `envPrefix:"JWT_"`
	Auth      Auth      `envPrefix:"AUTH_"`
	SMTP      SMTP      `envPrefix:"SMTP_"`
	Archive   Archive   `envPrefix:"MINIO_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	RateLimit RateLimit `envPrefix:"RATE_LIMIT_"`
}

// HTTP contains public API server parameters.
type HTTP struct {
	Addr               string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout        time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout       time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	AllowedOrigins     []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	EnableHTTPS        bool          `env:"ENABLE_HTTPS" envDefault:"false"`
	CertFileName       string        `env:"CERT_FILE_NAME" envDefault:"cert.pem"`
	PrivateKeyFileName string        `env:"PRIVATE_KEY_FILE_NAME" envDefault:"key.pem"`
}

// GRPC contains operational gRPC server parameters.
type GRPC struct {
	Port string `env:"PORT" envDefault:"50051"`
}

// Database contains database connection parameters.
type Database struct {
	DSN string `env:"DSN,required,notEmpty"`
}

// JWT contains bearer token parameters. All of them are mandatory.
type JWT struct {
	Secret        string `env:"SECRET,required,notEmpty"`
	Issuer        string `env:"ISSUER,required,notEmpty"`
	Audience      string `env:"AUDIENCE,required,notEmpty"`
	ExpiryMinutes int    `env:"EXPIRY_MINUTES,required,notEmpty"`
}

// Expiry returns token lifetime as a duration.
func (j JWT) Expiry() time.Duration {
	return time.Duration(j.ExpiryMinutes) * time.Minute
}

// Auth contains credential lifecycle parameters.
type Auth struct {
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`
	MinPasswordLength int           `env:"MIN_PASSWORD_LENGTH" envDefault:"8"`
	StoreTimeout      time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	MailTimeout       time.Duration `env:"MAIL_TIMEOUT" envDefault:"10s"`
	ResetTokenTTL     time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	ResetURL          string        `env:"RESET_URL" envDefault:"http://localhost:5173/reset-password"`
	SweepSchedule     string        `env:"SWEEP_SCHEDULE" envDefault:"@every 15m"`
}

// SMTP contains outgoing mail parameters. An empty host switches to the logging mailer.
type SMTP struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM" envDefault:"no-reply@voiceofcustomer.local"`
	FromName string `env:"FROM_NAME" envDefault:"Voice Of Customer"`
}

// Archive contains object storage parameters for the outbound mail archive.
type Archive struct {
	Enabled   bool   `env:"ENABLED" envDefault:"false"`
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"voc-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"voc-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"voc-mail-archive"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Redis contains rate limiter backend parameters. An empty address keeps limits in memory.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// RateLimit bounds requests to credential endpoints per client address.
type RateLimit struct {
	Requests int           `env:"REQUESTS" envDefault:"10"`
	Window   time.Duration `env:"WINDOW" envDefault:"1m"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWT.ExpiryMinutes <= 0 {
		return errors.New("JWT_EXPIRY_MINUTES must be positive")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("AUTH_BCRYPT_COST must be within [4, 31], got %d", c.Auth.BcryptCost)
	}
	if c.Auth.StoreTimeout <= 0 {
		return errors.New("AUTH_STORE_TIMEOUT must be positive")
	}
	if c.Auth.MailTimeout <= 0 {
		return errors.New("AUTH_MAIL_TIMEOUT must be positive")
	}
	if c.Auth.ResetTokenTTL <= 0 {
		return errors.New("AUTH_RESET_TOKEN_TTL must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
