package config

import (
	"encoding/hex"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string   `mapstructure:"PORT"`
	Env                string   `mapstructure:"ENV"`
	DatabaseURL        string   `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer         string   `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL        string   `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience       string   `mapstructure:"AUTH_AUDIENCE"`
	AuthDevSigningKey  string   `mapstructure:"AUTH_DEV_SIGNING_KEY"`
	CORSOrigins        []string `mapstructure:"CORS_ORIGINS"`
	NotesEncryptionKey string   `mapstructure:"NOTES_ENCRYPTION_KEY"`
	VAPIDPublicKey     string   `mapstructure:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey    string   `mapstructure:"VAPID_PRIVATE_KEY"`
	VAPIDSubject       string   `mapstructure:"VAPID_SUBJECT"`
	ReminderHorizon    int      `mapstructure:"REMINDER_HORIZON_DAYS"`
	ReminderUrgent     int      `mapstructure:"REMINDER_URGENT_DAYS"`
	RateLimitRPS       float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("VAPID_SUBJECT", "mailto:noreply@vitacare.app")
	v.SetDefault("REMINDER_HORIZON_DAYS", 30)
	v.SetDefault("REMINDER_URGENT_DAYS", 7)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE", "AUTH_DEV_SIGNING_KEY",
		"CORS_ORIGINS", "NOTES_ENCRYPTION_KEY",
		"VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY", "VAPID_SUBJECT",
		"REMINDER_HORIZON_DAYS", "REMINDER_URGENT_DAYS",
		"RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Requests without a token are treated as the dev account.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. In production an
// auth issuer or an explicit HMAC signing key must be configured, and the
// notes encryption key, when present, must decode to 32 bytes.
func (c *Config) Validate() error {
	if c.IsProduction() && c.AuthIssuer == "" && c.AuthDevSigningKey == "" {
		return fmt.Errorf("AUTH_ISSUER is required in production; refusing to start without authentication")
	}

	if c.NotesEncryptionKey != "" {
		keyBytes, err := hex.DecodeString(c.NotesEncryptionKey)
		if err != nil {
			return fmt.Errorf("NOTES_ENCRYPTION_KEY is not valid hex: %w", err)
		}
		if len(keyBytes) != 32 {
			return fmt.Errorf("NOTES_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(keyBytes))
		}
	}

	if c.VAPIDPrivateKey != "" && c.VAPIDPublicKey == "" {
		return fmt.Errorf("VAPID_PUBLIC_KEY is required when VAPID_PRIVATE_KEY is set")
	}

	if c.ReminderHorizon < 0 {
		return fmt.Errorf("REMINDER_HORIZON_DAYS must not be negative, got %d", c.ReminderHorizon)
	}
	if c.ReminderUrgent < 0 {
		return fmt.Errorf("REMINDER_URGENT_DAYS must not be negative, got %d", c.ReminderUrgent)
	}

	return nil
}
