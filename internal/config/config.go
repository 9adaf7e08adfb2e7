// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment keys.
const (
	KeyDatabaseURL     = "DATABASE_URL"
	KeyJWTSecret       = "JWT_SECRET"
	KeyJWTTTL          = "JWT_TTL"
	KeyCORSOrigins     = "CORS_ALLOWED_ORIGINS"
	KeyHTTPAddr        = "HTTP_ADDR"
	KeyLogLevel        = "LOG_LEVEL"
	KeyAutoMigrate     = "AUTO_MIGRATE"
	KeyAuthRateLimit   = "AUTH_RATE_LIMIT"
	KeyAuthRateBurst   = "AUTH_RATE_BURST"
	KeyShutdownTimeout = "SHUTDOWN_TIMEOUT"
)

// Config holds the service settings.
type Config struct {
	DatabaseURL     string
	JWTSecret       string
	JWTTTL          time.Duration
	AllowedOrigins  []string
	HTTPAddr        string
	LogLevel        string
	AutoMigrate     bool
	AuthRateLimit   float64
	AuthRateBurst   int
	ShutdownTimeout time.Duration
}

var (
	// ErrMissingSecret is returned when no JWT signing secret is configured.
	ErrMissingSecret = errors.New("JWT_SECRET must be set")
)

func defaults(v *viper.Viper) {
	v.SetDefault(KeyDatabaseURL, "sqlite://./data/invoices.db")
	v.SetDefault(KeyJWTTTL, "30m")
	v.SetDefault(KeyCORSOrigins, "http://localhost:3000,http://localhost:5173")
	v.SetDefault(KeyHTTPAddr, ":8080")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAutoMigrate, true)
	v.SetDefault(KeyAuthRateLimit, 5)
	v.SetDefault(KeyAuthRateBurst, 10)
	v.SetDefault(KeyShutdownTimeout, "10s")
}

// Load reads the given .env files (missing files are skipped) into the
// process environment and resolves every setting, environment first.
// Variables already set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		slog.Debug("Loaded env file", "file", file)
	}

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	ttl, err := duration(v, KeyJWTTTL)
	if err != nil {
		return nil, err
	}
	shutdown, err := duration(v, KeyShutdownTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:     strings.TrimSpace(v.GetString(KeyDatabaseURL)),
		JWTSecret:       v.GetString(KeyJWTSecret),
		JWTTTL:          ttl,
		AllowedOrigins:  splitList(v.GetString(KeyCORSOrigins)),
		HTTPAddr:        v.GetString(KeyHTTPAddr),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		AutoMigrate:     v.GetBool(KeyAutoMigrate),
		AuthRateLimit:   v.GetFloat64(KeyAuthRateLimit),
		AuthRateBurst:   v.GetInt(KeyAuthRateBurst),
		ShutdownTimeout: shutdown,
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("%s must not be empty", KeyDatabaseURL)
	}
	if cfg.AuthRateLimit <= 0 || cfg.AuthRateBurst <= 0 {
		return nil, fmt.Errorf("%s and %s must be positive", KeyAuthRateLimit, KeyAuthRateBurst)
	}
	return cfg, nil
}

// ValidateServe checks the settings only the HTTP server needs.
func (c *Config) ValidateServe() error {
	if c.JWTSecret == "" {
		return ErrMissingSecret
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("%s must be positive", KeyJWTTTL)
	}
	return nil
}

// duration accepts Go duration strings ("30m") or bare minutes ("30").
func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	minutes := v.GetInt(key)
	if minutes <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return time.Duration(minutes) * time.Minute, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
