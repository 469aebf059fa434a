package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Config holds the application configuration.
type Config struct {
	Port           string `mapstructure:"PORT"`
	DatabaseDriver string `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	// BcryptCost is read once at startup and handed to the identity side only.
	BcryptCost        int  `mapstructure:"BCRYPT_COST"`
	MinPasswordLength int  `mapstructure:"MIN_PASSWORD_LENGTH"`
	AllowSelfFollow   bool `mapstructure:"ALLOW_SELF_FOLLOW"`

	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	CleanupConcurrency int           `mapstructure:"CLEANUP_CONCURRENCY"`
	CleanupTimeout     time.Duration `mapstructure:"CLEANUP_TIMEOUT"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`
	GinMode   string `mapstructure:"GIN_MODE"`
}

var defaults = map[string]any{
	"PORT":                "8080",
	"DATABASE_DRIVER":     "postgres",
	"DATABASE_URL":        "",
	"JWT_SECRET":          "",
	"JWT_TTL":             "168h",
	"BCRYPT_COST":         bcrypt.DefaultCost,
	"MIN_PASSWORD_LENGTH": 8,
	"ALLOW_SELF_FOLLOW":   true,
	"REQUEST_TIMEOUT":     "10s",
	"CLEANUP_CONCURRENCY": 8,
	"CLEANUP_TIMEOUT":     "30s",
	"LOG_LEVEL":           "info",
	"LOG_FORMAT":          "json",
	"GIN_MODE":            "release",
}

// Load reads configuration from a .env file (searched in paths, "." when none
// are given) and the environment. A missing .env file is not an error.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName(".env")
	v.SetConfigType("env")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first setting that would keep the server from starting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.DatabaseDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.MinPasswordLength < 1 {
		return errors.New("config: MIN_PASSWORD_LENGTH must be positive")
	}
	if c.CleanupConcurrency < 1 {
		return errors.New("config: CLEANUP_CONCURRENCY must be positive")
	}
	return nil
}
