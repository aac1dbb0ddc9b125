package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service. Values come from an
// optional app.env file and the environment, environment winning.
type Config struct {
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	DBDSN          string        `mapstructure:"DB_DSN"`
	BaseURL        string        `mapstructure:"BASE_URL"`
	AdminPassword  string        `mapstructure:"ADMIN_PASSWORD"`
	SessionSecret  string        `mapstructure:"SESSION_SECRET"`
	SessionTTL     time.Duration `mapstructure:"SESSION_TTL"`
	CookieSecure   bool          `mapstructure:"COOKIE_SECURE"`
	AllowedOrigins []string      `mapstructure:"ALLOWED_ORIGINS"`
	SlugLength     int           `mapstructure:"SLUG_LENGTH"`
	SlugMaxRetries int           `mapstructure:"SLUG_MAX_RETRIES"`
}

// Load reads configuration from app.env (if present) and the environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("DB_DSN", "file:redirect.db?_foreign_keys=on")
	v.SetDefault("BASE_URL", "")
	// Empty defaults so AutomaticEnv can see the keys; Validate rejects
	// them when they stay empty.
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_TTL", 12*time.Hour)
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("SLUG_LENGTH", 7)
	v.SetDefault("SLUG_MAX_RETRIES", 20)

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations that must not reach production. There is
// deliberately no default admin password or session secret: startup fails
// instead of silently falling back.
func (c Config) Validate() error {
	if c.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must be set (plaintext or bcrypt hash)")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET must be set")
	}
	if c.SlugLength < 1 {
		return errors.New("SLUG_LENGTH must be at least 1")
	}
	if c.SlugMaxRetries < 1 {
		return errors.New("SLUG_MAX_RETRIES must be at least 1")
	}
	return nil
}
