package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string   `mapstructure:"PORT"`
	Env           string   `mapstructure:"ENV"`
	DatabaseURL   string   `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32    `mapstructure:"DB_MIN_CONNS"`
	DefaultTenant string   `mapstructure:"DEFAULT_TENANT"`
	CORSOrigins   []string `mapstructure:"CORS_ORIGINS"`
	AuthSecret    string   `mapstructure:"AUTH_SECRET"`

	// Bulk purge/seed operations touch a tenant's full row set and need a
	// longer deadline than ordinary requests.
	LifecycleTimeoutSeconds int   `mapstructure:"LIFECYCLE_TIMEOUT_SECONDS"`
	SeedChunkSize           int   `mapstructure:"SEED_CHUNK_SIZE"`
	SeedRandomSeed          int64 `mapstructure:"SEED_RANDOM_SEED"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEFAULT_TENANT", "default")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LIFECYCLE_TIMEOUT_SECONDS", 90)
	v.SetDefault("SEED_CHUNK_SIZE", 500)
	v.SetDefault("SEED_RANDOM_SEED", 0)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("DEFAULT_TENANT")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("LIFECYCLE_TIMEOUT_SECONDS")
	v.BindEnv("SEED_CHUNK_SIZE")
	v.BindEnv("SEED_RANDOM_SEED")

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

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// LifecycleTimeout returns the deadline applied to each purge/seed invocation.
func (c *Config) LifecycleTimeout() time.Duration {
	if c.LifecycleTimeoutSeconds <= 0 {
		return 90 * time.Second
	}
	return time.Duration(c.LifecycleTimeoutSeconds) * time.Second
}

// Validate checks that the configuration is safe to run. Outside development
// an AUTH_SECRET is required so that the tenant identity comes from a signed
// token rather than a spoofable header.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSecret == "" {
		return fmt.Errorf(
			"AUTH_SECRET must be set when ENV=%q. "+
				"Refusing to start without authentication configuration", c.Env)
	}
	// Zero is allowed and falls back to the insert default downstream.
	if cfgChunk := c.SeedChunkSize; cfgChunk < 0 {
		return fmt.Errorf("SEED_CHUNK_SIZE must not be negative, got %d", cfgChunk)
	}
	return nil
}
