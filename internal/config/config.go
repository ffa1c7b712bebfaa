// Package config loads application configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	defaultJWTSecret = "volunteer-board-dev-secret-change-me"
)

// Config holds application configuration values loaded from .env or environment variables.
type Config struct {
	Port          string        `mapstructure:"PORT"`
	Env           string        `mapstructure:"APP_ENV"`
	StoreDriver   string        `mapstructure:"STORE_DRIVER"`
	DBHost        string        `mapstructure:"DB_HOST"`
	DBPort        string        `mapstructure:"DB_PORT"`
	DBUser        string        `mapstructure:"DB_USER"`
	DBPassword    string        `mapstructure:"DB_PASSWORD"`
	DBName        string        `mapstructure:"DB_NAME"`
	DBSSLMode     string        `mapstructure:"DB_SSLMODE"`
	MongoURI      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	JWTSecret     string        `mapstructure:"JWT_ACCESS_SECRET"`
	TokenTTL      time.Duration `mapstructure:"JWT_TTL"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`
	AllowedOrigin string        `mapstructure:"ALLOWED_ORIGIN"`
}

// Load reads configuration. Every key has a development default so a bare
// checkout runs against a local postgres.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config.yml: %w", err)
		}
	} else {
		log.Printf("Loaded configuration file: %s", v.ConfigFileUsed())
	}

	v.SetDefault("PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "volunteer_db")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("MONGO_DATABASE", "volunteerDB")
	v.SetDefault("JWT_ACCESS_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("ALLOWED_ORIGIN", "http://localhost:5173")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.DBSSLMode = strings.ToLower(strings.TrimSpace(cfg.DBSSLMode))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate checks required values and production hardening.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_ACCESS_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}

	switch c.StoreDriver {
	case DriverPostgres, DriverMemory:
	case DriverMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32 {
			return errors.New("JWT_ACCESS_SECRET must be a non-default secret of at least 32 characters in production")
		}
		if c.StoreDriver == DriverMemory {
			return errors.New("STORE_DRIVER=memory is not allowed in production")
		}
		if !c.CookieSecure {
			log.Println("WARNING: COOKIE_SECURE is false in production. The token cookie will be sent over plain HTTP.")
		}
	}
	return nil
}

// PostgresDSN builds the gorm/pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}
