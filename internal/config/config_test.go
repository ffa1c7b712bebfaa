package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "volunteerDB", cfg.MongoDatabase)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "http://localhost:5173", cfg.AllowedOrigin)
	assert.False(t, cfg.CookieSecure)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "  MEMORY ")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("JWT_TTL", "90m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := Load()
	assert.ErrorContains(t, err, "unknown STORE_DRIVER")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:        "3000",
			Env:         "production",
			StoreDriver: DriverPostgres,
			JWTSecret:   "a-production-secret-of-at-least-32-chars",
			TokenTTL:    time.Hour,
		}
	}

	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid production config", func(c *Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Default secret in production", func(c *Config) { c.JWTSecret = defaultJWTSecret }, true},
		{"Short secret in production", func(c *Config) { c.JWTSecret = "short" }, true},
		{"Short secret in development", func(c *Config) { c.Env = "development"; c.JWTSecret = "short" }, false},
		{"Memory store in production", func(c *Config) { c.StoreDriver = DriverMemory }, true},
		{"Mongo without URI", func(c *Config) { c.StoreDriver = DriverMongo }, true},
		{"Zero token TTL", func(c *Config) { c.TokenTTL = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_PostgresDSN(t *testing.T) {
	c := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "vol", DBSSLMode: "require"}
	assert.Equal(t, "host=db user=u password=p dbname=vol port=5433 sslmode=require TimeZone=UTC", c.PostgresDSN())
}
