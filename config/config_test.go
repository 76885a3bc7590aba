package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")
	t.Setenv("JWT_SECRET", "dev-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "smart_clinic", cfg.MongoDatabase)
	assert.Equal(t, time.Hour, cfg.ReminderLead)
	assert.Equal(t, "clinic.events", cfg.AMQPExchange)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clinic")
	t.Setenv("JWT_SECRET", "dev-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRATION", "90m")
	t.Setenv("BCRYPT_COST", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 90*time.Minute, cfg.JWTExpiration)
	assert.Equal(t, 4, cfg.BcryptCost)
}

func TestValidate(t *testing.T) {
	base := Config{
		Env:           "production",
		DatabaseURL:   "postgres://localhost/clinic",
		JWTSecret:     "0123456789abcdef0123456789abcdef",
		JWTExpiration: time.Hour,
	}
	assert.NoError(t, base.Validate())

	missingDB := base
	missingDB.DatabaseURL = ""
	assert.EqualError(t, missingDB.Validate(), "DATABASE_URL is required")

	missingSecret := base
	missingSecret.JWTSecret = ""
	assert.EqualError(t, missingSecret.Validate(), "JWT_SECRET is required")

	shortSecret := base
	shortSecret.JWTSecret = "short"
	assert.Error(t, shortSecret.Validate())

	shortSecret.Env = "development"
	assert.NoError(t, shortSecret.Validate())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := Config{CORSOrigins: " http://a.test , ,http://b.test"}
	assert.Equal(t, "http://a.test,http://b.test", cfg.AllowedOrigins())

	cfg.CORSOrigins = ""
	assert.Equal(t, "*", cfg.AllowedOrigins())
}
