package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DB_PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("GIN_MODE", "")

	cfg := Load()

	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_PostgresDefaultPort(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PORT", "")

	cfg := Load()

	assert.Equal(t, "5432", cfg.DBPort)
}

func TestValidate_DevFallbackSecret(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", GinMode: "debug"}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.True(t, cfg.UsesDevSecret())
}

func TestValidate_ReleaseRequiresSecret(t *testing.T) {
	cfg := &Config{DBDriver: "mysql", GinMode: "release"}
	assert.ErrorIs(t, cfg.Validate(), ErrMissingJWTSecret)

	cfg.JWTSecret = "short"
	assert.ErrorIs(t, cfg.Validate(), ErrWeakJWTSecret)

	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.UsesDevSecret())
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{DBDriver: "oracle", GinMode: "debug"}
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownDBDriver)
}
