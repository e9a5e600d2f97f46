package config

import (
	"errors"
	"fmt"
	"os"
)

// DevJWTSecret signs session tokens outside release mode when JWT_SECRET is unset.
const DevJWTSecret = "dev-secret-key-at-least-32-characters-long"

// MinJWTSecretLength is the shortest secret accepted in release mode.
const MinJWTSecretLength = 32

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in release mode")
	ErrWeakJWTSecret    = fmt.Errorf("JWT_SECRET must be at least %d bytes in release mode", MinJWTSecretLength)
	ErrUnknownDBDriver  = errors.New("DB_DRIVER must be mysql or postgres")
)

type Config struct {
	DBDriver     string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	JWTSecret    string
	GinMode      string
	HTTPAddr     string
	WebDir       string
	LogLevel     string
	OpenAIAPIKey string
	OpenAIModel  string
}

func Load() *Config {
	driver := getEnv("DB_DRIVER", "mysql")
	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return &Config{
		DBDriver:     driver,
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", defaultPort),
		DBUser:       getEnv("DB_USER", "taskuser"),
		DBPassword:   getEnv("DB_PASSWORD", "taskpassword"),
		DBName:       getEnv("DB_NAME", "task_sphere"),
		JWTSecret:    getEnv("JWT_SECRET", ""),
		GinMode:      getEnv("GIN_MODE", "debug"),
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		WebDir:       getEnv("WEB_DIR", ""),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),
	}
}

// IsProduction reports whether the server runs in gin's release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

// Validate rejects configurations that would silently weaken security in
// production. Outside release mode a missing secret falls back to DevJWTSecret.
func (c *Config) Validate() error {
	if c.DBDriver != "mysql" && c.DBDriver != "postgres" {
		return ErrUnknownDBDriver
	}

	if c.IsProduction() {
		if c.JWTSecret == "" {
			return ErrMissingJWTSecret
		}
		if len(c.JWTSecret) < MinJWTSecretLength {
			return ErrWeakJWTSecret
		}
		return nil
	}

	if c.JWTSecret == "" {
		c.JWTSecret = DevJWTSecret
	}
	return nil
}

// UsesDevSecret reports whether the development fallback secret is in effect.
func (c *Config) UsesDevSecret() bool {
	return c.JWTSecret == DevJWTSecret
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
