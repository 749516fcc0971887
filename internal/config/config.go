package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=rental port=5432 sslmode=disable"

type Config struct {
	HTTPPort    string
	AppEnv      string
	LogLevel    string
	DBDriver    string // postgres | sqlite
	DatabaseDSN string
	JWTSecret   string
	CORSOrigins string
}

// Load reads the configuration from the environment. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseDSN: getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:   getEnv("JWT_SECRET", ""),
		CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if len(c.JWTSecret) < 32 {
		return errors.New("JWT_SECRET must be at least 32 characters")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return errors.New("DB_DRIVER must be postgres or sqlite")
	}
	return nil
}

// Warnings lists settings still on their development defaults.
func (c *Config) Warnings() []string {
	var out []string
	if c.DBDriver == "postgres" && c.DatabaseDSN == defaultDSN {
		out = append(out, "DATABASE_DSN is using the default value, set your own Postgres DSN for production")
	}
	if c.CORSOrigins == "http://localhost:5173" {
		out = append(out, "CORS_ALLOWED_ORIGINS is using the default value, set your own domain for production")
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
