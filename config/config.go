/*
Package config loads server configuration from the environment.

PURPOSE:
  Centralizes every tunable in one struct. A .env file in the working
  directory is loaded when present; real environment variables win.

VARIABLES:
  APP_PORT        HTTP port                          (default 5000)
  DB_PATH         SQLite database path               (default hrm.db)
  STATIC_DIR      Frontend directory                 (default ./public)
  SWEEP_INTERVAL  Expired-employee purge interval    (default 1m)
  PAYROLL_POLICY  "always-live" | "freeze-at-generation"
*/
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	Port          int
	DBPath        string
	StaticDir     string
	SweepInterval time.Duration
	PayrollPolicy string
}

// Load reads configuration from the environment, consulting a .env file
// when one exists in the working directory.
func Load() Config {
	// Missing .env is fine; explicit env vars still apply.
	_ = godotenv.Load()

	return Config{
		Port:          getEnvInt("APP_PORT", 5000),
		DBPath:        getEnv("DB_PATH", "hrm.db"),
		StaticDir:     getEnv("STATIC_DIR", "./public"),
		SweepInterval: getEnvDuration("SWEEP_INTERVAL", time.Minute),
		PayrollPolicy: getEnv("PAYROLL_POLICY", "always-live"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
