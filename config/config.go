// Package config reads runtime settings from the environment, loading a
// .env file first when one exists.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/th3mailmann/bildpro/logging"
)

// Config holds settings that are not stored in the database.
type Config struct {
	CompanyName    string
	CompanyAddress string
	LogLevel       slog.Level
	SeedDemo       bool
}

// Load reads a .env file if present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file found, using system environment variables")
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function such as os.Getenv.
func FromEnv(getenv func(string) string) Config {
	cfg := Config{
		CompanyName:    strings.TrimSpace(getenv("BILDPRO_COMPANY_NAME")),
		CompanyAddress: strings.TrimSpace(getenv("BILDPRO_COMPANY_ADDRESS")),
		LogLevel:       logging.ParseLevel(getenv("LOG_LEVEL")),
	}
	if cfg.CompanyName == "" {
		cfg.CompanyName = "BildPro Contractor"
	}
	if v := getenv("BILDPRO_SEED_DEMO"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("config: ignoring invalid BILDPRO_SEED_DEMO", "value", v)
		}
		cfg.SeedDemo = seed
	}
	return cfg
}
