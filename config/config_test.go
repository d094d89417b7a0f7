package config

import (
	"log/slog"
	"testing"
)

func TestFromEnv(t *testing.T) {
	env := map[string]string{
		"BILDPRO_COMPANY_NAME":    " Acme Builders ",
		"BILDPRO_COMPANY_ADDRESS": "12 Main St",
		"LOG_LEVEL":               "debug",
		"BILDPRO_SEED_DEMO":       "true",
	}

	cfg := FromEnv(func(k string) string { return env[k] })

	if cfg.CompanyName != "Acme Builders" {
		t.Errorf("CompanyName = %q, want %q", cfg.CompanyName, "Acme Builders")
	}
	if cfg.CompanyAddress != "12 Main St" {
		t.Errorf("CompanyAddress = %q", cfg.CompanyAddress)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if !cfg.SeedDemo {
		t.Error("SeedDemo = false, want true")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := FromEnv(func(string) string { return "" })

	if cfg.CompanyName != "BildPro Contractor" {
		t.Errorf("CompanyName = %q, want default", cfg.CompanyName)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.SeedDemo {
		t.Error("SeedDemo should default to false")
	}
}

func TestFromEnv_InvalidSeedFlag(t *testing.T) {
	cfg := FromEnv(func(k string) string {
		if k == "BILDPRO_SEED_DEMO" {
			return "sometimes"
		}
		return ""
	})
	if cfg.SeedDemo {
		t.Error("invalid BILDPRO_SEED_DEMO should leave seeding off")
	}
}
