package config

import (
	"os"
	"testing"
	"time"
)

const (
	testEnvLabDSN = "LAB_DSN"
	testLabDSN    = "postgres://localhost/ratinfo"
	testErrLoad   = "Load() error = %v"
)

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv(testEnvLabDSN)

	_, err := Load()
	if err == nil {
		t.Error("expected error for missing required env vars")
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	t.Setenv(testEnvLabDSN, testLabDSN)
	t.Setenv("CACHE_PATH", "/tmp/summaries.db")
	t.Setenv("VERBOSE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.LabDSN != testLabDSN {
		t.Errorf("LabDSN = %q, want %q", cfg.LabDSN, testLabDSN)
	}

	if cfg.CachePath != "/tmp/summaries.db" {
		t.Errorf("CachePath = %q, want %q", cfg.CachePath, "/tmp/summaries.db")
	}

	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(testEnvLabDSN, testLabDSN)

	os.Unsetenv("APP_ENV")
	os.Unsetenv("CACHE_PATH")
	os.Unsetenv("VERBOSE")
	os.Unsetenv("DB_MAX_CONNECTIONS")

	cfg, err := Load()
	if err != nil {
		t.Fatalf(testErrLoad, err)
	}

	if cfg.AppEnv != "local" {
		t.Errorf("AppEnv = %q, want %q", cfg.AppEnv, "local")
	}

	if cfg.CachePath != "./daily_summary.db" {
		t.Errorf("CachePath = %q, want %q", cfg.CachePath, "./daily_summary.db")
	}

	if cfg.Verbose {
		t.Error("Verbose = true, want false")
	}

	if cfg.DBMaxConnections != 4 {
		t.Errorf("DBMaxConnections = %d, want 4", cfg.DBMaxConnections)
	}

	if cfg.DBMaxConnIdleTime != 5*time.Minute {
		t.Errorf("DBMaxConnIdleTime = %v, want 5m", cfg.DBMaxConnIdleTime)
	}
}
