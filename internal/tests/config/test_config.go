package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"

	"github.com/you/rakshasetu/internal/config"
)

// LoadTestConfig loads configuration for end-to-end tests: .env.test if present,
// then the yaml at the project root, with test-safe defaults for anything unset.
func LoadTestConfig(t *testing.T, store string) *config.Config {
	t.Helper()

	if err := godotenv.Load(filepath.Join(GetProjectRoot(), ".env.test")); err != nil {
		t.Logf("no .env.test loaded: %v", err)
	}
	SetupTestEnvironment(t, store)

	cfg, err := config.LoadFrom(filepath.Join(GetProjectRoot(), "config", "config.yml"))
	if err != nil {
		t.Fatalf("Failed to load test configuration: %v", err)
	}

	// fast hashing and short timers keep the suite quick
	cfg.BcryptCost = 4
	cfg.DispatchTimeout = 2 * time.Second
	cfg.SweepInterval = 0
	return cfg
}

// GetTestJWTSecret returns a deterministic JWT secret for testing
func GetTestJWTSecret() string {
	return "test-jwt-secret-for-e2e-rakshasetu"
}

// SetupTestEnvironment pins the environment overrides for the test duration
func SetupTestEnvironment(t *testing.T, store string) {
	t.Helper()

	testEnvVars := map[string]string{
		"JWT_SECRET":        GetTestJWTSecret(),
		"CHALLENGE_STORE":   store,
		"REDIS_ADDR":        "127.0.0.1:6379",
		"PORT":              "",
		"DATABASE_DSN":      "",
		"SMTP_PASSWORD":     "",
		"TWILIO_AUTH_TOKEN": "",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}
}

// GetProjectRoot returns the directory holding go.mod
func GetProjectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}

	for {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd
		}

		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}

	return "."
}
