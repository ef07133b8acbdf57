// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("JWT_SECRET", "test-secret")
}

func TestParseFlags_EnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("MAX_GRANT_AMOUNT_CENTS", "100000")
	t.Setenv("COLLABORATOR_TIMEOUT", "3s")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, int64(100000), cfg.MaxGrantAmountCents)
	assert.Equal(t, 3*time.Second, cfg.CollaboratorTimeout)
}

func TestParseFlags_Defaults(t *testing.T) {
	setRequiredEnv(t)
	for _, key := range []string{"PORT", "DATABASE_TYPE", "COLLABORATOR_TIMEOUT", "CONTACTS_CACHE_SIZE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 3318, cfg.Port)
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, 10*time.Second, cfg.CollaboratorTimeout)
	assert.Equal(t, 1024, cfg.ContactsCacheSize)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-d", "file:other.db", "-jwt-secret", "s1", "-max-amount", "2500"})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "file:other.db", cfg.DatabaseURL)
	assert.Equal(t, "s1", cfg.JWTSecret)
	assert.Equal(t, int64(2500), cfg.MaxGrantAmountCents)
}

func TestParseFlags_MissingRequired(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": "", "JWT_SECRET": "s"}},
		{"missing jwt secret", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": ""}},
		{"bad database type", map[string]string{"DATABASE_URL": "file:x.db", "JWT_SECRET": "s", "DATABASE_TYPE": "mysql"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseFlags([]string{})
			assert.Error(t, err)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MICROGRANTS_DOTENV_CHECK=loaded\n"), 0o600))
	t.Setenv("MICROGRANTS_DOTENV_CHECK", "")
	os.Unsetenv("MICROGRANTS_DOTENV_CHECK")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "loaded", os.Getenv("MICROGRANTS_DOTENV_CHECK"))

	// missing files are ignored
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "nope.env")))
}
