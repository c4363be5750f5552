package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 14*24*time.Hour, cfg.LoanPeriod)
	assert.True(t, cfg.RestockOnReturn)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, time.Hour, cfg.OverdueSweepInterval)
	assert.Equal(t, 5*time.Second, cfg.LockTimeout)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", " SQLite ")
	t.Setenv("LOAN_PERIOD", "72h")
	t.Setenv("RESTOCK_ON_RETURN", "false")
	t.Setenv("SESSION_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 72*time.Hour, cfg.LoanPeriod)
	assert.False(t, cfg.RestockOnReturn)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mongo")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("loan period", func(t *testing.T) {
		t.Setenv("LOAN_PERIOD", "-1h")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("lock timeout", func(t *testing.T) {
		t.Setenv("LOCK_TIMEOUT", "-1s")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "tomorrow")
		_, err := Load()
		require.Error(t, err)
	})
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LAB_TEST_ONLY_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("LAB_TEST_ONLY_KEY") })

	LoadEnv(path)
	assert.Equal(t, "from-file", os.Getenv("LAB_TEST_ONLY_KEY"))
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBHost: "db", DBPort: "5433", DBUser: "lab", DBPassword: "pw", DBName: "inv"}
	assert.Equal(t, "host=db user=lab password=pw dbname=inv port=5433 sslmode=disable", c.PostgresDSN())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.PostgresDSN())
}
