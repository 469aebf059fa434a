package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults with required env", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/cookbook")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "postgres", cfg.DatabaseDriver)
		assert.Equal(t, 168*time.Hour, cfg.JWTTTL)
		assert.Equal(t, 8, cfg.MinPasswordLength)
		assert.True(t, cfg.AllowSelfFollow)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Equal(t, 8, cfg.CleanupConcurrency)
		assert.Equal(t, 30*time.Second, cfg.CleanupTimeout)
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "sqlite")
		t.Setenv("DATABASE_URL", ":memory:")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("ALLOW_SELF_FOLLOW", "false")
		t.Setenv("CLEANUP_TIMEOUT", "5s")

		cfg, err := Load(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "sqlite", cfg.DatabaseDriver)
		assert.False(t, cfg.AllowSelfFollow)
		assert.Equal(t, 5*time.Second, cfg.CleanupTimeout)
	})

	t.Run("dotenv file", func(t *testing.T) {
		dir := t.TempDir()
		content := "DATABASE_URL=file.db\nDATABASE_DRIVER=sqlite\nJWT_SECRET=from-file\nPORT=9090\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

		cfg, err := Load(dir)
		require.NoError(t, err)

		assert.Equal(t, "from-file", cfg.JWTSecret)
		assert.Equal(t, "9090", cfg.Port)
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "postgres://localhost/cookbook")
		t.Setenv("JWT_SECRET", "")

		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("DATABASE_DRIVER", "mongo")
		t.Setenv("DATABASE_URL", "mongodb://localhost")
		t.Setenv("JWT_SECRET", "secret")

		_, err := Load(t.TempDir())
		assert.ErrorContains(t, err, "DATABASE_DRIVER")
	})
}
