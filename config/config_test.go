package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_DefaultsAndEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BOARD_MAX_PAGE_SIZE", "50")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "s3cret", cfg.App.JWTSecret)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.AllowedOrigins)
	assert.Equal(t, 50, cfg.Board.MaxPageSize)
	assert.Equal(t, 20, cfg.Board.DefaultPageSize)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 50, cfg.Storage.MaxUploadMB)
	assert.Equal(t, "release", cfg.Gin.Mode)
	assert.Equal(t, filepath.Join(os.TempDir(), "prierboard-staging"), cfg.Storage.StagingDir)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"app": {"port": "7000", "jwt_secret": "from-file"}, "storage": {"driver": "gcs", "bucket": "media"}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7001", cfg.App.Port)
	assert.Equal(t, "from-file", cfg.App.JWTSecret)
	assert.Equal(t, "gcs", cfg.Storage.Driver)
	assert.Equal(t, "media", cfg.Storage.Bucket)
}

func TestLoad_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	t.Setenv("JWT_SECRET", "x")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDialectorFor_Unknown(t *testing.T) {
	_, err := dialectorFor(DatabaseSection{Driver: "oracle"})
	assert.Error(t, err)
}
