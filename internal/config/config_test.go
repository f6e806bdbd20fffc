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
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.App.Environment)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, 5000, cfg.Files.ExportMaxRows)

	ttl, err := cfg.JWT.TTL()
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, ttl)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  port: 9000
  environment: test
rate_limit:
  requests: 20
  window: 1m
`), 0o600))

	t.Setenv("PORT", "7000")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/registry?sslmode=disable")
	t.Setenv("JWT_EXPIRES_IN", "12h")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.App.Port, "flat PORT wins over the file")
	assert.Equal(t, EnvTest, cfg.App.Environment)
	assert.Equal(t, 20, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, "postgres://u:p@db:5432/registry?sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)

	ttl, err := cfg.JWT.TTL()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Hour, ttl)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	t.Run("production rejects default secret", func(t *testing.T) {
		cfg := base()
		cfg.App.Environment = EnvProduction
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret")
	})

	t.Run("production accepts strong secret", func(t *testing.T) {
		cfg := base()
		cfg.App.Environment = EnvProduction
		cfg.JWT.Secret = "0123456789abcdef0123456789abcdef"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("non-positive limits", func(t *testing.T) {
		cfg := base()
		cfg.RateLimit.Requests = 0
		cfg.Files.MaxUploadMB = 0
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate_limit")
		assert.Contains(t, err.Error(), "files.max_upload_mb")
	})

	t.Run("bad expiry", func(t *testing.T) {
		cfg := base()
		cfg.JWT.ExpiresIn = "soon"
		assert.Error(t, cfg.Validate())
	})
}

func TestDatabaseDSNFromFields(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", c.DSN())
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("7d")
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, d)

	d, err = ParseDuration("90m")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)

	_, err = ParseDuration("xd")
	assert.Error(t, err)
}
