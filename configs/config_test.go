package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: test-secret
database:
  driver: postgres
  host: db
  port: "5432"
mood:
  timezone: Asia/Tokyo
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 24, cfg.JWT.ExpiresIn)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 60, cfg.Server.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.Server.RateLimit.Window)
	assert.Equal(t, 168, cfg.Mood.LookbackHours)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "metric", cfg.APIs.OpenWeather.Units)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Tokyo", loc.String())
}

func TestLoadFileEnvOverride(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: from-file
`)
	t.Setenv("MOOD_JWT_SECRET", "from-env")
	t.Setenv("MOOD_APIS_TMDB_API_KEY", "tmdb-key")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "tmdb-key", cfg.APIs.TMDB.APIKey)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Server:   Server{Mode: "release"},
		JWT:      JWT{Secret: "s"},
		Database: Database{Driver: "sqlite"},
		Mood:     Mood{Timezone: "UTC", LookbackHours: 168},
	}
	assert.NoError(t, cfg.Validate())

	bad := cfg
	bad.JWT.Secret = ""
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Database.Driver = "oracle"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Mood.Timezone = "Mars/Olympus_Mons"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Mood.LookbackHours = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Server.Mode = "verbose"
	assert.Error(t, bad.Validate())
}
