package config

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bodoge")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "5200", cfg.Port)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, time.Hour, cfg.OrphanSweepInterval)
	assert.Equal(t, 5*time.Minute, cfg.AuthCacheTTL)
	assert.False(t, cfg.R2.Enabled())
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_RejectsShortSweepInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/bodoge")
	t.Setenv("ORPHAN_SWEEP_INTERVAL", "10s")

	_, err := Load()
	assert.ErrorContains(t, err, "ORPHAN_SWEEP_INTERVAL")
}

func TestConfigureLogging(t *testing.T) {
	cfg := &Config{LogLevel: "debug", LogFormat: "json"}
	require.NoError(t, cfg.ConfigureLogging())
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	cfg = &Config{LogLevel: "loud", LogFormat: "text"}
	assert.Error(t, cfg.ConfigureLogging())

	cfg = &Config{LogLevel: "info", LogFormat: "xml"}
	assert.Error(t, cfg.ConfigureLogging())
	logrus.SetLevel(logrus.InfoLevel)
}
