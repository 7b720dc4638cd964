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
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://agmarknet.gov.in/PriceAndArrivals/DatewiseCommodityReport.aspx", cfg.Source.ReportURL)
	assert.Equal(t, "https://api.allorigins.win/get", cfg.Source.ProxyURL)
	assert.Equal(t, 30, cfg.Source.TimeoutSecs)
	assert.Equal(t, "http://localhost:5000", cfg.Scraper.BaseURL)
	assert.Equal(t, 30, cfg.Scraper.TimeoutSecs)
	assert.Equal(t, 90, cfg.Scraper.BatchTimeoutSecs)
	assert.Equal(t, "https://api.data.gov.in", cfg.OGD.BaseURL)
	assert.Equal(t, 2, cfg.Batch.ChunkSize)
	assert.Equal(t, 3, cfg.Batch.ChunkDelaySecs)
	assert.Equal(t, 3*time.Second, cfg.Batch.ChunkDelay())
	assert.Equal(t, "mandi.db", cfg.Store.DSN)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
scraper:
  base_url: http://10.0.2.2:5000
batch:
  chunk_size: 4
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.2.2:5000", cfg.Scraper.BaseURL)
	assert.Equal(t, 4, cfg.Batch.ChunkSize)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 3, cfg.Batch.ChunkDelaySecs)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("MANDI_LOG_LEVEL", "warn")
	t.Setenv("MANDI_OGD_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "test-key", cfg.OGD.Key)
}

func TestInitLoggerBadLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "nope", Format: "json"})
	assert.Error(t, err)
}
