package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DefaultBaseURL, cfg.Source.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Source.Timeout)
	assert.Equal(t, 5, cfg.Source.MaxConcurrency)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = -1
	assert.Error(t, cfg.validate())

	cfg.Server.Port = 70000
	assert.Error(t, cfg.validate())
}

func TestValidateRejectsMissingBaseURL(t *testing.T) {
	cfg := Default()
	cfg.Source.BaseURL = ""
	assert.Error(t, cfg.validate())
}

func TestValidateNormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "both", cfg.Logging.Output)
}

func TestLoadHolidaysEmbedded(t *testing.T) {
	cfg := Default()

	holidays, err := cfg.LoadHolidays()
	require.NoError(t, err)
	require.NotEmpty(t, holidays)

	// The embedded table covers 2025 and includes Christmas.
	found := false
	for _, d := range holidays {
		assert.Equal(t, 2025, d.Year())
		if d.Month() == time.December && d.Day() == 25 {
			found = true
		}
	}
	assert.True(t, found, "embedded table should include 2025-12-25")
}

func TestLoadHolidaysFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holidays.yaml")
	content := "holidays:\n  - 2026-01-26\n  - 2026-03-03\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := Default()
	cfg.Calendar.HolidayFile = path

	holidays, err := cfg.LoadHolidays()
	require.NoError(t, err)
	require.Len(t, holidays, 2)
	assert.Equal(t, time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC), holidays[0])
}

func TestLoadHolidaysBadDate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holidays.yaml")
	require.NoError(t, os.WriteFile(path, []byte("holidays:\n  - 26-01-2026\n"), 0644))

	cfg := Default()
	cfg.Calendar.HolidayFile = path

	_, err := cfg.LoadHolidays()
	assert.Error(t, err)
}

func TestMergeConfigsEnvWins(t *testing.T) {
	fileCfg := *Default()
	fileCfg.Server.Port = 9000
	fileCfg.Source.BaseURL = "https://mirror.example.com/nsccl"

	envCfg := Config{}
	envCfg.Server.Port = 8081

	merged := mergeConfigs(fileCfg, envCfg)
	assert.Equal(t, 8081, merged.Server.Port)
	assert.Equal(t, "https://mirror.example.com/nsccl", merged.Source.BaseURL)
}
