package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "svg", cfg.Reports.DotFormat)
	assert.True(t, cfg.Reports.Facts)
	assert.Zero(t, cfg.Parallelism)
	assert.Empty(t, cfg.Analyses)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
parallelism: 4
log-level: debug
analyses: [live, pointer]
reports:
  dir: out
  dot-format: png
  facts: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"live", "pointer"}, cfg.Analyses)
	assert.Equal(t, "out", cfg.Reports.Dir)
	assert.Equal(t, "png", cfg.Reports.DotFormat)
	assert.False(t, cfg.Reports.Facts)
}

func TestLoadKeepsDefaultsForOmittedKeys(t *testing.T) {
	cfg, err := Load(writeConfig(t, "parallelism: 2\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "svg", cfg.Reports.DotFormat)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "paralellism: 4\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	prev := logrus.GetLevel()
	defer logrus.SetLevel(prev)

	cfg := Default()
	cfg.LogLevel = "warning"
	require.NoError(t, cfg.Apply())
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())

	cfg.LogLevel = "verbose"
	assert.Error(t, cfg.Apply())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spar.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
