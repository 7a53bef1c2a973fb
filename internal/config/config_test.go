package config

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/git-ai-oss/gitai/internal/paths"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cmd := exec.Command("git", "init")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(cwd)
		paths.ResetCache()
	})
	paths.ResetCache()
	return dir
}

func TestLoadReturnsDefaultsWhenNoFilesExist(t *testing.T) {
	initRepo(t)

	settings, err := Load()
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.Equal(t, DefaultLogLevel, settings.LogLevel)
	assert.Nil(t, settings.Telemetry)
}

func TestLoadReadsBaseSettingsFile(t *testing.T) {
	dir := initRepo(t)
	writeSettings(t, dir, paths.SettingsFile, `{"enabled": false, "log_level": "debug"}`)

	settings, err := Load()
	require.NoError(t, err)
	assert.False(t, settings.Enabled)
	assert.Equal(t, "debug", settings.LogLevel)
}

func TestLoadMergesLocalOverlayOverBase(t *testing.T) {
	dir := initRepo(t)
	writeSettings(t, dir, paths.SettingsFile, `{"enabled": true, "log_level": "info", "default_preset": "claude-code"}`)
	writeSettings(t, dir, paths.SettingsLocalFile, `{"log_level": "debug"}`)

	settings, err := Load()
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.Equal(t, "debug", settings.LogLevel)
	assert.Equal(t, "claude-code", settings.DefaultPreset)
}

func TestLoadLocalTelemetryOverridesBase(t *testing.T) {
	dir := initRepo(t)
	writeSettings(t, dir, paths.SettingsFile, `{"telemetry": true}`)
	writeSettings(t, dir, paths.SettingsLocalFile, `{"telemetry": false}`)

	settings, err := Load()
	require.NoError(t, err)
	require.NotNil(t, settings.Telemetry)
	assert.False(t, *settings.Telemetry)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	initRepo(t)

	settings := defaults()
	settings.DefaultPreset = "tabwatch"
	require.NoError(t, Save(settings))

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tabwatch", loaded.DefaultPreset)
}

func TestOptionReturnsFeatureSection(t *testing.T) {
	settings := &Settings{Options: map[string]any{
		"tabwatch": map[string]any{"tool": "copilot"},
	}}
	opts, ok := Option(settings, "tabwatch")
	require.True(t, ok)
	assert.Equal(t, "copilot", opts["tool"])

	_, ok = Option(settings, "missing")
	assert.False(t, ok)
}

func writeSettings(t *testing.T, repoDir, relPath, content string) {
	t.Helper()
	abs := filepath.Join(repoDir, relPath)
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o750))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}
