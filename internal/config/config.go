// Package config loads gitai's settings from .gitai/settings.json, with
// .gitai/settings.local.json applied as an uncommitted overlay. Grounded on
// the teacher's cmd/entire/cli/config.go (EntireSettings/LoadEntireSettings),
// with the hand-rolled field-by-field mergeSettingsJSON replaced by
// dario.cat/mergo struct merging -- a real pack dependency doing exactly
// this job, already pulled in transitively via charmbracelet/huh.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"

	"github.com/git-ai-oss/gitai/internal/jsonutil"
	"github.com/git-ai-oss/gitai/internal/logging"
	"github.com/git-ai-oss/gitai/internal/paths"
)

// DefaultLogLevel is used when neither settings nor the GITAI_LOG_LEVEL
// environment variable specify one.
const DefaultLogLevel = "info"

// Settings represents the .gitai/settings.json configuration.
type Settings struct {
	// Enabled indicates whether gitai is active. When false, CLI commands
	// print a disabled message and hooks exit silently. Defaults to true.
	Enabled bool `json:"enabled"`

	// DefaultPreset names the agent preset (internal/agentpreset) used
	// when a command is invoked without an explicit --agent flag.
	DefaultPreset string `json:"default_preset,omitempty"`

	// LogLevel sets the logging verbosity (debug, info, warn, error).
	// Can be overridden by the GITAI_LOG_LEVEL environment variable.
	LogLevel string `json:"log_level,omitempty"`

	// Telemetry controls anonymous usage analytics.
	// nil = not asked yet (show prompt), true = opted in, false = opted out.
	Telemetry *bool `json:"telemetry,omitempty"`

	// Options carries feature-specific configuration, keyed by feature
	// name (e.g. "tabwatch" for internal/agentpreset/tabwatch's watched
	// directories and tool name).
	Options map[string]any `json:"options,omitempty"`
}

func defaults() *Settings {
	return &Settings{
		Enabled:       true,
		DefaultPreset: "generic-json",
		LogLevel:      DefaultLogLevel,
	}
}

// Load reads .gitai/settings.json, then merges .gitai/settings.local.json
// over it if that file exists. Returns default settings if neither file is
// present. Works from any subdirectory within the repository.
func Load() (*Settings, error) {
	settingsAbs, err := paths.AbsPath(paths.SettingsFile)
	if err != nil {
		settingsAbs = paths.SettingsFile
	}
	localAbs, err := paths.AbsPath(paths.SettingsLocalFile)
	if err != nil {
		localAbs = paths.SettingsLocalFile
	}

	settings, err := loadFromFile(settingsAbs)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	local, err := loadRawIfExists(localAbs)
	if err != nil {
		return nil, fmt.Errorf("reading local settings file: %w", err)
	}
	if local != nil {
		if err := mergo.Merge(settings, local, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merging local settings: %w", err)
		}
	}

	return settings, nil
}

func loadFromFile(path string) (*Settings, error) {
	settings := defaults()

	data, err := os.ReadFile(path) //nolint:gosec // path is from paths.AbsPath or a package constant
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("parsing settings file: %w", err)
	}
	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}
	return settings, nil
}

func loadRawIfExists(path string) (*Settings, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from paths.AbsPath or a package constant
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var overlay Settings
	if err := json.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("parsing local settings file: %w", err)
	}
	return &overlay, nil
}

// Save writes settings to .gitai/settings.json.
func Save(settings *Settings) error {
	return saveToFile(settings, paths.SettingsFile)
}

// SaveLocal writes settings to .gitai/settings.local.json.
func SaveLocal(settings *Settings) error {
	return saveToFile(settings, paths.SettingsLocalFile)
}

func saveToFile(settings *Settings, relPath string) error {
	abs, err := paths.AbsPath(relPath)
	if err != nil {
		abs = relPath
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o750); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}
	data, err := jsonutil.MarshalIndentWithNewline(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling settings: %w", err)
	}
	//nolint:gosec // G306: settings file is config, not secrets
	if err := os.WriteFile(abs, data, 0o644); err != nil {
		return fmt.Errorf("writing settings file: %w", err)
	}
	return nil
}

// IsEnabled returns whether gitai is currently enabled. Defaults to true if
// settings cannot be loaded, so a malformed settings file never disables the
// tool silently.
func IsEnabled() (bool, error) {
	settings, err := Load()
	if err != nil {
		return true, err
	}
	return settings.Enabled, nil
}

// GetLogLevel returns the configured log level, or "" if settings cannot be
// loaded (caller should fall back to DefaultLogLevel).
func GetLogLevel() string {
	settings, err := Load()
	if err != nil {
		return ""
	}
	return settings.LogLevel
}

// Option reads a single named entry from settings.Options, returning ok=false
// if the feature has no configuration section.
func Option(settings *Settings, feature string) (map[string]any, bool) {
	if settings == nil || settings.Options == nil {
		return nil, false
	}
	opts, ok := settings.Options[feature].(map[string]any)
	return opts, ok
}

// RegisterLogLevelGetter wires config.GetLogLevel into internal/logging, so
// GITAI_LOG_LEVEL still takes precedence but settings.json supplies the
// fallback. Kept as an explicit call (rather than an init-time import cycle)
// so commands that never touch a repository -- like --help -- don't pay for
// a settings load.
func RegisterLogLevelGetter() {
	logging.SetLogLevelGetter(GetLogLevel)
}

// LogStrategySelection is a small logging helper mirroring the teacher's
// practice of recording configuration fallbacks at info level rather than
// failing silently.
func LogStrategySelection(ctx context.Context, requested, resolved string) {
	if requested == resolved {
		return
	}
	logging.Info(ctx, "falling back to default agent preset",
		slog.String("requested", requested), slog.String("resolved", resolved))
}
