package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseImage = "golang:1.21"
	DefaultWorkdir   = "/app"

	appName = "llm-go-pipeline"
)

// Settings holds the knobs that are not prompts. Prompts can only be
// overridden through the environment.
type Settings struct {
	// LLM model passed to the engine. Empty lets the engine pick its default.
	Model string `yaml:"model,omitempty"`
	// Upper bound on LLM API calls per agent run. Zero means no limit.
	MaxAPICalls int `yaml:"maxAPICalls,omitempty"`
	// Image the code-generation agent builds in.
	BaseImage string `yaml:"baseImage,omitempty"`
	// Working directory inside BaseImage.
	Workdir string `yaml:"workdir,omitempty"`
	// Location of the report history database.
	HistoryPath string `yaml:"historyPath,omitempty"`
}

func DefaultSettings() Settings {
	return Settings{
		BaseImage:   DefaultBaseImage,
		Workdir:     DefaultWorkdir,
		HistoryPath: DefaultHistoryPath(),
	}
}

// DefaultHistoryPath is where reports are kept unless settings say otherwise.
func DefaultHistoryPath() string {
	return filepath.Join(xdg.DataHome, appName, "history.db")
}

// DefaultSettingsPath is read when no settings file is named explicitly.
func DefaultSettingsPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// LoadSettings reads a YAML settings file on top of DefaultSettings. A
// missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if settings.MaxAPICalls < 0 {
		return settings, fmt.Errorf("parse settings %s: maxAPICalls must not be negative", path)
	}
	return settings, nil
}
