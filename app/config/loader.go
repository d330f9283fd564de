package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of source configurations
type Loader struct {
	sourcesDir string
}

func NewLoader(sourcesDir string) *Loader {
	return &Loader{sourcesDir: sourcesDir}
}

// LoadAll loads all YAML configuration files from the sources directory,
// keyed by source name.
func (l *Loader) LoadAll() (map[string]*SourceConfig, error) {
	configs := make(map[string]*SourceConfig)

	if _, err := os.Stat(l.sourcesDir); os.IsNotExist(err) {
		return configs, nil
	}

	files, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", file, err)
		}

		if _, exists := configs[config.Source.Name]; exists {
			return nil, fmt.Errorf("duplicate source name %q in %s", config.Source.Name, file)
		}

		configs[config.Source.Name] = config
		slog.Debug("Loaded source configuration", "file", file, "source", config.Source.Name)
	}

	return configs, nil
}

func (l *Loader) loadFile(path string) (*SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&config)

	return &config, nil
}

func (l *Loader) setDefaults(config *SourceConfig) {
	if config.Source.Type == "" {
		config.Source.Type = "rss"
	}
	if config.Source.Language == "" {
		config.Source.Language = "en"
	}
	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = 3600 // seconds
	}
	if config.Settings.MaxItems == 0 {
		config.Settings.MaxItems = 100
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30 // seconds
	}
}

func (l *Loader) validate(config *SourceConfig) error {
	if config.Source.Name == "" {
		return fmt.Errorf("source name is required")
	}
	if config.Source.URL == "" {
		return fmt.Errorf("source URL is required")
	}
	if config.Source.Type != "rss" {
		return fmt.Errorf("unsupported source type: %s", config.Source.Type)
	}
	if config.Settings.Priority < 0 {
		return fmt.Errorf("priority must not be negative")
	}
	return nil
}
