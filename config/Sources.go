package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/reaandrew/lintdetector/core"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFor picks the decoder from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unsupported config file extension: %s", path)
}

// Parse decodes one config document.
func Parse(data []byte, format Format) (*Config, error) {
	values := map[string]any{}
	switch format {
	case FormatYAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return Empty(), nil
		}
		if err := yaml.Unmarshal(data, &values); err != nil {
			return nil, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &values); err != nil {
			return nil, fmt.Errorf("failed to parse toml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config format: %s", format)
	}
	return New(values), nil
}

// Load reads a config file. Missing files, directories and undecodable content
// are reported as *core.ConfigurationError.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, core.NewConfigurationError("configuration file '%s' does not exist", path)
	}
	if err != nil {
		return nil, &core.ConfigurationError{Messages: []string{fmt.Sprintf("cannot access configuration file '%s'", path)}, Err: err}
	}
	if info.IsDir() {
		return nil, core.NewConfigurationError("configuration path '%s' is not a file", path)
	}

	format, err := FormatFor(path)
	if err != nil {
		return nil, &core.ConfigurationError{Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.ConfigurationError{Messages: []string{fmt.Sprintf("cannot read configuration file '%s'", path)}, Err: err}
	}

	cfg, err := Parse(data, format)
	if err != nil {
		return nil, &core.ConfigurationError{Messages: []string{path}, Err: err}
	}
	log.WithField("path", path).Debug("Loaded configuration")
	return cfg, nil
}

// LoadAll loads every path and merges them in order.
func LoadAll(paths []string) (*Config, error) {
	sources := make([]*Config, 0, len(paths))
	for _, path := range paths {
		cfg, err := Load(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, cfg)
	}
	return Merge(sources...), nil
}
