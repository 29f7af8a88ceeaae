package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Load parses a configuration file into a single layer, the codec
// picked from the file extension: .yaml/.yml, .toml, or .json/.jsonc.
// JSON files may carry comments and trailing commas.
func Load(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	layer := make(map[string]any)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &layer); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &layer); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &layer); err != nil {
			return nil, fmt.Errorf("config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("config %s: unsupported format %q", path, ext)
	}

	return layer, nil
}

// LoadFile parses the file and merges it as the newest layer.
func (c *Config) LoadFile(path string) error {
	layer, err := Load(path)
	if err != nil {
		return err
	}

	c.Merge(layer)

	return nil
}
