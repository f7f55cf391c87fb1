package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const defaultConfigFile = ".buildpush.yml"

// Config is the top-level buildpush configuration.
type Config struct {
	Build Inputs `yaml:"build"`

	// EnvFile is an optional dotenv file loaded before secret resolution.
	EnvFile string `yaml:"env-file"`
}

// Load reads configuration from a YAML or TOML file, selected by extension.
// If path is empty, it tries the default file.
// Returns sensible defaults if the file doesn't exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			return defaults(), nil
		}
		return nil, err
	}

	cfg := defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := unmarshalTOML(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	return cfg, nil
}

// unmarshalTOML decodes TOML config through a generic map and re-encodes it
// as YAML, so the scalar-or-sequence list handling lives in one place (the
// List/RawList YAML unmarshalers). Decoding TOML straight into those types
// would lose array values: go-toml only routes string values through custom
// unmarshaling.
func unmarshalTOML(data []byte, cfg *Config) error {
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	normalized, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(normalized, cfg)
}

func defaults() *Config {
	return &Config{}
}
