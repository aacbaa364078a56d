// Package config loads extraction settings from JSON, YAML, TOML or KDL files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/DeusData/i18n-extract/internal/discover"
	"github.com/DeusData/i18n-extract/internal/errors"
	"github.com/DeusData/i18n-extract/internal/registry"
)

// DefaultNames are probed, in order, when no config path is given.
var DefaultNames = []string{
	".i18n-extract.json",
	".i18n-extract.yaml",
	".i18n-extract.yml",
	".i18n-extract.toml",
	".i18n-extract.kdl",
}

// Config holds everything a run needs besides the files themselves.
type Config struct {
	// Base is the directory files are selected from. Relative values in a
	// config file are resolved against the file's directory.
	Base    string   `yaml:"base" toml:"base"`
	Include []string `yaml:"include" toml:"include"`
	Exclude []string `yaml:"exclude" toml:"exclude"`
	// Functions replaces the default gettext signatures when non-empty.
	Functions registry.Table `yaml:"functions" toml:"functions"`
	// Workers bounds parallel parsing; 0 means one per CPU.
	Workers int  `yaml:"workers" toml:"workers"`
	Lenient bool `yaml:"lenient" toml:"lenient"`
	// Database is the SQLite file runs are recorded in; empty disables it.
	Database    string `yaml:"database" toml:"database"`
	MetricsFile string `yaml:"metrics_file" toml:"metrics_file"`
	// Similarity is the Jaro-Winkler threshold for near-duplicate warnings;
	// 0 disables the check.
	Similarity float64 `yaml:"similarity" toml:"similarity"`

	// Path is the file the config was read from, if any.
	Path string `yaml:"-" toml:"-"`
}

// Default returns the configuration used without a config file.
func Default() *Config {
	return &Config{Base: "."}
}

// Find returns the first default config file present in dir, or "".
func Find(dir string) string {
	for _, name := range DefaultNames {
		p := filepath.Join(dir, name)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p
		}
	}
	return ""
}

// Load reads a config file, choosing the decoder by extension.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewConfigError("config", path, err)
	}
	cfg, err := Parse(filepath.Ext(path), data)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	if cfg.Base == "" {
		cfg.Base = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.Base) {
		cfg.Base = filepath.Join(filepath.Dir(path), cfg.Base)
	}
	cfg.Base = filepath.Clean(cfg.Base)
	return cfg, nil
}

// Parse decodes config data in the format named by ext (".json", ".yaml",
// ".yml", ".toml" or ".kdl").
func Parse(ext string, data []byte) (*Config, error) {
	cfg := &Config{}
	var err error
	switch strings.ToLower(ext) {
	case ".json", ".yaml", ".yml":
		// JSON is valid YAML
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".kdl":
		cfg, err = parseKDL(string(data))
	default:
		return nil, errors.NewConfigError("config", ext, fmt.Errorf("unsupported config format"))
	}
	if err != nil {
		return nil, errors.NewConfigError("config", ext, err)
	}
	return cfg, nil
}

// Validate checks settings that can be checked without touching the file
// system beyond the function table.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.NewConfigError("workers", fmt.Sprint(c.Workers), fmt.Errorf("must be >= 0"))
	}
	if c.Similarity < 0 || c.Similarity > 1 {
		return errors.NewConfigError("similarity", fmt.Sprint(c.Similarity), fmt.Errorf("must be within [0, 1]"))
	}
	if err := discover.ValidatePatterns("include", c.Include); err != nil {
		return err
	}
	if err := discover.ValidatePatterns("exclude", c.Exclude); err != nil {
		return err
	}
	_, err := c.Registry()
	return err
}

// Registry builds the signature registry: the configured table, or the
// gettext defaults when none is set.
func (c *Config) Registry() (*registry.Registry, error) {
	if len(c.Functions) == 0 {
		return registry.Default(), nil
	}
	return registry.New(c.Functions)
}
