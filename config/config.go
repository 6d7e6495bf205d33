package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/sonicstage/stage"
)

// DefaultFile is looked up in the working directory when no -config flag is
// given.
const DefaultFile = "stagec.yaml"

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	// OutputDir receives exported files. Empty writes next to the input map.
	OutputDir string      `yaml:"output_dir"`
	Format    string      `yaml:"format"`
	Lint      LintSpec    `yaml:"lint"`
	Preview   PreviewSpec `yaml:"preview"`
}

type LintSpec struct {
	Enabled bool `yaml:"enabled"`
	// Script is a tengo file; empty uses the built-in rules.
	Script string `yaml:"script"`
}

type PreviewSpec struct {
	Enabled   bool   `yaml:"enabled"`
	Sheet     string `yaml:"sheet"`
	Scale     int    `yaml:"scale"`
	Collision bool   `yaml:"collision"`
	Objects   bool   `yaml:"objects"`
}

func Default() *Config {
	return &Config{
		Format: stage.FormatName,
		Lint:   LintSpec{Enabled: true},
		Preview: PreviewSpec{
			Scale: 1,
		},
	}
}

// Load reads a YAML config on top of Default. A missing file at DefaultFile
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Format) == "" {
		return fmt.Errorf("%w: format is required", ErrInvalid)
	}
	if c.Preview.Scale < 1 || c.Preview.Scale > 16 {
		return fmt.Errorf("%w: preview scale %d not in [1,16]", ErrInvalid, c.Preview.Scale)
	}
	return nil
}

// OutputPath returns where the export of input goes, using ext for the
// exported file's extension.
func (c *Config) OutputPath(input, ext string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input)) + "." + strings.TrimPrefix(ext, ".")
	dir := c.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base)
}
