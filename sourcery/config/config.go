package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

const (
	EnvPrefix            = "SOURCERY_"
	DefaultOutputPattern = "{dir}/{name}_{collection}{ext}"
)

// Config holds the settings of a run. Values come from, in increasing
// priority: defaults, the TOML file, the environment (SOURCERY_*), flags.
type Config struct {
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	// glTF file produced by the exporter
	Input string `toml:"input" env:"INPUT"`
	// Defaults to Input
	Output string `toml:"output" env:"OUTPUT"`
	// auto, gltf or glb
	Format string `toml:"format" env:"FORMAT"`
	// TOML sidecar holding collection and object metadata
	Scene string `toml:"scene" env:"SCENE"`
	// Collection currently being exported
	Collection string `toml:"collection" env:"COLLECTION"`
	Watch      bool   `toml:"watch" env:"WATCH"`

	// Export every collection of the sidecar instead of Collection
	All bool `toml:"all" env:"ALL"`
	// Output name per collection in All mode. Placeholders: {dir}, {name}
	// and {ext} of the output path, {collection}.
	OutputPattern string `toml:"output_pattern" env:"OUTPUT_PATTERN"`

	Games      []Game `toml:"games"`
	ActiveGame string `toml:"active_game" env:"ACTIVE_GAME"`
}

func Default() *Config {
	return &Config{
		LogLevel:      "info",
		Format:        "auto",
		OutputPattern: DefaultOutputPattern,
	}
}

// Load reads path (optional) and applies .env and environment overrides.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFile reads only defaults and the TOML file, for editing and saving
// back without picking up the environment. A missing file yields defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
		}
	}
	return cfg, nil
}

func (c *Config) OutputPath() string {
	if c.Output == "" {
		return c.Input
	}
	return c.Output
}

// CollectionOutput expands OutputPattern for one collection. Path
// separators in the collection name are replaced.
func (c *Config) CollectionOutput(collection string) string {
	out := c.OutputPath()
	ext := filepath.Ext(out)
	pattern := c.OutputPattern
	if pattern == "" {
		pattern = DefaultOutputPattern
	}
	r := strings.NewReplacer(
		"{dir}", filepath.Dir(out),
		"{name}", strings.TrimSuffix(filepath.Base(out), ext),
		"{ext}", ext,
		"{collection}", strings.NewReplacer("/", "_", "\\", "_").Replace(collection),
	)
	return filepath.Clean(r.Replace(pattern))
}

func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Validate() error {
	if c.Input == "" {
		return errors.New("input glTF file is required")
	}
	if c.Scene == "" {
		return errors.New("scene metadata file is required")
	}
	if _, err := c.Game(); err != nil {
		return err
	}
	return nil
}
