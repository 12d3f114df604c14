// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/javiermolinar/gridshift/internal/grid"
	"github.com/javiermolinar/gridshift/internal/layout"
	"github.com/javiermolinar/gridshift/internal/validity"
)

// Config holds the application configuration.
type Config struct {
	Grid      GridConfig      `toml:"grid"`
	Workspace WorkspaceConfig `toml:"workspace"`
	Packages  PackagesConfig  `toml:"packages"`
	Storage   StorageConfig   `toml:"storage"`
	UI        UIConfig        `toml:"ui"`
}

// GridConfig is the target geometry a migration moves the layout to.
type GridConfig struct {
	Columns int `toml:"columns"`
	Rows    int `toml:"rows"`
	Hotseat int `toml:"hotseat"` // number of hotseat slots
}

// WorkspaceConfig holds workspace placement settings.
type WorkspaceConfig struct {
	FirstScreen  int64 `toml:"first_screen"`  // screen whose top rows are reserved
	ReservedRows int   `toml:"reserved_rows"` // e.g., 1 for a search bar
}

// PackagesConfig lists the packages items may point at.
// Both empty means every package is considered installed.
type PackagesConfig struct {
	Installed []string `toml:"installed"` // e.g., ["com.android.chrome"]
	Patterns  []string `toml:"patterns"`  // e.g., ["com.google.**"]
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "mocha", "latte"
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Columns: 5,
			Rows:    5,
			Hotseat: 5,
		},
		Workspace: WorkspaceConfig{
			FirstScreen:  0,
			ReservedRows: 0,
		},
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "mocha",
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gridshift.db"
	}
	return filepath.Join(home, ".local", "share", "gridshift", "gridshift.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "gridshift", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"GRIDSHIFT_COLUMNS", &cfg.Grid.Columns},
		{"GRIDSHIFT_ROWS", &cfg.Grid.Rows},
		{"GRIDSHIFT_HOTSEAT", &cfg.Grid.Hotseat},
		{"GRIDSHIFT_RESERVED_ROWS", &cfg.Workspace.ReservedRows},
	}
	for _, e := range ints {
		v := os.Getenv(e.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", e.name, err)
		}
		*e.dst = n
	}

	if v := os.Getenv("GRIDSHIFT_FIRST_SCREEN"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing GRIDSHIFT_FIRST_SCREEN: %w", err)
		}
		cfg.Workspace.FirstScreen = n
	}

	if v := os.Getenv("GRIDSHIFT_PACKAGES"); v != "" {
		cfg.Packages.Installed = splitList(v)
	}
	if v := os.Getenv("GRIDSHIFT_PACKAGE_PATTERNS"); v != "" {
		cfg.Packages.Patterns = splitList(v)
	}

	if v := os.Getenv("GRIDSHIFT_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}

	if v := os.Getenv("GRIDSHIFT_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Grid.Columns < 1 || c.Grid.Rows < 1 {
		return fmt.Errorf("grid must be at least 1x1, got %dx%d", c.Grid.Columns, c.Grid.Rows)
	}
	if c.Grid.Hotseat < 0 {
		return fmt.Errorf("hotseat must not be negative, got %d", c.Grid.Hotseat)
	}
	if c.Workspace.ReservedRows < 0 {
		return fmt.Errorf("reserved_rows must not be negative, got %d", c.Workspace.ReservedRows)
	}
	if c.Workspace.ReservedRows >= c.Grid.Rows {
		return fmt.Errorf("reserved_rows must be less than rows (%d)", c.Grid.Rows)
	}
	if _, err := c.Validity(); err != nil {
		return err
	}
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if !isValidTheme(c.UI.Theme) {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}
	return nil
}

var validThemes = map[string]bool{
	"mocha": true,
	"latte": true,
}

func isValidTheme(name string) bool {
	return validThemes[strings.ToLower(name)]
}

// Target returns the configured target geometry.
func (c *Config) Target() layout.Geometry {
	return layout.Geometry{
		Workspace: grid.Size{Width: c.Grid.Columns, Height: c.Grid.Rows},
		Hotseat:   c.Grid.Hotseat,
	}
}

// Validity builds the set of valid packages.
func (c *Config) Validity() (*validity.Set, error) {
	return validity.New(c.Packages.Installed, c.Packages.Patterns)
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
