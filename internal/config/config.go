package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the flit configuration.
type Config struct {
	Search  SearchConfig  `yaml:"search"`
	Launch  LaunchConfig  `yaml:"launch"`
	Ranking RankingConfig `yaml:"ranking"`
}

// SearchConfig holds filesystem search settings.
type SearchConfig struct {
	Root       string   `yaml:"root"`        // Root directory for file search (default: home)
	MaxResults int      `yaml:"max_results"` // Maximum displayed results per search
	MaxDepth   int      `yaml:"max_depth"`   // Maximum walk depth below the root (0 = unlimited)
	ShowHidden bool     `yaml:"show_hidden"` // Include dot-prefixed entries
	IgnoreDirs []string `yaml:"ignore_dirs"` // Directory names skipped during the walk
	DebounceMs int      `yaml:"debounce_ms"` // Delay after last keystroke before a walk starts
}

// LaunchConfig holds settings for how selections are launched.
type LaunchConfig struct {
	Editor   string `yaml:"editor"`   // Editor command for opening files
	Terminal string `yaml:"terminal"` // Terminal emulator prefix for terminal apps, e.g. "kitty -e"
}

// RankingConfig holds the usage-frequency weighting applied on top of
// fuzzy scores. The bonus is launch_weight per recorded launch, capped at
// launch_cap launches, so an exact fuzzy match can still outrank a
// frequently used weak match.
type RankingConfig struct {
	LaunchWeight int `yaml:"launch_weight"` // Score bonus per recorded launch
	LaunchCap    int `yaml:"launch_cap"`    // Launch count beyond which the bonus stops growing
	DormantDays  int `yaml:"dormant_days"`  // Hide apps unused this long (0 = never hide)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Root:       homeDir(),
			MaxResults: 50,
			MaxDepth:   8,
			ShowHidden: false,
			IgnoreDirs: []string{".git", "node_modules", "target", ".cache", "__pycache__"},
			DebounceMs: 60,
		},
		Launch: LaunchConfig{
			Editor:   "vi",
			Terminal: "xterm -e",
		},
		Ranking: RankingConfig{
			LaunchWeight: 15,
			LaunchCap:    20,
			DormantDays:  30,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the config.
// FLIT_ROOT overrides the search root, FLIT_EDITOR (then EDITOR) the
// editor, and FLIT_TERMINAL (then TERMINAL) the terminal prefix.
func (c *Config) ApplyEnvOverrides() {
	if root := os.Getenv("FLIT_ROOT"); root != "" {
		c.Search.Root = root
	}
	if editor := os.Getenv("FLIT_EDITOR"); editor != "" {
		c.Launch.Editor = editor
	} else if editor := os.Getenv("EDITOR"); editor != "" {
		c.Launch.Editor = editor
	}
	if term := os.Getenv("FLIT_TERMINAL"); term != "" {
		c.Launch.Terminal = term
	} else if term := os.Getenv("TERMINAL"); term != "" {
		c.Launch.Terminal = term
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Search.Root) == "" {
		return fmt.Errorf("search.root must not be empty")
	}
	if c.Search.MaxResults < 1 {
		return fmt.Errorf("search.max_results must be at least 1 (got %d)", c.Search.MaxResults)
	}
	if c.Search.MaxDepth < 0 {
		return fmt.Errorf("search.max_depth must not be negative (got %d)", c.Search.MaxDepth)
	}
	if c.Search.DebounceMs < 0 {
		return fmt.Errorf("search.debounce_ms must not be negative (got %d)", c.Search.DebounceMs)
	}
	if strings.TrimSpace(c.Launch.Editor) == "" {
		return fmt.Errorf("launch.editor must not be empty")
	}
	if strings.TrimSpace(c.Launch.Terminal) == "" {
		return fmt.Errorf("launch.terminal must not be empty")
	}
	if c.Ranking.LaunchWeight < 0 {
		return fmt.Errorf("ranking.launch_weight must not be negative (got %d)", c.Ranking.LaunchWeight)
	}
	if c.Ranking.LaunchCap < 0 {
		return fmt.Errorf("ranking.launch_cap must not be negative (got %d)", c.Ranking.LaunchCap)
	}
	if c.Ranking.DormantDays < 0 {
		return fmt.Errorf("ranking.dormant_days must not be negative (got %d)", c.Ranking.DormantDays)
	}
	return nil
}
