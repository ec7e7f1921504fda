package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Search.MaxResults != 50 {
		t.Errorf("MaxResults = %d, want 50", cfg.Search.MaxResults)
	}
	if cfg.Search.DebounceMs != 60 {
		t.Errorf("DebounceMs = %d, want 60", cfg.Search.DebounceMs)
	}
	if cfg.Search.ShowHidden {
		t.Error("hidden entries must be excluded by default")
	}
	if cfg.Search.Root == "" {
		t.Error("Root must default to a real directory")
	}
	if cfg.Ranking.DormantDays != 30 {
		t.Errorf("DormantDays = %d, want 30", cfg.Ranking.DormantDays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadFromFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Search.MaxResults != 50 {
		t.Errorf("MaxResults = %d, want default", cfg.Search.MaxResults)
	}
}

func TestLoadFromFile_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `search:
  max_results: 25
  ignore_dirs: [".git", "build"]
launch:
  terminal: "alacritty -e"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Search.MaxResults != 25 {
		t.Errorf("MaxResults = %d, want 25", cfg.Search.MaxResults)
	}
	if cfg.Launch.Terminal != "alacritty -e" {
		t.Errorf("Terminal = %q", cfg.Launch.Terminal)
	}
	// Untouched fields keep their defaults.
	if cfg.Search.DebounceMs != 60 {
		t.Errorf("DebounceMs = %d, want default", cfg.Search.DebounceMs)
	}
	if len(cfg.Search.IgnoreDirs) != 2 {
		t.Errorf("IgnoreDirs = %v", cfg.Search.IgnoreDirs)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadFromFile_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("search:\n  max_results: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFromFile(path)
	if err == nil || !strings.Contains(err.Error(), "max_results") {
		t.Fatalf("err = %v, want max_results validation failure", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FLIT_ROOT", "/srv/files")
	t.Setenv("FLIT_EDITOR", "hx")
	t.Setenv("EDITOR", "nano")
	t.Setenv("FLIT_TERMINAL", "")
	t.Setenv("TERMINAL", "foot")

	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if cfg.Search.Root != "/srv/files" {
		t.Errorf("Root = %q", cfg.Search.Root)
	}
	if cfg.Launch.Editor != "hx" {
		t.Errorf("Editor = %q, FLIT_EDITOR outranks EDITOR", cfg.Launch.Editor)
	}
	if cfg.Launch.Terminal != "foot" {
		t.Errorf("Terminal = %q, TERMINAL applies when FLIT_TERMINAL is unset", cfg.Launch.Terminal)
	}
}

func TestEnvOverrides_EditorFallback(t *testing.T) {
	t.Setenv("FLIT_EDITOR", "")
	t.Setenv("EDITOR", "nano")

	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	if cfg.Launch.Editor != "nano" {
		t.Errorf("Editor = %q, want EDITOR fallback", cfg.Launch.Editor)
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Search.MaxResults = 33
	cfg.Launch.Editor = "kak"
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if loaded.Search.MaxResults != 33 || loaded.Launch.Editor != "kak" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Search.Root = " " }},
		{"zero max results", func(c *Config) { c.Search.MaxResults = 0 }},
		{"negative depth", func(c *Config) { c.Search.MaxDepth = -1 }},
		{"negative debounce", func(c *Config) { c.Search.DebounceMs = -5 }},
		{"empty editor", func(c *Config) { c.Launch.Editor = "" }},
		{"empty terminal", func(c *Config) { c.Launch.Terminal = "" }},
		{"negative weight", func(c *Config) { c.Ranking.LaunchWeight = -1 }},
		{"negative cap", func(c *Config) { c.Ranking.LaunchCap = -1 }},
		{"negative dormant days", func(c *Config) { c.Ranking.DormantDays = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPaths_XDGOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	p := DefaultPaths()
	if p.ConfigDir != "/tmp/xdg-config/flit" {
		t.Errorf("ConfigDir = %q", p.ConfigDir)
	}
	if p.DatabaseFile() != "/tmp/xdg-data/flit/usage.db" {
		t.Errorf("DatabaseFile = %q", p.DatabaseFile())
	}
	if p.AppCacheFile() != "/tmp/xdg-cache/flit/apps.json" {
		t.Errorf("AppCacheFile = %q", p.AppCacheFile())
	}
	if p.LockFile() != "/tmp/xdg-cache/flit/flit.lock" {
		t.Errorf("LockFile = %q", p.LockFile())
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	p := &Paths{
		ConfigDir: filepath.Join(base, "config"),
		DataDir:   filepath.Join(base, "data"),
		CacheDir:  filepath.Join(base, "cache"),
	}
	if err := p.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.CacheDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("dir %q missing", dir)
		}
	}
}
