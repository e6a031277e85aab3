package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-errors/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg == nil {
		t.Fatal("Default() returned nil")
	}

	if cfg.Cols != 80 || cfg.Rows != 24 {
		t.Errorf("size = %dx%d, want 80x24", cfg.Cols, cfg.Rows)
	}
	if cfg.Term != "xterm-256color" {
		t.Errorf("Term = %q, want 'xterm-256color'", cfg.Term)
	}
	if cfg.MaxParams != 16 || cfg.MaxSequenceBytes != 256 {
		t.Errorf("bounds = %d/%d, want 16/256", cfg.MaxParams, cfg.MaxSequenceBytes)
	}
	if cfg.Keys.Prefix != "ctrl+a" {
		t.Errorf("Keys.Prefix = %q, want 'ctrl+a'", cfg.Keys.Prefix)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	dir := defaultDataDir()
	if dir != "/custom/config/vtsession" {
		t.Errorf("with XDG_CONFIG_HOME: got %q, want '/custom/config/vtsession'", dir)
	}

	os.Unsetenv("XDG_CONFIG_HOME")
	dir = defaultDataDir()
	if !strings.HasSuffix(dir, ".config/vtsession") {
		t.Errorf("without XDG_CONFIG_HOME: got %q, expected to end with '.config/vtsession'", dir)
	}
}

func TestDefaultShellWithEnv(t *testing.T) {
	t.Setenv("SHELL", "/bin/custom-shell")
	if shell := getDefaultShell(); shell != "/bin/custom-shell" {
		t.Errorf("getDefaultShell() = %q, want '/bin/custom-shell'", shell)
	}

	t.Setenv("SHELL", "")
	if shell := getDefaultShell(); shell != "/bin/sh" {
		t.Errorf("getDefaultShell() = %q, want '/bin/sh'", shell)
	}
}

func TestPaths(t *testing.T) {
	cfg := &Config{DataDir: "/test/data"}

	if got := cfg.ConfigFile(); got != "/test/data/config.yaml" {
		t.Errorf("ConfigFile() = %q", got)
	}
	if got := cfg.LogFile(); got != "/test/data/vtsession.log" {
		t.Errorf("LogFile() = %q", got)
	}
}

func TestEnsureDataDir(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "vtsession-test", "data")
	cfg := &Config{DataDir: dataDir}

	if err := cfg.EnsureDataDir(); err != nil {
		t.Fatalf("EnsureDataDir() error: %v", err)
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatalf("data dir does not exist: %v", err)
	}
	if !info.IsDir() {
		t.Error("data dir is not a directory")
	}

	// Should be idempotent
	if err := cfg.EnsureDataDir(); err != nil {
		t.Errorf("second EnsureDataDir() error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero cols", func(c *Config) { c.Cols = 0 }},
		{"negative rows", func(c *Config) { c.Rows = -1 }},
		{"max cols below cols", func(c *Config) { c.MaxCols = 40 }},
		{"zero max rows", func(c *Config) { c.MaxRows = 0 }},
		{"negative scrollback", func(c *Config) { c.ScrollbackLines = -5 }},
		{"zero write queue", func(c *Config) { c.WriteQueue = 0 }},
		{"zero event queue", func(c *Config) { c.EventQueue = 0 }},
		{"zero max params", func(c *Config) { c.MaxParams = 0 }},
		{"zero sequence bytes", func(c *Config) { c.MaxSequenceBytes = 0 }},
		{"zero tab width", func(c *Config) { c.TabWidth = 0 }},
		{"bad key", func(c *Config) { c.Keys.Quit = "hyper+q" }},
		{"duplicate key", func(c *Config) { c.Keys.Quit = "x" }},
		{"rune prefix", func(c *Config) { c.Keys.Prefix = "a" }},
		{"bad color", func(c *Config) { c.Theme.Colors.SelectionBg = "mauve" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestValidate_ZeroScrollbackAllowed(t *testing.T) {
	cfg := Default()
	cfg.ScrollbackLines = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
