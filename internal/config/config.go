// Package config handles application configuration.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-errors/errors"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds application configuration.
type Config struct {
	// DataDir holds the config file and the log file
	DataDir string `yaml:"-"`

	// Shell is the program started for new sessions
	Shell string `yaml:"shell"`

	// ShellArgs are passed to Shell
	ShellArgs []string `yaml:"shell_args"`

	// Term is exported as TERM to child processes
	Term string `yaml:"term"`

	// Cols and Rows size sessions created before the view is laid out
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`

	// MaxCols and MaxRows bound the size a program may request
	MaxCols int `yaml:"max_cols"`
	MaxRows int `yaml:"max_rows"`

	// ScrollbackLines bounds each session's history
	ScrollbackLines int `yaml:"scrollback_lines"`

	WriteQueue       int `yaml:"write_queue"`
	EventQueue       int `yaml:"event_queue"`
	MaxParams        int `yaml:"max_params"`
	MaxSequenceBytes int `yaml:"max_sequence_bytes"`

	// TabWidth is the spacing of the default tab stops
	TabWidth int `yaml:"tab_width"`

	// Keys contains keybinding configuration
	Keys KeyBindings `yaml:"keys"`

	// Theme contains theme/appearance configuration
	Theme Theme `yaml:"theme"`
}

// KeyBindings holds all configurable keybindings. Every binding except
// Prefix is looked up after the prefix key has been pressed.
type KeyBindings struct {
	Prefix       string `yaml:"prefix"`
	NewSession   string `yaml:"new_session"`
	NextSession  string `yaml:"next_session"`
	PrevSession  string `yaml:"prev_session"`
	CloseSession string `yaml:"close_session"`
	ScrollUp     string `yaml:"scroll_up"`
	ScrollDown   string `yaml:"scroll_down"`
	ResetDamage  string `yaml:"reset_damage"`
	ForceRedraw  string `yaml:"force_redraw"`
	DumpBuffer   string `yaml:"dump_buffer"`
	Quit         string `yaml:"quit"`
}

// Theme holds theme configuration.
type Theme struct {
	Colors ThemeColors `yaml:"colors"`
}

// ThemeColors holds color configuration.
type ThemeColors struct {
	SelectionBg string `yaml:"selection_bg"`
	SelectionFg string `yaml:"selection_fg"`
	StatusBarBg string `yaml:"statusbar_bg"`
	StatusBarFg string `yaml:"statusbar_fg"`
	FrameFg     string `yaml:"frame_fg"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		DataDir:          defaultDataDir(),
		Shell:            getDefaultShell(),
		Term:             "xterm-256color",
		Cols:             80,
		Rows:             24,
		MaxCols:          1000,
		MaxRows:          500,
		ScrollbackLines:  10000,
		WriteQueue:       64,
		EventQueue:       256,
		MaxParams:        16,
		MaxSequenceBytes: 256,
		TabWidth:         8,
		Keys:             DefaultKeyBindings(),
		Theme:            DefaultTheme(),
	}
}

// DefaultKeyBindings returns the default keybindings.
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		Prefix:       "ctrl+a",
		NewSession:   "c",
		NextSession:  "n",
		PrevSession:  "p",
		CloseSession: "x",
		ScrollUp:     "pgup",
		ScrollDown:   "pgdn",
		ResetDamage:  "r",
		ForceRedraw:  "R",
		DumpBuffer:   "d",
		Quit:         "q",
	}
}

// DefaultTheme returns the default theme configuration.
func DefaultTheme() Theme {
	return Theme{
		Colors: ThemeColors{
			SelectionBg: "blue",
			SelectionFg: "white",
			StatusBarBg: "blue",
			StatusBarFg: "white",
			FrameFg:     "default",
		},
	}
}

// Load loads configuration from the default config file, falling back to
// defaults when it does not exist.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path. An empty path means the default
// location under the data directory.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = cfg.ConfigFile()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.WrapPrefix(err, "read config", 0)
	}

	// Parse into a temporary struct to merge with defaults
	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, errors.WrapPrefix(err, "parse "+path, 0)
	}

	mergeConfig(cfg, &fileCfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks sizes, key bindings and theme colors.
func (c *Config) Validate() error {
	switch {
	case c.Cols <= 0 || c.Rows <= 0:
		return errors.WrapPrefix(ErrInvalid, "cols and rows must be positive", 0)
	case c.MaxCols < c.Cols || c.MaxRows < c.Rows:
		return errors.WrapPrefix(ErrInvalid, "max_cols and max_rows must not be below cols and rows", 0)
	case c.ScrollbackLines < 0:
		return errors.WrapPrefix(ErrInvalid, "scrollback_lines must not be negative", 0)
	case c.WriteQueue <= 0 || c.EventQueue <= 0:
		return errors.WrapPrefix(ErrInvalid, "queue sizes must be positive", 0)
	case c.MaxParams <= 0 || c.MaxSequenceBytes <= 0:
		return errors.WrapPrefix(ErrInvalid, "sequence bounds must be positive", 0)
	case c.TabWidth <= 0:
		return errors.WrapPrefix(ErrInvalid, "tab_width must be positive", 0)
	}
	if err := ValidateKeys(&c.Keys); err != nil {
		return errors.WrapPrefix(ErrInvalid, err.Error(), 0)
	}
	for name, color := range map[string]string{
		"selection_bg": c.Theme.Colors.SelectionBg,
		"selection_fg": c.Theme.Colors.SelectionFg,
		"statusbar_bg": c.Theme.Colors.StatusBarBg,
		"statusbar_fg": c.Theme.Colors.StatusBarFg,
		"frame_fg":     c.Theme.Colors.FrameFg,
	} {
		if !ValidateColor(color) {
			return errors.WrapPrefix(ErrInvalid, "unknown color "+color+" for "+name, 0)
		}
	}
	return nil
}

// mergeConfig merges file configuration into the default configuration.
// Only non-zero values from file are applied.
func mergeConfig(dst, src *Config) {
	if src.Shell != "" {
		dst.Shell = src.Shell
	}
	if src.ShellArgs != nil {
		dst.ShellArgs = src.ShellArgs
	}
	if src.Term != "" {
		dst.Term = src.Term
	}
	if src.Cols != 0 {
		dst.Cols = src.Cols
	}
	if src.Rows != 0 {
		dst.Rows = src.Rows
	}
	if src.MaxCols != 0 {
		dst.MaxCols = src.MaxCols
	}
	if src.MaxRows != 0 {
		dst.MaxRows = src.MaxRows
	}
	if src.ScrollbackLines != 0 {
		dst.ScrollbackLines = src.ScrollbackLines
	}
	if src.WriteQueue != 0 {
		dst.WriteQueue = src.WriteQueue
	}
	if src.EventQueue != 0 {
		dst.EventQueue = src.EventQueue
	}
	if src.MaxParams != 0 {
		dst.MaxParams = src.MaxParams
	}
	if src.MaxSequenceBytes != 0 {
		dst.MaxSequenceBytes = src.MaxSequenceBytes
	}
	if src.TabWidth != 0 {
		dst.TabWidth = src.TabWidth
	}

	mergeKeyBindings(&dst.Keys, &src.Keys)
	mergeTheme(&dst.Theme, &src.Theme)
}

// mergeKeyBindings merges keybindings from src into dst.
func mergeKeyBindings(dst, src *KeyBindings) {
	for _, p := range []struct{ dst, src *string }{
		{&dst.Prefix, &src.Prefix},
		{&dst.NewSession, &src.NewSession},
		{&dst.NextSession, &src.NextSession},
		{&dst.PrevSession, &src.PrevSession},
		{&dst.CloseSession, &src.CloseSession},
		{&dst.ScrollUp, &src.ScrollUp},
		{&dst.ScrollDown, &src.ScrollDown},
		{&dst.ResetDamage, &src.ResetDamage},
		{&dst.ForceRedraw, &src.ForceRedraw},
		{&dst.DumpBuffer, &src.DumpBuffer},
		{&dst.Quit, &src.Quit},
	} {
		if *p.src != "" {
			*p.dst = *p.src
		}
	}
}

// mergeTheme merges theme configuration from src into dst.
func mergeTheme(dst, src *Theme) {
	if src.Colors.SelectionBg != "" {
		dst.Colors.SelectionBg = src.Colors.SelectionBg
	}
	if src.Colors.SelectionFg != "" {
		dst.Colors.SelectionFg = src.Colors.SelectionFg
	}
	if src.Colors.StatusBarBg != "" {
		dst.Colors.StatusBarBg = src.Colors.StatusBarBg
	}
	if src.Colors.StatusBarFg != "" {
		dst.Colors.StatusBarFg = src.Colors.StatusBarFg
	}
	if src.Colors.FrameFg != "" {
		dst.Colors.FrameFg = src.Colors.FrameFg
	}
}

// defaultDataDir returns the default data directory.
func defaultDataDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "vtsession")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vtsession"
	}
	return filepath.Join(home, ".config", "vtsession")
}

// getDefaultShell returns the user's default shell.
func getDefaultShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}

// ConfigFile returns the path to the config file.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "config.yaml")
}

// LogFile returns the default path of the log file.
func (c *Config) LogFile() string {
	return filepath.Join(c.DataDir, "vtsession.log")
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.DataDir, 0755)
}
