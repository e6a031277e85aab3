package ui

import (
	"strings"
	"testing"

	"github.com/jesseduffield/gocui"

	"github.com/abdullathedruid/vtsession/internal/config"
	"github.com/abdullathedruid/vtsession/internal/input"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"ab", 3, "ab"},
		{"abcd", 3, "abc"},
		{"", 5, ""},
		{"日本語テキスト", 8, "日本..."},
	}

	for _, tt := range tests {
		got := Truncate(tt.s, tt.width)
		if got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  string
	}{
		{"ab", 4, "ab  "},
		{"abcd", 4, "abcd"},
		{"abcdef", 4, "abcd"},
		{"日", 4, "日  "},
	}

	for _, tt := range tests {
		got := PadRight(tt.s, tt.width)
		if got != tt.want {
			t.Errorf("PadRight(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestColorAttribute(t *testing.T) {
	tests := []struct {
		name string
		want gocui.Attribute
	}{
		{"red", gocui.ColorRed},
		{"Blue", gocui.ColorBlue},
		{"default", gocui.ColorDefault},
		{"mauve", gocui.ColorDefault},
	}

	for _, tt := range tests {
		if got := ColorAttribute(tt.name); got != tt.want {
			t.Errorf("ColorAttribute(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestThemeColors(t *testing.T) {
	c := ThemeColors(config.DefaultTheme().Colors)
	if c.SelectionBg != gocui.ColorBlue || c.SelectionFg != gocui.ColorWhite {
		t.Errorf("selection colors = %v/%v", c.SelectionBg, c.SelectionFg)
	}
	if c.Frame != gocui.ColorDefault {
		t.Errorf("frame color = %v, want default", c.Frame)
	}
}

func TestRenderStatusBar(t *testing.T) {
	keys := config.DefaultKeyBindings()
	bar := RenderStatusBar(StatusBar{
		Mode:       input.ModeScroll,
		Session:    "#1 bash",
		Cols:       80,
		Rows:       24,
		ViewOffset: 12,
		Message:    "bell",
		Version:    "v1.0.0",
	}, keys)

	for _, want := range []string{"SCROLL", "#1 bash", "80x24", "history -12", "bell", "ctrl+a", "v1.0.0"} {
		if !strings.Contains(bar, want) {
			t.Errorf("status bar %q missing %q", bar, want)
		}
	}
}

func TestRenderStatusBar_NoSession(t *testing.T) {
	bar := RenderStatusBar(StatusBar{Mode: input.ModeTerminal}, config.DefaultKeyBindings())
	if !strings.Contains(bar, "no session") {
		t.Errorf("status bar %q missing 'no session'", bar)
	}
	if strings.Contains(bar, "history") {
		t.Errorf("status bar %q shows history while live", bar)
	}
}
