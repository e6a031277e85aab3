package ui

import (
	"fmt"
	"strings"

	"github.com/jesseduffield/gocui"
	"github.com/mattn/go-runewidth"

	"github.com/abdullathedruid/vtsession/internal/config"
	"github.com/abdullathedruid/vtsession/internal/input"
)

// ColorReset ends any SGR styling.
const ColorReset = "\033[0m"

// Colors are the theme colors resolved to gocui attributes.
type Colors struct {
	SelectionBg, SelectionFg gocui.Attribute
	StatusBarBg, StatusBarFg gocui.Attribute
	Frame                    gocui.Attribute
}

// ThemeColors resolves the configured color names.
func ThemeColors(t config.ThemeColors) Colors {
	return Colors{
		SelectionBg: ColorAttribute(t.SelectionBg),
		SelectionFg: ColorAttribute(t.SelectionFg),
		StatusBarBg: ColorAttribute(t.StatusBarBg),
		StatusBarFg: ColorAttribute(t.StatusBarFg),
		Frame:       ColorAttribute(t.FrameFg),
	}
}

// ColorAttribute maps a color name accepted by config.ValidateColor to a
// gocui attribute. Unknown names map to the default color.
func ColorAttribute(name string) gocui.Attribute {
	switch strings.ToLower(name) {
	case "black":
		return gocui.ColorBlack
	case "red":
		return gocui.ColorRed
	case "green":
		return gocui.ColorGreen
	case "yellow":
		return gocui.ColorYellow
	case "blue":
		return gocui.ColorBlue
	case "magenta":
		return gocui.ColorMagenta
	case "cyan":
		return gocui.ColorCyan
	case "white":
		return gocui.ColorWhite
	default:
		return gocui.ColorDefault
	}
}

// Truncate shortens a string to fit in the given width.
func Truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width <= 3 {
		return runewidth.Truncate(s, width, "")
	}
	return runewidth.Truncate(s, width, "...")
}

// PadRight pads a string to the right.
func PadRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-sw)
}

// StatusBar describes the bottom line.
type StatusBar struct {
	Mode       input.Mode
	Session    string
	Cols, Rows int
	ViewOffset int
	Message    string
	Version    string
}

// RenderStatusBar creates the bottom status bar content.
func RenderStatusBar(s StatusBar, keys config.KeyBindings) string {
	parts := []string{s.Mode.String()}
	if s.Session != "" {
		parts = append(parts, s.Session, fmt.Sprintf("%dx%d", s.Cols, s.Rows))
	} else {
		parts = append(parts, "no session")
	}
	if s.ViewOffset > 0 {
		parts = append(parts, fmt.Sprintf("history -%d", s.ViewOffset))
	}
	if s.Message != "" {
		parts = append(parts, s.Message)
	}
	help := fmt.Sprintf("%s %s:new %s/%s:switch %s:close %s:scroll %s:quit",
		keys.Prefix, keys.NewSession, keys.NextSession, keys.PrevSession,
		keys.CloseSession, keys.ScrollUp, keys.Quit)
	return " " + strings.Join(parts, " │ ") + "        " + help + "  " + s.Version
}
