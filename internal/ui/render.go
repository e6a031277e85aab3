// Package ui renders screen cells and host chrome into gocui views.
package ui

import (
	"fmt"
	"strings"

	"github.com/jesseduffield/gocui"

	"github.com/abdullathedruid/vtsession/internal/input"
	"github.com/abdullathedruid/vtsession/internal/screen"
)

// RenderRow converts one row of cells into text with ANSI styling that a
// gocui view in OutputTrue mode understands. SGR is only written where the
// style changes, and the row always ends reset.
func RenderRow(cells []screen.Cell) string {
	var sb strings.Builder
	var cur screen.Style
	styled := false

	for _, c := range cells {
		if c.IsContinuation() {
			continue
		}
		if c.Style != cur {
			if styled {
				sb.WriteString(ColorReset)
			}
			cur = c.Style
			styled = cur != screen.Style{}
			if styled {
				writeStyle(&sb, cur)
			}
		}
		if c.Style.Has(screen.AttrHidden) {
			sb.WriteString(strings.Repeat(" ", max(int(c.Width), 1)))
			continue
		}
		sb.WriteString(c.String())
	}
	if styled {
		sb.WriteString(ColorReset)
	}
	return sb.String()
}

func writeStyle(sb *strings.Builder, s screen.Style) {
	if s.Has(screen.AttrBold) {
		sb.WriteString("\033[1m")
	}
	if s.Has(screen.AttrItalic) {
		sb.WriteString("\033[3m")
	}
	if s.Has(screen.AttrUnderline) {
		sb.WriteString("\033[4m")
	}
	if s.Has(screen.AttrBlink) {
		sb.WriteString("\033[5m")
	}
	if s.Has(screen.AttrInverse) {
		sb.WriteString("\033[7m")
	}
	writeColor(sb, s.Fg, 30, 90, 38)
	writeColor(sb, s.Bg, 40, 100, 48)
}

// writeColor writes c using base for the 8 standard colors, bright for the
// next 8, and ext (38 or 48) for the 256-color and RGB forms.
func writeColor(sb *strings.Builder, c screen.Color, base, bright, ext int) {
	switch c.Kind {
	case screen.ColorIndexed:
		switch {
		case c.Index < 8:
			fmt.Fprintf(sb, "\033[%dm", base+int(c.Index))
		case c.Index < 16:
			fmt.Fprintf(sb, "\033[%dm", bright+int(c.Index)-8)
		default:
			fmt.Fprintf(sb, "\033[%d;5;%dm", ext, c.Index)
		}
	case screen.ColorRGB:
		fmt.Fprintf(sb, "\033[%d;2;%d;%d;%dm", ext, c.R, c.G, c.B)
	}
}

// ConfigureTerminalView sets up the view that shows the current session.
func ConfigureTerminalView(v *gocui.View, title string, mode input.Mode, colors Colors) {
	v.Title = fmt.Sprintf(" [%s] %s ", mode.String(), title)
	v.FrameRunes = []rune{'━', '┃', '┏', '┓', '┗', '┛'}
	switch {
	case mode.IsScroll():
		v.FrameColor = gocui.ColorYellow
	case mode.IsPrefix():
		v.FrameColor = gocui.ColorBlue
	default:
		v.FrameColor = colors.Frame
	}
	v.Frame = true
	v.Wrap = false
	v.Editable = true
}

// SidebarEntry is one line of the session list.
type SidebarEntry struct {
	Label   string
	Current bool
	Running bool
}

// ConfigureSidebar writes the session list into v.
func ConfigureSidebar(v *gocui.View, entries []SidebarEntry, colors Colors) {
	v.Title = " Sessions "
	v.Frame = true
	v.Wrap = false
	v.Editable = false
	v.FrameRunes = []rune{'─', '│', '┌', '┐', '└', '┘'}
	v.FrameColor = gocui.ColorDefault
	v.SelBgColor = colors.SelectionBg
	v.SelFgColor = colors.SelectionFg
	v.Highlight = true

	width, _ := v.Size()
	v.Clear()
	selected := 0
	for i, e := range entries {
		icon := "○"
		if e.Running {
			icon = "●"
		}
		if e.Current {
			selected = i
		}
		fmt.Fprintln(v, PadRight(icon+" "+Truncate(e.Label, max(width-2, 1)), width))
	}
	v.SetCursor(0, selected)
}

// ConfigureStatusBar writes text into the status line view.
func ConfigureStatusBar(v *gocui.View, text string, colors Colors) {
	v.Frame = false
	v.Wrap = false
	v.BgColor = colors.StatusBarBg
	v.FgColor = colors.StatusBarFg
	width, _ := v.Size()
	v.Clear()
	fmt.Fprint(v, PadRight(text, width))
}
