package host

import (
	"fmt"
	"strings"

	"github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/abdullathedruid/vtsession/internal/input"
	"github.com/abdullathedruid/vtsession/internal/session"
	"github.com/abdullathedruid/vtsession/internal/ui"
	"github.com/abdullathedruid/vtsession/internal/widget"
)

func setView(g *gocui.Gui, name string, l ui.Layout) (*gocui.View, error) {
	v, err := g.SetView(name, l.X0, l.Y0, l.X1, l.Y1, 0)
	if err != nil {
		if !errors.Is(err, gocui.ErrUnknownView) && err.Error() != "unknown view" {
			return nil, err
		}
	}
	return v, nil
}

// layout is the gocui manager function that arranges views.
func (a *App) layout(g *gocui.Gui) error {
	if a.quitting {
		return gocui.ErrQuit
	}

	maxX, maxY := g.Size()
	l := ui.CalculateLayout(maxX, maxY)
	a.resizeSurface(l.Main.Width(), l.Main.Height())

	if l.HasSidebar() {
		v, err := setView(g, sidebarView, l.Sidebar)
		if err != nil {
			return err
		}
		ui.ConfigureSidebar(v, a.sidebarEntries(), a.colors)
	} else {
		g.DeleteView(sidebarView)
	}

	v, err := setView(g, terminalView, l.Main)
	if err != nil {
		return err
	}
	s := a.widget.CurrentSession()
	title := "no session"
	if s != nil {
		title = fmt.Sprintf("%s %s", s.Handle(), s.Name())
	}
	mode := a.input.Mode()
	ui.ConfigureTerminalView(v, title, mode, a.colors)
	v.Editor = gocui.EditorFunc(a.edit)
	v.Clear()
	if s != nil {
		fmt.Fprint(v, strings.Join(a.lines[s.Handle()], "\n"))
	}

	sv, err := setView(g, statusView, l.Status)
	if err != nil {
		return err
	}
	ui.ConfigureStatusBar(sv, a.statusText(), a.colors)

	if a.firstCall {
		if _, err := g.SetCurrentView(terminalView); err != nil {
			return err
		}
		a.firstCall = false
	}

	// The hardware cursor follows the session cursor only on the live grid.
	if s != nil && mode.IsTerminal() && s.Buffer().ViewOffset() == 0 && s.Modes().CursorVisible {
		c := s.Cursor()
		v.SetCursor(c.Col, c.Row)
		g.Cursor = true
	} else {
		g.Cursor = false
	}
	return nil
}

// resizeSurface performs a Local resize when the terminal view changes
// size.
func (a *App) resizeSurface(cols, rows int) {
	if cols == a.lastCols && rows == a.lastRows {
		return
	}
	a.lastCols, a.lastRows = cols, rows
	if err := a.widget.Resize(cols, rows, session.OriginLocal); err != nil {
		a.log.Warn("resize failed", "cols", cols, "rows", rows, "err", err)
	}
}

// edit receives every key pressed in the terminal view.
func (a *App) edit(_ *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	if err := a.dispatch(a.input.Handle(key, ch, mod), key, ch, mod); err != nil {
		if !errors.Is(err, widget.ErrNoSession) {
			a.log.Warn("key action failed", "err", err)
		}
		a.message = err.Error()
	}
	return true
}

func (a *App) dispatch(action input.Action, key gocui.Key, ch rune, mod gocui.Modifier) error {
	s := a.widget.CurrentSession()
	switch action {
	case input.ActionNone:
		return nil
	case input.ActionQuit:
		a.quitting = true
		return nil
	case input.ActionNewSession:
		return a.newSession()
	}

	if s == nil {
		return widget.ErrNoSession
	}
	buf := s.Buffer()
	_, rows := buf.Size()

	switch action {
	case input.ActionSend:
		data := input.Encode(key, ch, mod, s.Modes())
		if len(data) == 0 {
			return nil
		}
		if buf.ViewOffset() > 0 {
			buf.ResetView()
			a.refresh(s.Handle())
		}
		return a.widget.SendKeys(data)
	case input.ActionSendPrefix:
		p := a.input.Prefix()
		return a.widget.SendKeys(input.Encode(p.GocuiKey(), p.Rune(), p.Mod, s.Modes()))
	case input.ActionNextSession:
		return a.widget.Next()
	case input.ActionPrevSession:
		return a.widget.Prev()
	case input.ActionCloseSession:
		return a.widget.CloseSession(s.Handle())
	case input.ActionScrollUp:
		buf.ScrollView(max(rows/2, 1))
		a.refresh(s.Handle())
	case input.ActionScrollDown:
		buf.ScrollView(-max(rows/2, 1))
		a.refresh(s.Handle())
	case input.ActionExitScroll:
		buf.ResetView()
		a.refresh(s.Handle())
	case input.ActionResetDamage:
		s.ResetDamage()
		a.message = "damage reset"
	case input.ActionForceRedraw:
		s.ForceRedraw()
	case input.ActionDumpBuffer:
		path, err := a.dump(s)
		if err != nil {
			return err
		}
		a.message = "dumped to " + path
	}
	return nil
}
