package input

import (
	"testing"

	"github.com/jesseduffield/gocui"

	"github.com/abdullathedruid/vtsession/internal/config"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	h, err := NewHandler(config.DefaultKeyBindings())
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func TestHandler_StartsInTerminalMode(t *testing.T) {
	h := newHandler(t)
	if h.Mode() != ModeTerminal {
		t.Errorf("Mode() = %v, want TERMINAL", h.Mode())
	}
	if got := h.Handle(0, 'x', gocui.ModNone); got != ActionSend {
		t.Errorf("Handle('x') = %v, want send", got)
	}
}

func TestHandler_PrefixCommands(t *testing.T) {
	tests := []struct {
		ch   rune
		want Action
	}{
		{'c', ActionNewSession},
		{'n', ActionNextSession},
		{'p', ActionPrevSession},
		{'x', ActionCloseSession},
		{'r', ActionResetDamage},
		{'R', ActionForceRedraw},
		{'d', ActionDumpBuffer},
		{'q', ActionQuit},
		{'z', ActionNone},
	}

	for _, tt := range tests {
		h := newHandler(t)
		if got := h.Handle(gocui.KeyCtrlA, 0, gocui.ModNone); got != ActionNone {
			t.Errorf("prefix returned %v, want none", got)
		}
		if h.Mode() != ModePrefix {
			t.Fatalf("Mode() after prefix = %v, want PREFIX", h.Mode())
		}
		if got := h.Handle(0, tt.ch, gocui.ModNone); got != tt.want {
			t.Errorf("prefix %q = %v, want %v", tt.ch, got, tt.want)
		}
		if h.Mode() != ModeTerminal {
			t.Errorf("Mode() after %q = %v, want TERMINAL", tt.ch, h.Mode())
		}
	}
}

func TestHandler_DoublePrefixSendsPrefix(t *testing.T) {
	h := newHandler(t)
	h.Handle(gocui.KeyCtrlA, 0, gocui.ModNone)
	if got := h.Handle(gocui.KeyCtrlA, 0, gocui.ModNone); got != ActionSendPrefix {
		t.Errorf("second prefix = %v, want send-prefix", got)
	}
	if h.Mode() != ModeTerminal {
		t.Errorf("Mode() = %v, want TERMINAL", h.Mode())
	}
}

func TestHandler_ScrollMode(t *testing.T) {
	h := newHandler(t)
	h.Handle(gocui.KeyCtrlA, 0, gocui.ModNone)
	if got := h.Handle(gocui.KeyPgup, 0, gocui.ModNone); got != ActionScrollUp {
		t.Fatalf("prefix pgup = %v, want scroll-up", got)
	}
	if h.Mode() != ModeScroll {
		t.Fatalf("Mode() = %v, want SCROLL", h.Mode())
	}

	steps := []struct {
		key  gocui.Key
		ch   rune
		want Action
	}{
		{gocui.KeyPgup, 0, ActionScrollUp},
		{gocui.KeyArrowUp, 0, ActionScrollUp},
		{gocui.KeyPgdn, 0, ActionScrollDown},
		{gocui.KeyArrowDown, 0, ActionScrollDown},
		{0, 'z', ActionNone},
	}
	for _, s := range steps {
		if got := h.Handle(s.key, s.ch, gocui.ModNone); got != s.want {
			t.Errorf("Handle(%v, %q) = %v, want %v", s.key, s.ch, got, s.want)
		}
	}
	if h.Mode() != ModeScroll {
		t.Fatalf("Mode() = %v, want SCROLL", h.Mode())
	}

	if got := h.Handle(gocui.KeyEsc, 0, gocui.ModNone); got != ActionExitScroll {
		t.Errorf("esc = %v, want exit-scroll", got)
	}
	if h.Mode() != ModeTerminal {
		t.Errorf("Mode() = %v, want TERMINAL", h.Mode())
	}
}

func TestHandler_QuitLeavesScrollMode(t *testing.T) {
	h := newHandler(t)
	h.SetMode(ModeScroll)
	if got := h.Handle(0, 'q', gocui.ModNone); got != ActionExitScroll {
		t.Errorf("q = %v, want exit-scroll", got)
	}
	if h.Mode() != ModeTerminal {
		t.Errorf("Mode() = %v, want TERMINAL", h.Mode())
	}
}

func TestHandler_PrefixFromScrollMode(t *testing.T) {
	h := newHandler(t)
	h.SetMode(ModeScroll)
	h.Handle(gocui.KeyCtrlA, 0, gocui.ModNone)
	if got := h.Handle(0, 'n', gocui.ModNone); got != ActionNextSession {
		t.Errorf("prefix n = %v, want next-session", got)
	}
}

func TestHandler_CustomBindings(t *testing.T) {
	keys := config.DefaultKeyBindings()
	keys.Prefix = "ctrl+b"
	keys.Quit = "alt+q"
	h, err := NewHandler(keys)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	if got := h.Handle(gocui.KeyCtrlA, 0, gocui.ModNone); got != ActionSend {
		t.Errorf("ctrl+a = %v, want send once the prefix is ctrl+b", got)
	}
	h.Handle(gocui.KeyCtrlB, 0, gocui.ModNone)
	if got := h.Handle(0, 'q', gocui.ModAlt); got != ActionQuit {
		t.Errorf("alt+q = %v, want quit", got)
	}
}

func TestNewHandler_InvalidPrefix(t *testing.T) {
	keys := config.DefaultKeyBindings()
	keys.Prefix = "nonsense"
	if _, err := NewHandler(keys); err == nil {
		t.Error("NewHandler() expected error, got nil")
	}
}

func TestAction_String(t *testing.T) {
	if ActionScrollUp.String() != "scroll-up" {
		t.Errorf("ActionScrollUp.String() = %q", ActionScrollUp.String())
	}
	if Action(99).String() != "unknown" {
		t.Errorf("Action(99).String() = %q", Action(99).String())
	}
}
