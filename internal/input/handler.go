package input

import (
	"sync"

	"github.com/jesseduffield/gocui"

	"github.com/abdullathedruid/vtsession/internal/config"
)

// Action is what the host should do with a keypress.
type Action int

const (
	ActionNone Action = iota
	// ActionSend forwards the encoded key to the current session.
	ActionSend
	// ActionSendPrefix forwards the prefix key itself.
	ActionSendPrefix
	ActionNewSession
	ActionNextSession
	ActionPrevSession
	ActionCloseSession
	ActionScrollUp
	ActionScrollDown
	ActionExitScroll
	ActionResetDamage
	ActionForceRedraw
	ActionDumpBuffer
	ActionQuit
)

var actionNames = [...]string{
	ActionNone:         "none",
	ActionSend:         "send",
	ActionSendPrefix:   "send-prefix",
	ActionNewSession:   "new-session",
	ActionNextSession:  "next-session",
	ActionPrevSession:  "prev-session",
	ActionCloseSession: "close-session",
	ActionScrollUp:     "scroll-up",
	ActionScrollDown:   "scroll-down",
	ActionExitScroll:   "exit-scroll",
	ActionResetDamage:  "reset-damage",
	ActionForceRedraw:  "force-redraw",
	ActionDumpBuffer:   "dump-buffer",
	ActionQuit:         "quit",
}

func (a Action) String() string {
	if int(a) < len(actionNames) {
		return actionNames[a]
	}
	return "unknown"
}

type binding struct {
	key    config.Key
	action Action
}

// Handler tracks the input mode and maps keys to actions.
type Handler struct {
	prefix   config.Key
	bindings []binding
	mode     Mode
	mu       sync.RWMutex
}

// NewHandler creates a handler in terminal mode. Keys must already have
// passed config validation.
func NewHandler(keys config.KeyBindings) (*Handler, error) {
	prefix, err := config.ParseKey(keys.Prefix)
	if err != nil {
		return nil, err
	}
	h := &Handler{prefix: prefix, mode: ModeTerminal}
	for _, b := range []struct {
		key    string
		action Action
	}{
		{keys.NewSession, ActionNewSession},
		{keys.NextSession, ActionNextSession},
		{keys.PrevSession, ActionPrevSession},
		{keys.CloseSession, ActionCloseSession},
		{keys.ScrollUp, ActionScrollUp},
		{keys.ScrollDown, ActionScrollDown},
		{keys.ResetDamage, ActionResetDamage},
		{keys.ForceRedraw, ActionForceRedraw},
		{keys.DumpBuffer, ActionDumpBuffer},
		{keys.Quit, ActionQuit},
	} {
		if b.key == "" {
			continue
		}
		k, err := config.ParseKey(b.key)
		if err != nil {
			return nil, err
		}
		h.bindings = append(h.bindings, binding{k, b.action})
	}
	return h, nil
}

// Mode returns the current input mode.
func (h *Handler) Mode() Mode {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mode
}

// SetMode changes the current input mode.
func (h *Handler) SetMode(mode Mode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.mode = mode
}

// Handle consumes one keypress and returns the action it triggers.
func (h *Handler) Handle(key gocui.Key, ch rune, mod gocui.Modifier) Action {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch h.mode {
	case ModePrefix:
		h.mode = ModeTerminal
		if h.prefix.Matches(key, ch, mod) {
			return ActionSendPrefix
		}
		a := h.lookup(key, ch, mod)
		if a == ActionScrollUp {
			h.mode = ModeScroll
		}
		return a

	case ModeScroll:
		if h.prefix.Matches(key, ch, mod) {
			h.mode = ModePrefix
			return ActionNone
		}
		switch a := h.lookup(key, ch, mod); a {
		case ActionScrollUp, ActionScrollDown:
			return a
		case ActionQuit:
			h.mode = ModeTerminal
			return ActionExitScroll
		}
		switch {
		case ch == 0 && key == gocui.KeyArrowUp:
			return ActionScrollUp
		case ch == 0 && key == gocui.KeyArrowDown:
			return ActionScrollDown
		case ch == 0 && (key == gocui.KeyEsc || key == gocui.KeyEnter):
			h.mode = ModeTerminal
			return ActionExitScroll
		}
		return ActionNone

	default:
		if h.prefix.Matches(key, ch, mod) {
			h.mode = ModePrefix
			return ActionNone
		}
		return ActionSend
	}
}

func (h *Handler) lookup(key gocui.Key, ch rune, mod gocui.Modifier) Action {
	for _, b := range h.bindings {
		if b.key.Matches(key, ch, mod) {
			return b.action
		}
	}
	return ActionNone
}

// Prefix returns the parsed prefix key.
func (h *Handler) Prefix() config.Key {
	return h.prefix
}
