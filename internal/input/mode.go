// Package input decides what a keypress means to the host: bytes for the
// current session, or a command for the widget.
package input

// Mode represents the current input mode.
type Mode int

const (
	// ModeTerminal forwards all input to the current session.
	ModeTerminal Mode = iota
	// ModePrefix follows the prefix key; the next key is a command.
	ModePrefix
	// ModeScroll browses the current session's history.
	ModeScroll
)

// String returns the human-readable mode name.
func (m Mode) String() string {
	switch m {
	case ModeTerminal:
		return "TERMINAL"
	case ModePrefix:
		return "PREFIX"
	case ModeScroll:
		return "SCROLL"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true if the mode forwards input to the terminal.
func (m Mode) IsTerminal() bool {
	return m == ModeTerminal
}

// IsPrefix returns true if a command key is expected next.
func (m Mode) IsPrefix() bool {
	return m == ModePrefix
}

// IsScroll returns true while history is being browsed.
func (m Mode) IsScroll() bool {
	return m == ModeScroll
}
