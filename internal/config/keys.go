package config

import (
	"fmt"
	"strings"

	"github.com/jesseduffield/gocui"
)

// Key represents a parsed key binding.
type Key struct {
	Value any // rune for single chars, gocui.Key for special keys
	Mod   gocui.Modifier
}

// ParseKey parses a key string into a gocui-compatible key value.
// Supported formats:
//   - Single character, case preserved: "q", "R", "?"
//   - Special keys: "enter", "space", "esc", "tab", "pgup", "f1"
//   - Ctrl combinations: "ctrl+a", "ctrl+\\"
//   - Alt combinations: "alt+n", "alt+left"
func ParseKey(s string) (Key, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Key{}, fmt.Errorf("empty key string")
	}
	lower := strings.ToLower(trimmed)

	if rest, found := strings.CutPrefix(lower, "alt+"); found && rest != "" {
		k, err := ParseKey(trimmed[len("alt+"):])
		if err != nil {
			return Key{}, fmt.Errorf("invalid alt combination: %s", s)
		}
		k.Mod |= gocui.ModAlt
		return k, nil
	}

	if char, found := strings.CutPrefix(lower, "ctrl+"); found {
		if ctrlKey, ok := ctrlKeyMap[char]; ok {
			return Key{Value: ctrlKey, Mod: gocui.ModNone}, nil
		}
		return Key{}, fmt.Errorf("invalid ctrl combination: %s", s)
	}

	if key, ok := specialKeyMap[lower]; ok {
		return Key{Value: key, Mod: gocui.ModNone}, nil
	}

	if r := []rune(trimmed); len(r) == 1 {
		return Key{Value: r[0], Mod: gocui.ModNone}, nil
	}

	return Key{}, fmt.Errorf("unknown key: %s", s)
}

// MustParseKey is ParseKey for bindings already checked by Validate.
func MustParseKey(s string) Key {
	k, err := ParseKey(s)
	if err != nil {
		panic(err)
	}
	return k
}

// IsRune returns true if the key is a rune (single character).
func (k Key) IsRune() bool {
	_, ok := k.Value.(rune)
	return ok
}

// Rune returns the key as a rune, or 0 if not a rune.
func (k Key) Rune() rune {
	if r, ok := k.Value.(rune); ok {
		return r
	}
	return 0
}

// GocuiKey returns the key as a gocui.Key, or 0 if not a special key.
func (k Key) GocuiKey() gocui.Key {
	if key, ok := k.Value.(gocui.Key); ok {
		return key
	}
	return 0
}

// Matches reports whether an editor callback's arguments are this key.
func (k Key) Matches(key gocui.Key, ch rune, mod gocui.Modifier) bool {
	if mod&gocui.ModAlt != k.Mod&gocui.ModAlt {
		return false
	}
	if k.IsRune() {
		return ch == k.Rune() || (ch == 0 && k.Rune() == ' ' && key == gocui.KeySpace)
	}
	return ch == 0 && key == k.GocuiKey()
}

// String converts a Key back to its canonical string form.
func (k Key) String() string {
	var prefix string
	if k.Mod&gocui.ModAlt != 0 {
		prefix = "alt+"
	}
	if k.IsRune() {
		return prefix + string(k.Rune())
	}
	gKey := k.GocuiKey()
	if name, ok := specialKeyNames[gKey]; ok {
		return prefix + name
	}
	for char, key := range ctrlKeyMap {
		if key == gKey {
			return prefix + "ctrl+" + char
		}
	}
	return ""
}

// specialKeyMap maps string names to gocui special keys.
var specialKeyMap = map[string]gocui.Key{
	"enter":     gocui.KeyEnter,
	"space":     gocui.KeySpace,
	"esc":       gocui.KeyEsc,
	"escape":    gocui.KeyEsc,
	"tab":       gocui.KeyTab,
	"backspace": gocui.KeyBackspace2,
	"delete":    gocui.KeyDelete,
	"insert":    gocui.KeyInsert,
	"home":      gocui.KeyHome,
	"end":       gocui.KeyEnd,
	"pgup":      gocui.KeyPgup,
	"pageup":    gocui.KeyPgup,
	"pgdn":      gocui.KeyPgdn,
	"pagedown":  gocui.KeyPgdn,
	"up":        gocui.KeyArrowUp,
	"down":      gocui.KeyArrowDown,
	"left":      gocui.KeyArrowLeft,
	"right":     gocui.KeyArrowRight,
	"f1":        gocui.KeyF1,
	"f2":        gocui.KeyF2,
	"f3":        gocui.KeyF3,
	"f4":        gocui.KeyF4,
	"f5":        gocui.KeyF5,
	"f6":        gocui.KeyF6,
	"f7":        gocui.KeyF7,
	"f8":        gocui.KeyF8,
	"f9":        gocui.KeyF9,
	"f10":       gocui.KeyF10,
	"f11":       gocui.KeyF11,
	"f12":       gocui.KeyF12,
}

// specialKeyNames is the reverse of specialKeyMap with aliases resolved to
// their short names.
var specialKeyNames = map[gocui.Key]string{}

func init() {
	for name, key := range specialKeyMap {
		if cur, ok := specialKeyNames[key]; !ok || len(name) < len(cur) {
			specialKeyNames[key] = name
		}
	}
}

// ctrlKeyMap maps characters to their ctrl+key equivalents.
var ctrlKeyMap = map[string]gocui.Key{
	"a":  gocui.KeyCtrlA,
	"b":  gocui.KeyCtrlB,
	"c":  gocui.KeyCtrlC,
	"d":  gocui.KeyCtrlD,
	"e":  gocui.KeyCtrlE,
	"f":  gocui.KeyCtrlF,
	"g":  gocui.KeyCtrlG,
	"h":  gocui.KeyCtrlH,
	"i":  gocui.KeyCtrlI,
	"j":  gocui.KeyCtrlJ,
	"k":  gocui.KeyCtrlK,
	"l":  gocui.KeyCtrlL,
	"m":  gocui.KeyCtrlM,
	"n":  gocui.KeyCtrlN,
	"o":  gocui.KeyCtrlO,
	"p":  gocui.KeyCtrlP,
	"q":  gocui.KeyCtrlQ,
	"r":  gocui.KeyCtrlR,
	"s":  gocui.KeyCtrlS,
	"t":  gocui.KeyCtrlT,
	"u":  gocui.KeyCtrlU,
	"v":  gocui.KeyCtrlV,
	"w":  gocui.KeyCtrlW,
	"x":  gocui.KeyCtrlX,
	"y":  gocui.KeyCtrlY,
	"z":  gocui.KeyCtrlZ,
	"\\": gocui.KeyCtrlBackslash,
}
