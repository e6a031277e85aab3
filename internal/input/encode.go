package input

import (
	"unicode/utf8"

	"github.com/jesseduffield/gocui"

	"github.com/abdullathedruid/vtsession/internal/vt"
)

// cursorKeys have a normal (CSI) and an application (SS3) form selected by
// DECCKM.
var cursorKeys = map[gocui.Key]byte{
	gocui.KeyArrowUp:    'A',
	gocui.KeyArrowDown:  'B',
	gocui.KeyArrowRight: 'C',
	gocui.KeyArrowLeft:  'D',
	gocui.KeyHome:       'H',
	gocui.KeyEnd:        'F',
}

var editKeys = map[gocui.Key]string{
	gocui.KeyInsert: "\x1b[2~",
	gocui.KeyDelete: "\x1b[3~",
	gocui.KeyPgup:   "\x1b[5~",
	gocui.KeyPgdn:   "\x1b[6~",
	gocui.KeyF1:     "\x1bOP",
	gocui.KeyF2:     "\x1bOQ",
	gocui.KeyF3:     "\x1bOR",
	gocui.KeyF4:     "\x1bOS",
	gocui.KeyF5:     "\x1b[15~",
	gocui.KeyF6:     "\x1b[17~",
	gocui.KeyF7:     "\x1b[18~",
	gocui.KeyF8:     "\x1b[19~",
	gocui.KeyF9:     "\x1b[20~",
	gocui.KeyF10:    "\x1b[21~",
	gocui.KeyF11:    "\x1b[23~",
	gocui.KeyF12:    "\x1b[24~",
}

// controlKeys maps keys that produce a single C0 byte. Several gocui
// constants share a value (KeyTab and KeyCtrlI, KeyEnter and KeyCtrlM), so
// the table is filled at init time rather than written as a literal.
var controlKeys = map[gocui.Key]byte{}

func init() {
	ctrl := []gocui.Key{
		gocui.KeyCtrlA, gocui.KeyCtrlB, gocui.KeyCtrlC, gocui.KeyCtrlD,
		gocui.KeyCtrlE, gocui.KeyCtrlF, gocui.KeyCtrlG, gocui.KeyCtrlH,
		gocui.KeyCtrlI, gocui.KeyCtrlJ, gocui.KeyCtrlK, gocui.KeyCtrlL,
		gocui.KeyCtrlM, gocui.KeyCtrlN, gocui.KeyCtrlO, gocui.KeyCtrlP,
		gocui.KeyCtrlQ, gocui.KeyCtrlR, gocui.KeyCtrlS, gocui.KeyCtrlT,
		gocui.KeyCtrlU, gocui.KeyCtrlV, gocui.KeyCtrlW, gocui.KeyCtrlX,
		gocui.KeyCtrlY, gocui.KeyCtrlZ,
	}
	for i, k := range ctrl {
		controlKeys[k] = byte(i + 1)
	}
	for _, b := range []struct {
		key  gocui.Key
		code byte
	}{
		{gocui.KeyEsc, 0x1b},
		{gocui.KeyCtrlBackslash, 0x1c},
		{gocui.KeyTab, '\t'},
		{gocui.KeyEnter, '\r'},
		{gocui.KeySpace, ' '},
		{gocui.KeyBackspace2, 0x7f},
	} {
		controlKeys[b.key] = b.code
	}
}

// Encode returns the bytes a terminal would send for a keypress, or nil if
// the key has no encoding. Arrow, Home and End keys follow the
// application cursor mode in modes. Alt prefixes the encoding with ESC.
func Encode(key gocui.Key, ch rune, mod gocui.Modifier, modes vt.Modes) []byte {
	var out []byte
	if mod&gocui.ModAlt != 0 {
		out = append(out, 0x1b)
	}

	if ch != 0 {
		return utf8.AppendRune(out, ch)
	}
	if final, ok := cursorKeys[key]; ok {
		if modes.AppCursorKeys {
			return append(out, 0x1b, 'O', final)
		}
		return append(out, 0x1b, '[', final)
	}
	if seq, ok := editKeys[key]; ok {
		return append(out, seq...)
	}
	if b, ok := controlKeys[key]; ok {
		return append(out, b)
	}
	return nil
}
