package vt

import (
	"fmt"

	"github.com/abdullathedruid/vtsession/internal/screen"
)

func (p *Interpreter) csiDispatch(final byte) {
	switch p.marker {
	case 0:
	case '?':
		p.decPrivate(final)
		return
	default:
		p.unsupported("csi", final)
		return
	}
	if len(p.intermediates) > 0 {
		// DECSCUSR and friends; cursor shape is a host concern.
		if !(final == 'q' && p.intermediates[0] == ' ') {
			p.unsupported("csi", final)
		}
		return
	}

	b := p.buf
	switch final {
	case '@':
		b.InsertChars(p.arg(0, 1), p.blank())
	case 'A':
		b.CursorUp(p.arg(0, 1))
	case 'B', 'e':
		b.CursorDown(p.arg(0, 1))
	case 'C', 'a':
		b.CursorForward(p.arg(0, 1))
	case 'D':
		b.CursorBackward(p.arg(0, 1))
	case 'E':
		b.CursorDown(p.arg(0, 1))
		b.CarriageReturn()
	case 'F':
		b.CursorUp(p.arg(0, 1))
		b.CarriageReturn()
	case 'G', '`':
		cur := b.Cursor()
		b.SetCursor(cur.Row, p.arg(0, 1)-1)
	case 'H', 'f':
		p.moveTo(p.arg(0, 1)-1, p.arg(1, 1)-1)
	case 'I':
		b.Tab(p.arg(0, 1))
	case 'J':
		if mode, ok := eraseMode(p.arg(0, 0), true); ok {
			b.EraseDisplay(mode, p.blank())
		} else {
			p.unsupported("csi", final)
		}
	case 'K':
		if mode, ok := eraseMode(p.arg(0, 0), false); ok {
			b.EraseLine(mode, p.blank())
		} else {
			p.unsupported("csi", final)
		}
	case 'L':
		b.InsertLines(p.arg(0, 1))
	case 'M':
		b.DeleteLines(p.arg(0, 1))
	case 'P':
		b.DeleteChars(p.arg(0, 1), p.blank())
	case 'S':
		b.ScrollUp(p.arg(0, 1))
	case 'T':
		b.ScrollDown(p.arg(0, 1))
	case 'X':
		b.EraseChars(p.arg(0, 1), p.blank())
	case 'Z':
		b.BackTab(p.arg(0, 1))
	case 'c':
		if p.arg(0, 0) == 0 {
			p.handler.Reply([]byte("\x1b[?6c"))
		}
	case 'd':
		cur := b.Cursor()
		p.moveTo(p.arg(0, 1)-1, cur.Col)
	case 'g':
		switch p.arg(0, 0) {
		case 0:
			b.ClearTabStop(false)
		case 3:
			b.ClearTabStop(true)
		}
	case 'h', 'l':
		p.ansiMode(final == 'h')
	case 'm':
		p.sgr()
	case 'n':
		p.deviceStatus()
	case 'r':
		_, rows := b.Size()
		b.SetScrollRegion(p.arg(0, 1)-1, p.arg(1, rows))
		p.moveTo(0, 0)
	case 's':
		p.saveCursor()
	case 'u':
		p.restoreCursor()
	case 't':
		p.windowOp()
	default:
		p.unsupported("csi", final)
	}
}

// moveTo places the cursor, honoring origin mode.
func (p *Interpreter) moveTo(row, col int) {
	if p.modes.Origin {
		r := p.buf.ScrollRegion()
		row = min(row+r.Top, r.Bottom-1)
	}
	p.buf.SetCursor(row, col)
}

func eraseMode(n int, display bool) (screen.EraseMode, bool) {
	switch n {
	case 0:
		return screen.EraseToEnd, true
	case 1:
		return screen.EraseToStart, true
	case 2:
		return screen.EraseAll, true
	case 3:
		if display {
			return screen.EraseScrollback, true
		}
	}
	return 0, false
}

func (p *Interpreter) saveCursor() {
	p.buf.SaveCursor()
	p.savedPen = p.pen
}

func (p *Interpreter) restoreCursor() {
	p.buf.RestoreCursor()
	p.pen = p.savedPen
}

func (p *Interpreter) deviceStatus() {
	switch p.arg(0, 0) {
	case 5:
		p.handler.Reply([]byte("\x1b[0n"))
	case 6:
		cur := p.buf.Cursor()
		row := cur.Row
		if p.modes.Origin {
			row -= p.buf.ScrollRegion().Top
		}
		p.handler.Reply(fmt.Appendf(nil, "\x1b[%d;%dR", row+1, cur.Col+1))
	default:
		p.unsupported("csi", 'n')
	}
}

// windowOp handles XTWINOPS. Only the resize request is honored.
func (p *Interpreter) windowOp() {
	if p.arg(0, 0) != 8 {
		p.unsupported("csi", 't')
		return
	}
	cols, rows := p.buf.Size()
	if h := p.arg(1, 0); h > 0 {
		rows = h
	}
	if w := p.arg(2, 0); w > 0 {
		cols = w
	}
	p.handler.RequestResize(cols, rows)
}

func (p *Interpreter) ansiMode(set bool) {
	for i := range p.params {
		switch p.params[i][0] {
		case 4:
			p.modes.Insert = set
		default:
			p.unsupported("mode", 'h')
		}
	}
}

func (p *Interpreter) decPrivate(final byte) {
	if len(p.intermediates) > 0 {
		p.unsupported("csi", final)
		return
	}
	switch final {
	case 'h', 'l':
		set := final == 'h'
		for i := range p.params {
			p.decMode(p.params[i][0], set)
		}
	default:
		p.unsupported("csi", final)
	}
}

func (p *Interpreter) decMode(mode int, set bool) {
	switch mode {
	case 1:
		p.modes.AppCursorKeys = set
	case 3:
		// DECCOLM
		cols := 80
		if set {
			cols = 132
		}
		_, rows := p.buf.Size()
		p.buf.EraseDisplay(screen.EraseAll, screen.Style{})
		p.moveTo(0, 0)
		p.handler.RequestResize(cols, rows)
	case 6:
		p.modes.Origin = set
		p.moveTo(0, 0)
	case 7:
		p.modes.AutoWrap = set
	case 25:
		p.modes.CursorVisible = set
	case 47, 1047:
		p.modes.AltScreen = set
		p.buf.UseAlternate(set)
	case 1048:
		if set {
			p.saveCursor()
		} else {
			p.restoreCursor()
		}
	case 1049:
		if set {
			p.saveCursor()
			p.modes.AltScreen = true
			p.buf.UseAlternate(true)
		} else {
			p.modes.AltScreen = false
			p.buf.UseAlternate(false)
			p.restoreCursor()
		}
	case 2004:
		p.modes.BracketedPaste = set
	case 12, 1000, 1002, 1003, 1004, 1005, 1006, 1015:
		// Blink and mouse reporting have no effect on the buffer.
	default:
		p.unsupported("mode", 'h')
	}
}
