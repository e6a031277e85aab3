package vt

import "strings"

func (p *Interpreter) escDispatch(final byte) {
	if len(p.intermediates) > 0 {
		p.designate(p.intermediates[0], final)
		return
	}
	b := p.buf
	switch final {
	case '7':
		p.saveCursor()
	case '8':
		p.restoreCursor()
	case 'D':
		b.Index()
	case 'E':
		b.Index()
		b.CarriageReturn()
	case 'H':
		b.SetTabStop()
	case 'M':
		b.ReverseIndex()
	case 'c':
		b.Reset()
		p.Reset()
	case '=':
		p.modes.AppKeypad = true
	case '>':
		p.modes.AppKeypad = false
	case '\\':
		// ST closing a string that was already handled.
	default:
		p.unsupported("esc", final)
	}
}

// designate selects a character set into G0 or G1.
func (p *Interpreter) designate(inter, final byte) {
	var slot int
	switch inter {
	case '(':
		slot = 0
	case ')':
		slot = 1
	default:
		p.unsupported("esc", final)
		return
	}
	switch final {
	case '0':
		p.charsets[slot] = charsetDECGraphics
	case 'B', 'A', '1', '2':
		p.charsets[slot] = charsetASCII
	default:
		p.unsupported("esc", final)
	}
}

func (p *Interpreter) oscDispatch() {
	cmd, arg, ok := strings.Cut(string(p.osc), ";")
	p.osc = p.osc[:0]
	if !ok {
		p.unsupported("osc", 0)
		return
	}
	switch cmd {
	case "0", "2":
		p.handler.SetTitle(arg)
	case "1", "4", "7", "8", "10", "11", "12", "52", "104", "112", "133":
		// Icon name, palette, cwd, hyperlinks and clipboard are not
		// modelled.
	default:
		p.unsupported("osc", 0)
	}
}
