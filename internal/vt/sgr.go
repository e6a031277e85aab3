package vt

import "github.com/abdullathedruid/vtsession/internal/screen"

// sgr applies Select Graphic Rendition parameters to the pen. Extended
// colors accept both the ';' form (38;5;n) and the ':' form (38:2::r:g:b).
func (p *Interpreter) sgr() {
	if len(p.params) == 0 {
		p.pen = screen.Style{}
		return
	}
	for i := 0; i < len(p.params); i++ {
		g := p.params[i]
		switch n := g[0]; {
		case n == 0:
			p.pen = screen.Style{}
		case n == 1:
			p.pen.Attrs |= screen.AttrBold
		case n == 2:
			p.pen.Attrs |= screen.AttrFaint
		case n == 3:
			p.pen.Attrs |= screen.AttrItalic
		case n == 4:
			if len(g) > 1 && g[1] == 0 {
				p.pen.Attrs &^= screen.AttrUnderline
			} else {
				p.pen.Attrs |= screen.AttrUnderline
			}
		case n == 5 || n == 6:
			p.pen.Attrs |= screen.AttrBlink
		case n == 7:
			p.pen.Attrs |= screen.AttrInverse
		case n == 8:
			p.pen.Attrs |= screen.AttrHidden
		case n == 9:
			p.pen.Attrs |= screen.AttrStrike
		case n == 21 || n == 24:
			p.pen.Attrs &^= screen.AttrUnderline
		case n == 22:
			p.pen.Attrs &^= screen.AttrBold | screen.AttrFaint
		case n == 23:
			p.pen.Attrs &^= screen.AttrItalic
		case n == 25:
			p.pen.Attrs &^= screen.AttrBlink
		case n == 27:
			p.pen.Attrs &^= screen.AttrInverse
		case n == 28:
			p.pen.Attrs &^= screen.AttrHidden
		case n == 29:
			p.pen.Attrs &^= screen.AttrStrike
		case n >= 30 && n <= 37:
			p.pen.Fg = screen.IndexedColor(uint8(n - 30))
		case n == 38:
			c, used := p.extendedColor(i)
			p.pen.Fg = c
			i += used
		case n == 39:
			p.pen.Fg = screen.DefaultColor
		case n >= 40 && n <= 47:
			p.pen.Bg = screen.IndexedColor(uint8(n - 40))
		case n == 48:
			c, used := p.extendedColor(i)
			p.pen.Bg = c
			i += used
		case n == 49:
			p.pen.Bg = screen.DefaultColor
		case n >= 90 && n <= 97:
			p.pen.Fg = screen.IndexedColor(uint8(n - 90 + 8))
		case n >= 100 && n <= 107:
			p.pen.Bg = screen.IndexedColor(uint8(n - 100 + 8))
		default:
			p.unsupported("sgr", 'm')
		}
	}
}

// extendedColor decodes the color introduced by params[i] (38 or 48). It
// returns the color and how many following ';' groups were consumed.
func (p *Interpreter) extendedColor(i int) (screen.Color, int) {
	g := p.params[i]
	if len(g) > 1 {
		// Colon form: 38:5:n, 38:2:r:g:b or 38:2:cs:r:g:b.
		switch g[1] {
		case 5:
			if len(g) > 2 {
				return screen.IndexedColor(uint8(min(g[2], 255))), 0
			}
		case 2:
			rgb := g[2:]
			if len(rgb) > 3 {
				rgb = rgb[len(rgb)-3:]
			}
			if len(rgb) == 3 {
				return screen.RGBColor(byteOf(rgb[0]), byteOf(rgb[1]), byteOf(rgb[2])), 0
			}
		}
		p.unsupported("sgr", 'm')
		return screen.DefaultColor, 0
	}

	rest := p.params[i+1:]
	if len(rest) >= 2 && rest[0][0] == 5 {
		return screen.IndexedColor(byteOf(rest[1][0])), 2
	}
	if len(rest) >= 4 && rest[0][0] == 2 {
		return screen.RGBColor(byteOf(rest[1][0]), byteOf(rest[2][0]), byteOf(rest[3][0])), 4
	}
	p.unsupported("sgr", 'm')
	return screen.DefaultColor, len(rest)
}

func byteOf(v int) uint8 {
	return uint8(min(v, 255))
}
