package vt

type charset uint8

const (
	charsetASCII charset = iota
	charsetDECGraphics
)

// decGraphics maps the DEC special graphics range 0x5f-0x7e.
var decGraphics = [...]rune{
	' ', '◆', '▒', '␉', '␌', '␍', '␊', '°', '±', '␤', '␋', '┘', '┐', '┌', '└', '┼',
	'⎺', '⎻', '─', '⎼', '⎽', '├', '┤', '┴', '┬', '│', '≤', '≥', 'π', '≠', '£', '·',
}

func (c charset) translate(r rune) rune {
	if c == charsetDECGraphics && r >= 0x5f && r <= 0x7e {
		return decGraphics[r-0x5f]
	}
	return r
}
