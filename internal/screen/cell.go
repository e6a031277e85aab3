// Package screen provides the damage-tracked character grid that backs a
// terminal session.
package screen

// ColorKind identifies how a Color value is interpreted.
type ColorKind uint8

const (
	// ColorDefault uses the display host's default foreground or background.
	ColorDefault ColorKind = iota
	// ColorIndexed is one of the 256 xterm palette entries.
	ColorIndexed
	// ColorRGB is a 24-bit color.
	ColorRGB
)

// Color is a terminal color.
type Color struct {
	Kind    ColorKind
	Index   uint8
	R, G, B uint8
}

// DefaultColor is the host default color.
var DefaultColor = Color{}

// IndexedColor returns palette entry n.
func IndexedColor(n uint8) Color {
	return Color{Kind: ColorIndexed, Index: n}
}

// RGBColor returns a 24-bit color.
func RGBColor(r, g, b uint8) Color {
	return Color{Kind: ColorRGB, R: r, G: g, B: b}
}

// Attr is a bit set of text attributes.
type Attr uint16

const (
	AttrBold Attr = 1 << iota
	AttrFaint
	AttrItalic
	AttrUnderline
	AttrBlink
	AttrInverse
	AttrHidden
	AttrStrike
)

// Style holds the rendition applied to a cell.
type Style struct {
	Fg    Color
	Bg    Color
	Attrs Attr
}

// Has reports whether all bits of a are set.
func (s Style) Has(a Attr) bool {
	return s.Attrs&a == a
}

// Cell is a single grid position. Cells are values and are replaced
// wholesale on write.
//
// Width is 1 for ordinary runes, 2 for the leading half of a wide rune and
// 0 for the trailing continuation of a wide rune.
type Cell struct {
	Rune  rune
	Width uint8
	Style Style
}

// BlankCell returns a space with the given style.
func BlankCell(style Style) Cell {
	return Cell{Rune: ' ', Width: 1, Style: style}
}

// EmptyCell returns a space with the default style.
func EmptyCell() Cell {
	return BlankCell(Style{})
}

// IsContinuation reports whether c is the trailing half of a wide rune.
func (c Cell) IsContinuation() bool {
	return c.Width == 0
}

// String returns the cell's text. Continuation cells render as nothing.
func (c Cell) String() string {
	if c.Width == 0 {
		return ""
	}
	if c.Rune == 0 {
		return " "
	}
	return string(c.Rune)
}

func blankRow(cols int, style Style) []Cell {
	row := make([]Cell, cols)
	blank := BlankCell(style)
	for i := range row {
		row[i] = blank
	}
	return row
}
