package ui

import (
	"testing"

	"github.com/abdullathedruid/vtsession/internal/screen"
)

func cells(s string, style screen.Style) []screen.Cell {
	var out []screen.Cell
	for _, r := range s {
		out = append(out, screen.Cell{Rune: r, Width: 1, Style: style})
	}
	return out
}

func TestRenderRow_Plain(t *testing.T) {
	if got := RenderRow(cells("hello", screen.Style{})); got != "hello" {
		t.Errorf("RenderRow() = %q, want %q", got, "hello")
	}
}

func TestRenderRow_StyleRuns(t *testing.T) {
	red := screen.Style{Fg: screen.IndexedColor(1)}
	row := append(cells("ab", red), cells("cd", screen.Style{})...)

	want := "\033[31mab" + ColorReset + "cd"
	if got := RenderRow(row); got != want {
		t.Errorf("RenderRow() = %q, want %q", got, want)
	}
}

func TestRenderRow_Colors(t *testing.T) {
	tests := []struct {
		name  string
		style screen.Style
		want  string
	}{
		{"bright fg", screen.Style{Fg: screen.IndexedColor(9)}, "\033[91m"},
		{"256 fg", screen.Style{Fg: screen.IndexedColor(200)}, "\033[38;5;200m"},
		{"rgb bg", screen.Style{Bg: screen.RGBColor(1, 2, 3)}, "\033[48;2;1;2;3m"},
		{"standard bg", screen.Style{Bg: screen.IndexedColor(4)}, "\033[44m"},
		{"bold inverse", screen.Style{Attrs: screen.AttrBold | screen.AttrInverse}, "\033[1m\033[7m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := tt.want + "x" + ColorReset
			if got := RenderRow(cells("x", tt.style)); got != want {
				t.Errorf("RenderRow() = %q, want %q", got, want)
			}
		})
	}
}

func TestRenderRow_WideAndHidden(t *testing.T) {
	row := []screen.Cell{
		{Rune: '日', Width: 2},
		{Width: 0},
		{Rune: 'a', Width: 1},
	}
	if got := RenderRow(row); got != "日a" {
		t.Errorf("RenderRow() = %q, want %q", got, "日a")
	}

	hidden := screen.Style{Attrs: screen.AttrHidden}
	if got := RenderRow(cells("pw", hidden)); got != "  "+ColorReset {
		t.Errorf("RenderRow(hidden) = %q, want two spaces", got)
	}
}
