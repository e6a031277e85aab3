package ui

import "testing"

func TestCalculateLayout(t *testing.T) {
	l := CalculateLayout(120, 40)

	if !l.HasSidebar() {
		t.Fatal("expected a sidebar at 120 columns")
	}
	if l.Sidebar.X0 != 0 || l.Sidebar.X1 != SidebarWidth-1 {
		t.Errorf("unexpected sidebar: %+v", l.Sidebar)
	}
	if l.Main.X0 != SidebarWidth || l.Main.X1 != 119 || l.Main.Y1 != 38-StatusBarHeight+1 {
		t.Errorf("unexpected main: %+v", l.Main)
	}
	if l.Status.Y0 != 38 || l.Status.Y1 != 40 {
		t.Errorf("unexpected status: %+v", l.Status)
	}
}

func TestCalculateLayout_Narrow(t *testing.T) {
	l := CalculateLayout(25, 10)
	if l.HasSidebar() {
		t.Errorf("unexpected sidebar at 25 columns: %+v", l.Sidebar)
	}
	if l.Main.X0 != 0 || l.Main.X1 != 24 {
		t.Errorf("unexpected main: %+v", l.Main)
	}
}

func TestLayout_Dimensions(t *testing.T) {
	l := Layout{X0: 10, Y0: 5, X1: 50, Y1: 25}
	if l.Width() != 39 {
		t.Errorf("Width() = %d, want 39", l.Width())
	}
	if l.Height() != 19 {
		t.Errorf("Height() = %d, want 19", l.Height())
	}

	tiny := Layout{X0: 0, Y0: 0, X1: 1, Y1: 1}
	if tiny.Width() != 1 || tiny.Height() != 1 {
		t.Errorf("tiny layout = %dx%d, want 1x1", tiny.Width(), tiny.Height())
	}
}
