package ui

// StatusBarHeight is the height reserved for the status bar at the bottom.
const StatusBarHeight = 1

// SidebarWidth is the width of the sidebar in characters.
const SidebarWidth = 24

// Layout represents the position and size of a view in screen coordinates.
type Layout struct {
	X0, Y0, X1, Y1 int
}

// Width returns the interior width (excluding borders).
func (l Layout) Width() int {
	w := l.X1 - l.X0 - 1
	if w < 1 {
		return 1
	}
	return w
}

// Height returns the interior height (excluding borders).
func (l Layout) Height() int {
	h := l.Y1 - l.Y0 - 1
	if h < 1 {
		return 1
	}
	return h
}

// HostLayout holds the session sidebar, the terminal view and the status
// line.
type HostLayout struct {
	Sidebar Layout
	Main    Layout
	Status  Layout
}

// CalculateLayout splits the screen into a sidebar on the left, the
// terminal on the right and a status line along the bottom. The sidebar is
// dropped on screens too narrow to hold it next to a usable terminal.
func CalculateLayout(maxX, maxY int) HostLayout {
	bottom := maxY - 1 - StatusBarHeight
	status := Layout{-1, maxY - 1 - StatusBarHeight, maxX, maxY}

	sidebarWidth := SidebarWidth
	if sidebarWidth > maxX/3 {
		sidebarWidth = maxX / 3
	}
	if sidebarWidth < 10 {
		return HostLayout{
			Main:   Layout{0, 0, maxX - 1, bottom},
			Status: status,
		}
	}

	return HostLayout{
		Sidebar: Layout{0, 0, sidebarWidth - 1, bottom},
		Main:    Layout{sidebarWidth, 0, maxX - 1, bottom},
		Status:  status,
	}
}

// HasSidebar reports whether the layout includes the session list.
func (h HostLayout) HasSidebar() bool {
	return h.Sidebar != Layout{}
}
