package screen

import "strings"

// History is a bounded ring of rows that have scrolled off the top of the
// grid, plus the viewport offset a host uses to browse them. It is not safe
// for concurrent use; Buffer guards it with its own lock.
type History struct {
	rows     [][]Cell
	capacity int
	head     int // next write position
	count    int
	evicted  int

	scrollPos int // 0 = live view, >0 = rows scrolled up from bottom
}

// NewHistory creates a history holding at most capacity rows. A capacity of
// zero disables scrollback.
func NewHistory(capacity int) *History {
	if capacity < 0 {
		capacity = 0
	}
	return &History{
		rows:     make([][]Cell, capacity),
		capacity: capacity,
	}
}

// Push appends a row, evicting the oldest row when full.
func (h *History) Push(row []Cell) {
	if h.capacity == 0 {
		h.evicted++
		return
	}
	if h.count == h.capacity {
		h.evicted++
	} else {
		h.count++
	}
	h.rows[h.head] = row
	h.head = (h.head + 1) % h.capacity

	// Keep a scrolled viewport anchored on the same content.
	if h.scrollPos > 0 && h.scrollPos < h.count {
		h.scrollPos++
	}
}

// Len returns the number of retained rows.
func (h *History) Len() int {
	return h.count
}

// Capacity returns the maximum number of retained rows.
func (h *History) Capacity() int {
	return h.capacity
}

// Evicted returns how many rows have been discarded since creation.
func (h *History) Evicted() int {
	return h.evicted
}

// Row returns retained row i, where 0 is the oldest.
func (h *History) Row(i int) []Cell {
	if i < 0 || i >= h.count {
		return nil
	}
	start := (h.head - h.count + h.capacity) % h.capacity
	return h.rows[(start+i)%h.capacity]
}

// Lines returns the retained rows as text, oldest first, with trailing
// blanks trimmed.
func (h *History) Lines() []string {
	lines := make([]string, h.count)
	for i := range lines {
		lines[i] = rowText(h.Row(i))
	}
	return lines
}

// SetCapacity resizes the ring. When shrinking, the oldest rows are dropped.
func (h *History) SetCapacity(n int) {
	if n < 0 {
		n = 0
	}
	if n == h.capacity {
		return
	}

	keep := h.count
	if keep > n {
		keep = n
	}
	old := make([][]Cell, 0, keep)
	for i := h.count - keep; i < h.count; i++ {
		old = append(old, h.Row(i))
	}
	h.evicted += h.count - keep

	h.rows = make([][]Cell, n)
	h.capacity = n
	h.head = 0
	h.count = 0
	for _, row := range old {
		h.rows[h.head] = row
		h.head = (h.head + 1) % n
		h.count++
	}
	if h.scrollPos > h.count {
		h.scrollPos = h.count
	}
}

// Clear drops every retained row.
func (h *History) Clear() {
	for i := range h.rows {
		h.rows[i] = nil
	}
	h.head = 0
	h.count = 0
	h.scrollPos = 0
}

// ScrollPos returns the current viewport offset (0 = live).
func (h *History) ScrollPos() int {
	return h.scrollPos
}

// IsScrolled returns true if the viewport is not showing live output.
func (h *History) IsScrolled() bool {
	return h.scrollPos > 0
}

// ScrollUp moves the viewport up by the given number of rows.
// Returns the new offset.
func (h *History) ScrollUp(lines int) int {
	h.scrollPos += lines
	if h.scrollPos > h.count {
		h.scrollPos = h.count
	}
	return h.scrollPos
}

// ScrollDown moves the viewport down by the given number of rows.
// Returns the new offset (minimum 0).
func (h *History) ScrollDown(lines int) int {
	h.scrollPos -= lines
	if h.scrollPos < 0 {
		h.scrollPos = 0
	}
	return h.scrollPos
}

// ScrollToBottom resets the viewport to live output.
func (h *History) ScrollToBottom() {
	h.scrollPos = 0
}

func rowText(row []Cell) string {
	var sb strings.Builder
	for _, c := range row {
		sb.WriteString(c.String())
	}
	return strings.TrimRight(sb.String(), " ")
}
