package screen

import (
	"strings"
	"sync"
)

// Direction is the direction rows move in a scroll operation.
type Direction int

const (
	// ScrollUp moves content up; rows leave through the top of the region.
	ScrollUp Direction = iota
	// ScrollDown moves content down; rows leave through the bottom.
	ScrollDown
)

// EraseMode selects the extent of an erase operation.
type EraseMode int

const (
	EraseToEnd   EraseMode = iota // cursor to end (inclusive)
	EraseToStart                  // start to cursor (inclusive)
	EraseAll
	EraseScrollback // whole display plus scrollback history
)

// Position is a zero-based grid coordinate.
type Position struct {
	Row, Col int
}

// Region is a half-open range of rows [Top, Bottom).
type Region struct {
	Top, Bottom int
}

// Height returns the number of rows in the region.
func (r Region) Height() int {
	return r.Bottom - r.Top
}

type grid struct {
	cells       [][]Cell
	cursor      Position
	saved       Position
	wrapPending bool
	region      Region
}

func newGrid(cols, rows int) grid {
	g := grid{
		cells:  make([][]Cell, rows),
		region: Region{0, rows},
	}
	for i := range g.cells {
		g.cells[i] = blankRow(cols, Style{})
	}
	return g
}

// Buffer is the damage-tracked screen grid. It is safe for concurrent use:
// a single mutex serializes every read, write and damage operation.
type Buffer struct {
	mu sync.RWMutex

	cols, rows int
	main, alt  grid
	inAlt      bool
	tabs       []bool
	tabWidth   int

	history *History
	damage  Damage
}

// NewBuffer creates a cols×rows grid that retains up to scrollback rows of
// history. Non-positive dimensions are raised to 1.
func NewBuffer(cols, rows, scrollback int) *Buffer {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b := &Buffer{
		cols:     cols,
		rows:     rows,
		main:     newGrid(cols, rows),
		alt:      newGrid(cols, rows),
		history:  NewHistory(scrollback),
		tabWidth: 8,
	}
	b.resetTabs()
	return b
}

func (b *Buffer) g() *grid {
	if b.inAlt {
		return &b.alt
	}
	return &b.main
}

func (b *Buffer) resetTabs() {
	b.tabs = make([]bool, b.cols)
	for i := b.tabWidth; i < b.cols; i += b.tabWidth {
		b.tabs[i] = true
	}
}

// --- Geometry and cursor ---

// Size returns the grid dimensions.
func (b *Buffer) Size() (cols, rows int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cols, b.rows
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() Position {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.g().cursor
}

// SetCursor moves the cursor, clamping it into the grid.
func (b *Buffer) SetCursor(row, col int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.setCursor(row, col)
}

func (b *Buffer) setCursor(row, col int) {
	g := b.g()
	g.cursor.Row = clamp(row, 0, b.rows-1)
	g.cursor.Col = clamp(col, 0, b.cols-1)
	g.wrapPending = false
}

// CursorUp moves the cursor up n rows, stopping at the top margin when the
// cursor starts inside the scroll region.
func (b *Buffer) CursorUp(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	limit := 0
	if g.cursor.Row >= g.region.Top {
		limit = g.region.Top
	}
	b.setCursor(max(g.cursor.Row-n, limit), g.cursor.Col)
}

// CursorDown moves the cursor down n rows, stopping at the bottom margin when
// the cursor starts inside the scroll region.
func (b *Buffer) CursorDown(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	limit := b.rows - 1
	if g.cursor.Row < g.region.Bottom {
		limit = g.region.Bottom - 1
	}
	b.setCursor(min(g.cursor.Row+n, limit), g.cursor.Col)
}

// CursorForward moves the cursor right n columns.
func (b *Buffer) CursorForward(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	b.setCursor(g.cursor.Row, g.cursor.Col+n)
}

// CursorBackward moves the cursor left n columns.
func (b *Buffer) CursorBackward(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	b.setCursor(g.cursor.Row, g.cursor.Col-n)
}

// SaveCursor remembers the cursor position (DECSC).
func (b *Buffer) SaveCursor() {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	g.saved = g.cursor
}

// RestoreCursor returns to the saved position (DECRC).
func (b *Buffer) RestoreCursor() {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	b.setCursor(g.saved.Row, g.saved.Col)
}

// --- Cell access ---

// Cell returns the cell at (row, col), or an empty cell when out of range.
func (b *Buffer) Cell(row, col int) Cell {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return EmptyCell()
	}
	return b.g().cells[row][col]
}

// Write replaces one cell and marks its row damaged. Out-of-range writes
// are ignored.
func (b *Buffer) Write(row, col int, c Cell) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return
	}
	b.g().cells[row][col] = c
	b.damage.Add(row)
}

// Print writes c at the cursor and advances it. Wrapping follows the VT
// pending-wrap rule: writing the last column parks the cursor there and the
// next printed cell wraps to the following row, scrolling the region when
// the cursor is on its bottom margin.
func (b *Buffer) Print(c Cell, autowrap, insert bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := b.g()
	width := int(c.Width)
	if width < 1 {
		width = 1
	}
	if width > b.cols {
		width = 1
		c.Width = 1
	}

	if g.wrapPending {
		g.wrapPending = false
		if autowrap {
			g.cursor.Col = 0
			b.index()
		}
	}
	if g.cursor.Col+width > b.cols {
		if autowrap {
			g.cursor.Col = 0
			b.index()
		} else {
			g.cursor.Col = b.cols - width
		}
	}

	row := g.cells[g.cursor.Row]
	col := g.cursor.Col
	if insert {
		copy(row[col+width:], row[col:])
	}
	b.splitWide(row, col)
	if width == 2 {
		b.splitWide(row, col+1)
	}
	row[col] = c
	if width == 2 {
		row[col+1] = Cell{Width: 0, Style: c.Style}
	}
	b.damage.Add(g.cursor.Row)

	g.cursor.Col += width
	if g.cursor.Col >= b.cols {
		g.cursor.Col = b.cols - 1
		g.wrapPending = autowrap
	}
}

// splitWide blanks the other half of a wide rune about to be overwritten
// at col.
func (b *Buffer) splitWide(row []Cell, col int) {
	if col >= len(row) {
		return
	}
	cur := row[col]
	if cur.Width == 0 && col > 0 {
		row[col-1] = BlankCell(row[col-1].Style)
	}
	if cur.Width == 2 && col+1 < len(row) {
		row[col+1] = BlankCell(row[col+1].Style)
	}
}

// --- Control movement ---

// CarriageReturn moves the cursor to column 0.
func (b *Buffer) CarriageReturn() {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	g.cursor.Col = 0
	g.wrapPending = false
}

// Backspace moves the cursor one column left.
func (b *Buffer) Backspace() {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	if g.cursor.Col > 0 {
		g.cursor.Col--
	}
	g.wrapPending = false
}

// Index moves the cursor down one row, scrolling the region up when the
// cursor sits on the bottom margin (LF, IND).
func (b *Buffer) Index() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.g().wrapPending = false
	b.index()
}

func (b *Buffer) index() {
	g := b.g()
	switch {
	case g.cursor.Row == g.region.Bottom-1:
		b.scroll(g.region, 1, ScrollUp)
	case g.cursor.Row < b.rows-1:
		g.cursor.Row++
	}
}

// ReverseIndex moves the cursor up one row, scrolling the region down when
// the cursor sits on the top margin (RI).
func (b *Buffer) ReverseIndex() {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	g.wrapPending = false
	switch {
	case g.cursor.Row == g.region.Top:
		b.scroll(g.region, 1, ScrollDown)
	case g.cursor.Row > 0:
		g.cursor.Row--
	}
}

// Tab advances to the next tab stop n times.
func (b *Buffer) Tab(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	for ; n > 0; n-- {
		col := g.cursor.Col + 1
		for col < b.cols-1 && !b.tabs[col] {
			col++
		}
		g.cursor.Col = min(col, b.cols-1)
	}
	g.wrapPending = false
}

// BackTab moves to the previous tab stop n times.
func (b *Buffer) BackTab(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	for ; n > 0; n-- {
		col := g.cursor.Col - 1
		for col > 0 && !b.tabs[col] {
			col--
		}
		g.cursor.Col = max(col, 0)
	}
	g.wrapPending = false
}

// SetTabWidth resets the tab stops to every n columns.
func (b *Buffer) SetTabWidth(n int) {
	if n <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabWidth = n
	b.resetTabs()
}

// SetTabStop sets a tab stop at the cursor column.
func (b *Buffer) SetTabStop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tabs[b.g().cursor.Col] = true
}

// ClearTabStop clears the stop at the cursor, or every stop when all is set.
func (b *Buffer) ClearTabStop(all bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if all {
		for i := range b.tabs {
			b.tabs[i] = false
		}
		return
	}
	b.tabs[b.g().cursor.Col] = false
}

// --- Scrolling ---

// SetScrollRegion sets the scroll margins to rows [top, bottom) and homes
// the cursor. Regions shorter than two rows reset to the full screen.
func (b *Buffer) SetScrollRegion(top, bottom int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	top = clamp(top, 0, b.rows-1)
	bottom = clamp(bottom, 1, b.rows)
	if bottom-top < 2 {
		top, bottom = 0, b.rows
	}
	g.region = Region{top, bottom}
	b.setCursor(0, 0)
}

// ScrollRegion returns the active scroll margins.
func (b *Buffer) ScrollRegion() Region {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.g().region
}

// Scroll shifts the rows of region by lines in dir. Rows scrolled up off
// the top of the screen enter scrollback history (main screen only), where
// the oldest rows are evicted once capacity is reached. The whole region is
// marked damaged.
func (b *Buffer) Scroll(region Region, lines int, dir Direction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	region.Top = clamp(region.Top, 0, b.rows)
	region.Bottom = clamp(region.Bottom, region.Top, b.rows)
	b.scroll(region, lines, dir)
}

// ScrollUp scrolls the active scroll region up n rows (SU).
func (b *Buffer) ScrollUp(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scroll(b.g().region, n, ScrollUp)
}

// ScrollDown scrolls the active scroll region down n rows (SD).
func (b *Buffer) ScrollDown(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.scroll(b.g().region, n, ScrollDown)
}

func (b *Buffer) scroll(region Region, n int, dir Direction) {
	span := region.Height()
	if n <= 0 || span <= 0 {
		return
	}
	if n > span {
		n = span
	}
	g := b.g()
	rows := g.cells

	switch dir {
	case ScrollUp:
		if region.Top == 0 && !b.inAlt {
			for r := 0; r < n; r++ {
				b.history.Push(rows[r])
			}
		}
		copy(rows[region.Top:region.Bottom-n], rows[region.Top+n:region.Bottom])
		for r := region.Bottom - n; r < region.Bottom; r++ {
			rows[r] = blankRow(b.cols, Style{})
		}
	case ScrollDown:
		copy(rows[region.Top+n:region.Bottom], rows[region.Top:region.Bottom-n])
		for r := region.Top; r < region.Top+n; r++ {
			rows[r] = blankRow(b.cols, Style{})
		}
	}
	b.damage.AddRange(region.Top, region.Bottom)
}

// InsertLines inserts n blank rows at the cursor row, within the scroll
// region (IL).
func (b *Buffer) InsertLines(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	if g.cursor.Row < g.region.Top || g.cursor.Row >= g.region.Bottom {
		return
	}
	b.scroll(Region{g.cursor.Row, g.region.Bottom}, n, ScrollDown)
	g.cursor.Col = 0
	g.wrapPending = false
}

// DeleteLines removes n rows at the cursor row, within the scroll region
// (DL). Deleted rows never enter scrollback.
func (b *Buffer) DeleteLines(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	if g.cursor.Row < g.region.Top || g.cursor.Row >= g.region.Bottom {
		return
	}
	region := Region{g.cursor.Row, g.region.Bottom}
	if region.Top == 0 {
		// scroll() feeds history for regions starting at row 0.
		span := region.Height()
		if n > span {
			n = span
		}
		rows := g.cells
		copy(rows[region.Top:region.Bottom-n], rows[region.Top+n:region.Bottom])
		for r := region.Bottom - n; r < region.Bottom; r++ {
			rows[r] = blankRow(b.cols, Style{})
		}
		b.damage.AddRange(region.Top, region.Bottom)
	} else {
		b.scroll(region, n, ScrollUp)
	}
	g.cursor.Col = 0
	g.wrapPending = false
}

// --- Character editing ---

// InsertChars shifts the cursor row right by n cells from the cursor (ICH).
func (b *Buffer) InsertChars(n int, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	row := g.cells[g.cursor.Row]
	col := g.cursor.Col
	n = min(n, b.cols-col)
	if n <= 0 {
		return
	}
	copy(row[col+n:], row[col:])
	for i := col; i < col+n; i++ {
		row[i] = BlankCell(style)
	}
	g.wrapPending = false
	b.damage.Add(g.cursor.Row)
}

// DeleteChars removes n cells at the cursor, shifting the rest left (DCH).
func (b *Buffer) DeleteChars(n int, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	row := g.cells[g.cursor.Row]
	col := g.cursor.Col
	n = min(n, b.cols-col)
	if n <= 0 {
		return
	}
	copy(row[col:], row[col+n:])
	for i := b.cols - n; i < b.cols; i++ {
		row[i] = BlankCell(style)
	}
	g.wrapPending = false
	b.damage.Add(g.cursor.Row)
}

// EraseChars blanks n cells from the cursor without shifting (ECH).
func (b *Buffer) EraseChars(n int, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	row := g.cells[g.cursor.Row]
	end := min(g.cursor.Col+n, b.cols)
	for i := g.cursor.Col; i < end; i++ {
		row[i] = BlankCell(style)
	}
	g.wrapPending = false
	b.damage.Add(g.cursor.Row)
}

// EraseLine blanks part or all of the cursor row (EL).
func (b *Buffer) EraseLine(mode EraseMode, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	b.eraseRow(g.cursor.Row, mode, g.cursor.Col, style)
	g.wrapPending = false
}

func (b *Buffer) eraseRow(r int, mode EraseMode, col int, style Style) {
	row := b.g().cells[r]
	from, to := 0, b.cols
	switch mode {
	case EraseToEnd:
		from = col
	case EraseToStart:
		to = col + 1
	}
	for i := from; i < to && i < b.cols; i++ {
		row[i] = BlankCell(style)
	}
	b.damage.Add(r)
}

// EraseDisplay blanks part or all of the screen (ED). EraseScrollback also
// drops history.
func (b *Buffer) EraseDisplay(mode EraseMode, style Style) {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	switch mode {
	case EraseToEnd:
		b.eraseRow(g.cursor.Row, EraseToEnd, g.cursor.Col, style)
		for r := g.cursor.Row + 1; r < b.rows; r++ {
			g.cells[r] = blankRow(b.cols, style)
		}
		b.damage.AddRange(g.cursor.Row, b.rows)
	case EraseToStart:
		for r := 0; r < g.cursor.Row; r++ {
			g.cells[r] = blankRow(b.cols, style)
		}
		b.eraseRow(g.cursor.Row, EraseToStart, g.cursor.Col, style)
		b.damage.AddRange(0, g.cursor.Row+1)
	case EraseAll, EraseScrollback:
		for r := 0; r < b.rows; r++ {
			g.cells[r] = blankRow(b.cols, style)
		}
		b.damage.AddRange(0, b.rows)
		if mode == EraseScrollback {
			b.history.Clear()
		}
	}
	g.wrapPending = false
}

// --- Alternate screen ---

// UseAlternate switches between the main and alternate grids. Entering the
// alternate grid clears it. The whole screen is marked damaged on a switch.
func (b *Buffer) UseAlternate(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if on == b.inAlt {
		return
	}
	if on {
		b.alt = newGrid(b.cols, b.rows)
		b.alt.cursor = b.main.cursor
	}
	b.inAlt = on
	b.damage.AddRange(0, b.rows)
}

// InAlternate reports whether the alternate grid is active.
func (b *Buffer) InAlternate() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.inAlt
}

// --- Damage ---

// ResetDamage clears the damage set without touching cell contents.
func (b *Buffer) ResetDamage() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.damage.Reset()
}

// DamagedRegion returns a copy of the damage set without clearing it.
func (b *Buffer) DamagedRegion() Damage {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.damage.Clone()
}

// DamageAll marks every row damaged.
func (b *Buffer) DamageAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.damage.AddRange(0, b.rows)
}

// TakeDamage returns the damage set and clears it in one step.
func (b *Buffer) TakeDamage() Damage {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.damage.Clone()
	b.damage.Reset()
	return d
}

// Frame is what a display host needs to repaint: the damaged rows, their
// contents at the moment damage was taken, and the cursor.
type Frame struct {
	Cols, Rows int
	Damage     Damage
	Lines      map[int][]Cell
	Cursor     Position
}

// TakeFrame copies every damaged row and resets damage atomically, so no
// mutation can slip between the copy and the reset.
func (b *Buffer) TakeFrame() Frame {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := b.g()
	f := Frame{
		Cols:   b.cols,
		Rows:   b.rows,
		Damage: b.damage.Clone(),
		Lines:  make(map[int][]Cell),
		Cursor: g.cursor,
	}
	for _, r := range f.Damage.Rows() {
		row := make([]Cell, b.cols)
		copy(row, g.cells[r])
		f.Lines[r] = row
	}
	b.damage.Reset()
	return f
}

// --- Resize ---

// Resize changes the grid dimensions. Columns are clipped or padded; when
// rows shrink below the cursor, rows above it move to scrollback so the
// cursor line stays visible. The cursor is clamped, margins reset, and the
// whole grid is marked damaged.
func (b *Buffer) Resize(cols, rows int) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if cols == b.cols && rows == b.rows {
		return
	}

	b.resizeGrid(&b.main, cols, rows, true)
	b.resizeGrid(&b.alt, cols, rows, false)

	b.cols, b.rows = cols, rows
	b.resetTabs()
	b.damage.Reset()
	b.damage.AddRange(0, rows)
}

func (b *Buffer) resizeGrid(g *grid, cols, rows int, keepHistory bool) {
	cells := g.cells
	if excess := g.cursor.Row - (rows - 1); excess > 0 {
		if keepHistory {
			for _, row := range cells[:excess] {
				b.history.Push(row)
			}
		}
		cells = cells[excess:]
		g.cursor.Row -= excess
		g.saved.Row = max(g.saved.Row-excess, 0)
	}

	out := make([][]Cell, rows)
	for r := range out {
		if r < len(cells) {
			out[r] = resizeRow(cells[r], cols)
		} else {
			out[r] = blankRow(cols, Style{})
		}
	}
	g.cells = out
	g.cursor.Row = clamp(g.cursor.Row, 0, rows-1)
	g.cursor.Col = clamp(g.cursor.Col, 0, cols-1)
	g.saved.Row = clamp(g.saved.Row, 0, rows-1)
	g.saved.Col = clamp(g.saved.Col, 0, cols-1)
	g.wrapPending = false
	g.region = Region{0, rows}
}

func resizeRow(row []Cell, cols int) []Cell {
	out := make([]Cell, cols)
	n := copy(out, row)
	for i := n; i < cols; i++ {
		out[i] = EmptyCell()
	}
	// A wide rune cut in half by the new margin becomes a blank.
	if cols > 0 && out[cols-1].Width == 2 {
		out[cols-1] = EmptyCell()
	}
	return out
}

// Reset restores the power-on state (RIS): both grids blank, cursor home,
// margins and tab stops reset. Scrollback is kept.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.main = newGrid(b.cols, b.rows)
	b.alt = newGrid(b.cols, b.rows)
	b.inAlt = false
	b.resetTabs()
	b.damage.AddRange(0, b.rows)
}

// --- Scrollback ---

// History returns the scrollback rows as text, oldest first.
func (b *Buffer) History() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.Lines()
}

// HistoryLen returns the number of retained scrollback rows.
func (b *Buffer) HistoryLen() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.Len()
}

// SetScrollbackCapacity changes the scrollback bound, dropping the oldest
// rows when shrinking.
func (b *Buffer) SetScrollbackCapacity(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history.SetCapacity(n)
}

// ScrollView moves the history viewport by delta rows (positive = back in
// time) and returns the new offset. The visible grid is marked damaged when
// the offset changes.
func (b *Buffer) ScrollView(delta int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	before := b.history.ScrollPos()
	var pos int
	if delta >= 0 {
		pos = b.history.ScrollUp(delta)
	} else {
		pos = b.history.ScrollDown(-delta)
	}
	if pos != before {
		b.damage.AddRange(0, b.rows)
	}
	return pos
}

// ResetView returns the history viewport to live output.
func (b *Buffer) ResetView() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.history.IsScrolled() {
		b.history.ScrollToBottom()
		b.damage.AddRange(0, b.rows)
	}
}

// ViewOffset returns the history viewport offset (0 = live).
func (b *Buffer) ViewOffset() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.history.ScrollPos()
}

// ViewRow returns display row r taking the history viewport into account.
func (b *Buffer) ViewRow(r int) []Cell {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if r < 0 || r >= b.rows {
		return nil
	}
	pos := b.history.ScrollPos()
	var src []Cell
	if r < pos {
		src = b.history.Row(b.history.Len() - pos + r)
	} else {
		src = b.g().cells[r-pos]
	}
	return resizeRow(src, b.cols)
}

// --- Snapshots ---

// Snapshot is a read-only copy of the visible grid.
type Snapshot struct {
	Cols, Rows int
	Cells      [][]Cell
	Cursor     Position
	Damage     Damage
	Alternate  bool
	HistoryLen int
	HistoryCap int
	Evicted    int
}

// Snapshot copies the visible grid, cursor and damage.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	g := b.g()
	cells := make([][]Cell, b.rows)
	for r := range cells {
		cells[r] = make([]Cell, b.cols)
		copy(cells[r], g.cells[r])
	}
	return Snapshot{
		Cols:       b.cols,
		Rows:       b.rows,
		Cells:      cells,
		Cursor:     g.cursor,
		Damage:     b.damage.Clone(),
		Alternate:  b.inAlt,
		HistoryLen: b.history.Len(),
		HistoryCap: b.history.Capacity(),
		Evicted:    b.history.Evicted(),
	}
}

// Lines returns each row as text with trailing blanks trimmed.
func (s Snapshot) Lines() []string {
	lines := make([]string, len(s.Cells))
	for i, row := range s.Cells {
		lines[i] = rowText(row)
	}
	return lines
}

// String joins Lines with newlines.
func (s Snapshot) String() string {
	return strings.Join(s.Lines(), "\n")
}

// Line returns row r as text with trailing blanks trimmed.
func (b *Buffer) Line(r int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if r < 0 || r >= b.rows {
		return ""
	}
	return rowText(b.g().cells[r])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
