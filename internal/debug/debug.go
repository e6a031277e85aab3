// Package debug is the read-only inspection surface over a session, plus
// the two diagnostic operations that may touch it: resetting damage and
// forcing a redraw.
package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/abdullathedruid/vtsession/internal/screen"
	"github.com/abdullathedruid/vtsession/internal/session"
)

// Inspector looks at one session.
type Inspector struct {
	s *session.Session
}

// New returns an Inspector for s.
func New(s *session.Session) *Inspector {
	return &Inspector{s: s}
}

// Snapshot copies the visible grid, cursor and damage.
func (in *Inspector) Snapshot() screen.Snapshot {
	return in.s.Buffer().Snapshot()
}

// History returns the scrollback rows, oldest first.
func (in *Inspector) History() []string {
	return in.s.Buffer().History()
}

// ResetDamage marks the buffer as already drawn.
func (in *Inspector) ResetDamage() {
	in.s.ResetDamage()
}

// ForceRedraw damages every row and schedules a redraw.
func (in *Inspector) ForceRedraw() {
	in.s.ForceRedraw()
}

// Dump writes a human-readable picture of the session: a header with
// lifecycle and interpreter state, then each row framed by '|'. The
// cursor row is marked '>' and damaged rows '*'.
func (in *Inspector) Dump(w io.Writer) error {
	snap := in.Snapshot()
	st := in.s.Status()

	var sb strings.Builder
	fmt.Fprintf(&sb, "session %s %q (%s) connector %s\n", in.s.Handle(), in.s.Name(), in.s.State(), in.s.Connector().Name())
	fmt.Fprintf(&sb, "size %dx%d cursor %d,%d alternate=%t history=%d/%d evicted=%d\n",
		snap.Cols, snap.Rows, snap.Cursor.Row, snap.Cursor.Col, snap.Alternate,
		snap.HistoryLen, snap.HistoryCap, snap.Evicted)
	fmt.Fprintf(&sb, "damage %s parse %s\n", snap.Damage, st.Parse)
	fmt.Fprintf(&sb, "bytes %d sequences %d malformed %d unsupported %d\n",
		st.Stats.Bytes, st.Stats.Sequences, st.Stats.Malformed, st.Stats.Unsupported)
	fmt.Fprintf(&sb, "rejected resizes %d dropped replies %d\n", st.RejectedResizes, st.DroppedReplies)

	for r, line := range snap.Lines() {
		mark := ' '
		if snap.Damage.Contains(r) {
			mark = '*'
		}
		if r == snap.Cursor.Row {
			mark = '>'
		}
		fmt.Fprintf(&sb, "%c%3d |%-*s|\n", mark, r, snap.Cols, line)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// Diff returns a unified diff of the text of two snapshots, or "" when
// they show the same text.
func Diff(a, b screen.Snapshot) string {
	before := text(a)
	after := text(b)
	edits := myers.ComputeEdits(span.URIFromPath("before"), before, after)
	return fmt.Sprint(gotextdiff.ToUnified("before", "after", before, edits))
}

func text(s screen.Snapshot) string {
	lines := s.Lines()
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
