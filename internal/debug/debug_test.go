package debug

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullathedruid/vtsession/internal/session"
	"github.com/abdullathedruid/vtsession/internal/terminal"
)

func newInspected(t *testing.T) (*Inspector, *session.Session, *terminal.Far) {
	t.Helper()
	conn, far := terminal.NewPipe("pipe")
	s := session.New(conn, session.Options{Handle: 7, Cols: 8, Rows: 3, Scrollback: 5})
	require.NoError(t, s.Start())
	t.Cleanup(s.Stop)
	return New(s), s, far
}

func TestInspector_SnapshotAndDamage(t *testing.T) {
	in, s, far := newInspected(t)

	_, err := far.WriteString("ab\r\ncd")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Buffer().Line(1) == "cd" }, time.Second, time.Millisecond)

	snap := in.Snapshot()
	assert.Equal(t, []string{"ab", "cd", ""}, snap.Lines())
	assert.Equal(t, []int{0, 1}, snap.Damage.Rows())

	in.ResetDamage()
	assert.True(t, in.Snapshot().Damage.Empty())

	in.ForceRedraw()
	assert.Equal(t, []int{0, 1, 2}, in.Snapshot().Damage.Rows())
}

func TestInspector_Dump(t *testing.T) {
	in, s, far := newInspected(t)

	_, err := far.WriteString("hi\r\nthere")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Buffer().Line(1) == "there" }, time.Second, time.Millisecond)
	in.ResetDamage()
	_, err = far.WriteString("\x1b[1;1HH")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Buffer().Line(0) == "Hi" }, time.Second, time.Millisecond)

	var sb strings.Builder
	require.NoError(t, in.Dump(&sb))
	out := sb.String()

	assert.Contains(t, out, `session #7 "pipe" (running)`)
	assert.Contains(t, out, `(running) connector pipe`)
	assert.Contains(t, out, "size 8x3 cursor 0,1")
	assert.Contains(t, out, "history=0/5 evicted=0")
	assert.Contains(t, out, "rejected resizes 0 dropped replies 0")
	assert.Contains(t, out, "damage {0}")
	assert.Contains(t, out, ">  0 |Hi      |")
	assert.Contains(t, out, "   1 |there   |")
	assert.Contains(t, out, "   2 |        |")
}

func TestInspector_History(t *testing.T) {
	in, s, far := newInspected(t)

	_, err := far.WriteString("1\r\n2\r\n3\r\n4")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Buffer().HistoryLen() == 1 }, time.Second, time.Millisecond)

	assert.Equal(t, []string{"1"}, in.History())
}

func TestDiff(t *testing.T) {
	in, s, far := newInspected(t)
	before := in.Snapshot()

	assert.Empty(t, Diff(before, before))

	_, err := far.WriteString("\r\nnew")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return s.Buffer().Line(1) == "new" }, time.Second, time.Millisecond)

	diff := Diff(before, in.Snapshot())
	assert.Contains(t, diff, "--- before")
	assert.Contains(t, diff, "+++ after")
	assert.Contains(t, diff, "+new")
}

func TestInspector_DumpCountsEvictionAndRejectedResizes(t *testing.T) {
	in, s, far := newInspected(t)

	_, err := far.WriteString("1\r\n2\r\n3\r\n4\r\n5\r\n6\r\n7\r\n8\r\n9\x1b[8;9999;9999t")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return s.Status().RejectedResizes == 1 && s.Buffer().Line(2) == "9"
	}, time.Second, time.Millisecond)

	var sb strings.Builder
	require.NoError(t, in.Dump(&sb))
	out := sb.String()

	assert.Contains(t, out, "size 8x3")
	assert.Contains(t, out, "history=5/5 evicted=1")
	assert.Contains(t, out, "rejected resizes 1 dropped replies 0")
}
