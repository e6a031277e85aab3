package host

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jesseduffield/gocui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdullathedruid/vtsession/internal/config"
	"github.com/abdullathedruid/vtsession/internal/input"
	"github.com/abdullathedruid/vtsession/internal/session"
	"github.com/abdullathedruid/vtsession/internal/terminal"
)

const waitFor = 2 * time.Second

type pipes struct {
	mu  sync.Mutex
	far []*terminal.Far
}

func (p *pipes) spawn(cols, rows int) (terminal.Connector, error) {
	conn, far := terminal.NewPipe("pipe")
	p.mu.Lock()
	p.far = append(p.far, far)
	p.mu.Unlock()
	return conn, nil
}

func (p *pipes) get(i int) *terminal.Far {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.far[i]
}

func newTestApp(t *testing.T) (*App, *pipes) {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Cols, cfg.Rows = 20, 5
	p := &pipes{}
	a, err := newApp(Options{Config: cfg, Spawn: p.spawn})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, p
}

// pumpUntil feeds widget events to the app until cond holds. It returns
// the first non-nil error from handleEvent.
func pumpUntil(t *testing.T, a *App, cond func() bool) error {
	t.Helper()
	deadline := time.After(waitFor)
	for !cond() {
		select {
		case ev := <-a.widget.Events():
			if err := a.handleEvent(ev); err != nil {
				return err
			}
		case <-deadline:
			t.Fatal("condition not met")
		}
	}
	return nil
}

func plain(s string) string {
	return strings.TrimRight(s, " ")
}

func press(a *App, key gocui.Key, ch rune) {
	a.edit(nil, key, ch, gocui.ModNone)
}

func TestNewSessionRendersOutput(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())

	s := a.widget.CurrentSession()
	require.NotNil(t, s)

	_, err := p.get(0).WriteString("hello\r\nworld")
	require.NoError(t, err)

	require.NoError(t, pumpUntil(t, a, func() bool {
		lines := a.lines[s.Handle()]
		return len(lines) == 5 && plain(lines[1]) == "world"
	}))
	assert.Equal(t, "hello", plain(a.lines[s.Handle()][0]))
}

func TestOnlyDamagedRowsAreRerendered(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())
	h := a.widget.Current()

	p.get(0).WriteString("one\r\ntwo")
	require.NoError(t, pumpUntil(t, a, func() bool {
		return len(a.lines[h]) == 5 && plain(a.lines[h][1]) == "two"
	}))

	// A stale cache entry on an undamaged row must survive the next frame.
	a.lines[h][0] = "stale"
	p.get(0).WriteString("\x1b[2;1Hxyz")
	require.NoError(t, pumpUntil(t, a, func() bool {
		return plain(a.lines[h][1]) == "xyz"
	}))
	assert.Equal(t, "stale", a.lines[h][0])
}

func TestKeysAreSentToCurrentSession(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())

	press(a, 0, 'l')
	press(a, 0, 's')
	press(a, gocui.KeyEnter, 0)
	press(a, gocui.KeyArrowUp, 0)

	require.Eventually(t, func() bool {
		return p.get(0).Sent() == "ls\r\x1b[A"
	}, waitFor, 10*time.Millisecond)
}

func TestApplicationCursorKeys(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())
	s := a.widget.CurrentSession()

	p.get(0).WriteString("\x1b[?1h")
	require.Eventually(t, func() bool { return s.Modes().AppCursorKeys }, waitFor, 10*time.Millisecond)

	press(a, gocui.KeyArrowDown, 0)
	require.Eventually(t, func() bool {
		return p.get(0).Sent() == "\x1bOB"
	}, waitFor, 10*time.Millisecond)
}

func TestPrefixCommands(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())
	first := a.widget.Current()

	press(a, gocui.KeyCtrlA, 0)
	press(a, 0, 'c')
	require.Equal(t, 2, a.widget.Len())
	second := a.widget.Current()
	assert.NotEqual(t, first, second)

	press(a, gocui.KeyCtrlA, 0)
	press(a, 0, 'n')
	assert.Equal(t, first, a.widget.Current())

	press(a, gocui.KeyCtrlA, 0)
	press(a, 0, 'p')
	assert.Equal(t, second, a.widget.Current())

	// Double prefix sends the prefix byte itself.
	press(a, gocui.KeyCtrlA, 0)
	press(a, gocui.KeyCtrlA, 0)
	require.Eventually(t, func() bool {
		return p.get(1).Sent() == "\x01"
	}, waitFor, 10*time.Millisecond)
	assert.Empty(t, p.get(0).Sent())

	press(a, gocui.KeyCtrlA, 0)
	press(a, 0, 'q')
	assert.True(t, a.quitting)
	assert.Equal(t, gocui.ErrQuit, a.layout(nil))
}

func TestCloseSessionFromKeys(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.newSession())
	require.NoError(t, a.newSession())

	press(a, gocui.KeyCtrlA, 0)
	press(a, 0, 'x')
	assert.Equal(t, 1, a.widget.Len())
}

func TestLastSessionExitQuits(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())

	require.NoError(t, p.get(0).Close())
	deadline := time.After(waitFor)
	for {
		select {
		case ev := <-a.widget.Events():
			err := a.handleEvent(ev)
			if _, ok := ev.(session.Closed); ok {
				assert.Equal(t, gocui.ErrQuit, err)
				return
			}
			require.NoError(t, err)
		case <-deadline:
			t.Fatal("no Closed event")
		}
	}
}

func TestRemoteResizeSetsMessage(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())
	s := a.widget.CurrentSession()

	p.get(0).WriteString("\x1b[8;10;40t")
	require.NoError(t, pumpUntil(t, a, func() bool {
		return strings.Contains(a.message, "resized to 40x10")
	}))
	cols, rows := s.Buffer().Size()
	assert.Equal(t, 40, cols)
	assert.Equal(t, 10, rows)
	assert.Empty(t, p.get(0).Resizes(), "remote resize must not be echoed to the program")
}

func TestLocalResizeReachesConnector(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())

	a.resizeSurface(30, 8)
	a.resizeSurface(30, 8)
	require.Eventually(t, func() bool {
		return len(p.get(0).Resizes()) == 1
	}, waitFor, 10*time.Millisecond)
	assert.Equal(t, terminal.Size{Cols: 30, Rows: 8}, p.get(0).Resizes()[0])
}

func TestBellSetsMessage(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())

	p.get(0).WriteString("\a")
	require.NoError(t, pumpUntil(t, a, func() bool {
		return strings.HasPrefix(a.message, "bell in")
	}))
}

func TestScrollModeShowsHistory(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())
	h := a.widget.Current()
	s := a.widget.CurrentSession()

	for i := range 12 {
		p.get(0).WriteString(strings.Repeat(string(rune('a'+i)), 3) + "\r\n")
	}
	require.NoError(t, pumpUntil(t, a, func() bool {
		return s.Buffer().HistoryLen() == 8 && len(a.lines[h]) == 5 && plain(a.lines[h][3]) == "lll"
	}))

	press(a, gocui.KeyCtrlA, 0)
	press(a, gocui.KeyPgup, 0)
	require.Equal(t, input.ModeScroll, a.input.Mode())
	assert.Equal(t, 2, s.Buffer().ViewOffset())
	assert.Equal(t, "ggg", plain(a.lines[h][0]))
	assert.Contains(t, a.statusText(), "history -2")

	press(a, gocui.KeyEsc, 0)
	assert.Equal(t, input.ModeTerminal, a.input.Mode())
	assert.Equal(t, 0, s.Buffer().ViewOffset())
	assert.Equal(t, "iii", plain(a.lines[h][0]))
}

func TestDumpWritesFileAndDiff(t *testing.T) {
	a, p := newTestApp(t)
	require.NoError(t, a.newSession())
	s := a.widget.CurrentSession()

	p.get(0).WriteString("abc")
	require.Eventually(t, func() bool { return s.Buffer().Line(0) == "abc" }, waitFor, 10*time.Millisecond)

	path, err := a.dump(s)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "|abc")

	p.get(0).WriteString("\rxyz")
	require.Eventually(t, func() bool { return s.Buffer().Line(0) == "xyz" }, waitFor, 10*time.Millisecond)

	_, err = a.dump(s)
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-abc")
	assert.Contains(t, string(data), "+xyz")
}

func TestReloadAppliesScrollbackAndKeys(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.newSession())

	cfg := config.Default()
	cfg.DataDir = a.cfg.DataDir
	cfg.ScrollbackLines = 3
	cfg.Keys.Prefix = "ctrl+b"
	a.reload(cfg, nil)

	assert.Equal(t, "config reloaded", a.message)
	assert.Equal(t, "ctrl+b", a.input.Prefix().String())

	a.reload(nil, config.ErrInvalid)
	assert.True(t, strings.HasPrefix(a.message, "config: "))
	assert.Equal(t, "ctrl+b", a.input.Prefix().String())
}

func TestSidebarEntries(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.newSession())
	require.NoError(t, a.newSession())

	entries := a.sidebarEntries()
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Current)
	assert.True(t, entries[1].Current)
	assert.True(t, strings.HasPrefix(entries[0].Label, "#1"))
}

func TestNoSession(t *testing.T) {
	a, _ := newTestApp(t)
	press(a, 0, 'x')
	assert.Equal(t, "no current session", a.message)
	assert.Contains(t, a.statusText(), "no session")
	assert.Equal(t, session.Handle(0), a.widget.Current())
}
