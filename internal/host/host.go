// Package host runs the terminal widget inside a gocui screen: a session
// sidebar, the current session's grid and a status line.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"

	"github.com/abdullathedruid/vtsession/internal/config"
	"github.com/abdullathedruid/vtsession/internal/debug"
	"github.com/abdullathedruid/vtsession/internal/input"
	"github.com/abdullathedruid/vtsession/internal/screen"
	"github.com/abdullathedruid/vtsession/internal/session"
	"github.com/abdullathedruid/vtsession/internal/terminal"
	"github.com/abdullathedruid/vtsession/internal/ui"
	"github.com/abdullathedruid/vtsession/internal/version"
	"github.com/abdullathedruid/vtsession/internal/widget"
)

const (
	terminalView = "terminal"
	sidebarView  = "sessions"
	statusView   = "status"
)

// Spawner opens a connector for a new session of the given size.
type Spawner func(cols, rows int) (terminal.Connector, error)

// Options configures an App.
type Options struct {
	Config *config.Config
	// ConfigPath is watched for changes. Empty disables reloading.
	ConfigPath string
	Spawn      Spawner
	Logger     *slog.Logger
}

// App is the display host. Apart from the event pump, every method runs on
// the gocui main loop goroutine, so its fields need no locking.
type App struct {
	gui    *gocui.Gui
	widget *widget.Widget
	input  *input.Handler
	cfg    *config.Config
	colors ui.Colors
	spawn  Spawner
	log    *slog.Logger

	configPath string

	// lines caches each session's rendered rows; only damaged rows are
	// re-rendered.
	lines    map[session.Handle][]string
	lastDump map[session.Handle]screen.Snapshot
	message  string

	lastCols, lastRows int
	firstCall          bool
	quitting           bool
}

// SessionOptions maps the config onto per-session defaults.
func SessionOptions(cfg *config.Config) session.Options {
	return session.Options{
		Cols:             cfg.Cols,
		Rows:             cfg.Rows,
		MaxCols:          cfg.MaxCols,
		MaxRows:          cfg.MaxRows,
		Scrollback:       cfg.ScrollbackLines,
		TabWidth:         cfg.TabWidth,
		WriteQueue:       cfg.WriteQueue,
		MaxParams:        cfg.MaxParams,
		MaxSequenceBytes: cfg.MaxSequenceBytes,
	}
}

// newApp builds everything except the gocui screen.
func newApp(opts Options) (*App, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Spawn == nil {
		return nil, errors.New("host needs a spawner")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	cfg := opts.Config

	h, err := input.NewHandler(cfg.Keys)
	if err != nil {
		return nil, errors.WrapPrefix(err, "key bindings", 0)
	}

	w := widget.New(widget.Options{
		EventQueue: cfg.EventQueue,
		Session:    SessionOptions(cfg),
		Logger:     opts.Logger,
	})

	return &App{
		widget:     w,
		input:      h,
		cfg:        cfg,
		colors:     ui.ThemeColors(cfg.Theme.Colors),
		spawn:      opts.Spawn,
		log:        opts.Logger,
		configPath: opts.ConfigPath,
		lines:      make(map[session.Handle][]string),
		lastDump:   make(map[session.Handle]screen.Snapshot),
		firstCall:  true,
	}, nil
}

// New creates the host and takes over the terminal.
func New(opts Options) (*App, error) {
	a, err := newApp(opts)
	if err != nil {
		return nil, err
	}
	g, err := gocui.NewGui(gocui.NewGuiOpts{
		OutputMode: gocui.OutputTrue,
	})
	if err != nil {
		a.widget.Close()
		return nil, errors.WrapPrefix(err, "initializing GUI", 0)
	}
	a.gui = g
	return a, nil
}

// Widget returns the widget the host displays.
func (a *App) Widget() *widget.Widget { return a.widget }

// Run opens the first session and runs the main loop until quit, the last
// session exits, or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.gui.SetManagerFunc(a.layout)

	maxX, maxY := a.gui.Size()
	l := ui.CalculateLayout(maxX, maxY)
	a.lastCols, a.lastRows = l.Main.Width(), l.Main.Height()
	if err := a.widget.Resize(a.lastCols, a.lastRows, session.OriginLocal); err != nil {
		return err
	}
	if err := a.newSession(); err != nil {
		return err
	}

	go a.pump(ctx)

	if a.configPath != "" {
		if err := config.Watch(ctx, a.configPath, func(cfg *config.Config, err error) {
			a.gui.Update(func(*gocui.Gui) error {
				a.reload(cfg, err)
				return nil
			})
		}); err != nil {
			a.log.Warn("config reload disabled", "err", err)
		}
	}

	// Handle SIGTERM/SIGHUP for clean exit; SIGINT belongs to the session.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}
		a.gui.Update(func(*gocui.Gui) error {
			return gocui.ErrQuit
		})
	}()

	if err := a.gui.MainLoop(); err != nil && !errors.Is(err, gocui.ErrQuit) && err.Error() != "quit" {
		return errors.WrapPrefix(err, "main loop", 0)
	}
	return nil
}

// Close stops every session and restores the terminal.
func (a *App) Close() {
	a.widget.Close()
	if a.gui != nil {
		a.gui.Close()
	}
}

// pump forwards widget events onto the main loop. gui.Update never blocks,
// so the widget's channel keeps draining while the loop is busy.
func (a *App) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.widget.Done():
			return
		case ev := <-a.widget.Events():
			a.gui.Update(func(*gocui.Gui) error {
				return a.handleEvent(ev)
			})
		}
	}
}

// handleEvent applies one widget event. It returns gocui.ErrQuit once the
// last session has gone.
func (a *App) handleEvent(ev session.Event) error {
	switch ev := ev.(type) {
	case session.Redraw:
		a.refresh(ev.Handle)
	case session.TitleChanged:
		a.log.Debug("title changed", "handle", ev.Handle.String(), "title", ev.Title)
	case session.ResizeRequest:
		if ev.Origin == session.OriginRemote {
			a.log.Info("program resized session", "handle", ev.Handle.String(), "cols", ev.Cols, "rows", ev.Rows)
			a.message = fmt.Sprintf("%s resized to %dx%d", ev.Handle, ev.Cols, ev.Rows)
		}
	case session.Bell:
		a.message = fmt.Sprintf("bell in %s", ev.Handle)
	case session.Closed:
		delete(a.lines, ev.Handle)
		delete(a.lastDump, ev.Handle)
		if ev.Err != nil {
			a.log.Warn("session ended", "handle", ev.Handle.String(), "err", ev.Err)
			a.message = fmt.Sprintf("%s: %v", ev.Handle, ev.Err)
		} else {
			a.log.Info("session ended", "handle", ev.Handle.String())
		}
		if a.widget.Len() == 0 {
			return gocui.ErrQuit
		}
	case session.Changed:
		a.input.SetMode(input.ModeTerminal)
	}
	return nil
}

// refresh takes the pending frame for h and re-renders the damaged rows.
// While the history viewport is scrolled back, rows come from the viewport
// rather than the live grid.
func (a *App) refresh(h session.Handle) {
	s, err := a.widget.Session(h)
	if err != nil {
		return
	}
	f := s.Redraw()
	lines := a.lines[h]
	if len(lines) != f.Rows {
		resized := make([]string, f.Rows)
		copy(resized, lines)
		lines = resized
	}
	scrolled := s.Buffer().ViewOffset() > 0
	for _, r := range f.Damage.Rows() {
		if r >= len(lines) {
			continue
		}
		if scrolled {
			lines[r] = ui.RenderRow(s.Buffer().ViewRow(r))
		} else {
			lines[r] = ui.RenderRow(f.Lines[r])
		}
	}
	a.lines[h] = lines
}

// newSession spawns a connector at the current surface size and makes its
// session current.
func (a *App) newSession() error {
	cols, rows := a.widget.Size()
	conn, err := a.spawn(cols, rows)
	if err != nil {
		return errors.WrapPrefix(err, "spawn", 0)
	}
	s, err := a.widget.CreateSession(conn, "")
	if err != nil {
		conn.Close()
		return err
	}
	if err := s.Start(); err != nil {
		return err
	}
	return a.widget.SetCurrentSession(s.Handle())
}

// reload applies a changed config file.
func (a *App) reload(cfg *config.Config, err error) {
	if err != nil {
		a.log.Warn("config reload failed", "err", err)
		a.message = "config: " + err.Error()
		return
	}
	h, err := input.NewHandler(cfg.Keys)
	if err != nil {
		a.message = "config: " + err.Error()
		return
	}
	for _, s := range a.widget.Sessions() {
		s.Buffer().SetScrollbackCapacity(cfg.ScrollbackLines)
	}
	h.SetMode(a.input.Mode())
	a.input = h
	a.cfg = cfg
	a.colors = ui.ThemeColors(cfg.Theme.Colors)
	a.message = "config reloaded"
	a.log.Info("config reloaded", "path", a.configPath)
}

// dump writes the current session's debug dump to the data directory,
// followed by a diff against the previous dump of the same session.
func (a *App) dump(s *session.Session) (string, error) {
	if err := a.cfg.EnsureDataDir(); err != nil {
		return "", errors.Wrap(err, 0)
	}
	in := debug.New(s)
	snap := in.Snapshot()

	var sb strings.Builder
	if err := in.Dump(&sb); err != nil {
		return "", err
	}
	if prev, ok := a.lastDump[s.Handle()]; ok {
		if d := debug.Diff(prev, snap); d != "" {
			sb.WriteString("\n")
			sb.WriteString(d)
		}
	}
	a.lastDump[s.Handle()] = snap

	path := filepath.Join(a.cfg.DataDir, fmt.Sprintf("dump-%d.txt", int(s.Handle())))
	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return "", errors.Wrap(err, 0)
	}
	return path, nil
}

func (a *App) statusText() string {
	bar := ui.StatusBar{
		Mode:    a.input.Mode(),
		Message: a.message,
		Version: version.Short(),
	}
	if s := a.widget.CurrentSession(); s != nil {
		bar.Session = fmt.Sprintf("%s %s", s.Handle(), s.Name())
		bar.Cols, bar.Rows = s.Buffer().Size()
		bar.ViewOffset = s.Buffer().ViewOffset()
	}
	return ui.RenderStatusBar(bar, a.cfg.Keys)
}

func (a *App) sidebarEntries() []ui.SidebarEntry {
	current := a.widget.Current()
	sessions := a.widget.Sessions()
	entries := make([]ui.SidebarEntry, 0, len(sessions))
	for _, s := range sessions {
		entries = append(entries, ui.SidebarEntry{
			Label:   fmt.Sprintf("%s %s", s.Handle(), s.Name()),
			Current: s.Handle() == current,
			Running: s.State() == session.StateRunning,
		})
	}
	return entries
}
