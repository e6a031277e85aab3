// Package widget multiplexes terminal sessions behind one display surface.
//
// Sessions live in an arena indexed by handle; the widget holds the
// current handle and never a back-reference from session to widget.
// Notifications for the display host are delivered on a bounded channel.
package widget

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/go-errors/errors"

	"github.com/abdullathedruid/vtsession/internal/session"
	"github.com/abdullathedruid/vtsession/internal/terminal"
)

var (
	// ErrNoSession is returned when an operation needs a current session
	// and there is none.
	ErrNoSession = errors.New("no current session")
	// ErrUnknownSession is returned for handles the widget does not own.
	ErrUnknownSession = errors.New("unknown session")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("widget closed")
)

const (
	pasteStart = "\x1b[200~"
	pasteEnd   = "\x1b[201~"
)

// Options configures a Widget.
type Options struct {
	// EventQueue bounds the host notification channel.
	EventQueue int
	// Session is the template for new sessions. Handle, Name and Emitter
	// are set by the widget.
	Session session.Options
	Logger  *slog.Logger
}

// Widget owns an ordered collection of sessions and one current session.
type Widget struct {
	mu       sync.RWMutex
	sessions map[session.Handle]*session.Session
	order    []session.Handle
	current  session.Handle
	last     session.Handle
	cols     int
	rows     int
	template session.Options

	events    chan session.Event
	done      chan struct{}
	closeOnce sync.Once
	log       *slog.Logger
}

// New creates an empty widget.
func New(opts Options) *Widget {
	if opts.EventQueue <= 0 {
		opts.EventQueue = 256
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Widget{
		sessions: make(map[session.Handle]*session.Session),
		template: opts.Session,
		cols:     opts.Session.Cols,
		rows:     opts.Session.Rows,
		events:   make(chan session.Event, opts.EventQueue),
		done:     make(chan struct{}),
		log:      opts.Logger,
	}
}

// Events returns the host notification channel.
func (w *Widget) Events() <-chan session.Event {
	return w.events
}

// Done is closed by Close.
func (w *Widget) Done() <-chan struct{} {
	return w.done
}

func (w *Widget) closed() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// emit delivers ev to the host. It blocks while the queue is full and
// returns immediately once the widget is closed.
func (w *Widget) emit(ev session.Event) {
	select {
	case w.events <- ev:
	case <-w.done:
	}
}

// CreateSession binds a new session to conn at the current surface size.
// The session is not started. The first session becomes current.
func (w *Widget) CreateSession(conn terminal.Connector, name string) (*session.Session, error) {
	if w.closed() {
		return nil, ErrClosed
	}

	w.mu.Lock()
	w.last++
	h := w.last
	opts := w.template
	opts.Handle = h
	opts.Name = name
	opts.Cols, opts.Rows = w.cols, w.rows
	opts.Emitter = session.EmitterFunc(w.handleSessionEvent)
	if opts.Logger == nil {
		opts.Logger = w.log
	}
	s := session.New(conn, opts)
	w.sessions[h] = s
	w.order = append(w.order, h)
	becameCurrent := w.current == 0
	if becameCurrent {
		w.current = h
	}
	w.mu.Unlock()

	w.log.Info("session created", "handle", h.String(), "name", s.Name())
	if becameCurrent {
		w.emit(session.Changed{Handle: h, Name: s.Name()})
	}
	return s, nil
}

// Session returns the session for h.
func (w *Widget) Session(h session.Handle) (*session.Session, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.sessions[h]
	if !ok {
		return nil, ErrUnknownSession
	}
	return s, nil
}

// CurrentSession returns the current session, or nil when there is none.
func (w *Widget) CurrentSession() *session.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sessions[w.current]
}

// Current returns the current handle, zero when there is none.
func (w *Widget) Current() session.Handle {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Sessions returns the sessions in tab order.
func (w *Widget) Sessions() []*session.Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make([]*session.Session, len(w.order))
	for i, h := range w.order {
		result[i] = w.sessions[h]
	}
	return result
}

// Len returns the number of sessions.
func (w *Widget) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.order)
}

// SetCurrentSession makes h current and notifies the host. A session that
// missed Local resizes while in the background is brought up to the
// surface size first.
func (w *Widget) SetCurrentSession(h session.Handle) error {
	w.mu.Lock()
	s, ok := w.sessions[h]
	if !ok {
		w.mu.Unlock()
		return ErrUnknownSession
	}
	changed := w.current != h
	w.current = h
	cols, rows := w.cols, w.rows
	w.mu.Unlock()

	if !changed {
		return nil
	}
	w.catchUp(s, cols, rows)
	w.emit(session.Changed{Handle: h, Name: s.Name()})
	s.ForceRedraw()
	return nil
}

func (w *Widget) catchUp(s *session.Session, cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	if c, r := s.Buffer().Size(); c == cols && r == rows {
		return
	}
	if err := s.Resize(cols, rows); err != nil {
		w.log.Warn("resizing session", "handle", s.Handle().String(), "err", err)
	}
}

// Next makes the following session current, wrapping around.
func (w *Widget) Next() error {
	return w.step(1)
}

// Prev makes the preceding session current, wrapping around.
func (w *Widget) Prev() error {
	return w.step(-1)
}

func (w *Widget) step(delta int) error {
	w.mu.RLock()
	n := len(w.order)
	if n == 0 {
		w.mu.RUnlock()
		return ErrNoSession
	}
	idx := w.indexOf(w.current)
	h := w.order[((idx+delta)%n+n)%n]
	w.mu.RUnlock()
	return w.SetCurrentSession(h)
}

// indexOf must be called with mu held.
func (w *Widget) indexOf(h session.Handle) int {
	for i, o := range w.order {
		if o == h {
			return i
		}
	}
	return -1
}

// CloseSession removes h and stops it. Its Closed event follows the
// removal.
func (w *Widget) CloseSession(h session.Handle) error {
	s, err := w.Session(h)
	if err != nil {
		return err
	}
	w.detach(h)()
	s.Stop()
	return nil
}

// detach drops h from the arena and returns a func that emits the
// resulting session change. When h was current the neighbour that took
// its tab position, or the one before it, becomes current.
func (w *Widget) detach(h session.Handle) func() {
	w.mu.Lock()
	idx := w.indexOf(h)
	if idx < 0 {
		w.mu.Unlock()
		return func() {}
	}
	delete(w.sessions, h)
	w.order = append(w.order[:idx], w.order[idx+1:]...)

	wasCurrent := w.current == h
	var next *session.Session
	if wasCurrent {
		w.current = 0
		if len(w.order) > 0 {
			w.current = w.order[min(idx, len(w.order)-1)]
			next = w.sessions[w.current]
		}
	}
	cols, rows := w.cols, w.rows
	w.mu.Unlock()

	w.log.Info("session removed", "handle", h.String())
	return func() {
		if !wasCurrent {
			return
		}
		if next == nil {
			w.emit(session.Changed{})
			return
		}
		w.catchUp(next, cols, rows)
		w.emit(session.Changed{Handle: next.Handle(), Name: next.Name()})
		next.ForceRedraw()
	}
}

// handleSessionEvent receives events from every owned session. A session
// has left the arena by the time its Closed event is delivered.
func (w *Widget) handleSessionEvent(ev session.Event) {
	c, ok := ev.(session.Closed)
	if !ok {
		w.emit(ev)
		return
	}
	changed := w.detach(c.Handle)
	w.emit(ev)
	changed()
}

// SendKeys routes input to the current session's connector.
func (w *Widget) SendKeys(p []byte) error {
	s := w.CurrentSession()
	if s == nil {
		return ErrNoSession
	}
	return s.Send(p)
}

// Paste sends text to the current session as a paste: newlines become
// carriage returns, and the text is bracketed when the program asked for
// bracketed paste.
func (w *Widget) Paste(text string) error {
	s := w.CurrentSession()
	if s == nil {
		return ErrNoSession
	}
	return s.Send([]byte(pasteBytes(text, s.Modes().BracketedPaste)))
}

func pasteBytes(text string, bracketed bool) string {
	text = strings.ReplaceAll(text, "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")
	if !bracketed {
		return text
	}
	// A pasted end marker would let the text escape the bracket.
	text = strings.ReplaceAll(text, pasteEnd, "")
	return pasteStart + text + pasteEnd
}

// Resize negotiates a size change for the current session.
//
// A Local resize comes from the display surface: the session's buffer and
// connector take the new size, and background sessions catch up when they
// become current. A Remote resize comes from the program side: only the
// buffer changes and the host is asked to conform. Both are reported on
// the event channel with their origin.
func (w *Widget) Resize(cols, rows int, origin session.Origin) error {
	if cols <= 0 || rows <= 0 {
		return errors.Errorf("invalid size %dx%d", cols, rows)
	}
	w.mu.Lock()
	if origin == session.OriginLocal {
		w.cols, w.rows = cols, rows
	}
	s := w.sessions[w.current]
	w.mu.Unlock()

	if s == nil {
		if origin == session.OriginLocal {
			return nil
		}
		return ErrNoSession
	}

	var err error
	if origin == session.OriginLocal {
		err = s.Resize(cols, rows)
	} else {
		err = s.ApplyRemoteResize(cols, rows)
	}
	w.emit(session.ResizeRequest{Handle: s.Handle(), Cols: cols, Rows: rows, Origin: origin})
	return err
}

// Size returns the last Local surface size.
func (w *Widget) Size() (cols, rows int) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cols, w.rows
}

// Redraw takes the pending frame for h.
func (w *Widget) Redraw(h session.Handle) (session.Frame, error) {
	s, err := w.Session(h)
	if err != nil {
		return session.Frame{}, err
	}
	return s.Redraw(), nil
}

// Close stops every session. Events already queued stay readable;
// nothing further is delivered.
func (w *Widget) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		for _, s := range w.Sessions() {
			s.Stop()
		}
		w.mu.Lock()
		w.sessions = make(map[session.Handle]*session.Session)
		w.order = nil
		w.current = 0
		w.mu.Unlock()
	})
}
